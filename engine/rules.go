package engine

// Beats reports whether card a beats card b given the round's trump suit and
// the trick's leading suit. Comparison order:
//  1. trump beats non-trump
//  2. higher trump beats lower trump
//  3. leading suit beats off-suit non-trump
//  4. higher leading-suit card beats lower
//  5. two off-suit non-trump cards never displace each other, so the
//     earlier-played card stands
func Beats(a, b Card, trump, leading Suit) bool {
	if a.Suit == trump && b.Suit != trump {
		return true
	}
	if a.Suit != trump && b.Suit == trump {
		return false
	}
	if a.Suit == trump && b.Suit == trump {
		return a.Rank > b.Rank
	}
	if a.Suit == leading && b.Suit != leading {
		return true
	}
	if a.Suit != leading && b.Suit == leading {
		return false
	}
	if a.Suit == leading && b.Suit == leading {
		return a.Rank > b.Rank
	}
	return false
}

// ResolveTrick returns the player ID winning a completed trick.
func ResolveTrick(played []PlayedCard, trump, leading Suit) string {
	winning := played[0]
	for _, challenger := range played[1:] {
		if Beats(challenger.Card, winning.Card, trump, leading) {
			winning = challenger
		}
	}
	return winning.PlayerID
}
