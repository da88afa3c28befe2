// Package ai implements the heuristic computer opponent. Every function is a
// pure decision over a hand and public game context; randomness comes only
// from the supplied source, so a seeded rng reproduces decisions exactly.
package ai

import (
	"math"
	"math/rand"

	"github.com/LuvJain/kingsir/engine"
)

// Expected-trick weights for the bid estimate. Bidding happens before trump
// is known, so high cards and suit shape are all the estimator has.
const (
	aceWeight        = 1.0
	kingWeight       = 0.75
	kingShortWeight  = 0.5 // king in a suit of <=2 cards loses to the ace more often
	queenWeight      = 0.4
	queenShortWeight = 0.25
	jackWeight       = 0.15

	voidBonus      = 1.0 // guaranteed ruff opportunity
	singletonBonus = 0.5
	doubletonBonus = 0.2
	longSuitBonus  = 0.3 // per card beyond four in a suit
)

func countSuits(hand []engine.Card) map[engine.Suit]int {
	counts := make(map[engine.Suit]int, len(engine.Suits))
	for _, s := range engine.Suits {
		counts[s] = 0
	}
	for _, c := range hand {
		counts[c.Suit]++
	}
	return counts
}

// Bid estimates how many tricks the hand will win and returns a legal bid.
// Difficulty scales the noise: easy mostly guesses, hard tracks the estimate
// closely. When bidding last, an estimate that would make the bid total
// equal cardsPerPlayer is nudged by one toward a legal value.
func Bid(hand []engine.Card, cardsPerPlayer, totalBidSoFar int, lastBidder bool, diff engine.Difficulty, rng *rand.Rand) int {
	suitCounts := countSuits(hand)

	base := 0.0
	for _, c := range hand {
		short := suitCounts[c.Suit] <= 2
		switch {
		case c.Rank == engine.RankA:
			base += aceWeight
		case c.Rank == engine.RankK && short:
			base += kingShortWeight
		case c.Rank == engine.RankK:
			base += kingWeight
		case c.Rank == engine.RankQ && short:
			base += queenShortWeight
		case c.Rank == engine.RankQ:
			base += queenWeight
		case c.Rank == engine.RankJ:
			base += jackWeight
		}
	}

	for _, s := range engine.Suits {
		switch suitCounts[s] {
		case 0:
			base += voidBonus
		case 1:
			base += singletonBonus
		case 2:
			base += doubletonBonus
		}
		if suitCounts[s] >= 5 {
			base += float64(suitCounts[s]-4) * longSuitBonus
		}
	}

	switch diff {
	case engine.DifficultyEasy:
		noise := (rng.Float64() - 0.5) * float64(cardsPerPlayer) * 0.8
		base = base*0.4 + noise
	case engine.DifficultyMedium:
		base = base*0.75 + (rng.Float64()-0.5)*2.0
	default: // hard
		base += (rng.Float64() - 0.5) * 0.8
	}

	bid := clamp(int(math.Round(base)), 0, cardsPerPlayer)

	if lastBidder && totalBidSoFar+bid == cardsPerPlayer {
		if bid > 0 {
			bid--
		} else {
			bid++
		}
		bid = clamp(bid, 0, cardsPerPlayer)
	}
	return bid
}

// SelectTrump scores each suit and returns the strongest. Easy counts cards
// only; higher tiers also weigh summed rank strength. Ties keep the
// earlier-enumerated suit.
func SelectTrump(hand []engine.Card, diff engine.Difficulty, _ *rand.Rand) engine.Suit {
	best := engine.Suits[0]
	bestScore := -1
	for _, s := range engine.Suits {
		count, rankSum := 0, 0
		for _, c := range hand {
			if c.Suit == s {
				count++
				rankSum += int(c.Rank) - int(engine.Rank2)
			}
		}
		score := count
		if diff != engine.DifficultyEasy {
			score = count*2 + rankSum
		}
		if score > bestScore {
			bestScore = score
			best = s
		}
	}
	return best
}

// PlayCard picks a card from the legal subset of hand. Easy plays at
// random. Medium plays high when it still needs tricks and low once the bid
// is met. Hard additionally reads the trick in progress: it wins with the
// cheapest sufficient card, ducks with its tallest loser once the bid is
// met, and only eats a forced win as cheaply as possible.
func PlayCard(hand []engine.Card, trick []engine.PlayedCard, leading, trump *engine.Suit, bid, tricksWon int, diff engine.Difficulty, rng *rand.Rand) engine.Card {
	legal := engine.PlayableCards(hand, leading)
	if len(legal) == 1 {
		return legal[0]
	}

	switch diff {
	case engine.DifficultyEasy:
		return legal[rng.Intn(len(legal))]
	case engine.DifficultyHard:
		return playHard(legal, trick, leading, trump, bid, tricksWon)
	default:
		return playMedium(legal, leading, trump, bid, tricksWon)
	}
}

// playMedium: highest to win, lowest to lose, no trick lookahead.
func playMedium(legal []engine.Card, leading, trump *engine.Suit, bid, tricksWon int) engine.Card {
	needMore := tricksWon < bid

	if needMore {
		if leading != nil {
			if follow := ofSuit(legal, *leading); len(follow) > 0 {
				return highest(follow)
			}
			if trump != nil {
				if trumps := ofSuit(legal, *trump); len(trumps) > 0 {
					return lowest(trumps)
				}
			}
		}
		return highest(legal)
	}

	// Bid met (or overshot): shed low, avoiding trump where possible.
	if leading != nil {
		if follow := ofSuit(legal, *leading); len(follow) > 0 {
			return lowest(follow)
		}
		if trump != nil {
			if plain := notOfSuit(legal, *trump); len(plain) > 0 {
				return lowest(plain)
			}
		}
	}
	return lowest(legal)
}

// playHard evaluates each legal card against the trick in progress.
func playHard(legal []engine.Card, trick []engine.PlayedCard, leading, trump *engine.Suit, bid, tricksWon int) engine.Card {
	wantsWin := tricksWon < bid

	// Leading a fresh trick: no opposing cards to read yet.
	if len(trick) == 0 || leading == nil {
		if wantsWin {
			return highest(legal)
		}
		return lowest(legal)
	}

	var winners, losers []engine.Card
	for _, c := range legal {
		if winsTrick(c, trick, *trump, *leading) {
			winners = append(winners, c)
		} else {
			losers = append(losers, c)
		}
	}

	if wantsWin {
		if len(winners) > 0 {
			return cheapest(winners, trump)
		}
		// Cannot win this trick; dump the tallest card.
		return highest(legal)
	}

	// Bid already met: duck with the biggest card that still loses, and take
	// a forced win as cheaply as possible.
	if len(losers) > 0 {
		return highest(losers)
	}
	return cheapest(winners, trump)
}

// winsTrick reports whether card would beat every card already in the trick.
func winsTrick(card engine.Card, trick []engine.PlayedCard, trump, leading engine.Suit) bool {
	for _, pc := range trick {
		if !engine.Beats(card, pc.Card, trump, leading) {
			return false
		}
	}
	return true
}

// cheapest prefers the lowest non-trump card, falling back to the lowest
// trump, so trumps are spent only when nothing else serves.
func cheapest(cards []engine.Card, trump *engine.Suit) engine.Card {
	if trump != nil {
		if plain := notOfSuit(cards, *trump); len(plain) > 0 {
			return lowest(plain)
		}
	}
	return lowest(cards)
}

func ofSuit(cards []engine.Card, s engine.Suit) []engine.Card {
	var out []engine.Card
	for _, c := range cards {
		if c.Suit == s {
			out = append(out, c)
		}
	}
	return out
}

func notOfSuit(cards []engine.Card, s engine.Suit) []engine.Card {
	var out []engine.Card
	for _, c := range cards {
		if c.Suit != s {
			out = append(out, c)
		}
	}
	return out
}

func highest(cards []engine.Card) engine.Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if c.Rank > best.Rank {
			best = c
		}
	}
	return best
}

func lowest(cards []engine.Card) engine.Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if c.Rank < best.Rank {
			best = c
		}
	}
	return best
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
