package engine

import (
	"errors"
	"fmt"
)

// ErrNotYourTurn is returned for any action attempted out of turn.
var ErrNotYourTurn = errors.New("it's not your turn")

// ActingSeat returns the seat expected to act in the current phase. During
// trump selection that is the highest bidder, not CurrentPlayerIndex. The
// second return is false in phases with no single acting seat (trickResult,
// roundEnd, gameOver).
func ActingSeat(g GameState) (int, bool) {
	switch g.Phase {
	case PhaseBidding, PhasePlaying:
		return g.CurrentPlayerIndex, true
	case PhaseTrumpSelection:
		if seat := g.SeatOf(g.HighestBidderID); seat >= 0 {
			return seat, true
		}
		return -1, false
	default:
		return -1, false
	}
}

// declaredBidTotal sums all declared bids and counts how many seats have bid.
func declaredBidTotal(g GameState) (total, count int) {
	for i := range g.Players {
		if g.Players[i].HasBid() {
			total += g.Players[i].Bid
			count++
		}
	}
	return total, count
}

// isLastBidder reports whether every seat except one has already bid.
func isLastBidder(g GameState) bool {
	_, count := declaredBidTotal(g)
	return count == len(g.Players)-1
}

// ValidateBid checks a bid for the given seat: range [0, cardsPerPlayer],
// plus the last-bidder restriction that the final bid may not bring the
// total to exactly cardsPerPlayer.
func ValidateBid(g GameState, seat, bid int) error {
	if g.Phase != PhaseBidding {
		return fmt.Errorf("cannot bid during %s", g.Phase)
	}
	if seat != g.CurrentPlayerIndex {
		return ErrNotYourTurn
	}
	if bid < 0 || bid > g.CardsPerPlayer {
		return fmt.Errorf("bid must be between 0 and %d", g.CardsPerPlayer)
	}
	if isLastBidder(g) {
		total, _ := declaredBidTotal(g)
		if total+bid == g.CardsPerPlayer {
			return fmt.Errorf("total bids cannot equal %d; choose a different number", g.CardsPerPlayer)
		}
	}
	return nil
}

// ValidBids enumerates every bid value the seat may legally declare.
func ValidBids(g GameState, seat int) []int {
	bids := make([]int, 0, g.CardsPerPlayer+1)
	for b := 0; b <= g.CardsPerPlayer; b++ {
		if ValidateBid(g, seat, b) == nil {
			bids = append(bids, b)
		}
	}
	return bids
}

// ValidatePlay checks a card play: right turn, card held, and mandatory
// suit-following when the seat holds the leading suit.
func ValidatePlay(g GameState, seat int, card Card) error {
	if g.Phase != PhasePlaying {
		return fmt.Errorf("cannot play a card during %s", g.Phase)
	}
	if seat != g.CurrentPlayerIndex {
		return ErrNotYourTurn
	}
	p := &g.Players[seat]
	if !p.HoldsCard(card.ID) {
		return errors.New("that card isn't in your hand")
	}
	if g.LeadingSuit != nil && card.Suit != *g.LeadingSuit && p.HasSuit(*g.LeadingSuit) {
		return fmt.Errorf("you must follow the leading suit (%s)", *g.LeadingSuit)
	}
	return nil
}

// PlayableCards returns the subset of hand legal to play: the leading suit
// when held, otherwise the whole hand.
func PlayableCards(hand []Card, leading *Suit) []Card {
	if leading == nil {
		return hand
	}
	var follow []Card
	for _, c := range hand {
		if c.Suit == *leading {
			follow = append(follow, c)
		}
	}
	if len(follow) > 0 {
		return follow
	}
	return hand
}
