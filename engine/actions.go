package engine

import (
	"errors"
	"fmt"
	"math/rand"
)

// SubmitBid records a bid for the seat, tracks the highest bidder (strictly
// greater bids only, so ties keep the earlier bidder), and moves to trump
// selection once every seat has declared.
func SubmitBid(g GameState, seat, bid int) (GameState, error) {
	if err := ValidateBid(g, seat, bid); err != nil {
		return g, err
	}

	out := g.Clone()
	out.Players[seat].Bid = bid

	highest := out.SeatOf(out.HighestBidderID)
	if highest < 0 || bid > out.Players[highest].Bid {
		out.HighestBidderID = out.Players[seat].ID
	}

	out.CurrentPlayerIndex = (seat + 1) % len(out.Players)

	allBid := true
	for i := range out.Players {
		if !out.Players[i].HasBid() {
			allBid = false
			break
		}
	}
	if allBid {
		out.Phase = PhaseTrumpSelection
	}
	return out, nil
}

// SelectTrump sets the round's trump suit. Only legal during trump
// selection; the highest bidder leads the first trick.
func SelectTrump(g GameState, suit Suit) (GameState, error) {
	if g.Phase != PhaseTrumpSelection {
		return g, fmt.Errorf("cannot select trump during %s", g.Phase)
	}
	bidderSeat := g.SeatOf(g.HighestBidderID)
	if bidderSeat < 0 {
		return g, errors.New("no highest bidder recorded")
	}

	out := g.Clone()
	out.TrumpSuit = suitPtr(suit)
	out.Phase = PhasePlaying
	out.CurrentPlayerIndex = bidderSeat
	return out, nil
}

// PlayCard removes the card from the seat's hand and appends it to the
// trick. The first card of a trick fixes the leading suit. A completed trick
// is resolved immediately: the winner's count increments, the phase moves to
// trickResult and the winner becomes the current player.
func PlayCard(g GameState, seat int, card Card) (GameState, error) {
	if err := ValidatePlay(g, seat, card); err != nil {
		return g, err
	}

	out := g.Clone()
	p := &out.Players[seat]
	for i, c := range p.Hand {
		if c.ID == card.ID {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			break
		}
	}

	out.PlayedCards = append(out.PlayedCards, PlayedCard{
		Card:     card,
		PlayerID: p.ID,
		Position: len(out.PlayedCards),
	})
	if out.LeadingSuit == nil {
		out.LeadingSuit = suitPtr(card.Suit)
	}

	if len(out.PlayedCards) == len(out.Players) {
		winnerID := ResolveTrick(out.PlayedCards, *out.TrumpSuit, *out.LeadingSuit)
		winnerSeat := out.SeatOf(winnerID)
		out.Players[winnerSeat].TricksWon++
		out.TrickWinnerID = winnerID
		out.Phase = PhaseTrickResult
		out.CurrentPlayerIndex = winnerSeat
		return out, nil
	}

	out.CurrentPlayerIndex = (seat + 1) % len(out.Players)
	return out, nil
}

// AdvanceAfterTrick leaves the trickResult phase: back to playing with the
// trick winner leading, or through scoring into roundEnd once every trick
// of the round has been played.
func AdvanceAfterTrick(g GameState) (GameState, error) {
	if g.Phase != PhaseTrickResult {
		return g, fmt.Errorf("cannot advance trick during %s", g.Phase)
	}

	out := g.Clone()
	out.TrickNumber++

	if out.TrickNumber >= out.CardsPerPlayer {
		scoreRound(&out)
		return out, nil
	}

	out.PlayedCards = []PlayedCard{}
	out.LeadingSuit = nil
	out.TrickWinnerID = ""
	out.Phase = PhasePlaying
	return out, nil
}

// StartNextRound deals the next round, or ends the game after the final
// one-card round. Calling it on a finished game returns the state unchanged.
func StartNextRound(g GameState, rng *rand.Rand) (GameState, error) {
	if g.Phase == PhaseGameOver {
		return g, nil
	}
	if g.Phase != PhaseRoundEnd {
		return g, fmt.Errorf("cannot start next round during %s", g.Phase)
	}

	out := g.Clone()
	if out.CurrentRound >= TotalRounds(len(out.Players)) {
		out.Phase = PhaseGameOver
		return out, nil
	}

	out.CurrentRound++
	out.CardsPerPlayer = CardsForRound(out.CurrentRound, len(out.Players))
	hands := DealHands(Shuffle(NewDeck(), rng), len(out.Players), out.CardsPerPlayer)

	for i := range out.Players {
		SortHand(hands[i])
		out.Players[i].Hand = hands[i]
		out.Players[i].Bid = BidUndeclared
		out.Players[i].TricksWon = 0
	}

	// Starter rotates by one seat per round, regardless of who won the last
	// trick of the previous round.
	out.RoundStarterIndex = (out.RoundStarterIndex + 1) % len(out.Players)
	out.CurrentPlayerIndex = out.RoundStarterIndex
	out.TrumpSuit = nil
	out.LeadingSuit = nil
	out.PlayedCards = []PlayedCard{}
	out.HighestBidderID = ""
	out.TrickWinnerID = ""
	out.TrickNumber = 0
	out.Phase = PhaseBidding
	return out, nil
}
