// Package engine implements the Kingsir rules: dealing, bidding, trump
// selection, trick play, scoring and round progression.
//
// Every operation is a pure transition on a GameState snapshot. Callers keep
// the old snapshot on error; nothing in this package performs I/O.
package engine

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/uuid"
)

const (
	MinPlayers = 3
	MaxPlayers = 6
	DeckSize   = 52
)

// Seat describes one participant when a game is created.
type Seat struct {
	ID           string
	Name         string
	IsAI         bool
	AIDifficulty Difficulty
}

// CardsForRound returns the hand size for the given 1-based round.
// Round 1 deals floor(52/n) cards; each later round deals one fewer.
func CardsForRound(round, numPlayers int) int {
	return DeckSize/numPlayers - (round - 1)
}

// TotalRounds returns the number of playable rounds for n players. The last
// round deals exactly one card per seat.
func TotalRounds(numPlayers int) int {
	return DeckSize / numPlayers
}

// NewDeck builds a full 52-card deck with fresh card IDs, unshuffled.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, s := range Suits {
		for _, r := range Ranks {
			deck = append(deck, Card{Suit: s, Rank: r, ID: uuid.NewString()})
		}
	}
	return deck
}

// Shuffle returns a uniformly shuffled copy of deck.
func Shuffle(deck []Card, rng *rand.Rand) []Card {
	shuffled := append([]Card(nil), deck...)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

// DealHands partitions the front of deck into numPlayers hands of
// cardsPerPlayer cards each, dealt round-robin. The 52 mod n remainder is
// never dealt and never reappears that round.
func DealHands(deck []Card, numPlayers, cardsPerPlayer int) [][]Card {
	hands := make([][]Card, numPlayers)
	for i := range hands {
		hands[i] = make([]Card, 0, cardsPerPlayer)
	}
	for i := 0; i < cardsPerPlayer; i++ {
		for j := 0; j < numPlayers; j++ {
			hands[j] = append(hands[j], deck[i*numPlayers+j])
		}
	}
	return hands
}

// suitDisplayOrder fixes the hand sort: spades first, then hearts,
// diamonds, clubs.
func suitDisplayOrder(s Suit) int {
	switch s {
	case SuitSpades:
		return 0
	case SuitHearts:
		return 1
	case SuitDiamonds:
		return 2
	default:
		return 3
	}
}

// SortHand orders a hand by suit then ascending rank for display.
func SortHand(hand []Card) {
	sort.Slice(hand, func(i, j int) bool {
		si, sj := suitDisplayOrder(hand[i].Suit), suitDisplayOrder(hand[j].Suit)
		if si != sj {
			return si < sj
		}
		return hand[i].Rank < hand[j].Rank
	})
}

// aceOfSpadesHolder returns the seat holding the Ace of Spades. When the ace
// landed in the undealt remainder (possible for 3, 5 or 6 players), seat 0
// starts.
func aceOfSpadesHolder(players []PlayerState) int {
	for i := range players {
		for _, c := range players[i].Hand {
			if c.Suit == SuitSpades && c.Rank == RankA {
				return i
			}
		}
	}
	return 0
}

// New creates the initial GameState for a room: deals round 1 and opens
// bidding with the Ace-of-Spades holder. Requires 3 to 6 seats.
func New(roomCode, hostID string, seats []Seat, rng *rand.Rand) (GameState, error) {
	if len(seats) < MinPlayers || len(seats) > MaxPlayers {
		return GameState{}, fmt.Errorf("kingsir needs %d-%d players, got %d", MinPlayers, MaxPlayers, len(seats))
	}

	cardsPerPlayer := CardsForRound(1, len(seats))
	hands := DealHands(Shuffle(NewDeck(), rng), len(seats), cardsPerPlayer)

	players := make([]PlayerState, len(seats))
	for i, s := range seats {
		SortHand(hands[i])
		players[i] = PlayerState{
			ID:           s.ID,
			Name:         s.Name,
			Hand:         hands[i],
			Bid:          BidUndeclared,
			IsAI:         s.IsAI,
			AIDifficulty: s.AIDifficulty,
			Connected:    true,
		}
	}

	starter := aceOfSpadesHolder(players)
	return GameState{
		RoomCode:           roomCode,
		HostID:             hostID,
		Phase:              PhaseBidding,
		Players:            players,
		CurrentRound:       1,
		CardsPerPlayer:     cardsPerPlayer,
		CurrentPlayerIndex: starter,
		PlayedCards:        []PlayedCard{},
		RoundStarterIndex:  starter,
	}, nil
}
