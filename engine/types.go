package engine

import (
	"encoding/json"
	"fmt"
)

// Suit is one of the four standard suits.
type Suit int

const (
	SuitHearts Suit = iota
	SuitDiamonds
	SuitClubs
	SuitSpades
)

// Suits lists all suits in enumeration order. Tie-breaks (e.g. AI trump
// selection) favor earlier entries.
var Suits = [4]Suit{SuitHearts, SuitDiamonds, SuitClubs, SuitSpades}

func (s Suit) String() string {
	switch s {
	case SuitHearts:
		return "Hearts"
	case SuitDiamonds:
		return "Diamonds"
	case SuitClubs:
		return "Clubs"
	case SuitSpades:
		return "Spades"
	default:
		return "?"
	}
}

// MarshalJSON writes the suit as its document string ("Hearts", ...).
func (s Suit) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON reads a suit from its document string.
func (s *Suit) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseSuit(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSuit converts a document string back into a Suit.
func ParseSuit(s string) (Suit, error) {
	switch s {
	case "Hearts":
		return SuitHearts, nil
	case "Diamonds":
		return SuitDiamonds, nil
	case "Clubs":
		return SuitClubs, nil
	case "Spades":
		return SuitSpades, nil
	default:
		return 0, fmt.Errorf("unknown suit %q", s)
	}
}

// Rank is a card rank. The numeric value fixes the total order used for
// trick comparison: 2 < 3 < ... < 10 < J < Q < K < A.
type Rank int

const (
	Rank2 Rank = iota + 2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
	Rank9
	Rank10
	RankJ
	RankQ
	RankK
	RankA
)

// Ranks lists all ranks in ascending strength order.
var Ranks = [13]Rank{
	Rank2, Rank3, Rank4, Rank5, Rank6, Rank7, Rank8,
	Rank9, Rank10, RankJ, RankQ, RankK, RankA,
}

func (r Rank) String() string {
	switch r {
	case RankJ:
		return "J"
	case RankQ:
		return "Q"
	case RankK:
		return "K"
	case RankA:
		return "A"
	default:
		if r >= Rank2 && r <= Rank10 {
			return fmt.Sprintf("%d", int(r))
		}
		return "?"
	}
}

// MarshalJSON writes the rank as its document string ("2".."10", "J", ...).
func (r Rank) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON reads a rank from its document string.
func (r *Rank) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseRank(str)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRank converts a document string back into a Rank.
func ParseRank(s string) (Rank, error) {
	switch s {
	case "J":
		return RankJ, nil
	case "Q":
		return RankQ, nil
	case "K":
		return RankK, nil
	case "A":
		return RankA, nil
	}
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err == nil {
		r := Rank(n)
		if r >= Rank2 && r <= Rank10 {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown rank %q", s)
}

// Card is a playing card. ID is a stable identifier used by clients for
// keying and animation; gameplay comparisons never look at it.
type Card struct {
	Suit Suit   `json:"suit"`
	Rank Rank   `json:"rank"`
	ID   string `json:"id"`
}

func (c Card) String() string {
	return fmt.Sprintf("%s of %s", c.Rank, c.Suit)
}

// Phase identifies where the game state machine currently is.
type Phase string

const (
	PhaseBidding        Phase = "bidding"
	PhaseTrumpSelection Phase = "trumpSelection"
	PhasePlaying        Phase = "playing"
	PhaseTrickResult    Phase = "trickResult"
	PhaseRoundEnd       Phase = "roundEnd"
	PhaseGameOver       Phase = "gameOver"
)

// Difficulty selects how accurately an AI seat plays.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// BidUndeclared is the sentinel bid value for a seat that has not bid yet.
const BidUndeclared = -1

// PlayerState is one seat's state. Hand, Bid and TricksWon reset every
// round; Score accumulates for the whole game.
type PlayerState struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Hand         []Card     `json:"hand"`
	Bid          int        `json:"bid"`
	TricksWon    int        `json:"tricksWon"`
	Score        int        `json:"score"`
	IsAI         bool       `json:"isAI"`
	AIDifficulty Difficulty `json:"aiDifficulty,omitempty"`
	Connected    bool       `json:"connected"`
}

// HasBid reports whether this seat has declared a bid this round.
func (p *PlayerState) HasBid() bool { return p.Bid >= 0 }

// HoldsCard reports whether the hand contains the card with the given ID.
func (p *PlayerState) HoldsCard(cardID string) bool {
	for _, c := range p.Hand {
		if c.ID == cardID {
			return true
		}
	}
	return false
}

// HasSuit reports whether the hand contains at least one card of suit.
func (p *PlayerState) HasSuit(suit Suit) bool {
	for _, c := range p.Hand {
		if c.Suit == suit {
			return true
		}
	}
	return false
}

// PlayedCard is one card inside the current trick. Position is the 0-based
// play order; position 0 fixes the leading suit.
type PlayedCard struct {
	Card     Card   `json:"card"`
	PlayerID string `json:"playerId"`
	Position int    `json:"position"`
}

// GameState is the complete shared game document for one room. Transition
// functions never mutate their input; they return a fresh snapshot.
type GameState struct {
	RoomCode           string        `json:"roomCode"`
	HostID             string        `json:"hostId"`
	Phase              Phase         `json:"phase"`
	Players            []PlayerState `json:"players"`
	CurrentRound       int           `json:"currentRound"`
	CardsPerPlayer     int           `json:"cardsPerPlayer"`
	CurrentPlayerIndex int           `json:"currentPlayerIndex"`
	TrumpSuit          *Suit         `json:"trumpSuit"`
	LeadingSuit        *Suit         `json:"leadingSuit"`
	PlayedCards        []PlayedCard  `json:"playedCards"`
	HighestBidderID    string        `json:"highestBidderId,omitempty"`
	RoundStarterIndex  int           `json:"roundStarterIndex"`
	TrickWinnerID      string        `json:"trickWinnerId,omitempty"`
	TrickNumber        int           `json:"trickNumber"`
}

// Clone returns a deep copy. Slices are the only shared structure, so the
// copy re-allocates players, hands and the current trick.
func (g *GameState) Clone() GameState {
	out := *g
	out.Players = make([]PlayerState, len(g.Players))
	for i, p := range g.Players {
		out.Players[i] = p
		out.Players[i].Hand = append([]Card(nil), p.Hand...)
	}
	out.PlayedCards = append([]PlayedCard(nil), g.PlayedCards...)
	if g.TrumpSuit != nil {
		t := *g.TrumpSuit
		out.TrumpSuit = &t
	}
	if g.LeadingSuit != nil {
		l := *g.LeadingSuit
		out.LeadingSuit = &l
	}
	return out
}

// SeatOf returns the seat index for a player ID, or -1.
func (g *GameState) SeatOf(playerID string) int {
	for i := range g.Players {
		if g.Players[i].ID == playerID {
			return i
		}
	}
	return -1
}

func suitPtr(s Suit) *Suit { return &s }
