// Package game runs the client side of a Kingsir room: it mirrors the
// shared game document, validates and publishes the local player's actions,
// and cooperatively drives AI seats under an optimistic race guard. There is
// no authoritative server process; every connected human client runs one of
// these and the store is the only point of coordination.
package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/LuvJain/kingsir/engine"
	"github.com/LuvJain/kingsir/engine/ai"
	"github.com/LuvJain/kingsir/internal/store"
)

// ErrRoomClosed reports that the shared game document disappeared.
var ErrRoomClosed = errors.New("room no longer exists")

// ErrNoGame reports an action attempted before any game state was observed.
var ErrNoGame = errors.New("no game in progress")

// Config controls the coordinator's pacing.
type Config struct {
	// ThinkDelayMin/Max bound the randomized "thinking" pause before an AI
	// move is computed and published. The jitter also spaces out competing
	// writers.
	ThinkDelayMin time.Duration
	ThinkDelayMax time.Duration
	// TrickResultDelay is how long the resolved trick stays on display
	// before any client auto-advances the game.
	TrickResultDelay time.Duration
}

// DefaultConfig paces AI opponents like human players.
func DefaultConfig() Config {
	return Config{
		ThinkDelayMin:    500 * time.Millisecond,
		ThinkDelayMax:    1500 * time.Millisecond,
		TrickResultDelay: 3 * time.Second,
	}
}

// fence is the fencing token guarding optimistic writes: a snapshot of the
// fields that change on every meaningful transition. A writer captures it
// before its delay and aborts the publish if the latest observed state no
// longer matches.
type fence struct {
	phase         engine.Phase
	currentPlayer int
	trick         int
}

func captureFence(g *engine.GameState) fence {
	return fence{phase: g.Phase, currentPlayer: g.CurrentPlayerIndex, trick: g.TrickNumber}
}

func (f fence) matches(g *engine.GameState) bool {
	return g != nil && captureFence(g) == f
}

// Client is one player's connection to a room.
type Client struct {
	store    store.Store
	roomCode string
	playerID string
	cfg      Config
	log      *logrus.Entry

	mu            sync.Mutex
	latest        *engine.GameState
	seen          bool // ever observed a state for this room
	aiBusy        bool // an AI move is being thought about
	resultPending bool // an auto-advance out of trickResult is scheduled
	rng           *rand.Rand
	closed        bool
	done          chan struct{}
	runErr        error

	// OnState, if set, observes every state update (nil on room deletion).
	// It is called outside the client's lock.
	OnState func(*engine.GameState)
}

// NewClient creates a client for the given room and player. The rng seeds
// AI decisions and pacing jitter; pass a seeded source for reproducibility.
func NewClient(st store.Store, roomCode, playerID string, cfg Config, log *logrus.Entry, rng *rand.Rand) *Client {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Client{
		store:    st,
		roomCode: roomCode,
		playerID: playerID,
		cfg:      cfg,
		log:      log.WithFields(logrus.Fields{"room": roomCode, "player": playerID}),
		rng:      rng,
		done:     make(chan struct{}),
	}
}

// Start creates the initial game state for a room and publishes it.
// The entry point for the host once the lobby has 3-6 seats.
func Start(ctx context.Context, st store.Store, roomCode, hostID string, seats []engine.Seat, rng *rand.Rand) (*engine.GameState, error) {
	state, err := engine.New(roomCode, hostID, seats, rng)
	if err != nil {
		return nil, err
	}
	if err := st.Publish(ctx, roomCode, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Run subscribes to the room and blocks until the context is cancelled or
// the room is deleted.
func (c *Client) Run(ctx context.Context) error {
	unsubscribe, err := c.store.Subscribe(ctx, c.roomCode, c.handleUpdate)
	if err != nil {
		return err
	}
	defer unsubscribe()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.runErr
	}
}

// handleUpdate is the subscription callback: refresh the local mirror, then
// decide whether this client owes the room any work.
func (c *Client) handleUpdate(state *engine.GameState) {
	c.mu.Lock()
	if state == nil {
		wasSeen := c.seen
		c.latest = nil
		if wasSeen && !c.closed {
			// The document existed and is gone: terminal for this client.
			c.closed = true
			c.runErr = ErrRoomClosed
			close(c.done)
		}
		c.mu.Unlock()
		if c.OnState != nil {
			c.OnState(nil)
		}
		return
	}
	c.seen = true
	c.latest = state
	if state.Phase != engine.PhaseTrickResult {
		c.resultPending = false
	}
	c.mu.Unlock()

	if c.OnState != nil {
		c.OnState(state)
	}
	c.maybeDriveAI(state)
	c.maybeScheduleAdvance(state)
}

// humanSeat returns this client's seat if it is human-controlled, else -1.
// AI moves are only ever driven by human clients, so an AI-controlled
// process never cascades moves for other seats.
func (c *Client) humanSeat(state *engine.GameState) int {
	seat := state.SeatOf(c.playerID)
	if seat < 0 || state.Players[seat].IsAI {
		return -1
	}
	return seat
}

// maybeDriveAI schedules an AI move when the seat due to act is an AI.
func (c *Client) maybeDriveAI(state *engine.GameState) {
	if c.humanSeat(state) < 0 {
		return
	}
	actingSeat, ok := engine.ActingSeat(*state)
	if !ok || !state.Players[actingSeat].IsAI {
		return
	}

	c.mu.Lock()
	if c.aiBusy || c.closed {
		c.mu.Unlock()
		return
	}
	c.aiBusy = true
	delay := c.thinkDelayLocked()
	moveSeed := c.rng.Int63()
	c.mu.Unlock()

	token := captureFence(state)
	snapshot := state.Clone()
	time.AfterFunc(delay, func() {
		c.publishAIMove(&snapshot, actingSeat, token, rand.New(rand.NewSource(moveSeed)))
	})
}

// thinkDelayLocked draws a randomized thinking delay. Caller holds c.mu.
func (c *Client) thinkDelayLocked() time.Duration {
	spread := c.cfg.ThinkDelayMax - c.cfg.ThinkDelayMin
	if spread <= 0 {
		return c.cfg.ThinkDelayMin
	}
	return c.cfg.ThinkDelayMin + time.Duration(c.rng.Int63n(int64(spread)))
}

// publishAIMove computes the AI's decision from the captured snapshot, then
// re-checks the fencing token against the freshest observed state. A
// mismatch means another client already advanced the game; losing the race
// is the expected outcome for all but one writer, so it is a silent no-op.
func (c *Client) publishAIMove(snapshot *engine.GameState, seat int, token fence, rng *rand.Rand) {
	next, err := c.computeAIMove(snapshot, seat, rng)
	if err != nil {
		c.mu.Lock()
		c.aiBusy = false
		c.mu.Unlock()
		c.log.WithError(err).WithField("seat", seat).Error("AI move computation failed")
		return
	}

	c.mu.Lock()
	if c.closed || !token.matches(c.latest) {
		latest := c.latest
		c.aiBusy = false
		c.mu.Unlock()
		c.log.WithField("seat", seat).Debug("AI move fenced off; another client advanced the game")
		// The update that moved the fence was observed while this move was
		// pending, so re-evaluate whether an AI seat is still due.
		if latest != nil {
			c.maybeDriveAI(latest)
		}
		return
	}
	// Clear the busy flag before publishing: the store may deliver the
	// resulting update synchronously, and that update must be free to
	// schedule the next AI turn.
	c.aiBusy = false
	c.mu.Unlock()

	if err := c.store.Publish(context.Background(), c.roomCode, &next); err != nil {
		c.log.WithError(err).Warn("failed to publish AI move")
	}
}

// computeAIMove produces the next state for an AI seat in the bidding,
// trumpSelection or playing phase.
func (c *Client) computeAIMove(state *engine.GameState, seat int, rng *rand.Rand) (engine.GameState, error) {
	player := state.Players[seat]
	difficulty := player.AIDifficulty
	if difficulty == "" {
		difficulty = engine.DifficultyMedium
	}

	switch state.Phase {
	case engine.PhaseBidding:
		totalSoFar, declared := 0, 0
		for _, p := range state.Players {
			if p.HasBid() {
				totalSoFar += p.Bid
				declared++
			}
		}
		lastBidder := declared == len(state.Players)-1
		bid := ai.Bid(player.Hand, state.CardsPerPlayer, totalSoFar, lastBidder, difficulty, rng)
		if engine.ValidateBid(*state, seat, bid) != nil {
			// The estimate can still trip the last-bidder rule after a lost
			// race; fall back to the lowest legal bid rather than stall.
			legal := engine.ValidBids(*state, seat)
			if len(legal) == 0 {
				return engine.GameState{}, fmt.Errorf("no legal bid for seat %d", seat)
			}
			bid = legal[0]
		}
		return engine.SubmitBid(*state, seat, bid)

	case engine.PhaseTrumpSelection:
		suit := ai.SelectTrump(player.Hand, difficulty, rng)
		return engine.SelectTrump(*state, suit)

	case engine.PhasePlaying:
		card := ai.PlayCard(player.Hand, state.PlayedCards, state.LeadingSuit, state.TrumpSuit, player.Bid, player.TricksWon, difficulty, rng)
		return engine.PlayCard(*state, seat, card)

	default:
		return engine.GameState{}, fmt.Errorf("no AI move in phase %s", state.Phase)
	}
}

// maybeScheduleAdvance arms the delayed transition out of trickResult.
// Every human client races to perform it; the fencing token lets exactly
// one writer take effect.
func (c *Client) maybeScheduleAdvance(state *engine.GameState) {
	if state.Phase != engine.PhaseTrickResult || c.humanSeat(state) < 0 {
		return
	}

	c.mu.Lock()
	if c.resultPending || c.closed {
		c.mu.Unlock()
		return
	}
	c.resultPending = true
	c.mu.Unlock()

	token := captureFence(state)
	time.AfterFunc(c.cfg.TrickResultDelay, func() {
		c.autoAdvance(token)
	})
}

// autoAdvance fires after the trick display delay.
func (c *Client) autoAdvance(token fence) {
	c.mu.Lock()
	c.resultPending = false
	latest := c.latest
	if c.closed || !token.matches(latest) || latest.TrickWinnerID == "" {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	next, err := engine.AdvanceAfterTrick(*latest)
	if err != nil {
		// Raced: someone advanced between the fence check and here.
		return
	}
	if err := c.store.Publish(context.Background(), c.roomCode, &next); err != nil {
		c.log.WithError(err).Warn("failed to publish trick advance")
	}
}

// State returns the latest observed game state, or nil.
func (c *Client) State() *engine.GameState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest
}

// Seat returns this client's seat index in the latest state, or -1.
func (c *Client) Seat() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.latest == nil {
		return -1
	}
	return c.latest.SeatOf(c.playerID)
}

// IsMyTurn reports whether this client's player is the acting seat.
func (c *Client) IsMyTurn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.latest == nil {
		return false
	}
	seat, ok := engine.ActingSeat(*c.latest)
	return ok && c.latest.Players[seat].ID == c.playerID
}

// currentState fetches the mirror for a human action.
func (c *Client) currentState() (*engine.GameState, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.latest == nil {
		return nil, -1, ErrNoGame
	}
	return c.latest, c.latest.SeatOf(c.playerID), nil
}

// SubmitBid declares this player's bid for the round.
func (c *Client) SubmitBid(ctx context.Context, bid int) error {
	state, seat, err := c.currentState()
	if err != nil {
		return err
	}
	next, err := engine.SubmitBid(*state, seat, bid)
	if err != nil {
		return err
	}
	return c.store.Publish(ctx, c.roomCode, &next)
}

// SelectTrump sets the trump suit; only the highest bidder may call it.
func (c *Client) SelectTrump(ctx context.Context, suit engine.Suit) error {
	state, _, err := c.currentState()
	if err != nil {
		return err
	}
	if state.HighestBidderID != c.playerID {
		return errors.New("only the highest bidder selects trump")
	}
	next, err := engine.SelectTrump(*state, suit)
	if err != nil {
		return err
	}
	return c.store.Publish(ctx, c.roomCode, &next)
}

// PlayCard plays a card from this player's hand.
func (c *Client) PlayCard(ctx context.Context, card engine.Card) error {
	state, seat, err := c.currentState()
	if err != nil {
		return err
	}
	next, err := engine.PlayCard(*state, seat, card)
	if err != nil {
		return err
	}
	return c.store.Publish(ctx, c.roomCode, &next)
}

// AcknowledgeResult leaves the trickResult phase ahead of the automatic
// timer. Safe to race with the timer: the engine rejects the second call.
func (c *Client) AcknowledgeResult(ctx context.Context) error {
	state, _, err := c.currentState()
	if err != nil {
		return err
	}
	next, err := engine.AdvanceAfterTrick(*state)
	if err != nil {
		return err
	}
	return c.store.Publish(ctx, c.roomCode, &next)
}

// StartNextRound deals the next round after roundEnd. On a finished game it
// is a no-op.
func (c *Client) StartNextRound(ctx context.Context) error {
	state, _, err := c.currentState()
	if err != nil {
		return err
	}
	if state.Phase == engine.PhaseGameOver {
		return nil
	}
	c.mu.Lock()
	seed := c.rng.Int63()
	c.mu.Unlock()
	next, err := engine.StartNextRound(*state, rand.New(rand.NewSource(seed)))
	if err != nil {
		return err
	}
	return c.store.Publish(ctx, c.roomCode, &next)
}
