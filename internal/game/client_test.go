package game

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LuvJain/kingsir/engine"
	"github.com/LuvJain/kingsir/engine/ai"
	"github.com/LuvJain/kingsir/internal/store"
)

func testSeats() []engine.Seat {
	return []engine.Seat{
		{ID: "human", Name: "You"},
		{ID: "ai-1", Name: "Bot 1", IsAI: true, AIDifficulty: engine.DifficultyEasy},
		{ID: "ai-2", Name: "Bot 2", IsAI: true, AIDifficulty: engine.DifficultyMedium},
		{ID: "ai-3", Name: "Bot 3", IsAI: true, AIDifficulty: engine.DifficultyHard},
	}
}

// fastConfig removes all pacing so tests run at full speed.
func fastConfig() Config {
	return Config{}
}

func TestFenceMatches(t *testing.T) {
	g := &engine.GameState{Phase: engine.PhasePlaying, CurrentPlayerIndex: 2, TrickNumber: 5}
	token := captureFence(g)
	assert.True(t, token.matches(g))

	moved := g.Clone()
	moved.CurrentPlayerIndex = 3
	assert.False(t, token.matches(&moved))

	advanced := g.Clone()
	advanced.TrickNumber = 6
	assert.False(t, token.matches(&advanced))

	shifted := g.Clone()
	shifted.Phase = engine.PhaseTrickResult
	assert.False(t, token.matches(&shifted))

	assert.False(t, token.matches(nil))
}

func TestNewRoomCode(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code := NewRoomCode(rng)
		require.Len(t, code, roomCodeLength)
		for _, r := range code {
			assert.Contains(t, roomCodeCharset, string(r))
		}
		assert.NotContains(t, code, "O")
		assert.NotContains(t, code, "0")
		seen[code] = true
	}
	assert.Greater(t, len(seen), 90, "codes should rarely collide")
}

func TestStartPublishesInitialState(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	state, err := Start(ctx, st, "ROOM42", "human", testSeats(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, engine.PhaseBidding, state.Phase)

	loaded, err := st.Load(ctx, "ROOM42")
	require.NoError(t, err)
	assert.Equal(t, "ROOM42", loaded.RoomCode)
	assert.Len(t, loaded.Players, 4)
}

func TestHumanActionsValidateAgainstLatest(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	c := NewClient(st, "ROOM", "human", fastConfig(), nil, rand.New(rand.NewSource(1)))

	// No state observed yet.
	assert.ErrorIs(t, c.SubmitBid(ctx, 2), ErrNoGame)

	state, err := Start(ctx, st, "ROOM", "human", testSeats(), rand.New(rand.NewSource(2)))
	require.NoError(t, err)

	c.mu.Lock()
	c.latest = state
	c.seen = true
	c.mu.Unlock()

	humanSeat := state.SeatOf("human")
	if state.CurrentPlayerIndex != humanSeat {
		// Not our turn: any bid must be rejected and nothing published.
		err := c.SubmitBid(ctx, 2)
		assert.ErrorIs(t, err, engine.ErrNotYourTurn)
	} else {
		require.NoError(t, c.SubmitBid(ctx, 2))
		loaded, err := st.Load(ctx, "ROOM")
		require.NoError(t, err)
		assert.Equal(t, 2, loaded.Players[humanSeat].Bid)
	}
}

func TestSelectTrumpRequiresHighestBidder(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	c := NewClient(st, "ROOM", "human", fastConfig(), nil, rand.New(rand.NewSource(1)))

	state, err := Start(ctx, st, "ROOM", "human", testSeats(), rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	trumpPhase := state.Clone()
	trumpPhase.Phase = engine.PhaseTrumpSelection
	trumpPhase.HighestBidderID = "ai-2"
	for i := range trumpPhase.Players {
		trumpPhase.Players[i].Bid = 1
	}

	c.mu.Lock()
	c.latest = &trumpPhase
	c.seen = true
	c.mu.Unlock()

	err = c.SelectTrump(ctx, engine.SuitHearts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "highest bidder")
}

// TestPublishAIMoveFencedOff: an AI move computed against a stale snapshot
// must not be published once the observed state has moved on.
func TestPublishAIMoveFencedOff(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	state, err := Start(ctx, st, "ROOM", "human", testSeats(), rand.New(rand.NewSource(4)))
	require.NoError(t, err)

	// A long think delay parks the retry the abort path schedules, keeping
	// the store untouched for the duration of the test.
	cfg := Config{ThinkDelayMin: time.Hour, ThinkDelayMax: time.Hour}
	c := NewClient(st, "ROOM", "human", cfg, nil, rand.New(rand.NewSource(5)))

	// The client has already seen a newer state than the snapshot the move
	// was computed from. Its acting seat is the human, so the abort path
	// schedules no further AI work.
	newer := state.Clone()
	newer.CurrentPlayerIndex = state.SeatOf("human")
	newer.TrickNumber++
	c.mu.Lock()
	c.latest = &newer
	c.seen = true
	c.aiBusy = true
	c.mu.Unlock()

	staleToken := captureFence(state)
	snapshot := state.Clone()
	aiSeat := -1
	for i, p := range state.Players {
		if p.IsAI {
			aiSeat = i
			break
		}
	}
	snapshot.CurrentPlayerIndex = aiSeat
	c.publishAIMove(&snapshot, aiSeat, staleToken, rand.New(rand.NewSource(6)))

	// The losing writer must leave the store untouched.
	loaded, err := st.Load(ctx, "ROOM")
	require.NoError(t, err)
	assert.Equal(t, *state, *loaded)

	c.mu.Lock()
	assert.False(t, c.aiBusy, "busy flag released after a lost race")
	c.mu.Unlock()
}

// TestPublishAIMoveWinsRace: with a matching fence the move is published.
func TestPublishAIMoveWinsRace(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	state, err := Start(ctx, st, "ROOM", "human", testSeats(), rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	aiSeat := state.CurrentPlayerIndex
	if !state.Players[aiSeat].IsAI {
		// Force an AI to act first for this test.
		moved := state.Clone()
		moved.CurrentPlayerIndex = state.SeatOf("ai-1")
		require.NoError(t, st.Publish(ctx, "ROOM", &moved))
		state = &moved
		aiSeat = state.CurrentPlayerIndex
	}

	c := NewClient(st, "ROOM", "human", fastConfig(), nil, rand.New(rand.NewSource(8)))
	c.mu.Lock()
	c.latest = state
	c.seen = true
	c.aiBusy = true
	c.mu.Unlock()

	snapshot := state.Clone()
	c.publishAIMove(&snapshot, aiSeat, captureFence(state), rand.New(rand.NewSource(9)))

	loaded, err := st.Load(ctx, "ROOM")
	require.NoError(t, err)
	assert.True(t, loaded.Players[aiSeat].HasBid(), "AI bid recorded")
}

func TestRunReportsRoomDeletion(t *testing.T) {
	st := store.NewMemoryStore()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := Start(ctx, st, "ROOM", "human", testSeats(), rand.New(rand.NewSource(10)))
	require.NoError(t, err)

	// A think delay far beyond the test's lifetime keeps AI moves parked.
	cfg := Config{ThinkDelayMin: time.Hour, ThinkDelayMax: time.Hour}
	c := NewClient(st, "ROOM", "human", cfg, nil, rand.New(rand.NewSource(11)))

	errCh := make(chan error, 1)
	go func() { errCh <- c.Run(ctx) }()

	// Wait for the subscription to deliver the current state.
	require.Eventually(t, func() bool { return c.State() != nil }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, st.Delete(ctx, "ROOM"))

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrRoomClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after room deletion")
	}
}

// TestFullGameCoordinated runs an entire game through the coordinator: one
// scripted human seat, three AI seats, all pacing removed. Every transition
// flows through the shared store.
func TestFullGameCoordinated(t *testing.T) {
	st := store.NewMemoryStore()
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	_, err := Start(ctx, st, "ROOM", "human", testSeats(), rand.New(rand.NewSource(20)))
	require.NoError(t, err)

	c := NewClient(st, "ROOM", "human", fastConfig(), nil, rand.New(rand.NewSource(21)))
	go c.Run(ctx)

	scriptRNG := rand.New(rand.NewSource(22))
	deadline := time.After(55 * time.Second)
	for {
		select {
		case <-deadline:
			state := c.State()
			t.Fatalf("game did not finish; stuck in phase %v", state)
		default:
		}

		state := c.State()
		if state == nil {
			time.Sleep(time.Millisecond)
			continue
		}
		if state.Phase == engine.PhaseGameOver {
			assert.Equal(t, engine.TotalRounds(4), state.CurrentRound)
			for _, p := range state.Players {
				assert.GreaterOrEqual(t, p.Score, 0)
				assert.Empty(t, p.Hand)
			}
			return
		}

		// Drive the human seat; stale-state rejections are expected and
		// retried on the next observation.
		_ = actHumanSeat(ctx, c, state, scriptRNG)
		time.Sleep(time.Millisecond)
	}
}

func actHumanSeat(ctx context.Context, c *Client, state *engine.GameState, rng *rand.Rand) error {
	seat := state.SeatOf("human")
	me := state.Players[seat]

	switch state.Phase {
	case engine.PhaseBidding:
		if acting, ok := engine.ActingSeat(*state); ok && acting == seat {
			legal := engine.ValidBids(*state, seat)
			return c.SubmitBid(ctx, legal[rng.Intn(len(legal))])
		}
	case engine.PhaseTrumpSelection:
		if state.HighestBidderID == "human" {
			return c.SelectTrump(ctx, ai.SelectTrump(me.Hand, engine.DifficultyMedium, rng))
		}
	case engine.PhasePlaying:
		if acting, ok := engine.ActingSeat(*state); ok && acting == seat {
			legal := engine.PlayableCards(me.Hand, state.LeadingSuit)
			return c.PlayCard(ctx, legal[rng.Intn(len(legal))])
		}
	case engine.PhaseRoundEnd:
		return c.StartNextRound(ctx)
	}
	return nil
}

func TestIsMyTurn(t *testing.T) {
	st := store.NewMemoryStore()
	c := NewClient(st, "ROOM", "human", fastConfig(), nil, rand.New(rand.NewSource(30)))
	assert.False(t, c.IsMyTurn())

	state, err := Start(context.Background(), st, "ROOM", "human", testSeats(), rand.New(rand.NewSource(31)))
	require.NoError(t, err)
	c.mu.Lock()
	c.latest = state
	c.seen = true
	c.mu.Unlock()

	want := state.Players[state.CurrentPlayerIndex].ID == "human"
	assert.Equal(t, want, c.IsMyTurn())
	assert.Equal(t, state.SeatOf("human"), c.Seat())
}
