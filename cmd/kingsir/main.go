// Command kingsir runs a headless Kingsir table: one locally scripted seat
// plus AI opponents, coordinated through the shared store exactly as a real
// multi-client room would be. Useful for soak-testing the rules and the
// turn coordination without a UI.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/LuvJain/kingsir/engine"
	"github.com/LuvJain/kingsir/engine/ai"
	"github.com/LuvJain/kingsir/internal/config"
	"github.com/LuvJain/kingsir/internal/game"
	"github.com/LuvJain/kingsir/internal/store"
)

func main() {
	cfg := config.Load()

	log := logrus.New()
	log.SetLevel(cfg.LogLevel)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("kingsir exited with error")
	}
}

func run(cfg config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	log.WithField("seed", seed).Info("starting table")

	st, err := buildStore(cfg, log)
	if err != nil {
		return err
	}

	if cfg.Players < engine.MinPlayers || cfg.Players > engine.MaxPlayers {
		return fmt.Errorf("KINGSIR_PLAYERS must be %d-%d, got %d", engine.MinPlayers, engine.MaxPlayers, cfg.Players)
	}

	roomCode := game.NewRoomCode(rng)
	hostID := "local-player"
	seats := []engine.Seat{{ID: hostID, Name: "You"}}
	difficulties := []engine.Difficulty{engine.DifficultyEasy, engine.DifficultyMedium, engine.DifficultyHard}
	for i := 1; i < cfg.Players; i++ {
		d := difficulties[(i-1)%len(difficulties)]
		seats = append(seats, engine.Seat{
			ID:           fmt.Sprintf("ai-%d", i),
			Name:         fmt.Sprintf("Bot %d (%s)", i, d),
			IsAI:         true,
			AIDifficulty: d,
		})
	}

	if _, err := game.Start(ctx, st, roomCode, hostID, seats, rng); err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	log.WithFields(logrus.Fields{"room": roomCode, "players": cfg.Players}).Info("room created")

	clientCfg := game.Config{
		ThinkDelayMin:    cfg.ThinkDelayMin,
		ThinkDelayMax:    cfg.ThinkDelayMax,
		TrickResultDelay: cfg.TrickResultDelay,
	}
	client := game.NewClient(st, roomCode, hostID, clientCfg, logrus.NewEntry(log), rand.New(rand.NewSource(rng.Int63())))

	// State updates arrive on the subscription goroutine, sometimes
	// synchronously from our own Publish. Bounce them through a channel so
	// the scripted seat never acts from inside a store callback.
	updates := make(chan *engine.GameState, 64)
	client.OnState = func(s *engine.GameState) {
		select {
		case updates <- s:
		default:
		}
	}

	runErr := make(chan error, 1)
	go func() { runErr <- client.Run(ctx) }()

	scriptRNG := rand.New(rand.NewSource(rng.Int63()))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-runErr:
			return err
		case state := <-updates:
			if state == nil {
				continue
			}
			if state.Phase == engine.PhaseGameOver {
				printStandings(log, state)
				return st.Delete(context.Background(), roomCode)
			}
			if err := actForLocalSeat(ctx, client, state, hostID, scriptRNG); err != nil {
				log.WithError(err).Debug("scripted action rejected")
			}
		}
	}
}

// actForLocalSeat plays the host's seat with the medium heuristic whenever
// the shared state says it is this seat's turn. Rejections are expected
// when a stale update races a newer one; the next update retries.
func actForLocalSeat(ctx context.Context, client *game.Client, state *engine.GameState, playerID string, rng *rand.Rand) error {
	seat := state.SeatOf(playerID)
	if seat < 0 {
		return nil
	}
	me := state.Players[seat]

	switch state.Phase {
	case engine.PhaseBidding:
		if acting, ok := engine.ActingSeat(*state); !ok || acting != seat {
			return nil
		}
		total, declared := 0, 0
		for _, p := range state.Players {
			if p.HasBid() {
				total += p.Bid
				declared++
			}
		}
		last := declared == len(state.Players)-1
		bid := ai.Bid(me.Hand, state.CardsPerPlayer, total, last, engine.DifficultyMedium, rng)
		if legal := engine.ValidBids(*state, seat); len(legal) > 0 && engine.ValidateBid(*state, seat, bid) != nil {
			bid = legal[0]
		}
		return client.SubmitBid(ctx, bid)

	case engine.PhaseTrumpSelection:
		if state.HighestBidderID != playerID {
			return nil
		}
		return client.SelectTrump(ctx, ai.SelectTrump(me.Hand, engine.DifficultyMedium, rng))

	case engine.PhasePlaying:
		if acting, ok := engine.ActingSeat(*state); !ok || acting != seat {
			return nil
		}
		card := ai.PlayCard(me.Hand, state.PlayedCards, state.LeadingSuit, state.TrumpSuit, me.Bid, me.TricksWon, engine.DifficultyMedium, rng)
		return client.PlayCard(ctx, card)

	case engine.PhaseRoundEnd:
		return client.StartNextRound(ctx)
	}
	return nil
}

func printStandings(log *logrus.Logger, state *engine.GameState) {
	players := append([]engine.PlayerState(nil), state.Players...)
	sort.Slice(players, func(i, j int) bool { return players[i].Score > players[j].Score })
	for rank, p := range players {
		log.WithFields(logrus.Fields{
			"rank":  rank + 1,
			"name":  p.Name,
			"score": p.Score,
		}).Info("final standing")
	}
}

func buildStore(cfg config.Config, log *logrus.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		log.WithField("addr", cfg.RedisAddr).Info("using redis store")
		return store.NewRedisStore(client, logrus.NewEntry(log)), nil
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
