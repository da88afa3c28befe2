package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/LuvJain/kingsir/engine"
)

// RedisStore keeps each room's game document at a Redis key and fans out
// writes over a per-room pub/sub channel. Deletion is announced with a null
// tombstone so subscribers observe the room disappearing.
type RedisStore struct {
	client *redis.Client
	log    *logrus.Entry
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client *redis.Client, log *logrus.Entry) *RedisStore {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &RedisStore{client: client, log: log}
}

func stateKey(roomCode string) string     { return "kingsir:gamestate:" + roomCode }
func eventChannel(roomCode string) string { return "kingsir:events:" + roomCode }

// Publish stores the document and announces it on the room channel.
func (s *RedisStore) Publish(ctx context.Context, roomCode string, state *engine.GameState) error {
	data, err := EncodeState(state)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, stateKey(roomCode), data, 0)
	pipe.Publish(ctx, eventChannel(roomCode), data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish game state for room %s: %w", roomCode, err)
	}
	return nil
}

// Load fetches and decodes the room's current document.
func (s *RedisStore) Load(ctx context.Context, roomCode string) (*engine.GameState, error) {
	data, err := s.client.Get(ctx, stateKey(roomCode)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load game state for room %s: %w", roomCode, err)
	}
	return DecodeState(data)
}

// Subscribe delivers the current document, then every published change, on a
// dedicated goroutine until the returned cancel function is called.
func (s *RedisStore) Subscribe(ctx context.Context, roomCode string, onChange func(*engine.GameState)) (func(), error) {
	pubsub := s.client.Subscribe(ctx, eventChannel(roomCode))
	// Force the subscription onto the wire before the initial read, so no
	// write can slip between them unobserved.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe to room %s: %w", roomCode, err)
	}

	current, err := s.Load(ctx, roomCode)
	if err != nil && !errors.Is(err, ErrRoomNotFound) {
		pubsub.Close()
		return nil, err
	}
	onChange(current)

	go func() {
		for msg := range pubsub.Channel() {
			state, err := DecodeState([]byte(msg.Payload))
			if err != nil {
				s.log.WithError(err).WithField("room", roomCode).Warn("dropping undecodable game state update")
				continue
			}
			onChange(state)
		}
	}()

	return func() { pubsub.Close() }, nil
}

// Delete removes the document and publishes a tombstone.
func (s *RedisStore) Delete(ctx context.Context, roomCode string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, stateKey(roomCode))
	pipe.Publish(ctx, eventChannel(roomCode), tombstone)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete room %s: %w", roomCode, err)
	}
	return nil
}
