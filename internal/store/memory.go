package store

import (
	"context"
	"sync"

	"github.com/LuvJain/kingsir/engine"
)

// MemoryStore keeps game documents in process memory. Documents are held in
// their encoded form so reads exercise the same codec path as the Redis
// backend, including the empty-collection normalization.
type MemoryStore struct {
	mu     sync.Mutex
	docs   map[string][]byte
	subs   map[string]map[int]func(*engine.GameState)
	nextID int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string][]byte),
		subs: make(map[string]map[int]func(*engine.GameState)),
	}
}

// Publish replaces the room's document and notifies every subscriber. Each
// subscriber receives its own decoded copy.
func (s *MemoryStore) Publish(_ context.Context, roomCode string, state *engine.GameState) error {
	data, err := EncodeState(state)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.docs[roomCode] = data
	fns := s.snapshotSubs(roomCode)
	s.mu.Unlock()

	for _, fn := range fns {
		decoded, err := DecodeState(data)
		if err != nil {
			return err
		}
		fn(decoded)
	}
	return nil
}

// Load returns the room's current document, or ErrRoomNotFound.
func (s *MemoryStore) Load(_ context.Context, roomCode string) (*engine.GameState, error) {
	s.mu.Lock()
	data, ok := s.docs[roomCode]
	s.mu.Unlock()
	if !ok {
		return nil, ErrRoomNotFound
	}
	return DecodeState(data)
}

// Subscribe registers onChange and immediately delivers the current document
// (nil if the room has none yet).
func (s *MemoryStore) Subscribe(_ context.Context, roomCode string, onChange func(*engine.GameState)) (func(), error) {
	s.mu.Lock()
	if s.subs[roomCode] == nil {
		s.subs[roomCode] = make(map[int]func(*engine.GameState))
	}
	id := s.nextID
	s.nextID++
	s.subs[roomCode][id] = onChange
	data, ok := s.docs[roomCode]
	s.mu.Unlock()

	if ok {
		decoded, err := DecodeState(data)
		if err != nil {
			return nil, err
		}
		onChange(decoded)
	} else {
		onChange(nil)
	}

	unsubscribe := func() {
		s.mu.Lock()
		delete(s.subs[roomCode], id)
		s.mu.Unlock()
	}
	return unsubscribe, nil
}

// Delete removes the room's document and notifies subscribers with nil.
func (s *MemoryStore) Delete(_ context.Context, roomCode string) error {
	s.mu.Lock()
	delete(s.docs, roomCode)
	fns := s.snapshotSubs(roomCode)
	s.mu.Unlock()

	for _, fn := range fns {
		fn(nil)
	}
	return nil
}

// snapshotSubs copies the subscriber list so callbacks run without the lock.
// Caller must hold s.mu.
func (s *MemoryStore) snapshotSubs(roomCode string) []func(*engine.GameState) {
	fns := make([]func(*engine.GameState), 0, len(s.subs[roomCode]))
	for _, fn := range s.subs[roomCode] {
		fns = append(fns, fn)
	}
	return fns
}
