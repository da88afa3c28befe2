// Package store provides the shared game-document store: one mutable
// GameState per room code, with whole-document writes and change fan-out to
// subscribers. Two backends exist: an in-memory store for tests and local
// play, and a Redis store for real multi-process rooms.
package store

import (
	"context"
	"errors"

	"github.com/LuvJain/kingsir/engine"
)

// ErrRoomNotFound is returned when no game document exists for a room code.
var ErrRoomNotFound = errors.New("room no longer exists")

// Store is the shared-store adapter consumed by the turn coordinator.
//
// Subscribe delivers the current document immediately (nil if absent), then
// every subsequent write. A nil state passed to onChange after a non-nil one
// means the room was deleted. The returned function cancels the
// subscription. Writers always replace the whole document; there are no
// partial updates.
type Store interface {
	Publish(ctx context.Context, roomCode string, state *engine.GameState) error
	Load(ctx context.Context, roomCode string) (*engine.GameState, error)
	Subscribe(ctx context.Context, roomCode string, onChange func(*engine.GameState)) (func(), error)
	Delete(ctx context.Context, roomCode string) error
}
