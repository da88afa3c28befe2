package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/LuvJain/kingsir/engine"
)

// tombstone marks a deleted room on the change channel.
var tombstone = []byte("null")

// EncodeState serializes a game document. Empty hands and an empty trick are
// written as empty arrays, never dropped, so every reader sees the same
// shape regardless of backend.
func EncodeState(state *engine.GameState) ([]byte, error) {
	if state == nil {
		return append([]byte(nil), tombstone...), nil
	}
	snapshot := state.Clone()
	Normalize(&snapshot)
	data, err := json.Marshal(&snapshot)
	if err != nil {
		return nil, fmt.Errorf("encode game state: %w", err)
	}
	return data, nil
}

// DecodeState parses a game document and normalizes collections, so the
// engine never observes a missing-vs-empty ambiguity even when the document
// was written by a backend that collapses empty sequences to absent fields.
// A JSON null decodes to nil (room deleted).
func DecodeState(data []byte) (*engine.GameState, error) {
	if len(data) == 0 || bytes.Equal(bytes.TrimSpace(data), tombstone) {
		return nil, nil
	}
	var state engine.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode game state: %w", err)
	}
	Normalize(&state)
	return &state, nil
}

// Normalize rewrites nil collections as empty ones in place.
func Normalize(g *engine.GameState) {
	if g.Players == nil {
		g.Players = []engine.PlayerState{}
	}
	for i := range g.Players {
		if g.Players[i].Hand == nil {
			g.Players[i].Hand = []engine.Card{}
		}
	}
	if g.PlayedCards == nil {
		g.PlayedCards = []engine.PlayedCard{}
	}
}
