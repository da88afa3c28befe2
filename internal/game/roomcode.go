package game

import "math/rand"

// roomCodeCharset omits the lookalike characters 0, O, 1 and I.
const roomCodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const roomCodeLength = 6

// NewRoomCode generates a shareable room code.
func NewRoomCode(rng *rand.Rand) string {
	buf := make([]byte, roomCodeLength)
	for i := range buf {
		buf[i] = roomCodeCharset[rng.Intn(len(roomCodeCharset))]
	}
	return string(buf)
}
