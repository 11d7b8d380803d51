package random

import (
	"math/rand"
)

// codeAlphabet excludes glyphs that read alike when a code is shared
// aloud or on a screen: 0/O and 1/I are out.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const CodeLength = 6

// NewRoomCode returns a 6-character room code. Uniqueness is the
// caller's problem; retry on collision. Draws from the locked top-level
// source; create requests run concurrently.
func NewRoomCode() string {
	b := make([]byte, CodeLength)

	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}

	return string(b)
}
