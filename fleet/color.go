package fleet

import (
	"crypto/rand"
	"fmt"
)

// randomColor returns a random hex color in the upper range used by the
// reference dashboard palette (avoiding near-black colors that don't read
// well against a dark background).
func randomColor() string {
	var b [3]byte
	_, _ = rand.Read(b[:])
	v := 0x444444 + int(b[0])<<16 + int(b[1])<<8 + int(b[2])
	if v > 0xFFFFFF {
		v = 0xFFFFFF
	}
	return fmt.Sprintf("#%06x", v)
}
