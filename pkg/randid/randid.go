// Package randid generates short random identifiers.
package randid

import (
	"math/rand/v2"
	"strconv"
	"time"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Generate returns a random string of length n drawn from [a-z0-9].
func Generate(n int) string {
	if n <= 0 {
		return ""
	}

	out := make([]byte, n)
	for i := range out {
		out[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return string(out)
}

// Timed returns the base-36 Unix millisecond timestamp of t followed by n
// random characters. IDs from the same process sort roughly by creation.
func Timed(t time.Time, n int) string {
	return strconv.FormatInt(t.UnixMilli(), 36) + Generate(n)
}
