package sweep

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type countingPurger struct {
	calls atomic.Int32
	err   error
}

func (p *countingPurger) PurgeExpired(context.Context) (int, error) {
	p.calls.Add(1)
	return 1, p.err
}

func TestStart_PurgesUntilCancelled(t *testing.T) {
	for _, err := range []error{nil, errors.New("boom")} {
		p := &countingPurger{err: err}
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		go func() {
			Start(ctx, p, 5*time.Millisecond, zerolog.Nop())
			close(done)
		}()

		assert.Eventually(t, func() bool { return p.calls.Load() >= 2 }, time.Second, time.Millisecond)
		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Start did not return after cancel")
		}
	}
}

func TestStart_ZeroInterval(t *testing.T) {
	p := &countingPurger{}
	Start(context.Background(), p, 0, zerolog.Nop())
	assert.Equal(t, int32(0), p.calls.Load())
}
