package browser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newIdleCapture() *Capture {
	return &Capture{
		urlSubstring: "search/care/allresults",
		bodies:       make(chan []byte, 16),
	}
}

func TestWaitTimesOutEmpty(t *testing.T) {
	c := newIdleCapture()

	start := time.Now()
	body := c.Wait(context.Background(), 20*time.Millisecond)
	require.Nil(t, body, "an empty holder yields nil, not an error")
	require.Less(t, time.Since(start), time.Second)
}

func TestWaitReturnsCapturedBody(t *testing.T) {
	c := newIdleCapture()
	c.bodies <- []byte(`{"data":{"response":[]}}`)

	body := c.Wait(context.Background(), time.Second)
	require.JSONEq(t, `{"data":{"response":[]}}`, string(body))
}

func TestWaitHonorsCancel(t *testing.T) {
	c := newIdleCapture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Nil(t, c.Wait(ctx, time.Minute))
}

func TestDrainDiscardsStaleBodies(t *testing.T) {
	c := newIdleCapture()
	c.bodies <- []byte("stale page 1")
	c.bodies <- []byte("stale page 2")

	c.Drain()
	require.Nil(t, c.Wait(context.Background(), 20*time.Millisecond))
}
