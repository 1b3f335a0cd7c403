package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.opentelemetry.io/otel/attribute"
)

// CapturedRequest is the browser's own request to a matched endpoint,
// kept so callers can replay the call outside the browser.
type CapturedRequest struct {
	URL     string
	Headers map[string]string
}

// Capture watches the tab's network traffic for responses whose URL
// contains a substring and hands their bodies to Wait. One Capture
// lives for the lifetime of its session listener; matches accumulate
// in a buffered channel.
type Capture struct {
	session      *Session
	urlSubstring string

	mu       sync.Mutex
	matched  map[network.RequestID]bool
	requests []CapturedRequest

	bodies chan []byte
}

// NewCapture enables network events on the session's tab and starts
// listening for responses whose URL contains urlSubstring.
func (s *Session) NewCapture(urlSubstring string) (*Capture, error) {
	c := &Capture{
		session:      s,
		urlSubstring: urlSubstring,
		matched:      make(map[network.RequestID]bool),
		bodies:       make(chan []byte, 16),
	}

	if err := chromedp.Run(s.ctx, network.Enable()); err != nil {
		return nil, fmt.Errorf("enabling network events: %w", err)
	}

	chromedp.ListenTarget(s.ctx, func(ev any) {
		switch e := ev.(type) {
		case *network.EventRequestWillBeSent:
			c.onRequest(e)
		case *network.EventResponseReceived:
			c.onResponse(e)
		case *network.EventLoadingFinished:
			c.onFinished(e)
		}
	})
	return c, nil
}

func (c *Capture) onRequest(e *network.EventRequestWillBeSent) {
	if !strings.Contains(e.Request.URL, c.urlSubstring) {
		return
	}
	headers := make(map[string]string, len(e.Request.Headers))
	for k, v := range e.Request.Headers {
		headers[k] = fmt.Sprint(v)
	}
	c.mu.Lock()
	c.requests = append(c.requests, CapturedRequest{URL: e.Request.URL, Headers: headers})
	c.mu.Unlock()
}

func (c *Capture) onResponse(e *network.EventResponseReceived) {
	if !strings.Contains(e.Response.URL, c.urlSubstring) || e.Response.Status != 200 {
		return
	}
	c.mu.Lock()
	c.matched[e.RequestID] = true
	c.mu.Unlock()
}

func (c *Capture) onFinished(e *network.EventLoadingFinished) {
	c.mu.Lock()
	ok := c.matched[e.RequestID]
	delete(c.matched, e.RequestID)
	c.mu.Unlock()
	if !ok {
		return
	}

	// The body must be fetched off the listener goroutine, against the
	// tab's own executor.
	go func() {
		target := chromedp.FromContext(c.session.ctx)
		body, err := network.GetResponseBody(e.RequestID).
			Do(cdp.WithExecutor(c.session.ctx, target.Target))
		if err != nil {
			return
		}
		select {
		case c.bodies <- body:
		default:
		}
	}()
}

// Drain discards bodies captured so far, so a following Wait only sees
// traffic from the next navigation.
func (c *Capture) Drain() {
	for {
		select {
		case <-c.bodies:
		default:
			return
		}
	}
}

// Wait blocks until a matched response body arrives or the timeout
// elapses. A nil return means nothing was captured in time, which the
// caller treats as "this source has nothing", not as a failure.
func (c *Capture) Wait(ctx context.Context, timeout time.Duration) []byte {
	ctx, span := tracer.Start(ctx, "capture:Wait")
	defer span.End()
	span.SetAttributes(attribute.String("url_substring", c.urlSubstring))

	select {
	case body := <-c.bodies:
		span.SetAttributes(attribute.Int("body_bytes", len(body)))
		return body
	case <-time.After(timeout):
		span.AddEvent("capture timed out")
		return nil
	case <-ctx.Done():
		span.AddEvent("capture cancelled")
		return nil
	}
}

// Requests returns the browser requests matched so far, oldest first.
func (c *Capture) Requests() []CapturedRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CapturedRequest, len(c.requests))
	copy(out, c.requests)
	return out
}
