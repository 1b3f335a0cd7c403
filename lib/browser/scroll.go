package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrNoContainer reports that the scroll container selector matched
// nothing on the page.
var ErrNoContainer = errors.New("scroll container not found")

// Fingerprint is the observable scroll state of a container. Two equal
// fingerprints mean neither the position nor the content height moved.
type Fingerprint struct {
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// StabilityTracker decides when scrolling has reached a fixed point:
// the same fingerprint observed on `required` consecutive iterations.
// Any change resets the count.
type StabilityTracker struct {
	required int
	last     Fingerprint
	stable   int
	seeded   bool
}

func NewStabilityTracker(required int) *StabilityTracker {
	if required < 1 {
		required = 1
	}
	return &StabilityTracker{required: required}
}

// Observe feeds one fingerprint and reports whether the fixed point has
// been reached.
func (t *StabilityTracker) Observe(fp Fingerprint) bool {
	if !t.seeded {
		t.seeded = true
		t.last = fp
		t.stable = 1
		return t.stable >= t.required
	}
	if fp == t.last {
		t.stable++
	} else {
		t.last = fp
		t.stable = 1
	}
	return t.stable >= t.required
}

// ScrollOptions tune the fixed-point loop. Zero values fall back to
// defaults suited to feed-style result lists.
type ScrollOptions struct {
	// StableRequired is how many consecutive identical fingerprints
	// declare the end of the list.
	StableRequired int
	// MaxIterations caps the loop regardless of stability.
	MaxIterations int
	// Pause is how long to let content load between scroll steps.
	Pause time.Duration
	// StepTimeout bounds each individual scroll evaluation.
	StepTimeout time.Duration
}

func (o ScrollOptions) stableRequired() int {
	if o.StableRequired < 1 {
		return 3
	}
	return o.StableRequired
}

func (o ScrollOptions) maxIterations() int {
	if o.MaxIterations < 1 {
		return 50
	}
	return o.MaxIterations
}

func (o ScrollOptions) pause() time.Duration {
	if o.Pause <= 0 {
		return 1200 * time.Millisecond
	}
	return o.Pause
}

func (o ScrollOptions) stepTimeout() time.Duration {
	if o.StepTimeout <= 0 {
		return 5 * time.Second
	}
	return o.StepTimeout
}

// ScrollUntilStable scrolls the container to its bottom repeatedly
// until the (position, height) fingerprint stops changing or the
// iteration cap is hit, and returns how many scroll steps ran. Reaching
// the cap is not an error: the caller simply works with what loaded.
func (s *Session) ScrollUntilStable(ctx context.Context, containerSelector string, opts ScrollOptions) (int, error) {
	ctx, span := tracer.Start(ctx, "session:ScrollUntilStable")
	defer span.End()
	span.SetAttributes(attribute.String("container", containerSelector))

	script := fmt.Sprintf(`(() => {
		const el = document.querySelector(%s);
		if (!el) { return { top: -1, height: -1 }; }
		el.scrollTo(0, el.scrollHeight);
		return { top: el.scrollTop, height: el.scrollHeight };
	})()`, jsString(containerSelector))

	tracker := NewStabilityTracker(opts.stableRequired())
	iterations := 0

	for iterations < opts.maxIterations() {
		if err := ctx.Err(); err != nil {
			return iterations, err
		}

		var fp Fingerprint
		err := s.Run(opts.stepTimeout(), chromedp.Evaluate(script, &fp))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "scroll step failed")
			return iterations, fmt.Errorf("scroll step %d: %w", iterations, err)
		}
		if fp.Top < 0 {
			span.SetStatus(codes.Error, ErrNoContainer.Error())
			return iterations, fmt.Errorf("%w: %s", ErrNoContainer, containerSelector)
		}
		iterations++

		if tracker.Observe(fp) {
			slog.DebugContext(ctx, "scroll reached fixed point",
				"iterations", iterations, "height", fp.Height)
			span.SetAttributes(attribute.Int("iterations", iterations))
			return iterations, nil
		}

		select {
		case <-time.After(opts.pause()):
		case <-ctx.Done():
			return iterations, ctx.Err()
		}
	}

	slog.DebugContext(ctx, "scroll hit iteration cap", "iterations", iterations)
	span.SetAttributes(attribute.Int("iterations", iterations))
	return iterations, nil
}

// jsString renders s as a javascript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
