package browser

import (
	"context"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Navigate loads url and, when readySelector is non-empty, waits for it
// to become visible. The timeout bounds the whole load+wait; hitting it
// is an ordinary error for the retry controller to absorb.
func (s *Session) Navigate(ctx context.Context, url, readySelector string, timeout time.Duration) error {
	ctx, span := tracer.Start(ctx, "session:Navigate")
	defer span.End()
	span.SetAttributes(
		attribute.String("url", url),
		attribute.String("ready_selector", readySelector),
	)

	actions := []chromedp.Action{chromedp.Navigate(url)}
	if readySelector != "" {
		actions = append(actions, chromedp.WaitVisible(readySelector, chromedp.ByQuery))
	}

	err := s.Run(timeout, actions...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "navigation failed")
		return err
	}
	return nil
}

// Location reports the tab's current URL.
func (s *Session) Location(timeout time.Duration) (string, error) {
	var url string
	err := s.Run(timeout, chromedp.Location(&url))
	return url, err
}

// OuterHTML serializes the live DOM of the whole document.
func (s *Session) OuterHTML(ctx context.Context, timeout time.Duration) (string, error) {
	ctx, span := tracer.Start(ctx, "session:OuterHTML")
	defer span.End()

	var html string
	err := s.Run(timeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to serialize dom")
		return "", err
	}
	return html, nil
}

// EvaluateInto runs a script and unmarshals its JSON result into out.
func (s *Session) EvaluateInto(timeout time.Duration, script string, out any) error {
	return s.Run(timeout, chromedp.Evaluate(script, out))
}

// DismissDialog makes one isolated click attempt per candidate: css
// selectors first, then xpath candidates (used for text matching).
// The first landed click wins; total failure only means the dialog was
// not there, so the caller proceeds regardless.
func (s *Session) DismissDialog(ctx context.Context, cssCandidates, xpathCandidates []string) bool {
	ctx, span := tracer.Start(ctx, "session:DismissDialog")
	defer span.End()

	const attemptTimeout = 2 * time.Second

	for _, sel := range cssCandidates {
		err := s.Run(attemptTimeout, chromedp.Click(sel, chromedp.ByQuery, chromedp.NodeVisible))
		if err == nil {
			slog.DebugContext(ctx, "dismissed dialog", "selector", sel)
			span.SetAttributes(attribute.String("clicked", sel))
			return true
		}
	}
	for _, xp := range xpathCandidates {
		err := s.Run(attemptTimeout, chromedp.Click(xp, chromedp.BySearch, chromedp.NodeVisible))
		if err == nil {
			slog.DebugContext(ctx, "dismissed dialog", "xpath", xp)
			span.SetAttributes(attribute.String("clicked", xp))
			return true
		}
	}

	span.AddEvent("no dialog dismissed")
	return false
}

// WaitAnyVisible tries each selector in order with an isolated timeout
// and reports the first that became visible, or "" when none did.
func (s *Session) WaitAnyVisible(ctx context.Context, selectors []string, perAttempt time.Duration) (string, bool) {
	ctx, span := tracer.Start(ctx, "session:WaitAnyVisible")
	defer span.End()

	for _, sel := range selectors {
		err := s.Run(perAttempt, chromedp.WaitVisible(sel, chromedp.ByQuery))
		if err == nil {
			span.SetAttributes(attribute.String("matched", sel))
			return sel, true
		}
	}
	span.AddEvent("nothing became visible")
	return "", false
}

// CollectAttrs returns the attribute values of every node matching
// selector, in document order.
func (s *Session) CollectAttrs(ctx context.Context, selector, attr string, timeout time.Duration) ([]string, error) {
	ctx, span := tracer.Start(ctx, "session:CollectAttrs")
	defer span.End()
	span.SetAttributes(attribute.String("selector", selector))

	script := `Array.from(document.querySelectorAll(` + jsString(selector) + `))
		.map(el => el.getAttribute(` + jsString(attr) + `))
		.filter(v => !!v)`

	var values []string
	err := s.EvaluateInto(timeout, script, &values)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "collect failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("count", len(values)))
	return values, nil
}
