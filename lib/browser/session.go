package browser

import (
	"context"
	"time"

	fakeua "github.com/EDDYCJY/fake-useragent"
	"github.com/chromedp/chromedp"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("leadharvest.lib.browser")

type Options struct {
	// Headless defaults to true; set false to watch the run.
	Headless *bool `json:"headless"`
	// UserAgent overrides the randomly picked desktop UA.
	UserAgent string `json:"user_agent"`
	// WindowWidth/WindowHeight default to 1440x900.
	WindowWidth  int `json:"window_width"`
	WindowHeight int `json:"window_height"`
}

func (o Options) headless() bool {
	return o.Headless == nil || *o.Headless
}

// Session owns one Chrome for the whole run. All navigation happens in a
// single tab, sequentially.
type Session struct {
	ctx           context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
}

// NewSession launches Chrome. The parent ctx bounds the browser's
// lifetime: cancelling it (Ctrl+C) tears the whole session down.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	ua := opts.UserAgent
	if ua == "" {
		ua = fakeua.Chrome()
	}
	width := opts.WindowWidth
	if width <= 0 {
		width = 1440
	}
	height := opts.WindowHeight
	if height <= 0 {
		height = 900
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.headless()),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(width, height),
		chromedp.UserAgent(ua),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// an empty Run forces the browser to actually start so a broken
	// chrome install fails here instead of on the first navigation
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, err
	}

	return &Session{
		ctx:           browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
	}, nil
}

// NewRemoteSession attaches to an already-running Chrome over the
// devtools websocket (e.g. a headless-shell container).
func NewRemoteSession(ctx context.Context, wsURL string) (*Session, error) {
	allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(ctx, wsURL)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, err
	}

	return &Session{
		ctx:           browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
	}, nil
}

func (s *Session) Close() {
	s.cancelBrowser()
	s.cancelAlloc()
}

// Run executes chromedp actions on the session tab, bounded by timeout.
func (s *Session) Run(timeout time.Duration, actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}
