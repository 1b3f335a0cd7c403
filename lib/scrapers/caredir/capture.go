package caredir

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"leadharvest/lib/browser"
	"leadharvest/lib/pipeline"
	"leadharvest/lib/scrapers/sitemail"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// CaptureSource drives a real browser to the results page and lifts the
// search payload straight out of the page's own network call. Pages
// where nothing gets captured fall back to replicating the call with
// the api provider, so a run never stalls on a quiet page.
type CaptureSource struct {
	session  *browser.Session
	capture  *browser.Capture
	fallback *APISource
	enricher *Enricher
	query    Query
	opts     Options

	consentDone bool
}

func NewCaptureSource(session *browser.Session, query Query, opts Options, hunter *sitemail.Hunter) (*CaptureSource, error) {
	fallback, err := NewAPISource(query, opts, hunter)
	if err != nil {
		return nil, err
	}

	capture, err := session.NewCapture(APIPathMarker)
	if err != nil {
		return nil, err
	}

	return &CaptureSource{
		session:  session,
		capture:  capture,
		fallback: fallback,
		enricher: fallback.enricher,
		query:    query,
		opts:     opts,
	}, nil
}

func (s *CaptureSource) Name() string { return "care-directory-capture" }

// ResultsURL reproduces the address the site's own pagination links to.
func ResultsURL(baseURL string, q Query, page int) string {
	params := url.Values{}
	params.Set("entity", "all")
	params.Set("q", q.Q)
	params.Set("pagenumber", strconv.Itoa(page))
	params.Set("pt", q.Point)
	params.Set("d", q.Distance)
	params.Set("city", q.City)
	params.Set("state", q.State)
	return baseURL + "/results?" + params.Encode()
}

// SearchPage is ResultsURL against the configured (or default) base.
func (o Options) SearchPage(q Query, page int) string {
	return ResultsURL(o.baseURL(), q, page)
}

func (s *CaptureSource) Fetch(ctx context.Context, page int) (pipeline.Page, error) {
	ctx, span := tracer.Start(ctx, "capture:Fetch")
	defer span.End()
	span.SetAttributes(attribute.Int("page", page))

	s.capture.Drain()

	link := ResultsURL(s.opts.baseURL(), s.query, page)
	if err := s.session.Navigate(ctx, link, "", s.opts.navTimeout()); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "results page unreachable")
		return pipeline.Page{}, err
	}

	if !s.consentDone {
		sels := s.opts.selectors()
		s.consentDone = s.session.DismissDialog(ctx, sels.ConsentCSS, sels.ConsentXPath)
		if s.consentDone {
			slog.InfoContext(ctx, "accepted cookie banner")
		}
	}

	body := s.capture.Wait(ctx, s.opts.captureWait())
	if body == nil {
		// a scroll sometimes jolts the page into firing the call
		_ = s.session.EvaluateInto(5*time.Second,
			"window.scrollTo(0, document.body.scrollHeight)", nil)
		body = s.capture.Wait(ctx, 2*time.Second)
	}
	if body == nil {
		span.AddEvent("nothing captured, replicating the call")
		slog.WarnContext(ctx, "no search call captured, replicating it directly", "page", page)
		return s.fallback.Fetch(ctx, page)
	}

	payload, err := parseSearchBody(body)
	if err != nil {
		span.RecordError(err)
		slog.WarnContext(ctx, "captured payload undecodable, replicating the call",
			"page", page, "err", err)
		return s.fallback.Fetch(ctx, page)
	}

	span.SetAttributes(attribute.Int("providers", len(payload.Data.Response)))
	return providersToPage(payload, s.opts.baseURL(), s.enricher), nil
}
