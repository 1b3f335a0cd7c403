// Package gmaps extracts business listings from the map search: one
// browser session navigates the results feed, scrolls it to the end,
// then visits every listing's detail panel.
package gmaps

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"leadharvest/lib/browser"
	"leadharvest/lib/pipeline"
	"leadharvest/lib/records"
	"leadharvest/lib/scrapers/sitemail"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("leadharvest.scrapers.gmaps")

const (
	feedWaitPerSelector  = 10 * time.Second
	placeWaitPerSelector = 8 * time.Second
)

type Options struct {
	Selectors *SelectorSet
	// MaxResults caps how many listings are visited.
	MaxResults int
	// NavTimeout bounds each page load.
	NavTimeout time.Duration
	// ScrollPause is the wait between scroll steps while the feed loads
	// more results.
	ScrollPause time.Duration
	// ScrollMax caps scroll iterations.
	ScrollMax int
	// HuntEmails visits listing websites to look for a contact address
	// when the panel itself shows none.
	HuntEmails bool
}

func (o Options) selectors() SelectorSet {
	if o.Selectors == nil {
		return DefaultSelectors()
	}
	return *o.Selectors
}

func (o Options) maxResults() int {
	if o.MaxResults < 1 {
		return 50
	}
	return o.MaxResults
}

func (o Options) navTimeout() time.Duration {
	if o.NavTimeout <= 0 {
		return 30 * time.Second
	}
	return o.NavTimeout
}

func (o Options) scrollPause() time.Duration {
	if o.ScrollPause <= 0 {
		return 1250 * time.Millisecond
	}
	return o.ScrollPause
}

// Scraper implements pipeline.Source over a live browser session. The
// whole result set comes from the single scrolled feed, so everything
// happens on page 1.
type Scraper struct {
	session *browser.Session
	// hunter may be nil, in which case websites are never visited.
	hunter *sitemail.Hunter
	target string
	opts   Options
}

func New(session *browser.Session, hunter *sitemail.Hunter, target string, opts Options) *Scraper {
	return &Scraper{
		session: session,
		hunter:  hunter,
		target:  target,
		opts:    opts,
	}
}

func (s *Scraper) Name() string { return "google-maps" }

// SearchURL turns a free-text query into a maps search URL; anything
// already shaped like a URL passes through.
func SearchURL(target string) string {
	target = strings.TrimSpace(target)
	if strings.HasPrefix(target, "http") {
		return target
	}
	return "https://www.google.com/maps/search/" + strings.ReplaceAll(target, " ", "+")
}

func (s *Scraper) Fetch(ctx context.Context, page int) (pipeline.Page, error) {
	if page > 1 {
		return pipeline.Page{}, nil
	}

	ctx, span := tracer.Start(ctx, "scraper:Fetch")
	defer span.End()

	sels := s.opts.selectors()
	url := SearchURL(s.target)
	span.SetAttributes(attribute.String("url", url))

	if err := s.session.Navigate(ctx, url, "", s.opts.navTimeout()); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search page unreachable")
		return pipeline.Page{}, fmt.Errorf("loading %s: %w", url, err)
	}

	if s.session.DismissDialog(ctx, sels.ConsentCSS, sels.ConsentXPath) {
		slog.InfoContext(ctx, "accepted consent popup")
	}

	// a query can resolve straight to one place's panel
	location, err := s.session.Location(5 * time.Second)
	if err != nil {
		location = url
	}
	if strings.Contains(location, "/place/") {
		span.AddEvent("single place page")
		return pipeline.Page{Items: []pipeline.Item{s.currentPlaceItem(location)}}, nil
	}

	feedSel, ok := s.session.WaitAnyVisible(ctx, sels.Feed, feedWaitPerSelector)
	if !ok {
		span.SetStatus(codes.Error, "results feed not found")
		return pipeline.Page{}, errors.New("results feed not found")
	}

	_, err = s.session.ScrollUntilStable(ctx, feedSel, browser.ScrollOptions{
		MaxIterations: s.opts.ScrollMax,
		Pause:         s.opts.scrollPause(),
	})
	if err != nil {
		// listings that loaded before the failure are still worth
		// visiting
		slog.WarnContext(ctx, "feed scroll aborted", "err", err)
	}

	hrefs := s.collectListingLinks(ctx, sels.Items)
	if len(hrefs) == 0 {
		span.SetStatus(codes.Error, "no listings found")
		return pipeline.Page{}, errors.New("no listings found after all selector fallbacks")
	}
	span.SetAttributes(attribute.Int("listings", len(hrefs)))

	items := make([]pipeline.Item, 0, len(hrefs))
	for _, href := range hrefs {
		items = append(items, pipeline.Item{Label: href, Visit: s.placeVisit(href)})
	}
	return pipeline.Page{Items: items}, nil
}

// collectListingLinks tries each item selector until one yields links,
// deduplicates them preserving feed order, and caps at MaxResults.
func (s *Scraper) collectListingLinks(ctx context.Context, candidates []string) []string {
	for _, sel := range candidates {
		hrefs, err := s.session.CollectAttrs(ctx, sel, "href", 10*time.Second)
		if err != nil || len(hrefs) == 0 {
			continue
		}

		seen := map[string]bool{}
		unique := make([]string, 0, len(hrefs))
		for _, href := range hrefs {
			if seen[href] {
				continue
			}
			seen[href] = true
			unique = append(unique, href)
			if len(unique) == s.opts.maxResults() {
				break
			}
		}
		slog.InfoContext(ctx, "found listings", "selector", sel, "count", len(unique))
		return unique
	}
	return nil
}

// placeVisit navigates to one listing's detail panel and extracts it.
func (s *Scraper) placeVisit(href string) func(context.Context) (records.Record, error) {
	return func(ctx context.Context) (records.Record, error) {
		if err := s.session.Navigate(ctx, href, "", s.opts.navTimeout()); err != nil {
			return records.Record{}, err
		}
		return s.extractCurrentPlace(ctx)
	}
}

// currentPlaceItem wraps the already-open place panel as a single item.
func (s *Scraper) currentPlaceItem(location string) pipeline.Item {
	return pipeline.Item{
		Label: location,
		Visit: func(ctx context.Context) (records.Record, error) {
			return s.extractCurrentPlace(ctx)
		},
	}
}

func (s *Scraper) extractCurrentPlace(ctx context.Context) (records.Record, error) {
	ctx, span := tracer.Start(ctx, "scraper:extractCurrentPlace")
	defer span.End()

	sels := s.opts.selectors()
	if _, ok := s.session.WaitAnyVisible(ctx, sels.Name, placeWaitPerSelector); !ok {
		err := errors.New("place panel never appeared")
		span.SetStatus(codes.Error, err.Error())
		return records.Record{}, err
	}

	html, err := s.session.OuterHTML(ctx, 10*time.Second)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read panel dom")
		return records.Record{}, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse panel html")
		return records.Record{}, err
	}

	record := extractDetails(doc, html, sels)
	if record.Email == "" && s.hunter != nil && record.Website != "" {
		record.Email = s.hunter.Hunt(ctx, record.Website)
	}

	span.SetAttributes(attribute.String("name", record.Name))
	return record, nil
}
