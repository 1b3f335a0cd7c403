package caredir

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"leadharvest/lib/htmlutil"
	"leadharvest/lib/pipeline"
	"leadharvest/lib/records"
	"leadharvest/lib/scrapers/sitemail"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var pageNumberRegex = regexp.MustCompile(`pagenumber=\d+`)

// DOMSource walks the rendered results pages directly: no browser, no
// internal API, just the server-rendered markup. Slower than the api
// provider but immune to the endpoint's header gating.
type DOMSource struct {
	http   *resty.Client
	target string
	opts   Options
	hunter *sitemail.Hunter
}

// NewDOMSource scrapes the paginated results at target, a full results
// URL whose pagenumber parameter is rewritten per page.
func NewDOMSource(target string, opts Options, hunter *sitemail.Hunter) (*DOMSource, error) {
	client, err := newHTTPClient()
	if err != nil {
		return nil, err
	}
	return &DOMSource{
		http:   client,
		target: target,
		opts:   opts,
		hunter: hunter,
	}, nil
}

func (s *DOMSource) Name() string { return "care-directory-dom" }

func pagedURL(target string, page int) string {
	number := strconv.Itoa(page)
	if pageNumberRegex.MatchString(target) {
		return pageNumberRegex.ReplaceAllString(target, "pagenumber="+number)
	}
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	q := u.Query()
	q.Set("pagenumber", number)
	u.RawQuery = q.Encode()
	return u.String()
}

func (s *DOMSource) Fetch(ctx context.Context, page int) (pipeline.Page, error) {
	ctx, span := tracer.Start(ctx, "dom:Fetch")
	defer span.End()
	span.SetAttributes(attribute.Int("page", page))

	link := pagedURL(s.target, page)
	res, err := s.http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "results page unreachable")
		return pipeline.Page{}, err
	}
	if res.StatusCode() != 200 {
		span.SetStatus(codes.Error, res.Status())
		return pipeline.Page{}, fmt.Errorf("results page returned %s", res.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "results page parse failed")
		return pipeline.Page{}, err
	}

	pageURL, err := url.Parse(link)
	if err != nil {
		return pipeline.Page{}, err
	}

	links := collectProfileLinks(doc, pageURL, s.opts.selectors().ProfileLinks)
	span.SetAttributes(attribute.Int("profiles", len(links)))

	items := make([]pipeline.Item, 0, len(links))
	for _, profile := range links {
		items = append(items, pipeline.Item{Label: profile, Visit: s.visitProfile(profile)})
	}
	return pipeline.Page{Items: items, HasMore: len(items) > 0}, nil
}

// collectProfileLinks unions the hits of every selector, absolutized
// and deduplicated in document order.
func collectProfileLinks(doc *goquery.Document, pageURL *url.URL, candidates []string) []string {
	seen := map[string]bool{}
	var links []string
	for _, sel := range candidates {
		doc.Find(sel).Each(func(_ int, a *goquery.Selection) {
			href := a.AttrOr("href", "")
			if href == "" {
				return
			}
			full := htmlutil.Absolutize(pageURL, href)
			if !strings.Contains(full, "/doctor/") || seen[full] {
				return
			}
			seen[full] = true
			links = append(links, full)
		})
	}
	return links
}

func (s *DOMSource) visitProfile(profileURL string) func(context.Context) (records.Record, error) {
	return func(ctx context.Context) (records.Record, error) {
		doc, pageURL, err := fetchProfile(ctx, s.http, profileURL)
		if err != nil {
			return records.Record{}, err
		}

		fields := extractProfile(ctx, doc, pageURL, s.opts.selectors())
		record := records.Record{
			Name:       fields.Name,
			Business:   fields.Business,
			Phone:      fields.Phone,
			Address:    fields.Address,
			Website:    fields.Website,
			ProfileURL: profileURL,
		}
		if s.hunter != nil && fields.Website != "" {
			record.Email = s.hunter.Hunt(ctx, fields.Website)
		}
		return record, nil
	}
}
