// Package caredir extracts provider listings from the medical
// directory search. Three interchangeable providers feed the same
// pipeline: capturing the site's own search call from a browser,
// replicating that call directly, or walking the rendered results DOM.
package caredir

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"leadharvest/lib/pipeline"
	"leadharvest/lib/records"
	"leadharvest/lib/scrapers/sitemail"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// APISource replicates the internal search request the results page
// makes, skipping the browser entirely.
type APISource struct {
	http     *resty.Client
	query    Query
	opts     Options
	enricher *Enricher
}

func NewAPISource(query Query, opts Options, hunter *sitemail.Hunter) (*APISource, error) {
	client, err := newHTTPClient()
	if err != nil {
		return nil, err
	}

	var enricher *Enricher
	if opts.Enrich {
		enricher = newEnricher(client, opts, hunter)
	}

	return &APISource{
		http:     client,
		query:    query,
		opts:     opts,
		enricher: enricher,
	}, nil
}

func (s *APISource) Name() string { return "care-directory-api" }

func (s *APISource) Fetch(ctx context.Context, page int) (pipeline.Page, error) {
	ctx, span := tracer.Start(ctx, "api:Fetch")
	defer span.End()
	span.SetAttributes(attribute.Int("page", page))

	res, err := s.http.R().
		SetContext(ctx).
		SetHeaders(apiHeaders(s.opts.baseURL())).
		SetQueryParams(apiParams(s.query, page)).
		Get(s.opts.apiURL())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search api unreachable")
		return pipeline.Page{}, err
	}
	if res.StatusCode() != 200 {
		span.SetStatus(codes.Error, res.Status())
		return pipeline.Page{}, fmt.Errorf("search api returned %s", res.Status())
	}

	payload, err := parseSearchBody(res.Body())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unexpected payload shape")
		return pipeline.Page{}, err
	}

	span.SetAttributes(attribute.Int("providers", len(payload.Data.Response)))
	return providersToPage(payload, s.opts.baseURL(), s.enricher), nil
}

// apiParams reproduces the full query string the site's frontend sends;
// the endpoint rejects sparse versions of it.
func apiParams(q Query, page int) map[string]string {
	return map[string]string{
		"sortby":         "bestmatch",
		"entity":         "all",
		"gender":         "all",
		"distance":       q.Distance,
		"newpatient":     "",
		"isvirtualvisit": "",
		"minrating":      "0",
		"start":          strconv.Itoa((page - 1) * 10),
		"pagename":       "serp",
		"q":              q.Q,
		"pt":             q.Point,
		"specialtyid":    "",
		"d":              q.Distance,
		"sid":            "",
		"pid":            "",
		"insuranceid":    "",
		"exp_min":        "min",
		"exp_max":        "max",
		"state":          q.State,
		"amagender":      "all",
	}
}

// apiHeaders carries the header gate the endpoint checks beyond the
// user agent: a same-site referer and browser client hints.
func apiHeaders(baseURL string) map[string]string {
	return map[string]string{
		"referer":            baseURL + "/",
		"accept":             "application/json, text/plain, */*",
		"sec-ch-ua":          `"Not;A=Brand";v="99", "HeadlessChrome";v="139", "Chromium";v="139"`,
		"sec-ch-ua-mobile":   "?0",
		"sec-ch-ua-platform": `"Windows"`,
	}
}

func parseSearchBody(body []byte) (searchResponse, error) {
	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return searchResponse{}, fmt.Errorf("decoding search payload: %w", err)
	}
	return payload, nil
}

// providersToPage turns a decoded search payload into pipeline items.
// Each item's visit returns the payload record, enriched from the
// profile page when an enricher is wired.
func providersToPage(payload searchResponse, baseURL string, enricher *Enricher) pipeline.Page {
	items := make([]pipeline.Item, 0, len(payload.Data.Response))
	for _, p := range payload.Data.Response {
		base := p.record(baseURL)
		items = append(items, pipeline.Item{
			Label: itemLabel(base),
			Visit: func(ctx context.Context) (records.Record, error) {
				record := base
				if enricher != nil && record.ProfileURL != "" {
					enricher.Enrich(ctx, &record)
				}
				return record, nil
			},
		})
	}
	return pipeline.Page{Items: items, HasMore: len(items) > 0}
}

func itemLabel(r records.Record) string {
	if r.Name != "" {
		return r.Name
	}
	if r.ProfileURL != "" {
		return r.ProfileURL
	}
	return "unnamed provider"
}
