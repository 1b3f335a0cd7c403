package caredir

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"leadharvest/lib/htmlutil"
	"leadharvest/lib/records"
	"leadharvest/lib/scrapers/sitemail"
	"leadharvest/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Enricher fills the fields a search payload leaves blank by visiting
// the provider's profile page. Everything about it is best effort: an
// unreachable or reshaped profile page costs fields, never the record.
type Enricher struct {
	http   *resty.Client
	sels   SelectorSet
	hunter *sitemail.Hunter
}

func newEnricher(client *resty.Client, opts Options, hunter *sitemail.Hunter) *Enricher {
	return &Enricher{
		http:   client,
		sels:   opts.selectors(),
		hunter: hunter,
	}
}

func (e *Enricher) Enrich(ctx context.Context, record *records.Record) {
	ctx, span := tracer.Start(ctx, "enricher:Enrich")
	defer span.End()
	span.SetAttributes(attribute.String("profile_url", record.ProfileURL))

	doc, pageURL, err := fetchProfile(ctx, e.http, record.ProfileURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "profile fetch failed")
		slog.WarnContext(ctx, "skipping profile enrichment",
			"profile_url", record.ProfileURL, "err", err)
		return
	}

	fields := extractProfile(ctx, doc, pageURL, e.sels)
	if record.Name == "" {
		record.Name = fields.Name
	}
	if record.Business == "" {
		record.Business = fields.Business
	}
	if record.Phone == "" {
		record.Phone = fields.Phone
	}
	if record.Address == "" {
		record.Address = fields.Address
	}
	if record.Website == "" {
		record.Website = fields.Website
	}
	if record.Email == "" && e.hunter != nil && fields.Website != "" {
		record.Email = e.hunter.Hunt(ctx, fields.Website)
	}
}

func fetchProfile(ctx context.Context, client *resty.Client, profileURL string) (*goquery.Document, *url.URL, error) {
	res, err := client.R().
		SetContext(ctx).
		Get(profileURL)
	if err != nil {
		return nil, nil, err
	}
	if res.StatusCode() >= 400 {
		return nil, nil, fmt.Errorf("profile page returned %s", res.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, nil, err
	}

	pageURL, err := url.Parse(profileURL)
	if err != nil {
		return nil, nil, err
	}
	return doc, pageURL, nil
}

type profileFields struct {
	Name     string
	Business string
	Phone    string
	Address  string
	Website  string
}

// extractProfile reads one profile page. A page with no h1 simply
// yields an empty name; nothing here fails.
func extractProfile(ctx context.Context, doc *goquery.Document, pageURL *url.URL, sels SelectorSet) profileFields {
	fields := profileFields{
		Name:     htmlutil.SelectFirstText(doc.Selection, sels.Name),
		Business: htmlutil.SelectFirstText(doc.Selection, sels.Specialty),
		Address:  htmlutil.SelectFirstText(doc.Selection, sels.Location),
	}

	raw := htmlutil.SelectFirstText(doc.Selection, sels.Phone)
	if phone := textutil.ExtractPhone(raw); phone != "" {
		fields.Phone = phone
	} else {
		fields.Phone = raw
	}

	// the profile's own site link is only discoverable by anchor text
	for _, anchor := range htmlutil.GetAnchors(ctx, doc.Selection) {
		if anchor.Href == "" || !strings.Contains(strings.ToLower(anchor.Name), "website") {
			continue
		}
		fields.Website = htmlutil.Absolutize(pageURL, anchor.Href)
		break
	}

	return fields
}
