// Package sitemail hunts contact email addresses on business websites:
// the landing page first, then pages behind contact-looking links, a
// couple of hops deep at most.
package sitemail

import (
	"bytes"
	"context"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"leadharvest/lib/emailutil"
	"leadharvest/lib/htmlutil"
	"leadharvest/lib/restyutil"
	"leadharvest/lib/telemetry"
	"leadharvest/lib/textutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("leadharvest.scrapers.sitemail")

// linkKeywords mark anchors worth following when the landing page has
// no address on it.
var linkKeywords = []string{
	"contact", "kontakt", "contacto", "about", "impressum",
	"imprint", "support", "team", "legal",
}

type Options struct {
	// MaxDepth is how many link hops from the landing page are
	// followed. Zero means the default of two hops; negative scans the
	// landing page only.
	MaxDepth int `json:"max_depth"`
	// MaxPages caps total fetches per site across all depths.
	MaxPages int `json:"max_pages"`
	// VerifyMX additionally requires the address's domain to publish an
	// MX record.
	VerifyMX bool `json:"verify_mx"`
}

func (o Options) maxDepth() int {
	if o.MaxDepth < 0 {
		return 0
	}
	if o.MaxDepth == 0 {
		return 2
	}
	return o.MaxDepth
}

func (o Options) maxPages() int {
	if o.MaxPages < 1 {
		return 8
	}
	return o.MaxPages
}

type Hunter struct {
	http *resty.Client
	opts Options
}

func NewHunter(opts Options) (*Hunter, error) {
	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetTimeout(time.Second * 15)

	telemetry.InstrumentResty(client, "leadharvest.scrapers.sitemail.http")
	restyutil.DumpClient(client, restyInstrumentOutput)

	return &Hunter{http: client, opts: opts}, nil
}

type crawlTarget struct {
	link  string
	depth int
}

// Hunt fetches website and returns the first plausible contact email it
// finds, or "". Every failure along the way degrades to "no email",
// never to an error: the field is optional by nature.
func (h *Hunter) Hunt(ctx context.Context, website string) string {
	ctx, span := tracer.Start(ctx, "hunter:Hunt")
	defer span.End()
	span.SetAttributes(attribute.String("website", website))

	base, err := url.Parse(normalizeSite(website))
	if err != nil || base.Hostname() == "" {
		span.AddEvent("unusable website url")
		return ""
	}

	visited := map[string]bool{}
	queue := []crawlTarget{{link: base.String(), depth: 0}}
	fetched := 0

	for len(queue) > 0 && fetched < h.opts.maxPages() {
		if ctx.Err() != nil {
			return ""
		}
		target := queue[0]
		queue = queue[1:]
		if visited[target.link] {
			continue
		}
		visited[target.link] = true

		doc, ok := h.fetchDoc(ctx, target.link)
		fetched++
		if !ok {
			continue
		}

		if email := h.scanDoc(ctx, doc); email != "" {
			span.SetAttributes(attribute.String("email_source", target.link))
			return email
		}

		if target.depth >= h.opts.maxDepth() {
			continue
		}
		for _, link := range keywordLinks(ctx, doc, base) {
			if !visited[link] {
				queue = append(queue, crawlTarget{link: link, depth: target.depth + 1})
			}
		}
	}

	span.AddEvent("no email found")
	return ""
}

func (h *Hunter) fetchDoc(ctx context.Context, link string) (*goquery.Document, bool) {
	ctx, span := tracer.Start(ctx, "hunter:fetchDoc")
	defer span.End()
	span.SetAttributes(attribute.String("link", link))

	res, err := h.http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, false
	}
	if res.StatusCode() >= 400 {
		span.SetStatus(codes.Error, res.Status())
		return nil, false
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		return nil, false
	}
	return doc, true
}

// scanDoc checks mailto anchors before falling back to addresses that
// only appear as page text.
func (h *Hunter) scanDoc(ctx context.Context, doc *goquery.Document) string {
	var candidates []string
	doc.Find("a[href^='mailto:']").Each(func(_ int, a *goquery.Selection) {
		candidates = append(candidates, a.AttrOr("href", ""))
	})
	candidates = append(candidates, textutil.ExtractEmails(doc.Text())...)

	for _, raw := range candidates {
		email := emailutil.Sanitize(raw)
		if email == "" {
			continue
		}
		if h.opts.VerifyMX && !emailutil.HasMX(ctx, email) {
			continue
		}
		return email
	}
	return ""
}

func keywordLinks(ctx context.Context, doc *goquery.Document, base *url.URL) []string {
	var links []string
	for _, anchor := range htmlutil.GetAnchors(ctx, doc.Selection) {
		if !anchorLooksRelevant(anchor) {
			continue
		}
		abs := htmlutil.Absolutize(base, anchor.Href)
		target, err := url.Parse(abs)
		if err != nil || target.Hostname() != base.Hostname() {
			continue
		}
		links = append(links, abs)
	}
	return links
}

func anchorLooksRelevant(anchor htmlutil.Anchor) bool {
	name := strings.ToLower(anchor.Name)
	href := strings.ToLower(anchor.Href)
	for _, kw := range linkKeywords {
		if strings.Contains(name, kw) || strings.Contains(href, kw) {
			return true
		}
	}
	return false
}

// normalizeSite tolerates the scheme-less values sites put in their
// listing profiles.
func normalizeSite(website string) string {
	website = strings.TrimSpace(website)
	if website == "" {
		return ""
	}
	if !strings.HasPrefix(website, "http://") && !strings.HasPrefix(website, "https://") {
		website = "http://" + website
	}
	return website
}
