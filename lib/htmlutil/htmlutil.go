package htmlutil

import (
	"bytes"
	"context"
	"net/url"

	"leadharvest/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("leadharvest.lib.htmlutil")

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// SelectFirstText evaluates selector candidates in order and returns the
// cleaned text of the first one that yields anything non-empty. A field
// with no matching candidate is "", never an error.
func SelectFirstText(sel *goquery.Selection, candidates []string) string {
	for _, c := range candidates {
		text := textutil.Clean(sel.Find(c).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}

// SelectFirstAttr is SelectFirstText for an attribute value.
func SelectFirstAttr(sel *goquery.Selection, candidates []string, attr string) string {
	for _, c := range candidates {
		val := textutil.Clean(sel.Find(c).First().AttrOr(attr, ""))
		if val != "" {
			return val
		}
	}
	return ""
}

// Absolutize resolves href against base; a relative href from a parsed
// page becomes a full URL. Unparseable hrefs come back unchanged.
func Absolutize(base *url.URL, href string) string {
	if base == nil || href == "" {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

type Anchor struct {
	Name string
	Href string
}

func GetAnchors(ctx context.Context, sel *goquery.Selection) []Anchor {
	ctx, span := tracer.Start(ctx, "GetAnchors")
	defer span.End()

	anchors := []Anchor{}
	for _, n := range sel.Nodes {
		href := ""
		for _, a := range n.Attr {
			if a.Key == "href" {
				href = a.Val
				break
			}
		}

		link, err := url.Parse(href)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "got error while parsing url")
			continue
		}

		name := textutil.Clean(GetText(n))

		linkStr := link.String()
		anchors = append(anchors, Anchor{
			Name: name,
			Href: linkStr,
		})
		span.AddEvent("anchor", trace.WithAttributes(
			attribute.String("name", name),
			attribute.String("url", linkStr),
		))
	}

	return anchors
}
