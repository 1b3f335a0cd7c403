package gmaps

import (
	"strings"

	"leadharvest/lib/emailutil"
	"leadharvest/lib/htmlutil"
	"leadharvest/lib/records"
	"leadharvest/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// extractDetails pulls one business record out of a place panel. Every
// field degrades to "" independently; nothing here can fail the item.
func extractDetails(doc *goquery.Document, rawHTML string, sels SelectorSet) records.Record {
	return records.Record{
		Name:    htmlutil.SelectFirstText(doc.Selection, sels.Name),
		Phone:   extractPhone(doc, sels.Phone),
		Website: extractWebsite(doc, sels.Website),
		Address: extractAddress(doc, sels.Address),
		Rating:  extractRating(doc, sels.Rating),
		Reviews: extractReviews(doc, sels.Reviews),
		Email:   extractPageEmail(rawHTML),
	}
}

// extractPhone checks aria-label, text and href of each candidate node
// for a phone-shaped digit run.
func extractPhone(doc *goquery.Document, candidates []string) string {
	phone := ""
	for _, sel := range candidates {
		doc.Find(sel).EachWithBreak(func(_ int, node *goquery.Selection) bool {
			for _, raw := range []string{
				node.AttrOr("aria-label", ""),
				node.Text(),
				strings.TrimPrefix(node.AttrOr("href", ""), "tel:"),
			} {
				if p := textutil.ExtractPhone(textutil.Clean(raw)); p != "" {
					phone = p
					return false
				}
			}
			return true
		})
		if phone != "" {
			return phone
		}
	}
	return ""
}

// extractWebsite takes the first candidate link that leaves google
// itself.
func extractWebsite(doc *goquery.Document, candidates []string) string {
	website := ""
	for _, sel := range candidates {
		doc.Find(sel).EachWithBreak(func(_ int, node *goquery.Selection) bool {
			href := node.AttrOr("href", "")
			if href == "" || strings.Contains(href, "google.com") {
				return true
			}
			website = textutil.Clean(href)
			return false
		})
		if website != "" {
			return website
		}
	}
	return ""
}

func extractAddress(doc *goquery.Document, candidates []string) string {
	for _, sel := range candidates {
		var address string
		doc.Find(sel).EachWithBreak(func(_ int, node *goquery.Selection) bool {
			for _, raw := range []string{node.AttrOr("aria-label", ""), node.Text()} {
				// the aria-label carries an "Address: " prefix
				raw = strings.TrimPrefix(textutil.Clean(raw), "Address:")
				if cleaned := textutil.Clean(raw); cleaned != "" {
					address = cleaned
					return false
				}
			}
			return true
		})
		if address != "" {
			return address
		}
	}
	return ""
}

func extractRating(doc *goquery.Document, candidates []string) string {
	for _, sel := range candidates {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		for _, raw := range []string{node.AttrOr("aria-label", ""), node.Text()} {
			if rating := textutil.ParseRating(raw); rating != "" {
				return rating
			}
		}
	}
	return ""
}

func extractReviews(doc *goquery.Document, candidates []string) string {
	for _, sel := range candidates {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		for _, raw := range []string{node.AttrOr("aria-label", ""), node.Text()} {
			if count := textutil.ParseReviewCount(raw); count != "" {
				return count
			}
		}
	}
	return ""
}

// extractPageEmail scans the raw page source; maps rarely shows an
// email in the panel itself, but business descriptions sometimes
// embed one.
func extractPageEmail(rawHTML string) string {
	for _, raw := range textutil.ExtractEmails(rawHTML) {
		if email := emailutil.Sanitize(raw); email != "" {
			return email
		}
	}
	return ""
}
