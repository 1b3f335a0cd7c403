package emailutil

import (
	"context"
	"strings"
	"time"

	"leadharvest/lib/textutil"

	"github.com/miekg/dns"
)

// substrings that mark an address as a scraping artifact rather than a
// contact: asset filenames that look like user@host, tracker domains,
// and placeholder addresses
var invalidPatterns = []string{
	".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg",
	"@2x", "@3x",
	"example.com", "example.org", "domain.com", "email.com",
	"sentry", "wixpress",
	"noreply", "no-reply",
}

// Sanitize turns a raw scraped string into a usable address: strips a
// mailto: prefix and query suffix, trims stray punctuation, lowercases,
// and re-validates. Returns "" for anything that does not survive.
func Sanitize(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "mailto:")
	if i := strings.IndexAny(s, "?&"); i >= 0 {
		s = s[:i]
	}
	s = strings.Trim(s, ".,;:'\"<>()")
	s = strings.ToLower(s)

	s = textutil.ExtractEmail(s)
	if !Valid(s) {
		return ""
	}
	return s
}

// Valid reports whether email looks like a real contact address.
func Valid(email string) bool {
	if email == "" || textutil.ExtractEmail(email) != email {
		return false
	}
	lower := strings.ToLower(email)
	for _, p := range invalidPatterns {
		if strings.Contains(lower, p) {
			return false
		}
	}
	return true
}

// HasMX probes DNS for an MX record on the address's domain. A lookup
// failure counts as "no", never an error: MX validation is a filter, not
// a gate the run can fail on.
func HasMX(ctx context.Context, email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]

	server := "8.8.8.8:53"
	if conf, err := dns.ClientConfigFromFile("/etc/resolv.conf"); err == nil && len(conf.Servers) > 0 {
		server = conf.Servers[0] + ":" + conf.Port
	}

	client := &dns.Client{Timeout: time.Second * 5}
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), dns.TypeMX)

	res, _, err := client.ExchangeContext(ctx, msg, server)
	if err != nil || res == nil {
		return false
	}
	return len(res.Answer) > 0
}
