package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// control characters plus the private use area glyphs map sites embed
// as icon fonts
var unprintableRegex = regexp.MustCompile(`[\x{0000}-\x{001F}\x{007F}\x{E000}-\x{F8FF}]`)

var phoneRegex = regexp.MustCompile(`\(?\+?\d[\d\-\s()]{8,}\d`)
var emailRegex = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
var ratingRegex = regexp.MustCompile(`\d+[.,]\d+|\d+`)
var reviewCountRegex = regexp.MustCompile(`\d[\d,.]*`)
var digitRegex = regexp.MustCompile(`\D`)

// Clean strips control characters and private-use-area glyphs and
// collapses whitespace runs to a single space.
func Clean(s string) string {
	s = unprintableRegex.ReplaceAllString(s, "")
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Normalize produces the form used for identity comparison: cleaned and
// lowercased.
func Normalize(s string) string {
	return strings.ToLower(Clean(s))
}

// ExtractPhone returns the first phone-shaped digit run in s, or "".
func ExtractPhone(s string) string {
	return strings.TrimSpace(phoneRegex.FindString(s))
}

// ExtractEmail returns the first email address in s, or "".
func ExtractEmail(s string) string {
	return emailRegex.FindString(s)
}

// ExtractEmails returns every email-shaped substring of s in order of
// appearance.
func ExtractEmails(s string) []string {
	return emailRegex.FindAllString(s, -1)
}

// ParseRating pulls a decimal rating out of text like "4.6 stars" or
// "4,6", normalizing the decimal separator. Returns "" when no number is
// present.
func ParseRating(s string) string {
	m := ratingRegex.FindString(s)
	return strings.ReplaceAll(m, ",", ".")
}

// ParseReviewCount pulls a count out of text like "(1,234)" or
// "1,234 reviews", dropping separators. Returns "" when no digits are
// present.
func ParseReviewCount(s string) string {
	m := reviewCountRegex.FindString(s)
	return digitRegex.ReplaceAllString(m, "")
}
