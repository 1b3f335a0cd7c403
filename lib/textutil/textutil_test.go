package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"  Joe's   Pizza \n\t", "Joe's Pizza"},
		{" 4.6 stars", "4.6 stars"},
		{"line1\x00\x1fline2", "line1line2"},
		{"a\tb\nc", "a b c"},
		{"", ""},
	}

	for _, test := range testCases {
		got := Clean(test.input)
		require.Equal(t, test.expected, got)

		for _, r := range got {
			require.False(t, r < 0x20 || r == 0x7f, "control character survived cleaning: %q", got)
		}
		require.NotContains(t, got, "  ")
	}
}

func TestNormalize(t *testing.T) {
	require.Equal(t, "joe's pizza", Normalize("  Joe's   PIZZA "))
	require.Equal(t, "", Normalize(" \t\n"))
}

func TestExtractPhone(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"Call us: (555) 123-4567 now", "(555) 123-4567"},
		{"+1 212-555-0123", "+1 212-555-0123"},
		{"no digits here", ""},
		{"short 12345", ""},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, ExtractPhone(test.input))
	}
}

func TestExtractEmail(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"reach us at office@example.com today", "office@example.com"},
		{"mailto:front.desk+intake@clinic.co.uk", "front.desk+intake@clinic.co.uk"},
		{"nothing @ here", ""},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, ExtractEmail(test.input))
	}
}

func TestParseRating(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"4.6 stars", "4.6"},
		{"Rated 4,6 out of 5", "4.6"},
		{"5", "5"},
		{"no rating", ""},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, ParseRating(test.input))
	}
}

func TestParseReviewCount(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"(1,234)", "1234"},
		{"1,234 reviews", "1234"},
		{"12", "12"},
		{"none", ""},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, ParseReviewCount(test.input))
	}
}
