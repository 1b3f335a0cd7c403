package emailutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"mailto:Office@Clinic.com?subject=Appointment", "office@clinic.com"},
		{"  contact@joes.pizza. ", "contact@joes.pizza"},
		{"<info@shop.example.net>", "info@shop.example.net"},
		{"icon@2x.png", ""},
		{"user@example.com", ""},
		{"not an email", ""},
		{"", ""},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, Sanitize(test.input))
	}
}

func TestValid(t *testing.T) {
	testCases := []struct {
		input    string
		expected bool
	}{
		{"office@clinic.com", true},
		{"noreply@clinic.com", false},
		{"logo@3x.jpeg", false},
		{"team@sentry.io", false},
		{"trailing@clinic.com extra", false},
		{"", false},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, Valid(test.input))
	}
}
