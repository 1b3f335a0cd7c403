package caredir

import (
	"context"
	"testing"

	"leadharvest/lib/records"

	"github.com/stretchr/testify/require"
)

func TestEnrichFillsOnlyEmptyFields(t *testing.T) {
	server := serveDirectory(t, map[string]string{
		"/doctor/maria-nguyen-md": `<html><body>
			<h1>Maria Nguyen, MD</h1>
			<div class="prov-specialty">Family Medicine</div>
			<div class="adr">910 Harborside Dr, Galveston, TX</div>
			<a href="tel:+14097651234">(409) 765-1234</a>
			<a href="https://nguyen-family-medicine.example">Visit Website</a>
		</body></html>`,
	})

	client, err := newHTTPClient()
	require.NoError(t, err)
	enricher := newEnricher(client, Options{}, nil)

	record := records.Record{
		Name:       "Maria Nguyen",
		Phone:      "(555) 000-0000",
		ProfileURL: server.URL + "/doctor/maria-nguyen-md",
	}
	enricher.Enrich(context.Background(), &record)

	// payload values win over profile page values
	require.Equal(t, "Maria Nguyen", record.Name)
	require.Equal(t, "(555) 000-0000", record.Phone)

	// blanks are filled
	require.Equal(t, "Family Medicine", record.Business)
	require.Equal(t, "910 Harborside Dr, Galveston, TX", record.Address)
	require.Equal(t, "https://nguyen-family-medicine.example", record.Website)
}

func TestEnrichMissingProfileLeavesRecordIntact(t *testing.T) {
	server := serveDirectory(t, map[string]string{
		"/results": `<html><body>results</body></html>`,
	})

	client, err := newHTTPClient()
	require.NoError(t, err)
	enricher := newEnricher(client, Options{}, nil)

	// /doctor/gone is not served, so the fetch 404s and enrichment is
	// skipped wholesale
	record := records.Record{Name: "Sam Ortiz", ProfileURL: server.URL + "/doctor/gone"}
	before := record
	enricher.Enrich(context.Background(), &record)
	require.Equal(t, before, record)
}

func TestResultsURL(t *testing.T) {
	link := ResultsURL("https://doctor.webmd.com",
		Query{City: "Texas City", State: "TX", Point: "29.3838,-94.9027", Distance: "40"}, 2)

	require.Contains(t, link, "https://doctor.webmd.com/results?")
	require.Contains(t, link, "pagenumber=2")
	require.Contains(t, link, "city=Texas+City")
	require.Contains(t, link, "pt=29.3838%2C-94.9027")
	require.Contains(t, link, "state=TX")
	require.Contains(t, link, "d=40")
}
