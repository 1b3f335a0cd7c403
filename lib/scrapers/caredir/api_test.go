package caredir

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const searchFixture = `{
	"data": {
		"response": [
			{
				"firstname": "Maria",
				"lastname": "Nguyen",
				"primaryspecialty_nis": "Family Medicine",
				"phoneno": "(409) 765-1234",
				"address": "910 Harborside Dr",
				"city": "Galveston",
				"state": "TX",
				"zip": "77550",
				"urlseo": "/doctor/maria-nguyen-md"
			},
			{
				"firstname": "Sam",
				"lastname": "Ortiz",
				"primaryspecialty_nis": "Dermatology"
			}
		]
	}
}`

func TestAPISourceFetch(t *testing.T) {
	var gotStart, gotReferer string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotStart = r.URL.Query().Get("start")
		gotReferer = r.Header.Get("referer")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchFixture))
	}))
	defer server.Close()

	source, err := NewAPISource(
		Query{State: "TX", Point: "29.3838,-94.9027", Distance: "40"},
		Options{APIURL: server.URL, BaseURL: "https://doctor.webmd.com"},
		nil,
	)
	require.NoError(t, err)

	page, err := source.Fetch(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.True(t, page.HasMore)
	require.Equal(t, "10", gotStart)
	require.Equal(t, "https://doctor.webmd.com/", gotReferer)

	record, err := page.Items[0].Visit(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Maria Nguyen", record.Name)
	require.Equal(t, "Family Medicine", record.Business)
	require.Equal(t, "(409) 765-1234", record.Phone)
	require.Equal(t, "910 Harborside Dr, Galveston, TX, 77550", record.Address)
	require.Equal(t, "https://doctor.webmd.com/doctor/maria-nguyen-md", record.ProfileURL)

	// the sparse payload still yields a record, just with empty fields
	record, err = page.Items[1].Visit(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Sam Ortiz", record.Name)
	require.Empty(t, record.Phone)
	require.Empty(t, record.ProfileURL)
}

func TestAPISourceFetchRejectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	source, err := NewAPISource(Query{}, Options{APIURL: server.URL}, nil)
	require.NoError(t, err)

	_, err = source.Fetch(context.Background(), 1)
	require.ErrorContains(t, err, "403")
}

func TestAPISourceEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": {"response": []}}`))
	}))
	defer server.Close()

	source, err := NewAPISource(Query{}, Options{APIURL: server.URL}, nil)
	require.NoError(t, err)

	page, err := source.Fetch(context.Background(), 1)
	require.NoError(t, err)
	require.Empty(t, page.Items)
	require.False(t, page.HasMore)
}
