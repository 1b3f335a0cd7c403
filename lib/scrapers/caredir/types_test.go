package caredir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProviderPayloadRecord(t *testing.T) {
	testCases := []struct {
		name       string
		payload    providerPayload
		recordName string
		phone      string
		address    string
		profileURL string
	}{
		{
			name: "full payload",
			payload: providerPayload{
				FirstName:        "Maria",
				LastName:         "Nguyen",
				PrimarySpecialty: "Family Medicine",
				PhoneNo:          "(409) 765-1234",
				Address:          "910 Harborside Dr",
				City:             "Galveston",
				State:            "TX",
				Zip:              "77550",
				URLSeo:           "/doctor/maria-nguyen-md",
			},
			recordName: "Maria Nguyen",
			phone:      "(409) 765-1234",
			address:    "910 Harborside Dr, Galveston, TX, 77550",
			profileURL: "https://doctor.webmd.com/doctor/maria-nguyen-md",
		},
		{
			name: "alternate phone field and absolute url",
			payload: providerPayload{
				FirstName: "Sam",
				LastName:  "Ortiz",
				Phone:     "409 765 9999",
				URL:       "https://doctor.webmd.com/doctor/sam-ortiz",
			},
			recordName: "Sam Ortiz",
			phone:      "409 765 9999",
			address:    "",
			profileURL: "https://doctor.webmd.com/doctor/sam-ortiz",
		},
		{
			name:       "missing slug yields no profile url",
			payload:    providerPayload{LastName: "Chen", City: "Texas City", State: "TX"},
			recordName: "Chen",
			address:    "Texas City, TX",
			profileURL: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			record := tc.payload.record("https://doctor.webmd.com")
			require.Equal(t, tc.recordName, record.Name)
			require.Equal(t, tc.phone, record.Phone)
			require.Equal(t, tc.address, record.Address)
			require.Equal(t, tc.profileURL, record.ProfileURL)
		})
	}
}

func TestParseSearchBody(t *testing.T) {
	body := []byte(`{
		"data": {
			"response": [
				{"firstname": "Maria", "lastname": "Nguyen", "urlseo": "/doctor/maria-nguyen-md"},
				{"firstname": "Sam", "lastname": "Ortiz"}
			]
		}
	}`)

	payload, err := parseSearchBody(body)
	require.NoError(t, err)
	require.Len(t, payload.Data.Response, 2)
	require.Equal(t, "Maria", payload.Data.Response[0].FirstName)

	_, err = parseSearchBody([]byte("<html>blocked</html>"))
	require.Error(t, err)

	payload, err = parseSearchBody([]byte(`{"data": {}}`))
	require.NoError(t, err)
	require.Empty(t, payload.Data.Response)
}

func TestAPIParamsPaging(t *testing.T) {
	q := Query{Q: "dermatology", State: "TX", Point: "29.3838,-94.9027", Distance: "40"}

	first := apiParams(q, 1)
	require.Equal(t, "0", first["start"])
	require.Equal(t, "dermatology", first["q"])
	require.Equal(t, "29.3838,-94.9027", first["pt"])
	require.Equal(t, "40", first["d"])
	require.Equal(t, "bestmatch", first["sortby"])

	require.Equal(t, "10", apiParams(q, 2)["start"])
	require.Equal(t, "40", apiParams(q, 5)["start"])
}
