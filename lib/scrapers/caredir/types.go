package caredir

import (
	"strings"
	"time"

	"leadharvest/lib/records"
	"leadharvest/lib/textutil"
)

// Query pins the directory search: free text plus the geo filter the
// site's own frontend sends.
type Query struct {
	Q     string `json:"q"`
	City  string `json:"city"`
	State string `json:"state"`
	// Point is "lat,lng" as the site encodes it.
	Point    string `json:"point"`
	Distance string `json:"distance"`
}

type Options struct {
	Selectors *SelectorSet
	// BaseURL hosts the results and profile pages.
	BaseURL string
	// APIURL is the internal search endpoint the results page calls.
	APIURL string
	// CaptureWait bounds how long a page may take to fire the search
	// call before the capture provider gives up on it.
	CaptureWait time.Duration
	// NavTimeout bounds browser page loads.
	NavTimeout time.Duration
	// Enrich visits each profile page to fill phone/location/email the
	// search payload leaves empty.
	Enrich bool
}

func (o Options) selectors() SelectorSet {
	if o.Selectors == nil {
		return DefaultSelectors()
	}
	return *o.Selectors
}

func (o Options) baseURL() string {
	if o.BaseURL == "" {
		return "https://doctor.webmd.com"
	}
	return strings.TrimSuffix(o.BaseURL, "/")
}

func (o Options) apiURL() string {
	if o.APIURL == "" {
		return "https://www.webmd.com/kapi/secure/search/care/allresults"
	}
	return o.APIURL
}

func (o Options) captureWait() time.Duration {
	if o.CaptureWait <= 0 {
		return 8 * time.Second
	}
	return o.CaptureWait
}

func (o Options) navTimeout() time.Duration {
	if o.NavTimeout <= 0 {
		return 60 * time.Second
	}
	return o.NavTimeout
}

// APIPathMarker identifies the search call among the page's network
// traffic; the capture provider matches response URLs on it.
const APIPathMarker = "kapi/secure/search/care/allresults"

// searchResponse mirrors the relevant slice of the search endpoint's
// JSON: { "data": { "response": [ ...providers ] } }.
type searchResponse struct {
	Data struct {
		Response []providerPayload `json:"response"`
	} `json:"data"`
}

type providerPayload struct {
	FirstName        string `json:"firstname"`
	LastName         string `json:"lastname"`
	PrimarySpecialty string `json:"primaryspecialty_nis"`
	PhoneNo          string `json:"phoneno"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	City             string `json:"city"`
	State            string `json:"state"`
	Zip              string `json:"zip"`
	URLSeo           string `json:"urlseo"`
	URL              string `json:"url"`
	NPI              string `json:"npi"`
}

// record converts one payload entry into the common record shape.
// Location is the comma-joined non-empty address parts; the profile URL
// is absolutized against the directory host.
func (p providerPayload) record(baseURL string) records.Record {
	var parts []string
	for _, part := range []string{p.Address, p.City, p.State, p.Zip} {
		if cleaned := textutil.Clean(part); cleaned != "" {
			parts = append(parts, cleaned)
		}
	}

	phone := p.PhoneNo
	if phone == "" {
		phone = p.Phone
	}

	return records.Record{
		Name:       textutil.Clean(strings.TrimSpace(p.FirstName + " " + p.LastName)),
		Business:   textutil.Clean(p.PrimarySpecialty),
		Phone:      textutil.Clean(phone),
		Address:    strings.Join(parts, ", "),
		ProfileURL: profileURL(baseURL, p.URLSeo, p.URL),
	}
}

func profileURL(baseURL string, candidates ...string) string {
	for _, slug := range candidates {
		slug = strings.TrimSpace(slug)
		switch {
		case slug == "":
			continue
		case strings.HasPrefix(slug, "http"):
			return slug
		case strings.HasPrefix(slug, "/"):
			return baseURL + slug
		}
	}
	return ""
}
