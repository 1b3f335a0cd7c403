package records

import (
	"fmt"
	"time"

	"leadharvest/lib/dedup"
)

// Record is one extracted listing. Every field is a string and absence
// is an empty string, not an error: a blank cell means the site never
// showed that field.
type Record struct {
	Name       string
	Business   string
	Phone      string
	Address    string
	Rating     string
	Reviews    string
	Email      string
	Website    string
	ProfileURL string
}

func (r Record) Key() dedup.Key {
	return dedup.KeyOf(r.Name, r.Address)
}

// Layout fixes the CSV column set for one source and knows how to
// rebuild a dedup key from a previously written row (resume mode).
type Layout struct {
	Headers []string
	Row     func(Record) []string
	Key     func(row []string) dedup.Key
}

// Maps is the column set of the map-search output.
var Maps = Layout{
	Headers: []string{"Business Name", "Phone Number", "Website", "Address", "Rating", "Reviews", "Email"},
	Row: func(r Record) []string {
		return []string{r.Name, r.Phone, r.Website, r.Address, r.Rating, r.Reviews, r.Email}
	},
	Key: func(row []string) dedup.Key {
		if len(row) < 4 {
			return dedup.Key{}
		}
		return dedup.KeyOf(row[0], row[3])
	},
}

// Care is the column set of the directory output.
var Care = Layout{
	Headers: []string{"Name", "Business Name", "Email", "WhatsApp/Phone", "Location", "Profile URL"},
	Row: func(r Record) []string {
		return []string{r.Name, r.Business, r.Email, r.Phone, r.Address, r.ProfileURL}
	},
	Key: func(row []string) dedup.Key {
		if len(row) < 5 {
			return dedup.Key{}
		}
		return dedup.KeyOf(row[0], row[4])
	},
}

// TimestampedPath builds the per-run output filename, e.g.
// google_maps_results_20240501_153012.csv.
func TimestampedPath(prefix string, now time.Time) string {
	return fmt.Sprintf("%s_%s.csv", prefix, now.Format("20060102_150405"))
}
