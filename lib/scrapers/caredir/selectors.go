package caredir

// SelectorSet is every DOM hook the directory scraper relies on, as
// ordered fallback lists, overridable from the config file.
type SelectorSet struct {
	ConsentCSS   []string `json:"consent_css"`
	ConsentXPath []string `json:"consent_xpath"`
	// ResultsReady marks a rendered results page.
	ResultsReady []string `json:"results_ready"`
	// ProfileLinks yields anchors pointing at provider profiles.
	ProfileLinks []string `json:"profile_links"`

	Name      []string `json:"name"`
	Specialty []string `json:"specialty"`
	Location  []string `json:"location"`
	Phone     []string `json:"phone"`
}

func DefaultSelectors() SelectorSet {
	return SelectorSet{
		ConsentCSS: []string{
			"#onetrust-accept-btn-handler",
		},
		ConsentXPath: []string{
			`//button[contains(., "Accept")]`,
			`//button[contains(., "I Agree")]`,
		},
		ResultsReady: []string{
			".provider-details",
			"a[href*='/doctor/']",
		},
		ProfileLinks: []string{
			".provider-details a[href*='/doctor/']",
			"a[href*='/doctor/']",
		},
		Name: []string{
			"h1",
		},
		Specialty: []string{
			".prov-specialty",
			".provider-specialties",
			"[data-qa='provider-specialties']",
		},
		Location: []string{
			".adr",
			"address",
			"[itemprop='address']",
		},
		Phone: []string{
			".prov-phone",
			"a[href^='tel:']",
			"[data-qa='provider-phone']",
		},
	}
}
