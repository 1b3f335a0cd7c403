package gmaps

// SelectorSet holds every DOM hook the map search scraper relies on,
// as ordered fallback lists. The markup these point at changes without
// notice, so the whole set can be overridden from the config file
// instead of recompiling.
type SelectorSet struct {
	// Feed locates the scrollable results list.
	Feed []string `json:"feed"`
	// Items yields the anchors of individual listings inside the feed.
	Items []string `json:"items"`
	// ConsentCSS and ConsentXPath are dismissal candidates for the
	// consent interstitial. The xpath forms also reach buttons inside
	// in-process consent iframes.
	ConsentCSS   []string `json:"consent_css"`
	ConsentXPath []string `json:"consent_xpath"`

	Name    []string `json:"name"`
	Phone   []string `json:"phone"`
	Website []string `json:"website"`
	Address []string `json:"address"`
	Rating  []string `json:"rating"`
	Reviews []string `json:"reviews"`
}

func DefaultSelectors() SelectorSet {
	return SelectorSet{
		Feed: []string{
			"div[role='feed']",
			"div[aria-label*='results']",
		},
		Items: []string{
			"div[role='feed'] a.hfpxzc",
			"a.hfpxzc",
			"div[role='feed'] div.Nv2PK a[href*='/maps/place']",
			"div[role='article'] a[href*='/maps/place']",
		},
		ConsentCSS: []string{
			"button[aria-label='Accept all']",
			"form[action*='consent'] button",
		},
		ConsentXPath: []string{
			`//button[contains(., "I agree")]`,
			`//button[contains(., "Accept all")]`,
			`//button[contains(., "Agree")]`,
			`//button[contains(., "Accept")]`,
		},
		Name: []string{
			"div[role='main'] h1.DUwDvf",
			"div[role='main'] h1[aria-level='1']",
			"div[role='main'] h1",
			"h1.DUwDvf",
		},
		Phone: []string{
			"button[data-item-id^='phone']",
			"a[href^='tel:']",
		},
		Website: []string{
			"a[data-item-id='authority']",
			"a[aria-label*='Website']",
			"div[role='main'] a[href^='http']",
		},
		Address: []string{
			"button[data-item-id^='address']",
			"button[aria-label*='Address']",
		},
		Rating: []string{
			"div[role='main'] span[aria-label*='stars']",
			"span.F7nice span[aria-label]",
			"span.F7nice",
		},
		Reviews: []string{
			"div[role='main'] button[aria-label*='reviews']",
			"span.F7nice span:nth-child(2)",
		},
	}
}
