package commands

import (
	"errors"
	"time"

	"leadharvest/lib/browser"
	"leadharvest/lib/configutil"
	"leadharvest/lib/pipeline"
	"leadharvest/lib/scrapers/caredir"
	"leadharvest/lib/scrapers/gmaps"
	"leadharvest/lib/scrapers/sitemail"
)

const configFile = "leadharvest.json5"

type RetryConfig struct {
	// Attempts is how many times a failing listing visit is retried
	// before the row is skipped.
	Attempts int `json:"attempts"`
	DelayMS  int `json:"delay_ms"`
}

type MapsConfig struct {
	// Query is the default search when the command gets no argument,
	// e.g. "dentists in Galveston, TX".
	Query string `json:"query"`
	Out   string `json:"out"`
	// MaxResults caps how many listings one run visits.
	MaxResults        int  `json:"max_results"`
	NavTimeoutSeconds int  `json:"nav_timeout_seconds"`
	ScrollPauseMS     int  `json:"scroll_pause_ms"`
	ScrollMax         int  `json:"scroll_max"`
	HuntEmails        bool `json:"hunt_emails"`
	// Selectors overrides the built-in CSS/XPath set when the site
	// ships a new layout before we do.
	Selectors *gmaps.SelectorSet `json:"selectors"`
}

type CareConfig struct {
	// Mode picks the provider: "capture" (browser, reads the site's own
	// search call), "api" (replicates that call directly) or "dom"
	// (plain HTTP against the rendered pages).
	Mode  string        `json:"mode"`
	Query caredir.Query `json:"query"`
	// Target overrides the computed results URL in dom mode.
	Target             string               `json:"target"`
	BaseURL            string               `json:"base_url"`
	APIURL             string               `json:"api_url"`
	CaptureWaitSeconds int                  `json:"capture_wait_seconds"`
	NavTimeoutSeconds  int                  `json:"nav_timeout_seconds"`
	Enrich             bool                 `json:"enrich"`
	MaxPages           int                  `json:"max_pages"`
	Out                string               `json:"out"`
	Selectors          *caredir.SelectorSet `json:"selectors"`
}

type Config struct {
	Browser browser.Options  `json:"browser"`
	Email   sitemail.Options `json:"email"`
	// NearDuplicates is a Jaro-Winkler threshold (0..1); when > 0,
	// same-address records whose names are at least this similar are
	// dropped as duplicates.
	NearDuplicates float64     `json:"near_duplicates"`
	Retry          RetryConfig `json:"retry"`
	// PolitenessMS is the base pause between listing visits.
	PolitenessMS int        `json:"politeness_ms"`
	Maps         MapsConfig `json:"maps"`
	Care         CareConfig `json:"care"`
}

// loadConfig reads leadharvest.json5, searching up from the cwd. No
// file at all is fine: every knob has a compiled-in default.
func loadConfig() (Config, error) {
	cfg, err := configutil.ReadRecursively[Config](configFile)
	if errors.Is(err, configutil.ErrNotFound) {
		return Config{}, nil
	}
	return cfg, err
}

func (c Config) pipelineOptions(maxPages int) pipeline.Options {
	return pipeline.Options{
		MaxPages:     maxPages,
		ItemAttempts: c.Retry.Attempts,
		RetryDelay:   time.Duration(c.Retry.DelayMS) * time.Millisecond,
		Politeness:   time.Duration(c.PolitenessMS) * time.Millisecond,
	}
}

func (c MapsConfig) scraperOptions() gmaps.Options {
	return gmaps.Options{
		Selectors:   c.Selectors,
		MaxResults:  c.MaxResults,
		NavTimeout:  time.Duration(c.NavTimeoutSeconds) * time.Second,
		ScrollPause: time.Duration(c.ScrollPauseMS) * time.Millisecond,
		ScrollMax:   c.ScrollMax,
		HuntEmails:  c.HuntEmails,
	}
}

func (c CareConfig) sourceOptions() caredir.Options {
	return caredir.Options{
		Selectors:   c.Selectors,
		BaseURL:     c.BaseURL,
		APIURL:      c.APIURL,
		CaptureWait: time.Duration(c.CaptureWaitSeconds) * time.Second,
		NavTimeout:  time.Duration(c.NavTimeoutSeconds) * time.Second,
		Enrich:      c.Enrich,
	}
}
