package commands

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"leadharvest/lib/browser"
	"leadharvest/lib/records"
	"leadharvest/lib/scrapers/gmaps"
	"leadharvest/lib/scrapers/sitemail"
	"leadharvest/lib/serviceutil"

	"github.com/spf13/cobra"
)

var mapsOut *string
var mapsMaxResults *int
var mapsHeadful *bool
var mapsHuntEmails *bool
var mapsResume *bool

func init() {
	mapsOut = mapsCmd.Flags().String("out", "", "The CSV file to write to. Defaults to a timestamped name.")
	mapsMaxResults = mapsCmd.Flags().Int("max-results", 0, "Cap on how many listings to visit.")
	mapsHeadful = mapsCmd.Flags().Bool("headful", false, "Show the browser window instead of running headless.")
	mapsHuntEmails = mapsCmd.Flags().Bool("hunt-emails", false, "Visit listing websites to look for contact emails.")
	mapsResume = mapsCmd.Flags().Bool("resume", false, "Append to an existing output file, skipping rows it already has.")
	rootCmd.AddCommand(mapsCmd)
}

var mapsCmd = &cobra.Command{
	Use:   "maps [flags] <search query>",
	Short: "Scrapes the map search's business listings for a query and writes them to CSV.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			serviceutil.Fatal("read config", err)
		}

		query := strings.Join(args, " ")
		if query == "" {
			query = cfg.Maps.Query
		}
		if query == "" {
			serviceutil.Fatal("no search query",
				errors.New("pass a query argument or set maps.query in "+configFile))
		}

		out := *mapsOut
		if out == "" {
			out = cfg.Maps.Out
		}
		if out == "" {
			out = records.TimestampedPath("google_maps_results", time.Now())
		}

		opts := cfg.Maps.scraperOptions()
		if *mapsMaxResults > 0 {
			opts.MaxResults = *mapsMaxResults
		}
		if *mapsHuntEmails {
			opts.HuntEmails = true
		}

		browserOpts := cfg.Browser
		if *mapsHeadful {
			headless := false
			browserOpts.Headless = &headless
		}

		ctx := cmd.Context()
		session, err := browser.NewSession(ctx, browserOpts)
		if err != nil {
			serviceutil.Fatal("launch chrome", err)
		}
		defer session.Close()

		var hunter *sitemail.Hunter
		if opts.HuntEmails {
			hunter, err = sitemail.NewHunter(cfg.Email)
			if err != nil {
				serviceutil.Fatal("init email hunter", err)
			}
		}

		slog.InfoContext(ctx, "scraping map listings", "query", query, "out", out)
		source := gmaps.New(session, hunter, query, opts)
		runPipeline(ctx, source, out, records.Maps, cfg, 1, *mapsResume)
	},
}
