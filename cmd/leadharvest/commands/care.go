package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"leadharvest/lib/browser"
	"leadharvest/lib/pipeline"
	"leadharvest/lib/records"
	"leadharvest/lib/scrapers/caredir"
	"leadharvest/lib/scrapers/sitemail"
	"leadharvest/lib/serviceutil"

	"github.com/spf13/cobra"
)

var careMode *string
var carePages *int
var careOut *string
var careEnrich *bool
var careResume *bool

func init() {
	careMode = careCmd.Flags().String("mode", "", "Provider to use: capture, api or dom. Defaults to capture.")
	carePages = careCmd.Flags().Int("pages", 0, "How many result pages to walk.")
	careOut = careCmd.Flags().String("out", "", "The CSV file to write to. Defaults to a timestamped name.")
	careEnrich = careCmd.Flags().Bool("enrich", false, "Visit each profile page to fill fields the search payload leaves empty.")
	careResume = careCmd.Flags().Bool("resume", false, "Append to an existing output file, skipping rows it already has.")
	rootCmd.AddCommand(careCmd)
}

var careCmd = &cobra.Command{
	Use:   "care [flags] [search terms]",
	Short: "Scrapes the care directory's provider listings and writes them to CSV.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			serviceutil.Fatal("read config", err)
		}

		query := cfg.Care.Query
		if len(args) > 0 {
			query.Q = strings.Join(args, " ")
		}
		if query.Q == "" && cfg.Care.Target == "" {
			serviceutil.Fatal("no search terms",
				errors.New("pass search terms or set care.query.q in "+configFile))
		}

		mode := *careMode
		if mode == "" {
			mode = cfg.Care.Mode
		}
		if mode == "" {
			mode = "capture"
		}

		out := *careOut
		if out == "" {
			out = cfg.Care.Out
		}
		if out == "" {
			out = records.TimestampedPath("webmd", time.Now())
		}

		maxPages := *carePages
		if maxPages <= 0 {
			maxPages = cfg.Care.MaxPages
		}
		if maxPages <= 0 {
			maxPages = 1
		}

		opts := cfg.Care.sourceOptions()
		if *careEnrich {
			opts.Enrich = true
		}

		var hunter *sitemail.Hunter
		if opts.Enrich {
			hunter, err = sitemail.NewHunter(cfg.Email)
			if err != nil {
				serviceutil.Fatal("init email hunter", err)
			}
		}

		ctx := cmd.Context()

		var source pipeline.Source
		switch mode {
		case "capture":
			session, err := browser.NewSession(ctx, cfg.Browser)
			if err != nil {
				serviceutil.Fatal("launch chrome", err)
			}
			defer session.Close()

			source, err = caredir.NewCaptureSource(session, query, opts, hunter)
			if err != nil {
				serviceutil.Fatal("init capture provider", err)
			}
		case "api":
			source, err = caredir.NewAPISource(query, opts, hunter)
			if err != nil {
				serviceutil.Fatal("init api provider", err)
			}
		case "dom":
			target := cfg.Care.Target
			if target == "" {
				target = opts.SearchPage(query, 1)
			}
			source, err = caredir.NewDOMSource(target, opts, hunter)
			if err != nil {
				serviceutil.Fatal("init dom provider", err)
			}
		default:
			serviceutil.Fatal("unknown mode", fmt.Errorf("%q is not one of capture, api, dom", mode))
		}

		slog.InfoContext(ctx, "scraping care providers",
			"mode", mode, "query", query.Q, "pages", maxPages, "out", out)
		runPipeline(ctx, source, out, records.Care, cfg, maxPages, *careResume)
	},
}
