package commands

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"leadharvest/lib/dedup"
	"leadharvest/lib/pipeline"
	"leadharvest/lib/records"
	"leadharvest/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

// runPipeline drains the source into out and prints the tally. With
// resume true an existing file's rows pre-seed the dedup set, so a
// re-run appends only what the earlier run missed.
func runPipeline(ctx context.Context, source pipeline.Source, out string, layout records.Layout, cfg Config, maxPages int, resume bool) {
	set := dedup.NewSet(dedup.Options{NearThreshold: cfg.NearDuplicates})

	if resume {
		keys, err := records.ReadSeenKeys(out, layout)
		if err != nil {
			serviceutil.Fatal("read previous output", err)
		}
		for _, k := range keys {
			set.Remember(k)
		}
		if len(keys) > 0 {
			slog.InfoContext(ctx, "resuming into existing file", "out", out, "rows", len(keys))
		}
	} else if err := os.Remove(out); err != nil && !errors.Is(err, os.ErrNotExist) {
		serviceutil.Fatal("clear previous output", err)
	}

	sink := records.NewCSVSink(out, layout)

	t1 := time.Now()
	result, err := pipeline.Run(ctx, source, sink, set, cfg.pipelineOptions(maxPages))
	t2 := time.Now()
	if err != nil {
		serviceutil.Fatal("scrape "+source.Name(), err)
	}

	slog.InfoContext(ctx, "scraping time", "seconds", t2.Sub(t1).Seconds())

	t := newTable()
	t.AppendHeader(table.Row{"pages", "seen", "kept", "duplicates", "failures", "out"})
	t.AppendRow(table.Row{result.Pages, result.Seen, result.Kept, result.Duplicates, result.Failures, out})
	t.Render()
}
