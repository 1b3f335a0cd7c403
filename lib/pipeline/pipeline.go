// Package pipeline runs a record source against a sink: page by page,
// item by item, with per-item retries, duplicate suppression and
// polite pauses in between. Sources only know how to list and visit
// items; everything about resilience and persistence lives here.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"leadharvest/lib/dedup"
	"leadharvest/lib/records"
	"leadharvest/lib/retryutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("leadharvest.lib.pipeline")

// ErrNoResults reports that the very first page produced nothing, so
// the run as a whole has nothing to show. Later pages coming up empty
// just end the run normally.
var ErrNoResults = errors.New("no results on first page")

// Item is one visitable listing. Visit does whatever fetching and
// extraction the source needs and never partially fails: fields it
// cannot fill stay empty.
type Item struct {
	// Label identifies the item in logs, usually a URL or a name.
	Label string
	Visit func(ctx context.Context) (records.Record, error)
}

// Page is one batch of items plus whether the source can produce more.
type Page struct {
	Items   []Item
	HasMore bool
}

// Source produces pages of items. Page numbers start at 1.
type Source interface {
	Name() string
	Fetch(ctx context.Context, page int) (Page, error)
}

// Options tune a run. Zero values fall back to conservative defaults.
type Options struct {
	// MaxPages caps how many pages are fetched. <=0 means only the
	// first page.
	MaxPages int
	// ItemAttempts is how many times a failing item visit is tried.
	ItemAttempts int
	// RetryDelay is the fixed pause between attempts of the same item.
	RetryDelay time.Duration
	// Politeness is the base pause between consecutive item visits,
	// jittered by half its value.
	Politeness time.Duration
}

func (o Options) maxPages() int {
	if o.MaxPages < 1 {
		return 1
	}
	return o.MaxPages
}

func (o Options) itemAttempts() int {
	if o.ItemAttempts < 1 {
		return 3
	}
	return o.ItemAttempts
}

func (o Options) retryDelay() time.Duration {
	if o.RetryDelay <= 0 {
		return 2 * time.Second
	}
	return o.RetryDelay
}

// Result is the tally of one run.
type Result struct {
	Pages      int
	Seen       int
	Kept       int
	Duplicates int
	Failures   int
}

// Run drains the source into the sink. Items that keep failing are
// logged and skipped; a first page that cannot be fetched or holds no
// items fails the run, as does any sink flush error. Records are
// flushed after every page so an interrupted run keeps what it got.
func Run(ctx context.Context, source Source, sink *records.CSVSink, set *dedup.Set, opts Options) (Result, error) {
	ctx, span := tracer.Start(ctx, "pipeline:Run")
	defer span.End()
	span.SetAttributes(attribute.String("source", source.Name()))

	var result Result

	for pageNum := 1; pageNum <= opts.maxPages(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		page, err := retryutil.DoValue(ctx,
			fmt.Sprintf("%s page %d", source.Name(), pageNum),
			opts.itemAttempts(), opts.retryDelay(),
			func() (Page, error) { return source.Fetch(ctx, pageNum) },
		)
		if err != nil {
			if pageNum == 1 {
				span.RecordError(err)
				span.SetStatus(codes.Error, "first page unreachable")
				return result, fmt.Errorf("fetching first page: %w", err)
			}
			slog.WarnContext(ctx, "stopping at unreachable page",
				"source", source.Name(), "page", pageNum, "err", err)
			break
		}
		result.Pages++

		if len(page.Items) == 0 {
			if pageNum == 1 {
				span.SetStatus(codes.Error, ErrNoResults.Error())
				return result, ErrNoResults
			}
			break
		}

		slog.InfoContext(ctx, "processing page",
			"source", source.Name(), "page", pageNum, "items", len(page.Items))

		for _, item := range page.Items {
			if err := ctx.Err(); err != nil {
				return result, flushOr(sink, err)
			}
			result.Seen++

			record, err := retryutil.DoValue(ctx, item.Label,
				opts.itemAttempts(), opts.retryDelay(), func() (records.Record, error) {
					return item.Visit(ctx)
				})
			if err != nil {
				result.Failures++
				slog.WarnContext(ctx, "skipping item",
					"source", source.Name(), "item", item.Label, "err", err)
				continue
			}

			key := record.Key()
			if set.Seen(key) {
				result.Duplicates++
				slog.DebugContext(ctx, "duplicate suppressed",
					"name", record.Name, "address", record.Address)
				continue
			}
			set.Remember(key)
			sink.Append(record)
			result.Kept++

			if opts.Politeness > 0 {
				if err := retryutil.Wait(ctx, opts.Politeness, opts.Politeness/2); err != nil {
					return result, flushOr(sink, err)
				}
			}
		}

		if err := sink.Flush(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "flush failed")
			return result, fmt.Errorf("writing results: %w", err)
		}

		if !page.HasMore {
			break
		}
	}

	span.SetAttributes(
		attribute.Int("pages", result.Pages),
		attribute.Int("kept", result.Kept),
		attribute.Int("duplicates", result.Duplicates),
		attribute.Int("failures", result.Failures),
	)
	return result, nil
}

// flushOr writes out whatever is pending before surfacing err, keeping
// already extracted records across cancellation.
func flushOr(sink *records.CSVSink, err error) error {
	if flushErr := sink.Flush(); flushErr != nil {
		return errors.Join(err, flushErr)
	}
	return err
}
