package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"leadharvest/lib/dedup"
	"leadharvest/lib/records"

	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	pages    map[int]Page
	fetchErr error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Fetch(ctx context.Context, page int) (Page, error) {
	if f.fetchErr != nil {
		return Page{}, f.fetchErr
	}
	return f.pages[page], nil
}

func listing(name, address string) Item {
	return Item{
		Label: name,
		Visit: func(ctx context.Context) (records.Record, error) {
			return records.Record{Name: name, Address: address}, nil
		},
	}
}

func newSink(t *testing.T) *records.CSVSink {
	t.Helper()
	return records.NewCSVSink(filepath.Join(t.TempDir(), "out.csv"), records.Maps)
}

func fastOpts() Options {
	return Options{
		MaxPages:     10,
		ItemAttempts: 2,
		RetryDelay:   time.Millisecond,
	}
}

func TestRunKeepsOnlyFirstOfRefetchedItems(t *testing.T) {
	// page 2 re-serves all of page 1 plus one new listing; only the
	// new one survives dedup
	source := &fakeSource{pages: map[int]Page{
		1: {
			Items: []Item{
				listing("Joe's Pizza", "1 Main St"),
				listing("Harbor Dental", "2 Main St"),
				listing("Acme Plumbing", "3 Main St"),
			},
			HasMore: true,
		},
		2: {
			Items: []Item{
				listing("Joe's Pizza", "1 Main St"),
				listing("Harbor Dental", "2 Main St"),
				listing("Acme Plumbing", "3 Main St"),
				listing("Bayou Cafe", "4 Main St"),
			},
		},
	}}

	sink := newSink(t)
	result, err := Run(context.Background(), source, sink, dedup.NewSet(dedup.Options{}), fastOpts())
	require.NoError(t, err)

	require.Equal(t, 2, result.Pages)
	require.Equal(t, 7, result.Seen)
	require.Equal(t, 4, result.Kept)
	require.Equal(t, 3, result.Duplicates)
	require.Equal(t, 0, result.Failures)

	keys, err := records.ReadSeenKeys(sink.Path, records.Maps)
	require.NoError(t, err)
	require.Len(t, keys, 4)
}

func TestRunSkipsItemThatKeepsFailing(t *testing.T) {
	visits := 0
	broken := Item{
		Label: "broken",
		Visit: func(ctx context.Context) (records.Record, error) {
			visits++
			return records.Record{}, errors.New("detail page never loaded")
		},
	}

	source := &fakeSource{pages: map[int]Page{
		1: {Items: []Item{
			listing("Joe's Pizza", "1 Main St"),
			broken,
			listing("Harbor Dental", "2 Main St"),
		}},
	}}

	sink := newSink(t)
	opts := fastOpts()
	opts.ItemAttempts = 3

	result, err := Run(context.Background(), source, sink, dedup.NewSet(dedup.Options{}), opts)
	require.NoError(t, err)
	require.Equal(t, 3, visits, "failing item is retried exactly the attempt limit")
	require.Equal(t, 2, result.Kept)
	require.Equal(t, 1, result.Failures)
}

func TestRunFirstPageUnreachable(t *testing.T) {
	source := &fakeSource{fetchErr: errors.New("connection refused")}
	sink := newSink(t)
	opts := fastOpts()
	opts.ItemAttempts = 1

	_, err := Run(context.Background(), source, sink, dedup.NewSet(dedup.Options{}), opts)
	require.Error(t, err)

	// run failure produces no output file
	_, statErr := os.Stat(sink.Path)
	require.True(t, os.IsNotExist(statErr))
}

func TestRunFirstPageEmpty(t *testing.T) {
	source := &fakeSource{pages: map[int]Page{1: {}}}
	sink := newSink(t)

	_, err := Run(context.Background(), source, sink, dedup.NewSet(dedup.Options{}), fastOpts())
	require.ErrorIs(t, err, ErrNoResults)
}

func TestRunStopsAtMaxPages(t *testing.T) {
	// every page claims more are available
	pages := map[int]Page{}
	for i := 1; i <= 5; i++ {
		pages[i] = Page{
			Items:   []Item{listing("Listing "+strings.Repeat("I", i), "addr")},
			HasMore: true,
		}
	}
	source := &fakeSource{pages: pages}

	sink := newSink(t)
	opts := fastOpts()
	opts.MaxPages = 2

	result, err := Run(context.Background(), source, sink, dedup.NewSet(dedup.Options{}), opts)
	require.NoError(t, err)
	require.Equal(t, 2, result.Pages)
}

func TestRunKeepsRecordsWithoutIdentity(t *testing.T) {
	blank := func(label string) Item {
		return Item{
			Label: label,
			Visit: func(ctx context.Context) (records.Record, error) {
				return records.Record{Phone: "555-000-" + label}, nil
			},
		}
	}
	source := &fakeSource{pages: map[int]Page{
		1: {Items: []Item{blank("0001"), blank("0002")}},
	}}

	sink := newSink(t)
	result, err := Run(context.Background(), source, sink, dedup.NewSet(dedup.Options{}), fastOpts())
	require.NoError(t, err)
	require.Equal(t, 2, result.Kept)
	require.Equal(t, 0, result.Duplicates)

	raw, err := os.ReadFile(sink.Path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3, "header plus both identityless rows")
}

func TestRunCancelledContextFlushesPending(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	source := &fakeSource{pages: map[int]Page{
		1: {Items: []Item{
			listing("Joe's Pizza", "1 Main St"),
			{
				Label: "canceller",
				Visit: func(ctx context.Context) (records.Record, error) {
					cancel()
					return records.Record{Name: "Harbor Dental", Address: "2 Main St"}, nil
				},
			},
			listing("Never Visited", "3 Main St"),
		}},
	}}

	sink := newSink(t)
	result, err := Run(ctx, source, sink, dedup.NewSet(dedup.Options{}), fastOpts())
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 2, result.Kept)

	keys, readErr := records.ReadSeenKeys(sink.Path, records.Maps)
	require.NoError(t, readErr)
	require.Len(t, keys, 2, "records extracted before cancellation are on disk")
}
