package records

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"leadharvest/lib/dedup"

	"github.com/stretchr/testify/require"
)

func TestFlushWritesBOMAndHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	sink := NewCSVSink(path, Maps)

	sink.Append(Record{Name: "Joe's Pizza", Phone: "(555) 123-4567", Address: "1 Main St"})
	require.NoError(t, sink.Flush())
	require.Equal(t, 0, sink.Len())

	sink.Append(Record{Name: "Harbor Dental", Address: "99 Harbor Blvd"})
	require.NoError(t, sink.Flush())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	require.True(t, len(raw) > 3)
	require.Equal(t, []byte{0xEF, 0xBB, 0xBF}, raw[:3])

	content := string(raw[3:])
	require.Equal(t, 1, strings.Count(content, "Business Name,Phone Number"))
	require.Contains(t, content, "Joe's Pizza")
	require.Contains(t, content, "Harbor Dental")
}

func TestFlushWithoutRecordsStillCreatesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	sink := NewCSVSink(path, Care)

	require.NoError(t, sink.Flush())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), "Name,Business Name,Email,WhatsApp/Phone,Location,Profile URL")
}

func TestReadSeenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.csv")
	sink := NewCSVSink(path, Maps)
	sink.Append(Record{Name: "Joe's Pizza", Address: "1 Main St"})
	sink.Append(Record{Name: "Harbor Dental", Address: "99 Harbor Blvd"})
	require.NoError(t, sink.Flush())

	keys, err := ReadSeenKeys(path, Maps)
	require.NoError(t, err)
	require.Equal(t, []dedup.Key{
		dedup.KeyOf("Joe's Pizza", "1 Main St"),
		dedup.KeyOf("Harbor Dental", "99 Harbor Blvd"),
	}, keys)
}

func TestReadSeenKeysMissingFile(t *testing.T) {
	keys, err := ReadSeenKeys(filepath.Join(t.TempDir(), "nope.csv"), Maps)
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestTimestampedPath(t *testing.T) {
	now := time.Date(2024, 5, 1, 15, 30, 12, 0, time.UTC)
	require.Equal(
		t,
		"google_maps_results_20240501_153012.csv",
		TimestampedPath("google_maps_results", now),
	)
}
