package records

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"

	"leadharvest/lib/dedup"
)

// utf-8 signature, kept for spreadsheet compatibility
var bom = []byte{0xEF, 0xBB, 0xBF}

// CSVSink accumulates records in memory and writes them out once at the
// end of a run. Nothing touches the filesystem until Flush, so a failed
// run leaves no output file behind.
type CSVSink struct {
	Path string

	layout  Layout
	pending []Record
}

func NewCSVSink(path string, layout Layout) *CSVSink {
	return &CSVSink{Path: path, layout: layout}
}

func (s *CSVSink) Append(r Record) {
	s.pending = append(s.pending, r)
}

func (s *CSVSink) Len() int {
	return len(s.pending)
}

// Flush appends all pending records to the output file, creating it with
// the BOM and header row when it does not exist yet. Appending to a file
// from an earlier run never repeats the header.
func (s *CSVSink) Flush() error {
	f, err := os.OpenFile(s.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return err
	}
	fresh := st.Size() == 0

	if fresh {
		if _, err := f.Write(bom); err != nil {
			return err
		}
	}

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(s.layout.Headers); err != nil {
			return err
		}
	}
	for _, r := range s.pending {
		if err := w.Write(s.layout.Row(r)); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}

	slog.Info("flushed records", "path", s.Path, "rows", len(s.pending), "created", fresh)
	s.pending = s.pending[:0]
	return nil
}

// ReadSeenKeys scans an output file from an earlier run and rebuilds the
// dedup keys of its rows, skipping the BOM and the header. A missing
// file yields no keys.
func ReadSeenKeys(path string, layout Layout) ([]dedup.Key, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	head, _ := br.Peek(3)
	if bytes.Equal(head, bom) {
		if _, err := br.Discard(3); err != nil {
			return nil, err
		}
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	var keys []dedup.Key
	header := true
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if header {
			header = false
			continue
		}
		k := layout.Key(row)
		if !k.Empty() {
			keys = append(keys, k)
		}
	}
	return keys, nil
}
