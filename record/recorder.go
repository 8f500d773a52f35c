// Package record writes the append-only event log of an experiment: one
// UTF-8 CSV file with a fixed-then-user column layout. The file is opened
// and closed around every write so a crash mid-experiment loses at most
// the row being written.
package record

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Errors returned by recorder construction and writes.
var (
	// ErrReservedColumn indicates an info key or user column colliding
	// with a fixed column name.
	ErrReservedColumn = errors.New("reserved column name")

	// ErrUnknownColumn indicates a recorded value for an undeclared
	// column.
	ErrUnknownColumn = errors.New("unknown column")
)

// fixedColumns lead every row; "code" separates the experiment info from
// the user columns.
var fixedColumns = []string{
	"psykit_version", "start_date", "start_time", "offset", "trial", "time",
}

const codeColumn = "code"

// Field is one experiment-info key/value pair; ordered, so the header is
// reproducible.
type Field struct {
	Key, Value string
}

// Recorder appends trial events to a CSV file.
type Recorder struct {
	path    string
	version string
	started time.Time
	info    []Field
	columns []string
	index   map[string]bool
}

// New validates the column layout and returns a recorder writing to path.
// Nothing is written until WriteHeader.
func New(path, version string, started time.Time, info []Field, columns []string) (*Recorder, error) {
	reserved := make(map[string]bool, len(fixedColumns)+1)
	for _, c := range fixedColumns {
		reserved[c] = true
	}
	reserved[codeColumn] = true

	for _, f := range info {
		if reserved[f.Key] {
			return nil, fmt.Errorf("%w: info key %q", ErrReservedColumn, f.Key)
		}
	}
	index := make(map[string]bool, len(columns))
	for _, c := range columns {
		if reserved[c] {
			return nil, fmt.Errorf("%w: %q", ErrReservedColumn, c)
		}
		index[c] = true
	}

	return &Recorder{
		path:    path,
		version: version,
		started: started,
		info:    info,
		columns: columns,
		index:   index,
	}, nil
}

// WriteHeader truncates the file and writes the column header. Called once
// at experiment start.
func (r *Recorder) WriteHeader() error {
	header := append([]string{}, fixedColumns...)
	for _, f := range r.info {
		header = append(header, f.Key)
	}
	header = append(header, codeColumn)
	header = append(header, r.columns...)

	return r.writeRow(os.O_CREATE|os.O_TRUNC|os.O_WRONLY, header)
}

// Record appends one event row. offset and trial are the experiment
// counters, at is the event time relative to experiment start, code names
// the event, and values fills the user columns; missing values record as
// empty strings.
func (r *Recorder) Record(offset, trial int, at time.Duration, code string, values map[string]string) error {
	for k := range values {
		if !r.index[k] {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, k)
		}
	}

	row := []string{
		r.version,
		r.started.Format("2006-01-02"),
		r.started.Format("15:04:05"),
		strconv.Itoa(offset),
		strconv.Itoa(trial),
		strconv.FormatFloat(at.Seconds(), 'f', -1, 64),
	}
	for _, f := range r.info {
		row = append(row, f.Value)
	}
	row = append(row, code)
	for _, c := range r.columns {
		row = append(row, values[c])
	}

	return r.writeRow(os.O_CREATE|os.O_APPEND|os.O_WRONLY, row)
}

// writeRow opens the file with the given flags, writes one CSV row and
// closes it again.
func (r *Recorder) writeRow(flags int, row []string) error {
	f, err := os.OpenFile(r.path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("open record file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(row); err != nil {
		_ = f.Close()
		return fmt.Errorf("write record row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush record row: %w", err)
	}
	return f.Close()
}
