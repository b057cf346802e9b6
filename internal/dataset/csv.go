package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"engagerag/internal/domain"
)

var requiredColumns = []string{
	"post_id", "post_type", "timestamp", "likes", "comments", "shares", "views", "content", "day_of_week", "hour",
}

var timestampLayouts = []string{"2006-01-02 15:04:05", time.RFC3339, "2006-01-02T15:04:05"}

// CSVFile reads records from a CSV file with a header row.
type CSVFile struct {
	Path string
}

func NewCSVFile(path string) *CSVFile { return &CSVFile{Path: path} }

func (c *CSVFile) Name() string { return c.Path }

// Open parses the whole file. A missing file yields ErrNotFound.
func (c *CSVFile) Open(ctx context.Context) (*Handle, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, c.Path)
		}
		return nil, err
	}
	defer f.Close()
	records, err := ReadCSV(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.Path, err)
	}
	return NewHandle(records, nil), nil
}

// ReadCSV decodes engagement records from r.
func ReadCSV(ctx context.Context, r io.Reader) ([]domain.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var out []domain.Record
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rec, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseRow(row []string, cols map[string]int) (domain.Record, error) {
	get := func(name string) string {
		i := cols[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	var rec domain.Record
	var err error
	rec.PostID = get("post_id")
	if rec.PostType, err = domain.ParsePostType(get("post_type")); err != nil {
		return rec, err
	}
	if ts := get("timestamp"); ts != "" {
		if rec.Timestamp, err = parseTimestamp(ts); err != nil {
			return rec, err
		}
	}
	ints := []struct {
		name string
		dst  *int
	}{
		{"likes", &rec.Likes}, {"comments", &rec.Comments}, {"shares", &rec.Shares},
		{"views", &rec.Views}, {"hour", &rec.Hour},
	}
	for _, f := range ints {
		if *f.dst, err = parseCount(get(f.name)); err != nil {
			return rec, fmt.Errorf("%s: %w", f.name, err)
		}
	}
	if i := cols["content"]; i < len(row) {
		rec.Content = row[i]
	}
	if rec.DayOfWeek, err = domain.ParseWeekday(get("day_of_week")); err != nil {
		return rec, err
	}
	return rec, rec.Validate()
}

// parseCount accepts "12" as well as "12.0", which pandas writes for
// integer columns that once held a NaN.
func parseCount(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int(f), nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
