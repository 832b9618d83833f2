// Package report loads request feeds, drives batch processing, and writes
// the per-request results a reporting sink consumes.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mdifflin/paperledger/internal/fulfill"
	"github.com/mdifflin/paperledger/internal/ledger"
)

// feedDateLayout is the date format request feeds arrive in (MM/DD/YY).
const feedDateLayout = "01/02/06"

// LoadRequests reads a request feed CSV: columns job, need_size, event,
// request_date, plus an optional request (or response) free-text column.
//
// Dates are normalized from MM/DD/YY to ISO. Rows whose date cannot be
// parsed are dropped with a warning - the feed historically contains a
// few, and dropping beats guessing. Surviving rows are sorted by date
// (stable, so feed order breaks ties).
func LoadRequests(r io.Reader) ([]fulfill.Request, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("request feed: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("request feed: read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"job", "need_size", "event", "request_date"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("request feed: missing column %q", required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var requests []fulfill.Request
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("request feed: line %d: %w", line, err)
		}

		rawDate := field(record, "request_date")
		date, err := parseFeedDate(rawDate)
		if err != nil {
			slog.Warn("dropping feed row with unparseable date",
				"line", line,
				"request_date", rawDate)
			continue
		}

		text := field(record, "request")
		if text == "" {
			text = field(record, "response")
		}

		requests = append(requests, fulfill.Request{
			Job:         field(record, "job"),
			NeedSize:    fulfill.NeedSize(field(record, "need_size")),
			Event:       field(record, "event"),
			RequestText: text,
			RequestDate: date.Format(ledger.DateLayout),
		})
	}

	sort.SliceStable(requests, func(i, j int) bool {
		return requests[i].RequestDate < requests[j].RequestDate
	})

	return requests, nil
}

// LoadRequestsFile opens path and loads its request feed.
func LoadRequestsFile(path string) ([]fulfill.Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("request feed: open %s: %w", path, err)
	}
	defer f.Close()
	return LoadRequests(f)
}

// parseFeedDate accepts feed-native MM/DD/YY and already-normalized ISO
// dates.
func parseFeedDate(s string) (time.Time, error) {
	if t, err := time.Parse(feedDateLayout, s); err == nil {
		return t, nil
	}
	return ledger.ParseDate(s)
}
