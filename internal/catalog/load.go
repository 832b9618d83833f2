package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

// LoadCSV reads catalog rows from CSV with a header line.
// Required columns: item_name, category, unit_price. Column order is free;
// unknown columns are ignored.
func LoadCSV(r io.Reader) ([]Item, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("catalog csv: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("catalog csv: read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"item_name", "category", "unit_price"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("catalog csv: missing column %q", required)
		}
	}

	var items []Item
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("catalog csv: line %d: %w", line, err)
		}

		unitPrice, err := decimal.NewFromString(strings.TrimSpace(record[cols["unit_price"]]))
		if err != nil {
			return nil, fmt.Errorf("catalog csv: line %d: bad unit_price: %w", line, err)
		}

		items = append(items, Item{
			Name:      strings.TrimSpace(record[cols["item_name"]]),
			Category:  strings.TrimSpace(record[cols["category"]]),
			UnitPrice: unitPrice,
		})
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("catalog csv: no data rows")
	}
	return items, nil
}

// LoadFile opens path and builds a catalog from its CSV contents.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()

	items, err := LoadCSV(f)
	if err != nil {
		return nil, err
	}
	return New(items)
}
