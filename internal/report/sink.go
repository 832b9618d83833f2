package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/mdifflin/paperledger/internal/fulfill"
)

// ResultRow is what the reporting sink receives for each processed
// request: outcome plus the financial state right after it.
type ResultRow struct {
	RequestID      int
	Token          string
	Job            string
	Event          string
	RequestDate    string
	Status         fulfill.Status
	ResponseText   string
	CashBalance    decimal.Decimal
	InventoryValue decimal.Decimal
}

// WriteCSV writes result rows with a header line. The column set is what
// downstream reporting tools read; changing it breaks them.
func WriteCSV(w io.Writer, rows []ResultRow) error {
	cw := csv.NewWriter(w)

	header := []string{
		"request_id", "token", "job", "event", "request_date",
		"status", "response", "cash_balance", "inventory_value",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write results header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			fmt.Sprintf("%d", row.RequestID),
			row.Token,
			row.Job,
			row.Event,
			row.RequestDate,
			string(row.Status),
			row.ResponseText,
			row.CashBalance.StringFixed(2),
			row.InventoryValue.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write result row %d: %w", row.RequestID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush results: %w", err)
	}
	return nil
}
