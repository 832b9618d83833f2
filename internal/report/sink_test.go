package report

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdifflin/paperledger/internal/fulfill"
)

func TestWriteCSV(t *testing.T) {
	rows := []ResultRow{
		{
			RequestID:      1,
			Token:          "req-001",
			Job:            "office manager",
			Event:          "quarterly restock",
			RequestDate:    "2025-03-10",
			Status:         fulfill.StatusFulfilled,
			ResponseText:   "Order confirmed: 800 units",
			CashBalance:    decimal.RequireFromString("49984.00"),
			InventoryValue: decimal.RequireFromString("10.00"),
		},
		{
			RequestID:      2,
			Token:          "req-002",
			Job:            "teacher",
			Event:          "school fair",
			RequestDate:    "2025-03-11",
			Status:         fulfill.StatusUnfulfilled,
			ResponseText:   "Unable to fulfill, out of stock.",
			CashBalance:    decimal.RequireFromString("49984.00"),
			InventoryValue: decimal.RequireFromString("10.00"),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{
		"request_id", "token", "job", "event", "request_date",
		"status", "response", "cash_balance", "inventory_value",
	}, records[0])

	assert.Equal(t, "1", records[1][0])
	assert.Equal(t, "req-001", records[1][1])
	assert.Equal(t, "fulfilled", records[1][5])
	assert.Equal(t, "49984.00", records[1][7])

	assert.Equal(t, "unfulfilled", records[2][5])
}

func TestWriteCSV_NoRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1, "header only")
}
