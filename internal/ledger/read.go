package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EntriesUpTo returns all entries with occurred_on <= asOf, ordered
// ascending by (occurred_on, id). An empty itemName matches every entry,
// including pure cash events; otherwise only that item's entries are
// returned.
//
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) EntriesUpTo(ctx context.Context, asOf time.Time, itemName string) ([]Entry, error) {
	query := `
		SELECT id, item_name, kind, units, amount, occurred_on
		FROM entries
		WHERE occurred_on <= ?
		ORDER BY occurred_on ASC, id ASC
	`
	args := []any{asOf.Format(DateLayout)}
	if itemName != "" {
		query = `
			SELECT id, item_name, kind, units, amount, occurred_on
			FROM entries
			WHERE occurred_on <= ? AND item_name = ?
			ORDER BY occurred_on ASC, id ASC
		`
		args = append(args, itemName)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	return entries, nil
}

// Entry retrieves a single entry by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) Entry(ctx context.Context, id int64) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, item_name, kind, units, amount, occurred_on
		FROM entries
		WHERE id = ?
	`, id)
	return scanEntryRow(row)
}

// EntryCount returns the total number of entries in the log.
func (s *Store) EntryCount(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	return scanEntryFrom(rows)
}

func scanEntryRow(row *sql.Row) (Entry, error) {
	return scanEntryFrom(row)
}

func scanEntryFrom(sc rowScanner) (Entry, error) {
	var (
		e          Entry
		itemName   sql.NullString
		units      sql.NullInt64
		kind       string
		amount     string
		occurredOn string
	)
	if err := sc.Scan(&e.ID, &itemName, &kind, &units, &amount, &occurredOn); err != nil {
		if err == sql.ErrNoRows {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scan entry: %w", err)
	}

	e.ItemName = itemName.String
	e.Kind = Kind(kind)
	e.Units = int(units.Int64)

	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return Entry{}, fmt.Errorf("scan entry %d: bad amount %q: %w", e.ID, amount, err)
	}
	e.Amount = amt

	occurred, err := ParseDate(occurredOn)
	if err != nil {
		return Entry{}, fmt.Errorf("scan entry %d: %w", e.ID, err)
	}
	e.OccurredOn = occurred

	return e, nil
}
