package ledger

import (
	"context"
	"database/sql"
	"fmt"
)

// Append inserts an entry into the log and returns its assigned ID.
//
// Entries are validated before any mutation: an unknown kind or negative
// units fails with *ValidationError and nothing is written. Once appended
// an entry is never updated or removed.
func (s *Store) Append(ctx context.Context, e Entry) (int64, error) {
	if err := e.validate(); err != nil {
		return 0, err
	}

	var itemName sql.NullString
	var units sql.NullInt64
	if e.ItemName != "" {
		itemName = sql.NullString{String: e.ItemName, Valid: true}
		units = sql.NullInt64{Int64: int64(e.Units), Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (item_name, kind, units, amount, occurred_on)
		VALUES (?, ?, ?, ?, ?)
	`,
		itemName,
		string(e.Kind),
		units,
		e.Amount.String(),
		e.OccurredOn.Format(DateLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("append entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append entry: %w", err)
	}

	return id, nil
}
