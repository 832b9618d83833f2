package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// QuoteRequest is a customer request as it entered the system.
type QuoteRequest struct {
	ID          int64
	Job         string
	NeedSize    string
	Event       string
	RequestText string
	RequestDate time.Time
}

// QuoteRecord is the priced outcome of a request, kept for history search.
type QuoteRecord struct {
	ID          int64
	RequestID   int64
	TotalAmount decimal.Decimal
	Explanation string
	Job         string
	NeedSize    string
	Event       string
	OrderDate   time.Time
}

// QuoteHistoryHit is one match from SearchQuoteHistory, joining a quote
// with its originating request.
type QuoteHistoryHit struct {
	RequestText string
	TotalAmount decimal.Decimal
	Explanation string
	Job         string
	NeedSize    string
	Event       string
	OrderDate   time.Time
}

// RecordQuoteRequest stores an incoming request and returns its ID.
func (s *Store) RecordQuoteRequest(ctx context.Context, qr QuoteRequest) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO quote_requests (job, need_size, event, request_text, request_date)
		VALUES (?, ?, ?, ?, ?)
	`,
		qr.Job, qr.NeedSize, qr.Event, qr.RequestText,
		qr.RequestDate.Format(DateLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("record quote request: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record quote request: %w", err)
	}
	return id, nil
}

// RecordQuote stores a produced quote against its request and returns its ID.
func (s *Store) RecordQuote(ctx context.Context, q QuoteRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO quotes (request_id, total_amount, explanation, job, need_size, event, order_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		q.RequestID,
		q.TotalAmount.String(),
		q.Explanation, q.Job, q.NeedSize, q.Event,
		q.OrderDate.Format(DateLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("record quote: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record quote: %w", err)
	}
	return id, nil
}

// SearchQuoteHistory returns quotes whose request text or explanation
// contains every search term (case-insensitive), newest order date first.
// With no terms, the most recent quotes are returned. limit <= 0 defaults
// to 5.
func (s *Store) SearchQuoteHistory(ctx context.Context, terms []string, limit int) ([]QuoteHistoryHit, error) {
	if limit <= 0 {
		limit = 5
	}

	var conditions []string
	var args []any
	for _, term := range terms {
		conditions = append(conditions,
			"(LOWER(qr.request_text) LIKE ? OR LOWER(q.explanation) LIKE ?)")
		pattern := "%" + strings.ToLower(term) + "%"
		args = append(args, pattern, pattern)
	}
	where := "1=1"
	if len(conditions) > 0 {
		where = strings.Join(conditions, " AND ")
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT qr.request_text, q.total_amount, q.explanation,
		       q.job, q.need_size, q.event, q.order_date
		FROM quotes q
		JOIN quote_requests qr ON q.request_id = qr.id
		WHERE %s
		ORDER BY q.order_date DESC, q.id DESC
		LIMIT ?
	`, where), args...)
	if err != nil {
		return nil, fmt.Errorf("search quote history: %w", err)
	}
	defer rows.Close()

	hits := []QuoteHistoryHit{}
	for rows.Next() {
		var (
			hit       QuoteHistoryHit
			total     string
			orderDate string
		)
		if err := rows.Scan(&hit.RequestText, &total, &hit.Explanation,
			&hit.Job, &hit.NeedSize, &hit.Event, &orderDate); err != nil {
			return nil, fmt.Errorf("scan quote history: %w", err)
		}
		amt, err := decimal.NewFromString(total)
		if err != nil {
			return nil, fmt.Errorf("scan quote history: bad total %q: %w", total, err)
		}
		hit.TotalAmount = amt
		date, err := ParseDate(orderDate)
		if err != nil {
			return nil, fmt.Errorf("scan quote history: %w", err)
		}
		hit.OrderDate = date
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quote history: %w", err)
	}

	return hits, nil
}
