// Package pricing computes tiered bulk-discount quotes.
//
// Discounts apply to the quantity of a single request only; they never
// accumulate across requests. The highest matching tier wins, tiers do
// not stack.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mdifflin/paperledger/internal/catalog"
)

// FallbackUnitPrice is charged when an item is missing from the catalog.
// Quoting an unknown item is not an error; the quote flags the fallback so
// callers can surface it.
var FallbackUnitPrice = decimal.RequireFromString("0.10")

// Quote is the priced result for one item/quantity pair. Pure function
// output; never persisted as-is.
type Quote struct {
	ItemName     string
	Quantity     int
	UnitPrice    decimal.Decimal
	BasePrice    decimal.Decimal
	DiscountRate decimal.Decimal
	FinalPrice   decimal.Decimal
	Savings      decimal.Decimal
	Explanation  string

	// UsedFallbackPrice is true when the item was not in the catalog and
	// FallbackUnitPrice was charged instead.
	UsedFallbackPrice bool
}

// InvalidQuantityError reports a caller contract violation: quotes require
// a positive quantity.
type InvalidQuantityError struct {
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quote quantity must be positive, got %d", e.Quantity)
}

// IsInvalidQuantity reports whether err is (or wraps) an InvalidQuantityError.
func IsInvalidQuantity(err error) bool {
	var iq *InvalidQuantityError
	return errors.As(err, &iq)
}

// Discount tiers by quantity threshold, highest first.
// The first tier whose threshold the quantity meets is applied.
var tiers = []struct {
	minQuantity int
	rate        decimal.Decimal
	explanation string
}{
	{1000, decimal.RequireFromString("0.20"), "20% bulk discount (1000+ units)"},
	{500, decimal.RequireFromString("0.15"), "15% bulk discount (500-999 units)"},
	{100, decimal.RequireFromString("0.10"), "10% bulk discount (100-499 units)"},
}

const noDiscountExplanation = "No bulk discount applied"

// Engine prices quotes against a catalog.
type Engine struct {
	cat *catalog.Catalog
}

// New creates a pricing engine over a catalog.
func New(cat *catalog.Catalog) *Engine {
	return &Engine{cat: cat}
}

// Quote prices an item at its catalog unit price, falling back to
// FallbackUnitPrice when the item is unknown.
func (e *Engine) Quote(itemName string, quantity int) (Quote, error) {
	unitPrice, ok := e.cat.UnitPrice(itemName)
	if !ok {
		q, err := e.QuoteAt(itemName, quantity, FallbackUnitPrice)
		q.UsedFallbackPrice = err == nil
		return q, err
	}
	return e.QuoteAt(itemName, quantity, unitPrice)
}

// QuoteAt prices an item at an explicit unit price, bypassing the catalog.
func (e *Engine) QuoteAt(itemName string, quantity int, unitPrice decimal.Decimal) (Quote, error) {
	if quantity <= 0 {
		return Quote{}, &InvalidQuantityError{Quantity: quantity}
	}

	basePrice := unitPrice.Mul(decimal.New(int64(quantity), 0))

	rate := decimal.Zero
	explanation := noDiscountExplanation
	for _, tier := range tiers {
		if quantity >= tier.minQuantity {
			rate = tier.rate
			explanation = tier.explanation
			break
		}
	}

	finalPrice := basePrice.Mul(decimal.New(1, 0).Sub(rate))

	return Quote{
		ItemName:     itemName,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		BasePrice:    basePrice,
		DiscountRate: rate,
		FinalPrice:   finalPrice,
		Savings:      basePrice.Sub(finalPrice),
		Explanation:  explanation,
	}, nil
}
