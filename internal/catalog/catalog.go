package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// Item is one row of the product catalog: static reference data, written
// once at initialization and read-only afterwards.
type Item struct {
	Name      string
	Category  string
	UnitPrice decimal.Decimal
}

// Catalog is an immutable set of catalog items with normalized name lookup.
//
// Item names arrive from free-text request feeds, so lookups normalize to
// Unicode NFC and fold case before matching. "a4 Paper" and "A4 paper"
// resolve to the same row.
type Catalog struct {
	items []Item
	byKey map[string]Item
}

// New builds a catalog from items. Duplicate names (after normalization)
// and negative unit prices are rejected.
func New(items []Item) (*Catalog, error) {
	c := &Catalog{
		items: make([]Item, len(items)),
		byKey: make(map[string]Item, len(items)),
	}
	copy(c.items, items)

	for _, item := range items {
		if item.Name == "" {
			return nil, fmt.Errorf("catalog item with empty name")
		}
		if item.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("catalog item %q has negative unit price %s", item.Name, item.UnitPrice)
		}
		key := normalizeName(item.Name)
		if _, dup := c.byKey[key]; dup {
			return nil, fmt.Errorf("duplicate catalog item %q", item.Name)
		}
		c.byKey[key] = item
	}

	return c, nil
}

// Lookup resolves an item by name, tolerant of case and Unicode form.
func (c *Catalog) Lookup(name string) (Item, bool) {
	item, ok := c.byKey[normalizeName(name)]
	return item, ok
}

// UnitPrice returns the catalog price for an item name.
func (c *Catalog) UnitPrice(name string) (decimal.Decimal, bool) {
	item, ok := c.Lookup(name)
	if !ok {
		return decimal.Zero, false
	}
	return item.UnitPrice, true
}

// Items returns the catalog rows in declaration order.
// The returned slice is a copy; mutating it does not affect the catalog.
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of catalog rows.
func (c *Catalog) Len() int {
	return len(c.items)
}

// normalizeName produces the lookup key for an item name:
// NFC normalization, whitespace trim, case fold.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(name)))
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Default returns the full paper-supplies catalog the business trades in.
// Paper types are priced per sheet, products per unit.
func Default() *Catalog {
	c, err := New(defaultItems)
	if err != nil {
		// The built-in table is validated by tests; a failure here is a bug.
		panic(fmt.Sprintf("catalog: invalid default table: %v", err))
	}
	return c
}

var defaultItems = []Item{
	// Paper types (per sheet)
	{Name: "A4 paper", Category: "paper", UnitPrice: price("0.05")},
	{Name: "Letter-sized paper", Category: "paper", UnitPrice: price("0.06")},
	{Name: "Cardstock", Category: "paper", UnitPrice: price("0.15")},
	{Name: "Colored paper", Category: "paper", UnitPrice: price("0.10")},
	{Name: "Glossy paper", Category: "paper", UnitPrice: price("0.20")},
	{Name: "Matte paper", Category: "paper", UnitPrice: price("0.18")},
	{Name: "Recycled paper", Category: "paper", UnitPrice: price("0.08")},
	{Name: "Eco-friendly paper", Category: "paper", UnitPrice: price("0.12")},
	{Name: "Poster paper", Category: "paper", UnitPrice: price("0.25")},
	{Name: "Banner paper", Category: "paper", UnitPrice: price("0.30")},
	{Name: "Kraft paper", Category: "paper", UnitPrice: price("0.10")},
	{Name: "Construction paper", Category: "paper", UnitPrice: price("0.07")},
	{Name: "Wrapping paper", Category: "paper", UnitPrice: price("0.15")},
	{Name: "Glitter paper", Category: "paper", UnitPrice: price("0.22")},
	{Name: "Decorative paper", Category: "paper", UnitPrice: price("0.18")},
	{Name: "Letterhead paper", Category: "paper", UnitPrice: price("0.12")},
	{Name: "Legal-size paper", Category: "paper", UnitPrice: price("0.08")},
	{Name: "Crepe paper", Category: "paper", UnitPrice: price("0.05")},
	{Name: "Photo paper", Category: "paper", UnitPrice: price("0.25")},
	{Name: "Uncoated paper", Category: "paper", UnitPrice: price("0.06")},
	{Name: "Butcher paper", Category: "paper", UnitPrice: price("0.10")},
	{Name: "Heavyweight paper", Category: "paper", UnitPrice: price("0.20")},
	{Name: "Standard copy paper", Category: "paper", UnitPrice: price("0.04")},
	{Name: "Bright-colored paper", Category: "paper", UnitPrice: price("0.12")},
	{Name: "Patterned paper", Category: "paper", UnitPrice: price("0.15")},

	// Products (per unit)
	{Name: "Paper plates", Category: "product", UnitPrice: price("0.10")},
	{Name: "Paper cups", Category: "product", UnitPrice: price("0.08")},
	{Name: "Paper napkins", Category: "product", UnitPrice: price("0.02")},
	{Name: "Disposable cups", Category: "product", UnitPrice: price("0.10")},
	{Name: "Table covers", Category: "product", UnitPrice: price("1.50")},
	{Name: "Envelopes", Category: "product", UnitPrice: price("0.05")},
	{Name: "Sticky notes", Category: "product", UnitPrice: price("0.03")},
	{Name: "Notepads", Category: "product", UnitPrice: price("2.00")},
	{Name: "Invitation cards", Category: "product", UnitPrice: price("0.50")},
	{Name: "Flyers", Category: "product", UnitPrice: price("0.15")},
	{Name: "Party streamers", Category: "product", UnitPrice: price("0.05")},
	{Name: "Decorative adhesive tape (washi tape)", Category: "product", UnitPrice: price("0.20")},
	{Name: "Paper party bags", Category: "product", UnitPrice: price("0.25")},
	{Name: "Name tags with lanyards", Category: "product", UnitPrice: price("0.75")},
	{Name: "Presentation folders", Category: "product", UnitPrice: price("0.50")},

	// Large-format items
	{Name: "Large poster paper (24x36 inches)", Category: "large_format", UnitPrice: price("1.00")},
	{Name: "Rolls of banner paper (36-inch width)", Category: "large_format", UnitPrice: price("2.50")},

	// Specialty papers
	{Name: "100 lb cover stock", Category: "specialty", UnitPrice: price("0.50")},
	{Name: "80 lb text paper", Category: "specialty", UnitPrice: price("0.40")},
	{Name: "250 gsm cardstock", Category: "specialty", UnitPrice: price("0.30")},
	{Name: "220 gsm poster paper", Category: "specialty", UnitPrice: price("0.35")},
}
