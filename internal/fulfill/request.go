package fulfill

// DefaultItem is the product quoted when a request names no item.
// The business trades a single flagship product; the request feed only
// carries job/size/event metadata.
const DefaultItem = "A4 paper"

// NeedSize is the coarse order size carried by the request feed.
type NeedSize string

const (
	NeedSmall  NeedSize = "small"
	NeedMedium NeedSize = "medium"
	NeedLarge  NeedSize = "large"
)

// Quantity maps a need size to a fixed unit count: small=200, medium=800,
// large=2000. Unrecognized sizes are treated as large, matching how the
// business has always read ambiguous requests.
func (n NeedSize) Quantity() int {
	switch n {
	case NeedSmall:
		return 200
	case NeedMedium:
		return 800
	default:
		return 2000
	}
}

// Request is one customer quote request from the feed.
type Request struct {
	Job         string
	NeedSize    NeedSize
	Event       string
	RequestText string

	// RequestDate is the raw date string from the feed. It may be
	// malformed; processing degrades to "today" rather than failing.
	RequestDate string

	// ItemName overrides DefaultItem when set.
	ItemName string
}

// Item returns the product this request is for.
func (r Request) Item() string {
	if r.ItemName != "" {
		return r.ItemName
	}
	return DefaultItem
}
