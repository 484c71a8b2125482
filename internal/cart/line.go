package cart

import "storefront/internal/domain"

// Line is one product in the cart. The product is embedded by value so a
// persisted cart renders without a catalog lookup.
type Line struct {
	Product  domain.Product `json:"product"`
	AddOnIDs []string       `json:"selectedAddOnIds"`
	Quantity int            `json:"quantity"`
	Brief    string         `json:"brief,omitempty"`
}

// State is a copy of the store contents handed to readers and subscribers.
type State struct {
	Lines  []Line
	UserID string
}

type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Items    int   `json:"items"`
}

// CheckoutLine is what the order service receives for each cart line.
type CheckoutLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Brief     string `json:"brief,omitempty"`
}

func clampQty(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// addOnSet de-duplicates ids keeping first-seen order. The result is never nil.
func addOnSet(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func copyLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	for i, l := range lines {
		l.AddOnIDs = append([]string(nil), l.AddOnIDs...)
		if l.AddOnIDs == nil {
			l.AddOnIDs = []string{}
		}
		out[i] = l
	}
	return out
}
