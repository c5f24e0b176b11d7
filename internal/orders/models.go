package orders

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// LineItem is a snapshot of a product taken at checkout. It does not follow
// later catalog edits.
type LineItem struct {
	ProductID string `json:"productId,omitempty"`
	Name      string `json:"name,omitempty"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
	ImageURL  string `json:"imageUrl,omitempty"`
	Category  string `json:"category,omitempty"`
}

type Shipping struct {
	Method string `json:"method,omitempty"`
}

type Order struct {
	ID        string     `json:"id"`
	Reference string     `json:"orderId"`
	UserID    string     `json:"userId"`
	Items     []LineItem `json:"items"`
	Total     int64      `json:"total"`
	Payment   string     `json:"payment,omitempty"`
	Shipping  Shipping   `json:"shipping"`
	OrderDate string     `json:"orderDate,omitempty"`
	Status    Status     `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ProductIDs returns the distinct non-empty product ids in item order.
func (o Order) ProductIDs() []string {
	seen := make(map[string]bool, len(o.Items))
	out := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		if it.ProductID == "" || seen[it.ProductID] {
			continue
		}
		seen[it.ProductID] = true
		out = append(out, it.ProductID)
	}
	return out
}

// ComputeTotal sums price × quantity. Missing values were normalized to zero.
// A total that does not fit an int64 is an invalid payload.
func ComputeTotal(items []LineItem) (int64, error) {
	var total int64
	for _, it := range items {
		line, ok := mulInt64(it.Price, it.Quantity)
		if !ok {
			return 0, fmt.Errorf("%w: line total overflows", ErrInvalidPayload)
		}
		sum := total + line
		if (sum > total) != (line > 0) {
			return 0, fmt.Errorf("%w: order total overflows", ErrInvalidPayload)
		}
		total = sum
	}
	return total, nil
}

func mulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if c/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	return c, true
}

// ReferenceFor derives the human-facing order reference from the id.
func ReferenceFor(id string) string {
	compact := strings.ReplaceAll(id, "-", "")
	if len(compact) > 8 {
		compact = compact[len(compact)-8:]
	}
	return "ORD-" + strings.ToUpper(compact)
}
