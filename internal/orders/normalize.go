package orders

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// RawItem is a cart line as browsers send it. Several field aliases are in
// circulation; Normalize folds them into a LineItem.
type RawItem struct {
	ProductID string      `json:"productId"`
	DocID     string      `json:"_id"`
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Price     json.Number `json:"price"`
	Quantity  json.Number `json:"quantity"`
	Qty       json.Number `json:"qty"`
	ImageURL  string      `json:"imageUrl"`
	Image     string      `json:"image"`
	Category  string      `json:"category"`
}

// Normalize folds the aliases. Missing numbers become zero; numbers that do
// not fit an int64 are rejected.
func (r RawItem) Normalize() (LineItem, error) {
	qty, err := numberValue("qty", r.Qty)
	if err != nil {
		return LineItem{}, err
	}
	if qty == 0 {
		if qty, err = numberValue("quantity", r.Quantity); err != nil {
			return LineItem{}, err
		}
	}
	price, err := numberValue("price", r.Price)
	if err != nil {
		return LineItem{}, err
	}
	return LineItem{
		ProductID: firstNonEmpty(r.ProductID, r.DocID, r.ID),
		Name:      r.Name,
		Price:     price,
		Quantity:  qty,
		ImageURL:  firstNonEmpty(r.ImageURL, r.Image),
		Category:  r.Category,
	}, nil
}

// CheckoutRequest is the body of POST /api/orders.
type CheckoutRequest struct {
	UserID    string     `json:"userId"`
	Items     *[]RawItem `json:"items"`
	OrderID   string     `json:"orderId"`
	Payment   string     `json:"payment"`
	Shipping  *Shipping  `json:"shipping"`
	OrderDate string     `json:"orderDate"`
	Status    string     `json:"status"`
}

// Input validates the top-level fields and normalizes the items. Item-level
// gaps (missing price, quantity or id) are not errors.
func (r CheckoutRequest) Input() (CreateInput, error) {
	if strings.TrimSpace(r.UserID) == "" {
		return CreateInput{}, fmt.Errorf("%w: userId is required", ErrInvalidPayload)
	}
	if r.Items == nil || len(*r.Items) == 0 {
		return CreateInput{}, fmt.Errorf("%w: items must be a non-empty array", ErrInvalidPayload)
	}
	if r.Status != "" && Status(r.Status) != StatusPending {
		return CreateInput{}, fmt.Errorf("%w: new orders start as pending", ErrInvalidPayload)
	}

	items := make([]LineItem, 0, len(*r.Items))
	for i, raw := range *r.Items {
		it, err := raw.Normalize()
		if err != nil {
			return CreateInput{}, fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, it)
	}
	if _, err := ComputeTotal(items); err != nil {
		return CreateInput{}, err
	}
	in := CreateInput{
		UserID:    strings.TrimSpace(r.UserID),
		Items:     items,
		Reference: strings.TrimSpace(r.OrderID),
		Payment:   r.Payment,
		OrderDate: r.OrderDate,
	}
	if r.Shipping != nil {
		in.Shipping = *r.Shipping
	}
	return in, nil
}

// 2^63 is exact in float64; MaxInt64 is not.
const int64Bound = float64(1 << 63)

func numberValue(field string, n json.Number) (int64, error) {
	if n == "" {
		return 0, nil
	}
	if v, err := n.Int64(); err == nil {
		return v, nil
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%w: %s is not a finite number", ErrInvalidPayload, field)
	}
	f = math.Round(f)
	if f >= int64Bound || f < -int64Bound {
		return 0, fmt.Errorf("%w: %s out of range", ErrInvalidPayload, field)
	}
	return int64(f), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
