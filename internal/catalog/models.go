// Package catalog is the product side: one-of-a-kind thrift items whose
// availability follows the order lifecycle.
package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ariefcatur/attic-lounges/internal/availability"
)

var (
	ErrNotFound       = errors.New("product not found")
	ErrInvalidProduct = errors.New("invalid product")
)

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Image       string    `json:"image"`
	Category    string    `json:"category"`
	Condition   string    `json:"condition"`
	Size        string    `json:"size"`
	Brand       string    `json:"brand"`
	Stock       int       `json:"stock"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ApplyIntent sets stock and the available flag together.
func (p *Product) ApplyIntent(in availability.Intent) {
	switch in {
	case availability.Sold:
		p.Stock, p.Available = 0, false
	case availability.Available:
		p.Stock, p.Available = 1, true
	}
}

// Patch is a partial product update. Nil fields are left untouched.
type Patch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *int64  `json:"price"`
	Image       *string `json:"image"`
	Category    *string `json:"category"`
	Condition   *string `json:"condition"`
	Size        *string `json:"size"`
	Brand       *string `json:"brand"`
	Stock       *int    `json:"stock"`
}

func (pt Patch) Apply(p *Product) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&p.Name, pt.Name)
	set(&p.Description, pt.Description)
	set(&p.Image, pt.Image)
	set(&p.Category, pt.Category)
	set(&p.Condition, pt.Condition)
	set(&p.Size, pt.Size)
	set(&p.Brand, pt.Brand)
	if pt.Price != nil {
		p.Price = *pt.Price
	}
	if pt.Stock != nil {
		p.Stock = *pt.Stock
	}
}

// Validate checks the fields every stored product must have and normalizes
// stock to the 0/1 range of a single item.
func (p *Product) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if p.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrInvalidProduct)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", ErrInvalidProduct)
	}
	if p.Stock > 1 {
		p.Stock = 1
	}
	p.Available = p.Stock > 0
	return nil
}
