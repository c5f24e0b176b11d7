// Package availability carries product availability changes from the order
// workflow to the product service.
package availability

import "fmt"

// Intent is the availability a product should end up with.
type Intent string

const (
	Sold      Intent = "sold"
	Available Intent = "available"
)

func ParseIntent(s string) (Intent, error) {
	switch Intent(s) {
	case Sold, Available:
		return Intent(s), nil
	}
	return "", fmt.Errorf("unknown availability intent %q", s)
}
