// Package search holds the product search query and the debouncer that turns
// keystrokes into a single list reload.
package search

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultDelay is the quiet period before a text change triggers a reload.
const DefaultDelay = 1000 * time.Millisecond

// FilterField is the product attribute a text search is applied to.
type FilterField string

const (
	FieldDescription FilterField = "description"
	FieldReference   FilterField = "reference"
	FieldCategoria   FilterField = "categoria"
	FieldUnidad      FilterField = "unidad"
	FieldTax         FilterField = "tax"
)

// Fields lists the accepted filter fields in display order.
var Fields = []FilterField{FieldDescription, FieldReference, FieldCategoria, FieldUnidad, FieldTax}

var ErrUnknownField = errors.New("unknown filter field")

// ParseField accepts a field name case-insensitively.
func ParseField(s string) (FilterField, error) {
	f := FilterField(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Fields {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Query is what the product list is filtered by.
type Query struct {
	Text  string
	Field FilterField
}

// NewQuery returns an empty query on the description field.
func NewQuery() Query { return Query{Field: FieldDescription} }

// Active reports whether the query restricts results.
func (q Query) Active() bool { return strings.TrimSpace(q.Text) != "" }
