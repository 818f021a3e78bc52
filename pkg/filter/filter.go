// Package filter applies search and status predicates to display records
// held in memory. Filtering never re-fetches and never reorders.
package filter

import (
	"strings"

	"tableflip.dev/storefront/pkg/record/viewmodel"
)

// State is the user-owned filter criteria for a panel. An empty SearchTerm or
// Status matches everything.
type State struct {
	SearchTerm string
	Status     string
}

// IsZero reports whether no predicate is active.
func (s State) IsZero() bool {
	return strings.TrimSpace(s.SearchTerm) == "" && s.Status == ""
}

// Matcher exposes the entity-specific fields a filter inspects.
type Matcher[V any] interface {
	// SearchFields returns the values matched against the search term.
	SearchFields(V) []string
	// StatusField returns the normalized value compared with State.Status.
	StatusField(V) string
}

// Apply returns the records matching every active predicate, preserving
// their relative order. The result is always a fresh slice.
func Apply[V any](items []V, st State, m Matcher[V]) []V {
	term := strings.ToLower(strings.TrimSpace(st.SearchTerm))
	out := make([]V, 0, len(items))
	for _, item := range items {
		if st.Status != "" && m.StatusField(item) != st.Status {
			continue
		}
		if term != "" && !containsAny(m.SearchFields(item), term) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func containsAny(fields []string, term string) bool {
	for _, field := range fields {
		if field == "" {
			continue
		}
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// Option is a selectable status value with its label.
type Option struct {
	Label string
	Value string
}

// Customers matches first name, last name, email and the derived full name.
type Customers struct{}

func (Customers) SearchFields(v viewmodel.CustomerView) []string {
	return []string{v.FirstName, v.LastName, v.Email, v.FullName}
}

func (Customers) StatusField(viewmodel.CustomerView) string { return "" }

// Orders matches the account name and order number; status is the raw
// order status.
type Orders struct{}

func (Orders) SearchFields(v viewmodel.OrderView) []string {
	return []string{v.AccountName, v.OrderNumber}
}

func (Orders) StatusField(v viewmodel.OrderView) string { return v.Status }

// Products matches the product name; status is the normalized
// active/inactive value.
type Products struct{}

func (Products) SearchFields(v viewmodel.ProductView) []string {
	return []string{v.Name}
}

func (Products) StatusField(v viewmodel.ProductView) string { return v.Status }

// OrderItems matches the resolved product name and code.
type OrderItems struct{}

func (OrderItems) SearchFields(v viewmodel.OrderItemView) []string {
	return []string{v.ProductName, v.ProductCode}
}

func (OrderItems) StatusField(viewmodel.OrderItemView) string { return "" }

// OrderStatusOptions lists the order status selector values.
func OrderStatusOptions() []Option {
	return []Option{
		{Label: "All statuses", Value: ""},
		{Label: "Draft", Value: "Draft"},
		{Label: "Activated", Value: "Activated"},
		{Label: "Shipped", Value: "Shipped"},
		{Label: "Delivered", Value: "Delivered"},
		{Label: "Cancelled", Value: "Cancelled"},
	}
}

// ProductStatusOptions lists the product status selector values.
func ProductStatusOptions() []Option {
	return []Option{
		{Label: "All statuses", Value: ""},
		{Label: "Active", Value: viewmodel.ProductActive},
		{Label: "Inactive", Value: viewmodel.ProductInactive},
	}
}

// NextOption cycles through options starting after current, wrapping around.
func NextOption(options []Option, current string) Option {
	if len(options) == 0 {
		return Option{}
	}
	for i, opt := range options {
		if opt.Value == current {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}
