// Package viewmodel derives display records from raw commerce records. Every
// mapping is pure: the same input always yields the same output, and missing
// nested references degrade to fallback values instead of errors.
package viewmodel

import (
	"strings"

	"github.com/shopspring/decimal"

	"tableflip.dev/storefront/pkg/record"
)

const (
	// UnnamedCustomer is shown when a customer has no name parts.
	UnnamedCustomer = "Unnamed"
	// ProductNotFound is shown when an order line has no product reference.
	ProductNotFound = "Product not found"
	// NoProductCode is shown when an order line has no product code.
	NoProductCode = "N/A"

	ProductActive   = "active"
	ProductInactive = "inactive"
)

// StyleClass is a presentation token consumed by renderers.
type StyleClass string

const (
	StyleDefault StyleClass = "default"
	StyleInfo    StyleClass = "info"
	StyleSuccess StyleClass = "success"
	StyleWarning StyleClass = "warning"
	StyleError   StyleClass = "error"
)

var orderStatusClasses = map[string]StyleClass{
	"Draft":     StyleInfo,
	"Activated": StyleSuccess,
	"Shipped":   StyleWarning,
	"Delivered": StyleSuccess,
	"Cancelled": StyleError,
}

var productStatusClasses = map[string]StyleClass{
	ProductActive:   StyleSuccess,
	ProductInactive: StyleWarning,
}

// OrderStatusClass maps an order status to its style token. Unknown values
// map to StyleDefault.
func OrderStatusClass(status string) StyleClass {
	if class, ok := orderStatusClasses[status]; ok {
		return class
	}
	return StyleDefault
}

// ProductStatusClass maps a normalized product status to its style token.
func ProductStatusClass(status string) StyleClass {
	if class, ok := productStatusClasses[status]; ok {
		return class
	}
	return StyleDefault
}

// CustomerView is a customer with derived display fields.
type CustomerView struct {
	record.Customer
	FullName string
}

// OrderView is an order with derived display fields.
type OrderView struct {
	record.Order
	AccountName    string
	FormattedTotal string
	FormattedDate  string
	StatusLabel    string
	StatusClass    StyleClass
}

// ProductView is a product with derived display fields. Status holds the
// normalized active/inactive value used for filtering.
type ProductView struct {
	record.Product
	Price          decimal.Decimal
	FormattedPrice string
	Status         string
	StatusLabel    string
	StatusClass    StyleClass
}

// OrderItemView is an order line with derived display fields.
type OrderItemView struct {
	record.OrderItem
	ProductName        string
	ProductCode        string
	LineTotal          decimal.Decimal
	TotalPrice         string
	FormattedUnitPrice string
	FormattedLineTotal string
}

// FullName joins the name parts, degrading to whichever part is present.
func FullName(first, last string) string {
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	case last != "":
		return last
	}
	return UnnamedCustomer
}

// MapCustomers derives a CustomerView for every record.
func MapCustomers(raw []record.Customer) []CustomerView {
	out := make([]CustomerView, 0, len(raw))
	for _, c := range raw {
		out = append(out, CustomerView{
			Customer: c,
			FullName: FullName(c.FirstName, c.LastName),
		})
	}
	return out
}

// MapOrders derives an OrderView for every record.
func (f *Formatter) MapOrders(raw []record.Order) []OrderView {
	out := make([]OrderView, 0, len(raw))
	for _, o := range raw {
		accountName := ""
		if o.Account != nil {
			accountName = o.Account.Name
		}
		out = append(out, OrderView{
			Order:          o,
			AccountName:    accountName,
			FormattedTotal: f.Currency(o.TotalAmount),
			FormattedDate:  f.Date(o.EffectiveDate),
			StatusLabel:    o.Status,
			StatusClass:    OrderStatusClass(o.Status),
		})
	}
	return out
}

// ProductStatus normalizes the active flag.
func ProductStatus(active bool) string {
	if active {
		return ProductActive
	}
	return ProductInactive
}

func productStatusLabel(status string) string {
	if status == ProductActive {
		return "Active"
	}
	return "Inactive"
}

// ListPrice is the unit price of the first pricebook entry, or zero.
func ListPrice(p record.Product) decimal.Decimal {
	if len(p.PricebookEntries) == 0 || p.PricebookEntries[0].UnitPrice == nil {
		return decimal.Zero
	}
	return *p.PricebookEntries[0].UnitPrice
}

// MapProducts derives a ProductView for every record.
func (f *Formatter) MapProducts(raw []record.Product) []ProductView {
	out := make([]ProductView, 0, len(raw))
	for _, p := range raw {
		price := ListPrice(p)
		status := ProductStatus(p.IsActive)
		out = append(out, ProductView{
			Product:        p,
			Price:          price,
			FormattedPrice: f.Currency(&price),
			Status:         status,
			StatusLabel:    productStatusLabel(status),
			StatusClass:    ProductStatusClass(status),
		})
	}
	return out
}

// LineTotal multiplies unit price by quantity, treating missing values as zero.
func LineTotal(item record.OrderItem) decimal.Decimal {
	if item.UnitPrice == nil || item.Quantity == nil {
		return decimal.Zero
	}
	return item.UnitPrice.Mul(*item.Quantity).Round(2)
}

// MapOrderItems derives an OrderItemView for every record.
func (f *Formatter) MapOrderItems(raw []record.OrderItem) []OrderItemView {
	out := make([]OrderItemView, 0, len(raw))
	for _, item := range raw {
		name, code := ProductNotFound, NoProductCode
		if item.Product != nil {
			if n := strings.TrimSpace(item.Product.Name); n != "" {
				name = n
			}
			if c := strings.TrimSpace(item.Product.ProductCode); c != "" {
				code = c
			}
		}
		total := LineTotal(item)
		out = append(out, OrderItemView{
			OrderItem:          item,
			ProductName:        name,
			ProductCode:        code,
			LineTotal:          total,
			TotalPrice:         total.StringFixed(2),
			FormattedUnitPrice: f.Currency(item.UnitPrice),
			FormattedLineTotal: f.Currency(&total),
		})
	}
	return out
}
