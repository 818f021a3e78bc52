// Package record defines the raw commerce entities mirrored from the host
// data store. Field names follow the backend payloads.
package record

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies a mirrored entity collection.
type Kind string

const (
	// KindCustomers is the customer (contact) collection.
	KindCustomers Kind = "customers"
	// KindOrders is the order collection.
	KindOrders Kind = "orders"
	// KindProducts is the product collection.
	KindProducts Kind = "products"
	// KindOrderItems is the order line item collection, scoped by order.
	KindOrderItems Kind = "order-items"
)

// AllKinds returns the supported collection kinds.
func AllKinds() []Kind {
	return []Kind{
		KindCustomers,
		KindOrders,
		KindProducts,
		KindOrderItems,
	}
}

// ParseKind converts user input to a Kind.
func ParseKind(raw string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(raw)))
	for _, candidate := range AllKinds() {
		if candidate == k {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("record: unknown kind %q", raw)
}

// EntityType returns the host object type used for navigation.
func (k Kind) EntityType() string {
	switch k {
	case KindCustomers:
		return "Contact"
	case KindOrders:
		return "Order"
	case KindProducts:
		return "Product2"
	case KindOrderItems:
		return "OrderItem"
	default:
		return string(k)
	}
}

// SyncTarget selects what a backend sync job pulls from the commerce platform.
type SyncTarget string

const (
	SyncCustomers SyncTarget = "customers"
	SyncOrders    SyncTarget = "orders"
	SyncProducts  SyncTarget = "products"
	// SyncAll performs the historical full sync and takes materially longer.
	SyncAll SyncTarget = "all"
)

// ParseSyncTarget converts user input to a SyncTarget.
func ParseSyncTarget(raw string) (SyncTarget, error) {
	t := SyncTarget(strings.ToLower(strings.TrimSpace(raw)))
	switch t {
	case SyncCustomers, SyncOrders, SyncProducts, SyncAll:
		return t, nil
	}
	return "", fmt.Errorf("record: unknown sync target %q", raw)
}

// Kinds lists the collections refreshed by a sync of this target.
func (t SyncTarget) Kinds() []Kind {
	switch t {
	case SyncCustomers:
		return []Kind{KindCustomers}
	case SyncOrders:
		return []Kind{KindOrders, KindOrderItems}
	case SyncProducts:
		return []Kind{KindProducts}
	case SyncAll:
		return AllKinds()
	}
	return nil
}

// Customer is a contact mirrored from the commerce platform.
type Customer struct {
	ID        string `json:"Id"`
	FirstName string `json:"FirstName,omitempty"`
	LastName  string `json:"LastName,omitempty"`
	Email     string `json:"Email,omitempty"`
	Phone     string `json:"Phone,omitempty"`
}

// AccountRef is the account an order belongs to.
type AccountRef struct {
	ID   string `json:"Id,omitempty"`
	Name string `json:"Name,omitempty"`
}

// Order is a commerce order header.
type Order struct {
	ID            string           `json:"Id"`
	OrderNumber   string           `json:"OrderNumber,omitempty"`
	Status        string           `json:"Status,omitempty"`
	TotalAmount   *decimal.Decimal `json:"TotalAmount,omitempty"`
	EffectiveDate *time.Time       `json:"EffectiveDate,omitempty"`
	Account       *AccountRef      `json:"Account,omitempty"`
}

// PricebookEntry carries a product list price.
type PricebookEntry struct {
	ID        string           `json:"Id,omitempty"`
	UnitPrice *decimal.Decimal `json:"UnitPrice,omitempty"`
}

// Product is a catalog product.
type Product struct {
	ID               string           `json:"Id"`
	Name             string           `json:"Name,omitempty"`
	ProductCode      string           `json:"ProductCode,omitempty"`
	Description      string           `json:"Description,omitempty"`
	IsActive         bool             `json:"IsActive"`
	PricebookEntries []PricebookEntry `json:"PricebookEntries,omitempty"`
}

// ProductRef is the product referenced by an order line.
type ProductRef struct {
	ID          string `json:"Id,omitempty"`
	Name        string `json:"Name,omitempty"`
	ProductCode string `json:"ProductCode,omitempty"`
}

// OrderItem is a single order line.
type OrderItem struct {
	ID        string           `json:"Id"`
	OrderID   string           `json:"OrderId,omitempty"`
	UnitPrice *decimal.Decimal `json:"UnitPrice,omitempty"`
	Quantity  *decimal.Decimal `json:"Quantity,omitempty"`
	Product   *ProductRef      `json:"Product2,omitempty"`
}

// RecordID returns the backend identifier.
func (c Customer) RecordID() string { return c.ID }

// RecordID returns the backend identifier.
func (o Order) RecordID() string { return o.ID }

// RecordID returns the backend identifier.
func (p Product) RecordID() string { return p.ID }

// RecordID returns the backend identifier.
func (i OrderItem) RecordID() string { return i.ID }

// Identified is implemented by every raw record.
type Identified interface {
	RecordID() string
}
