// Command demo seeds the local mirror with sample records so the UI can be
// explored without a remote.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"tableflip.dev/storefront/pkg/config"
	"tableflip.dev/storefront/pkg/record"
	"tableflip.dev/storefront/pkg/store"
)

func money(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func day(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func sample() map[record.Kind][]any {
	return map[record.Kind][]any{
		record.KindCustomers: {
			record.Customer{ID: "0035g00000A1", FirstName: "Ana", LastName: "Ruiz", Email: "ana.ruiz@example.com", Phone: "+34 600 000 001"},
			record.Customer{ID: "0035g00000A2", FirstName: "Bo", LastName: "Chen", Email: "bo.chen@example.com"},
			record.Customer{ID: "0035g00000A3", LastName: "Okafor", Email: "okafor@example.com"},
			record.Customer{ID: "0035g00000A4"},
		},
		record.KindProducts: {
			record.Product{ID: "01t5g00000P1", Name: "Enamel Mug", ProductCode: "MUG-01", IsActive: true,
				PricebookEntries: []record.PricebookEntry{{ID: "01u1", UnitPrice: money("12.50")}}},
			record.Product{ID: "01t5g00000P2", Name: "Poster, A2", ProductCode: "POS-A2", IsActive: true,
				PricebookEntries: []record.PricebookEntry{{ID: "01u2", UnitPrice: money("24.00")}}},
			record.Product{ID: "01t5g00000P3", Name: "Tote Bag", IsActive: false},
		},
		record.KindOrders: {
			record.Order{ID: "8015g00000O1", OrderNumber: "00000101", Status: "Activated", TotalAmount: money("49.00"),
				EffectiveDate: day("2024-03-01T10:30:00Z"), Account: &record.AccountRef{ID: "0015g1", Name: "Acme Coffee"}},
			record.Order{ID: "8015g00000O2", OrderNumber: "00000102", Status: "Shipped", TotalAmount: money("24.00"),
				EffectiveDate: day("2024-03-04T16:05:00Z")},
			record.Order{ID: "8015g00000O3", OrderNumber: "00000103", Status: "Draft"},
		},
		record.KindOrderItems: {
			record.OrderItem{ID: "8025g00000I1", OrderID: "8015g00000O1", UnitPrice: money("12.50"), Quantity: money("2"),
				Product: &record.ProductRef{ID: "01t5g00000P1", Name: "Enamel Mug", ProductCode: "MUG-01"}},
			record.OrderItem{ID: "8025g00000I2", OrderID: "8015g00000O1", UnitPrice: money("24.00"), Quantity: money("1"),
				Product: &record.ProductRef{ID: "01t5g00000P2", Name: "Poster, A2", ProductCode: "POS-A2"}},
			record.OrderItem{ID: "8025g00000I3", OrderID: "8015g00000O2", UnitPrice: money("24.00"), Quantity: money("1")},
		},
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	p, err := store.Load(cfg)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	for kind, recs := range sample() {
		raws := make([]json.RawMessage, 0, len(recs))
		for _, r := range recs {
			data, err := json.Marshal(r)
			if err != nil {
				panic(err)
			}
			raws = append(raws, data)
		}
		if err := p.Replace(ctx, kind, raws); err != nil {
			panic(err)
		}
	}

	for _, kind := range record.AllKinds() {
		fmt.Printf("%s: %d\n", kind, p.Count(ctx, kind))
	}
}
