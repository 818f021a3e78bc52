package printers

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"tableflip.dev/storefront/pkg/backend"
	"tableflip.dev/storefront/pkg/record"
	"tableflip.dev/storefront/pkg/record/viewmodel"
)

func init() {
	color.NoColor = true
}

func TestCustomersTable(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{ShowID: true, Out: &buf}
	pp.Customers(viewmodel.MapCustomers([]record.Customer{
		{ID: "003a", FirstName: "Ana", LastName: "Ruiz", Email: "ana@example.com"},
	}))
	out := buf.String()
	for _, want := range []string{"ID", "Name", "003a", "Ana Ruiz", "ana@example.com"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestEmptyTablePrintsNone(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.Orders(nil)
	if !strings.Contains(buf.String(), "none") {
		t.Fatalf("expected none marker, got %q", buf.String())
	}
}

func TestLongCellsAreTruncated(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.Products(viewmodel.DefaultFormatter().MapProducts([]record.Product{
		{ID: "01t1", Name: strings.Repeat("x", 80), IsActive: true},
	}))
	if strings.Contains(buf.String(), strings.Repeat("x", maxCell+1)) {
		t.Fatalf("expected product name truncated:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "…") {
		t.Fatalf("expected ellipsis")
	}
}

func TestTitleWithCount(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.TitleWithCount("Customers", 1, 1)
	if got := buf.String(); !strings.Contains(got, "Customers - 1 of 1 record\n") {
		t.Fatalf("unexpected title %q", got)
	}
}

func TestOutcomeSortsKinds(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.Outcome(backend.SyncOutcome{
		Target:  record.SyncOrders,
		Message: "orders synchronized",
		Counts:  map[record.Kind]int{record.KindOrders: 2, record.KindOrderItems: 5},
	})
	out := buf.String()
	if !strings.HasPrefix(out, "orders synchronized\n") {
		t.Fatalf("unexpected output %q", out)
	}
	table := out[len("orders synchronized\n"):]
	if strings.Index(table, "order-items") > strings.Index(table, "orders ") {
		t.Fatalf("expected kinds sorted:\n%s", out)
	}
}
