package panel

import (
	"context"
	"errors"
	"testing"

	"tableflip.dev/storefront/pkg/backend"
	"tableflip.dev/storefront/pkg/backend/backendtest"
	"tableflip.dev/storefront/pkg/binding"
	"tableflip.dev/storefront/pkg/nav"
	"tableflip.dev/storefront/pkg/notify"
	"tableflip.dev/storefront/pkg/record"
	"tableflip.dev/storefront/pkg/syncaction"
)

func deps(fake *backendtest.Fake) (Deps, *notify.Recorder, *nav.Recorder) {
	rec := &notify.Recorder{}
	navRec := &nav.Recorder{}
	return Deps{Client: fake, Notifier: rec, Navigator: navRec}, rec, navRec
}

func TestCustomersSearchScenario(t *testing.T) {
	fake := backendtest.New()
	fake.SetRaw(record.KindCustomers, `{"Id":"003a","FirstName":"Ana","LastName":"Ruiz","Email":"a@x.com"}`)
	d, _, _ := deps(fake)
	p := NewCustomers(d)
	p.Open(context.Background())
	defer p.Close()

	visible := p.Visible()
	if len(visible) != 1 || visible[0].FullName != "Ana Ruiz" {
		t.Fatalf("unexpected visible records %#v", visible)
	}

	p.SetSearch("ruiz")
	if len(p.Visible()) != 1 {
		t.Fatalf("expected search to keep Ana Ruiz")
	}

	p.SetSearch("zzz")
	if len(p.Visible()) != 0 {
		t.Fatalf("expected search to empty the visible list")
	}
	if len(p.All()) != 1 || len(p.Raw()) != 1 {
		t.Fatalf("expected cache to still hold one record")
	}
	if fake.Reads() != 1 {
		t.Fatalf("expected filtering without re-reading, got %d reads", fake.Reads())
	}

	p.ClearFilters()
	if len(p.Visible()) != 1 {
		t.Fatalf("expected clear to restore the list")
	}
}

func TestOrdersStatusFilterAndNewEmission(t *testing.T) {
	fake := backendtest.New()
	fake.SetRaw(record.KindOrders,
		`{"Id":"801a","OrderNumber":"00000100","Status":"Draft","Account":{"Name":"Acme"}}`,
		`{"Id":"801b","OrderNumber":"00000101","Status":"Activated","Account":{"Name":"Globex"}}`,
	)
	d, _, _ := deps(fake)
	p := NewOrders(d)
	p.Open(context.Background())
	defer p.Close()

	p.SetStatus("Activated")
	if v := p.Visible(); len(v) != 1 || v[0].ID != "801b" {
		t.Fatalf("unexpected visible orders %#v", v)
	}

	fake.SetRaw(record.KindOrders,
		`{"Id":"801a","OrderNumber":"00000100","Status":"Activated"}`,
		`{"Id":"801b","OrderNumber":"00000101","Status":"Activated"}`,
	)
	if err := p.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(p.Visible()) != 2 {
		t.Fatalf("expected filter reapplied to new emission, got %d", len(p.Visible()))
	}
	if p.Filter().Status != "Activated" {
		t.Fatalf("expected filter state kept across emissions")
	}
}

func TestProductsSyncSuccessInvalidatesOnce(t *testing.T) {
	fake := backendtest.New()
	fake.SetRaw(record.KindProducts, `{"Id":"01t1","Name":"Mug","IsActive":true}`)
	d, rec, _ := deps(fake)
	p := NewProducts(d)
	p.Open(context.Background())
	defer p.Close()

	if err := p.Trigger(context.Background(), SyncAction); err != nil {
		t.Fatalf("trigger: %v", err)
	}
	kinds := rec.Kinds()
	if len(kinds) != 2 || kinds[1] != notify.KindSuccess {
		t.Fatalf("expected start then success notifications, got %v", kinds)
	}
	if p.Invalidations() != 1 {
		t.Fatalf("expected exactly one invalidate, got %d", p.Invalidations())
	}
	if fake.Reads() != 2 {
		t.Fatalf("expected subscribe read plus one re-read, got %d", fake.Reads())
	}
}

func TestOrdersSyncFailureKeepsVisible(t *testing.T) {
	fake := backendtest.New()
	fake.SetRaw(record.KindOrders, `{"Id":"801a","Status":"Draft"}`)
	fake.SyncErr[record.SyncOrders] = &backend.Error{Body: map[string]any{"message": "quota exceeded"}}
	d, rec, _ := deps(fake)
	p := NewOrders(d)
	p.Open(context.Background())
	defer p.Close()

	err := p.Trigger(context.Background(), SyncAction)
	if err == nil {
		t.Fatalf("expected sync error")
	}
	all := rec.All()
	last := all[len(all)-1]
	if last.Kind != notify.KindError || last.Message != "quota exceeded" || last.Title != "Error syncing orders" {
		t.Fatalf("unexpected notification %#v", last)
	}
	c, _ := p.Action(SyncAction)
	if c.InFlight() {
		t.Fatalf("expected in-flight cleared")
	}
	if len(p.Visible()) != 1 || p.Invalidations() != 0 {
		t.Fatalf("expected visible orders kept without invalidation")
	}
}

func TestReadFailureClearsVisible(t *testing.T) {
	fake := backendtest.New()
	fake.SetRaw(record.KindCustomers, `{"Id":"003a","FirstName":"Ana"}`)
	d, _, _ := deps(fake)
	p := NewCustomers(d)
	p.Open(context.Background())
	defer p.Close()

	boom := errors.New("permission denied")
	fake.ReadErr = boom
	if err := p.Refresh(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected read error, got %v", err)
	}
	if p.State() != binding.Failed || !errors.Is(p.Err(), boom) {
		t.Fatalf("expected failed state, got %v / %v", p.State(), p.Err())
	}
	if len(p.Visible()) != 0 || p.HasItems() {
		t.Fatalf("expected visible list cleared on error")
	}

	fake.ReadErr = nil
	_ = p.Refresh(context.Background())
	if p.Err() != nil || len(p.Visible()) != 1 {
		t.Fatalf("expected recovery on next data")
	}
}

func TestTriggerUnknownAction(t *testing.T) {
	d, _, _ := deps(backendtest.New())
	p := NewOrderItems(d, "801a")
	if err := p.Trigger(context.Background(), SyncAction); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}

func TestNavigationDelegates(t *testing.T) {
	d, _, navRec := deps(backendtest.New())
	p := NewCustomers(d)
	p.View("003a")
	p.Edit("003a")
	reqs := navRec.Requests()
	if len(reqs) != 2 {
		t.Fatalf("expected 2 navigations, got %d", len(reqs))
	}
	if reqs[0] != (nav.Request{EntityType: "Contact", RecordID: "003a", Mode: nav.View}) {
		t.Fatalf("unexpected view request %#v", reqs[0])
	}
	if reqs[1].Mode != nav.Edit {
		t.Fatalf("expected edit mode, got %q", reqs[1].Mode)
	}
}

func TestOrderItemsScopedWithFallbacks(t *testing.T) {
	fake := backendtest.New()
	fake.SetRaw(record.KindOrderItems,
		`{"Id":"802a","OrderId":"801a","UnitPrice":1000,"Quantity":2,"Product2":{"Name":"Mug","ProductCode":"MUG-1"}}`,
		`{"Id":"802b","OrderId":"801a","UnitPrice":500,"Quantity":1}`,
		`{"Id":"802c","OrderId":"801b","UnitPrice":1,"Quantity":1}`,
	)
	d, _, _ := deps(fake)
	p := NewOrderItems(d, "801a")
	p.Open(context.Background())
	defer p.Close()

	items := p.Visible()
	if len(items) != 2 || !p.HasItems() {
		t.Fatalf("expected 2 scoped items, got %d", len(items))
	}
	if items[1].ProductName != "Product not found" || items[1].ProductCode != "N/A" {
		t.Fatalf("expected fallbacks, got %q/%q", items[1].ProductName, items[1].ProductCode)
	}
	if items[0].TotalPrice != "2000.00" {
		t.Fatalf("unexpected line total %q", items[0].TotalPrice)
	}

	empty := NewOrderItems(d, "801z")
	empty.Open(context.Background())
	defer empty.Close()
	if empty.HasItems() {
		t.Fatalf("expected no items for unknown order")
	}
}

func TestUpdatesCoalesce(t *testing.T) {
	fake := backendtest.New()
	fake.SetRaw(record.KindCustomers, `{"Id":"003a","FirstName":"Ana"}`, `{"Id":"003b","FirstName":"Luis"}`)
	d, _, _ := deps(fake)
	p := NewCustomers(d)
	p.Open(context.Background())
	defer p.Close()
	p.SetSearch("ana")
	p.SetSearch("luis")
	p.SetSearch("")

	u := <-p.Updates()
	if u.Panel != "customers" || u.Visible != 2 || u.Total != 2 {
		t.Fatalf("expected latest update only, got %#v", u)
	}
	select {
	case extra := <-p.Updates():
		t.Fatalf("expected coalesced updates, got extra %#v", extra)
	default:
	}
}

func TestCloseDropsRecords(t *testing.T) {
	fake := backendtest.New()
	fake.SetRaw(record.KindProducts, `{"Id":"01t1","Name":"Mug"}`)
	d, _, _ := deps(fake)
	p := NewProducts(d)
	p.Open(context.Background())
	p.Close()
	if p.HasItems() || len(p.Raw()) != 0 {
		t.Fatalf("expected records discarded on close")
	}
	if err := p.Invalidate(context.Background()); !errors.Is(err, binding.ErrNotSubscribed) {
		t.Fatalf("expected ErrNotSubscribed after close, got %v", err)
	}
}

func TestDuplicateSyncRejected(t *testing.T) {
	fake := backendtest.New()
	fake.Gate = make(chan struct{})
	fake.Started = make(chan record.SyncTarget, 1)
	d, _, _ := deps(fake)
	p := NewProducts(d)

	done := make(chan error, 1)
	go func() { done <- p.Trigger(context.Background(), SyncAction) }()
	<-fake.Started

	if !p.Busy() {
		t.Fatalf("expected busy panel")
	}
	if err := p.Trigger(context.Background(), SyncAction); !errors.Is(err, syncaction.ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}
	close(fake.Gate)
	if err := <-done; err != nil {
		t.Fatalf("sync: %v", err)
	}
	if got := len(fake.Syncs()); got != 1 {
		t.Fatalf("expected one backend sync, got %d", got)
	}
}

func TestSyncMessages(t *testing.T) {
	cases := []struct {
		target       record.SyncTarget
		title        string
		start        string
		failureTitle string
	}{
		{record.SyncOrders, "Orders", "Syncing orders...", "Error syncing orders"},
		{record.SyncProducts, "Products", "Syncing products...", "Error syncing products"},
		{record.SyncAll, "Full sync", "Starting full historical sync...", "Error in full sync"},
	}
	for _, tc := range cases {
		t.Run(string(tc.target), func(t *testing.T) {
			title, msgs := SyncMessages(tc.target)
			if title != tc.title || msgs.Start != tc.start || msgs.FailureTitle != tc.failureTitle {
				t.Fatalf("SyncMessages(%s) = %q %#v", tc.target, title, msgs)
			}
		})
	}
}
