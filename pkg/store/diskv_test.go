package store

import (
	"context"
	"encoding/json"
	"testing"

	"tableflip.dev/storefront/pkg/record"
)

func raws(docs ...string) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(docs))
	for _, d := range docs {
		out = append(out, json.RawMessage(d))
	}
	return out
}

func ids(t *testing.T, got []json.RawMessage) []string {
	t.Helper()
	out := make([]string, 0, len(got))
	for _, raw := range got {
		id, err := recordID(raw)
		if err != nil {
			t.Fatalf("record id: %v", err)
		}
		out = append(out, id)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestReplaceKeepsBackendOrder(t *testing.T) {
	p, err := Load(testConfig{path: t.TempDir()})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ctx := context.Background()
	err = p.Replace(ctx, record.KindCustomers, raws(
		`{"Id":"003b","FirstName":"Luis"}`,
		`{"Id":"003a","FirstName":"Ana"}`,
		`{"Id":"003c","FirstName":"Marta"}`,
	))
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, err := p.List(ctx, record.KindCustomers, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if want := []string{"003b", "003a", "003c"}; !equal(ids(t, got), want) {
		t.Fatalf("expected %v, got %v", want, ids(t, got))
	}

	err = p.Replace(ctx, record.KindCustomers, raws(`{"Id":"003c","FirstName":"Marta"}`))
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, _ = p.List(ctx, record.KindCustomers, "")
	if want := []string{"003c"}; !equal(ids(t, got), want) {
		t.Fatalf("expected stale records erased, got %v", ids(t, got))
	}
	if n := p.Count(ctx, record.KindCustomers); n != 1 {
		t.Fatalf("expected 1 stored record, got %d", n)
	}
}

func TestListScopesOrderItems(t *testing.T) {
	p, err := Load(testConfig{path: t.TempDir()})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ctx := context.Background()
	err = p.Replace(ctx, record.KindOrderItems, raws(
		`{"Id":"802a","OrderId":"801a","Quantity":2}`,
		`{"Id":"802b","OrderId":"801b","Quantity":1}`,
		`{"Id":"802c","OrderId":"801a","Quantity":5}`,
	))
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, err := p.List(ctx, record.KindOrderItems, "801a")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if want := []string{"802a", "802c"}; !equal(ids(t, got), want) {
		t.Fatalf("expected %v, got %v", want, ids(t, got))
	}
}

func TestPutUpsertsAndAppends(t *testing.T) {
	p, err := Load(testConfig{path: t.TempDir()})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ctx := context.Background()
	if err := p.Put(record.KindProducts, json.RawMessage(`{"Id":"01t1","Name":"Mug"}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := p.Put(record.KindProducts, json.RawMessage(`{"Id":"01t2","Name":"Cup"}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := p.Put(record.KindProducts, json.RawMessage(`{"Id":"01t1","Name":"Big Mug"}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := p.List(ctx, record.KindProducts, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if want := []string{"01t1", "01t2"}; !equal(ids(t, got), want) {
		t.Fatalf("expected %v, got %v", want, ids(t, got))
	}
	var first struct{ Name string }
	if err := json.Unmarshal(got[0], &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first.Name != "Big Mug" {
		t.Fatalf("expected upsert, got %q", first.Name)
	}
}

func TestPutRequiresID(t *testing.T) {
	p, err := Load(testConfig{path: t.TempDir()})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := p.Put(record.KindProducts, json.RawMessage(`{"Name":"Mug"}`)); err == nil {
		t.Fatalf("expected error for record without Id")
	}
}

func TestResetErasesEverything(t *testing.T) {
	p, err := Load(testConfig{path: t.TempDir()})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ctx := context.Background()
	_ = p.Replace(ctx, record.KindOrders, raws(`{"Id":"801a"}`))
	if err := p.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	got, err := p.List(ctx, record.KindOrders, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty mirror after reset, got %d records", len(got))
	}
}

func TestLoadRequiresBasePath(t *testing.T) {
	if _, err := Load(testConfig{}); err == nil {
		t.Fatalf("expected error for empty base path")
	}
	if _, err := Load(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}
