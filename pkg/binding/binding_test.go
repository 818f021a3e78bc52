package binding

import (
	"context"
	"errors"
	"testing"

	"tableflip.dev/storefront/pkg/record"
)

type fakeSource struct {
	calls   int
	queries []Query
	results [][]string
	errs    []error
}

func (f *fakeSource) fetch(_ context.Context, q Query) ([]string, error) {
	idx := f.calls
	f.calls++
	f.queries = append(f.queries, q)
	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}
	if idx < len(f.results) {
		return f.results[idx], nil
	}
	return nil, nil
}

func TestSubscribeDeliversFirstEmission(t *testing.T) {
	src := &fakeSource{results: [][]string{{"a", "b"}}}
	b := New[string](src.fetch)
	var seen []Result[string]
	b.OnChange(func(r Result[string]) { seen = append(seen, r) })

	h := b.Subscribe(context.Background(), Query{Kind: record.KindCustomers})
	if h.ID() == "" {
		t.Fatalf("expected handle id")
	}
	if len(seen) != 1 || seen[0].State != Ready || len(seen[0].Data) != 2 {
		t.Fatalf("unexpected emissions %#v", seen)
	}
	if got := b.Records(); len(got) != 2 || got[0] != "a" {
		t.Fatalf("unexpected cache %v", got)
	}
}

func TestInvalidateReusesQuery(t *testing.T) {
	src := &fakeSource{results: [][]string{{"a"}, {"a", "b"}}}
	b := New[string](src.fetch)
	q := Query{Kind: record.KindOrderItems, ScopeID: "801"}
	b.Subscribe(context.Background(), q)

	if err := b.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if src.calls != 2 {
		t.Fatalf("expected 2 reads, got %d", src.calls)
	}
	if src.queries[1] != q {
		t.Fatalf("expected same query on invalidate, got %v", src.queries[1])
	}
	if b.Invalidations() != 1 {
		t.Fatalf("expected 1 invalidation, got %d", b.Invalidations())
	}
	if got := b.Records(); len(got) != 2 {
		t.Fatalf("expected refreshed cache, got %v", got)
	}
}

func TestErrorClearsCacheAndDataClearsError(t *testing.T) {
	boom := errors.New("read failed")
	src := &fakeSource{
		results: [][]string{{"a"}, nil, {"c"}},
		errs:    []error{nil, boom, nil},
	}
	b := New[string](src.fetch)
	b.Subscribe(context.Background(), Query{Kind: record.KindProducts})

	err := b.Invalidate(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped read error, got %v", err)
	}
	snap := b.Snapshot()
	if snap.State != Failed || !errors.Is(snap.Err, boom) {
		t.Fatalf("expected failed state with error, got %#v", snap)
	}
	if len(snap.Data) != 0 {
		t.Fatalf("expected cache cleared on error, got %v", snap.Data)
	}

	if err := b.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if b.Err() != nil {
		t.Fatalf("expected error cleared on data, got %v", b.Err())
	}
	if got := b.Records(); len(got) != 1 || got[0] != "c" {
		t.Fatalf("unexpected cache %v", got)
	}
}

func TestInvalidateWithoutSubscription(t *testing.T) {
	src := &fakeSource{}
	b := New[string](src.fetch)
	if err := b.Invalidate(context.Background()); !errors.Is(err, ErrNotSubscribed) {
		t.Fatalf("expected ErrNotSubscribed, got %v", err)
	}
	if src.calls != 0 {
		t.Fatalf("expected no reads")
	}
}

func TestReleaseDiscardsCacheAndDropsLateEmissions(t *testing.T) {
	src := &fakeSource{results: [][]string{{"a"}}}
	b := New[string](src.fetch)
	emissions := 0
	b.OnChange(func(Result[string]) { emissions++ })
	h := b.Subscribe(context.Background(), Query{Kind: record.KindOrders})
	h.Release()
	h.Release()

	if b.Active() {
		t.Fatalf("expected inactive binding after release")
	}
	if len(b.Records()) != 0 {
		t.Fatalf("expected cache discarded")
	}
	b.Apply(Data([]string{"late"}))
	if emissions != 1 {
		t.Fatalf("expected late emission dropped, got %d emissions", emissions)
	}
	if err := b.Invalidate(context.Background()); !errors.Is(err, ErrNotSubscribed) {
		t.Fatalf("expected ErrNotSubscribed after release, got %v", err)
	}
}

func TestOnChangeCancel(t *testing.T) {
	src := &fakeSource{results: [][]string{{"a"}, {"b"}}}
	b := New[string](src.fetch)
	count := 0
	cancel := b.OnChange(func(Result[string]) { count++ })
	b.Subscribe(context.Background(), Query{Kind: record.KindCustomers})
	cancel()
	_ = b.Invalidate(context.Background())
	if count != 1 {
		t.Fatalf("expected listener removed, got %d calls", count)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	src := &fakeSource{results: [][]string{{"a"}}}
	b := New[string](src.fetch)
	b.Subscribe(context.Background(), Query{Kind: record.KindCustomers})
	snap := b.Snapshot()
	snap.Data[0] = "mutated"
	if b.Records()[0] != "a" {
		t.Fatalf("snapshot aliases the cache")
	}
}

func TestOverlappingInvalidatesKeepNewestRead(t *testing.T) {
	gate := make(chan struct{})
	started := make(chan struct{})
	var calls int
	b := New[string](func(_ context.Context, _ Query) ([]string, error) {
		calls++
		switch calls {
		case 1:
			return []string{"initial"}, nil
		case 2:
			close(started)
			<-gate
			return []string{"stale"}, nil
		default:
			return []string{"fresh"}, nil
		}
	})
	b.Subscribe(context.Background(), Query{Kind: record.KindOrders})

	done := make(chan error, 1)
	go func() { done <- b.Invalidate(context.Background()) }()
	<-started

	if err := b.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("slow invalidate: %v", err)
	}
	if got := b.Records(); len(got) != 1 || got[0] != "fresh" {
		t.Fatalf("expected newest read kept, got %v", got)
	}
	if b.Invalidations() != 2 {
		t.Fatalf("expected 2 invalidations, got %d", b.Invalidations())
	}
}
