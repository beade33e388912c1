package backend_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tunelingo/internal/adapters/backend"
	"tunelingo/internal/domain/activity"
)

// blockingFetcher serves a scripted sequence of catalogs, releasing each
// fetch only when its gate channel is closed. This lets tests interleave
// the completion order of concurrent loads.
type blockingFetcher struct {
	mu      sync.Mutex
	calls   int
	gates   []chan struct{}
	results [][]activity.Activity
	errs    []error
}

func (f *blockingFetcher) FetchCatalog(ctx context.Context) ([]activity.Activity, error) {
	f.mu.Lock()
	i := f.calls
	f.calls++
	f.mu.Unlock()
	if i < len(f.gates) && f.gates[i] != nil {
		<-f.gates[i]
	}
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var result []activity.Activity
	if i < len(f.results) {
		result = f.results[i]
	}
	return result, err
}

func catalogOf(ids ...string) []activity.Activity {
	out := make([]activity.Activity, 0, len(ids))
	for _, id := range ids {
		out = append(out, activity.Activity{ID: id, Title: id, Locator: "songs/" + id})
	}
	return out
}

// TestSnapshot_RefreshReplacesAtomically verifies a refresh swaps in the
// whole new set.
func TestSnapshot_RefreshReplacesAtomically(t *testing.T) {
	f := &blockingFetcher{results: [][]activity.Activity{catalogOf("a"), catalogOf("b", "c")}}
	s := backend.NewSnapshot(f)

	if s.Loaded() {
		t.Error("Loaded() = true before any refresh")
	}
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if got := s.Activities(); len(got) != 1 || got[0].ID != "a" {
		t.Errorf("Activities() = %v after first refresh", got)
	}
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if got := s.Activities(); len(got) != 2 || got[0].ID != "b" {
		t.Errorf("Activities() = %v after second refresh", got)
	}
	if !s.Loaded() {
		t.Error("Loaded() = false after refresh")
	}
}

// TestSnapshot_LastRequestWins starts two loads and completes the second
// first; the first (older) result must be discarded, leaving the newer
// response visible.
func TestSnapshot_LastRequestWins(t *testing.T) {
	gate1 := make(chan struct{})
	f := &blockingFetcher{
		gates:   []chan struct{}{gate1, nil},
		results: [][]activity.Activity{catalogOf("old"), catalogOf("new")},
	}
	s := backend.NewSnapshot(f)

	done1 := make(chan struct{})
	go func() {
		_ = s.Refresh(context.Background()) // load 1, blocked on gate1
		close(done1)
	}()

	// Wait until load 1 is in flight so it holds the older generation.
	waitForCalls(t, f, 1)

	if err := s.Refresh(context.Background()); err != nil { // load 2 completes immediately
		t.Fatalf("Refresh() error = %v", err)
	}
	if got := s.Activities(); len(got) != 1 || got[0].ID != "new" {
		t.Fatalf("Activities() = %v, want [new]", got)
	}

	close(gate1) // let the older load finish late
	<-done1

	if got := s.Activities(); len(got) != 1 || got[0].ID != "new" {
		t.Errorf("Activities() = %v after stale load completed, want [new]", got)
	}
}

func waitForCalls(t *testing.T, f *blockingFetcher, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		f.mu.Lock()
		calls := f.calls
		f.mu.Unlock()
		if calls >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("expected %d fetches in flight", n)
}

// TestSnapshot_FailedLoadDegrades verifies a failed load yields an empty
// set plus a reported error, not a crash or a stale success.
func TestSnapshot_FailedLoadDegrades(t *testing.T) {
	loadErr := errors.New("socket sadness")
	f := &blockingFetcher{
		results: [][]activity.Activity{catalogOf("a"), nil},
		errs:    []error{nil, loadErr},
	}
	s := backend.NewSnapshot(f)

	_ = s.Refresh(context.Background())
	if err := s.Refresh(context.Background()); !errors.Is(err, loadErr) {
		t.Fatalf("Refresh() error = %v, want %v", err, loadErr)
	}
	if got := s.Activities(); len(got) != 0 {
		t.Errorf("Activities() = %v after failed load, want empty", got)
	}
	if s.LoadFailed() == nil {
		t.Error("LoadFailed() = nil, want error")
	}
	if !s.Loaded() {
		t.Error("Loaded() = false; a failed load still completes")
	}
}

// TestSnapshot_ByID covers lookup hits and misses.
func TestSnapshot_ByID(t *testing.T) {
	f := &blockingFetcher{results: [][]activity.Activity{catalogOf("a", "b")}}
	s := backend.NewSnapshot(f)
	_ = s.Refresh(context.Background())

	if got, ok := s.ByID("b"); !ok || got.ID != "b" {
		t.Errorf("ByID(b) = %v, %v", got, ok)
	}
	if _, ok := s.ByID("zzz"); ok {
		t.Error("ByID(zzz) = true, want false")
	}
}
