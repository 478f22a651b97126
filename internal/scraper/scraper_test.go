package scraper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"modeltrack/internal/sources"
	"modeltrack/pkg/types"
)

type fakeSource struct {
	name  string
	cands []sources.Candidate
	err   error
	gate  chan struct{}
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Discover(ctx context.Context) ([]sources.Candidate, error) {
	if f.gate != nil {
		<-f.gate
	}
	return f.cands, f.err
}

type passNormalizer struct {
	skip map[string]bool
}

func (n passNormalizer) Normalize(ctx context.Context, c sources.Candidate) (*types.ModelRecord, bool) {
	if n.skip[c.Name] {
		return nil, true
	}
	return &types.ModelRecord{Source: c.Source, URL: c.URL, Name: c.Name}, false
}

type memStore struct {
	mu    sync.Mutex
	rows  map[string]bool
	fail  map[string]bool
	calls int
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]bool), fail: make(map[string]bool)}
}

func (m *memStore) Upsert(ctx context.Context, rec *types.ModelRecord) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.fail[rec.URL] {
		return false, errors.New("disk full")
	}
	if m.rows[rec.URL] {
		return false, nil
	}
	m.rows[rec.URL] = true
	return true, nil
}

func cands(source types.Source, names ...string) []sources.Candidate {
	out := make([]sources.Candidate, 0, len(names))
	for _, n := range names {
		out = append(out, sources.Candidate{
			Source: source,
			Name:   n,
			URL:    fmt.Sprintf("https://example.test/%s", n),
		})
	}
	return out
}

func TestRunAggregatesSources(t *testing.T) {
	st := newMemStore()
	st.rows["https://example.test/hf-2"] = true // already tracked, becomes an update
	st.fail["https://example.test/hf-3"] = true

	s := New(st, []sources.Source{
		&fakeSource{name: "huggingface", cands: cands(types.SourceHuggingFace, "hf-1", "hf-2", "hf-3", "hf-skip")},
		&fakeSource{name: "modelscope", cands: cands(types.SourceModelScope, "ms-1", "ms-2")},
	}, passNormalizer{skip: map[string]bool{"hf-skip": true}}, zerolog.Nop())

	sum, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.New != 3 || sum.Updated != 1 || sum.Skipped != 1 || sum.Failed != 1 {
		t.Fatalf("totals: %+v", sum)
	}

	hf := sum.Sources["huggingface"]
	if hf.State != types.SourceDone || hf.Discovered != 4 || hf.New != 1 || hf.Updated != 1 || hf.Skipped != 1 || hf.Failed != 1 {
		t.Fatalf("huggingface result: %+v", hf)
	}
	ms := sum.Sources["modelscope"]
	if ms.State != types.SourceDone || ms.New != 2 {
		t.Fatalf("modelscope result: %+v", ms)
	}
	if sum.ElapsedMS < 0 {
		t.Fatalf("elapsed: %d", sum.ElapsedMS)
	}
}

func TestRunIsolatesSourceFailure(t *testing.T) {
	st := newMemStore()
	s := New(st, []sources.Source{
		&fakeSource{name: "huggingface", err: errors.New("api down")},
		&fakeSource{name: "modelscope", cands: cands(types.SourceModelScope, "a", "b", "c", "d", "e")},
	}, passNormalizer{}, zerolog.Nop())

	sum, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	hf := sum.Sources["huggingface"]
	if hf.State != types.SourceFailed || hf.Error != "api down" {
		t.Fatalf("failed source: %+v", hf)
	}
	if ms := sum.Sources["modelscope"]; ms.State != types.SourceDone || ms.New != 5 {
		t.Fatalf("healthy source should be unaffected: %+v", ms)
	}
	if sum.New != 5 {
		t.Fatalf("totals: %+v", sum)
	}
}

func TestRunSingleFlight(t *testing.T) {
	gate := make(chan struct{})
	s := New(newMemStore(), []sources.Source{
		&fakeSource{name: "huggingface", gate: gate, cands: cands(types.SourceHuggingFace, "a", "b", "c", "d", "e")},
	}, passNormalizer{}, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := s.Run(context.Background()); err != nil {
			t.Errorf("first run: %v", err)
		}
	}()

	waitFor(t, func() bool { return s.Status().InProgress })

	if _, err := s.Run(context.Background()); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("second run err=%v, want ErrRunInProgress", err)
	}

	close(gate)
	<-done

	st := s.Status()
	if st.InProgress {
		t.Fatalf("run should be finished")
	}
	if st.LastRun == nil || st.LastRun.New != 5 {
		t.Fatalf("last run: %+v", st.LastRun)
	}
}

func TestRunSeedsWhenDiscoveryIsThin(t *testing.T) {
	st := newMemStore()
	s := New(st, []sources.Source{
		&fakeSource{name: "huggingface"},
	}, passNormalizer{}, zerolog.Nop())

	sum, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if want := len(sampleCandidates()); sum.New != want {
		t.Fatalf("seeded %d rows, want %d", sum.New, want)
	}

	// Second thin run re-seeds the same URLs as updates.
	sum, err = s.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if sum.New != 0 || sum.Updated != len(sampleCandidates()) {
		t.Fatalf("re-seed totals: %+v", sum)
	}
}

func TestRunEveryStopsOnCancel(t *testing.T) {
	st := newMemStore()
	s := New(st, []sources.Source{
		&fakeSource{name: "huggingface", cands: cands(types.SourceHuggingFace, "a", "b", "c", "d", "e")},
	}, passNormalizer{}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.RunEvery(ctx, 5*time.Millisecond)
	}()

	waitFor(t, func() bool {
		st.mu.Lock()
		defer st.mu.Unlock()
		return st.calls >= 5
	})
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("RunEvery did not stop after cancel")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}
