// Package scraper orchestrates discovery runs: fan out to the source
// connectors, normalize their candidates, and upsert the results into the
// store. One run at a time; callers hitting an active run are rejected.
package scraper

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"modeltrack/internal/sources"
	"modeltrack/pkg/types"
)

// ErrRunInProgress is returned when Run is called while another run holds
// the lock. The HTTP layer maps it to 409.
var ErrRunInProgress = errors.New("scrape already in progress")

// Seeding kicks in when a whole run discovers fewer candidates than this;
// it keeps the dashboard populated when both hubs are unreachable.
const seedThreshold = 5

// RecordStore is the single store capability the orchestrator needs.
type RecordStore interface {
	Upsert(ctx context.Context, rec *types.ModelRecord) (created bool, err error)
}

// Normalizer converts one candidate into a record, or filters it out.
type Normalizer interface {
	Normalize(ctx context.Context, c sources.Candidate) (rec *types.ModelRecord, skip bool)
}

type Scraper struct {
	store RecordStore
	srcs  []sources.Source
	norm  Normalizer
	log   zerolog.Logger

	// runMu is held for the whole duration of a run; TryLock gives the
	// single-flight behavior.
	runMu sync.Mutex

	statusMu sync.RWMutex
	running  bool
	lastRun  *types.RunSummary
}

func New(store RecordStore, srcs []sources.Source, norm Normalizer, log zerolog.Logger) *Scraper {
	return &Scraper{store: store, srcs: srcs, norm: norm, log: log}
}

// Run executes one full discovery run across all sources concurrently.
// A connector failure marks that source failed and leaves the others
// alone; per-record upsert failures are counted, not fatal.
func (s *Scraper) Run(ctx context.Context) (*types.RunSummary, error) {
	if !s.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.runMu.Unlock()

	s.setRunning(true)
	defer s.setRunning(false)

	summary := &types.RunSummary{
		StartedAt: time.Now().UTC(),
		Sources:   make(map[string]*types.SourceResult, len(s.srcs)),
	}
	var mu sync.Mutex

	var g errgroup.Group
	for _, src := range s.srcs {
		src := src
		res := &types.SourceResult{State: types.SourcePending}
		summary.Sources[src.Name()] = res
		g.Go(func() error {
			s.runSource(ctx, src, res, &mu)
			return nil
		})
	}
	_ = g.Wait()

	discovered := 0
	for name, res := range summary.Sources {
		discovered += res.Discovered
		summary.New += res.New
		summary.Updated += res.Updated
		summary.Skipped += res.Skipped
		summary.Failed += res.Failed
		if res.State == types.SourceFailed {
			runSourceFailures.WithLabelValues(name).Inc()
		}
	}
	if discovered < seedThreshold {
		s.log.Info().Int("discovered", discovered).Msg("thin discovery run, seeding curated models")
		s.seedSamples(ctx, summary)
	}

	summary.ElapsedMS = time.Since(summary.StartedAt).Milliseconds()
	runsTotal.WithLabelValues("ok").Inc()
	runDuration.Observe(time.Since(summary.StartedAt).Seconds())

	s.statusMu.Lock()
	s.lastRun = summary
	s.statusMu.Unlock()

	s.log.Info().
		Int("new", summary.New).
		Int("updated", summary.Updated).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Int64("elapsed_ms", summary.ElapsedMS).
		Msg("scrape run finished")
	return summary, nil
}

func (s *Scraper) runSource(ctx context.Context, src sources.Source, res *types.SourceResult, mu *sync.Mutex) {
	name := src.Name()
	setState := func(st types.SourceState) {
		mu.Lock()
		res.State = st
		mu.Unlock()
	}

	setState(types.SourceFetching)
	cands, err := src.Discover(ctx)
	if err != nil && len(cands) == 0 {
		mu.Lock()
		res.State = types.SourceFailed
		res.Error = err.Error()
		mu.Unlock()
		s.log.Error().Str("source", name).Err(err).Msg("source discovery failed")
		return
	}
	if err != nil {
		s.log.Warn().Str("source", name).Err(err).Msg("source discovery partial")
	}
	mu.Lock()
	res.Discovered = len(cands)
	mu.Unlock()
	discoveredTotal.WithLabelValues(name).Add(float64(len(cands)))

	setState(types.SourceNormalizing)
	recs := make([]*types.ModelRecord, 0, len(cands))
	skipped := 0
	for _, c := range cands {
		rec, skip := s.norm.Normalize(ctx, c)
		if skip {
			skipped++
			continue
		}
		recs = append(recs, rec)
	}

	setState(types.SourceUpserting)
	var created, updated, failed int
	for _, rec := range recs {
		isNew, err := s.store.Upsert(ctx, rec)
		if err != nil {
			failed++
			s.log.Warn().Str("source", name).Str("url", rec.URL).Err(err).Msg("upsert failed")
			continue
		}
		if isNew {
			created++
			upsertsTotal.WithLabelValues(name, "new").Inc()
		} else {
			updated++
			upsertsTotal.WithLabelValues(name, "updated").Inc()
		}
	}

	mu.Lock()
	res.New = created
	res.Updated = updated
	res.Skipped = skipped
	res.Failed = failed
	res.State = types.SourceDone
	mu.Unlock()
}

// seedSamples pushes the curated fallback set through the same
// normalize-and-upsert path as real candidates.
func (s *Scraper) seedSamples(ctx context.Context, summary *types.RunSummary) {
	for _, c := range sampleCandidates() {
		rec, skip := s.norm.Normalize(ctx, c)
		if skip {
			summary.Skipped++
			continue
		}
		isNew, err := s.store.Upsert(ctx, rec)
		if err != nil {
			summary.Failed++
			s.log.Warn().Str("url", rec.URL).Err(err).Msg("seed upsert failed")
			continue
		}
		if isNew {
			summary.New++
		} else {
			summary.Updated++
		}
	}
}

// RunEvery performs one startup run, then repeats at the given interval
// until the context is cancelled.
func (s *Scraper) RunEvery(ctx context.Context, interval time.Duration) {
	if _, err := s.Run(ctx); err != nil && !errors.Is(err, ErrRunInProgress) {
		s.log.Error().Err(err).Msg("startup scrape failed")
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := s.Run(ctx); err != nil && !errors.Is(err, ErrRunInProgress) {
				s.log.Error().Err(err).Msg("scheduled scrape failed")
			}
		}
	}
}

// Status reports whether a run is active plus the last completed summary.
func (s *Scraper) Status() types.RefreshStatus {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return types.RefreshStatus{InProgress: s.running, LastRun: s.lastRun}
}

func (s *Scraper) setRunning(v bool) {
	s.statusMu.Lock()
	s.running = v
	s.statusMu.Unlock()
}
