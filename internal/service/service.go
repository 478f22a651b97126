// Package service glues the store and the scraper together behind the
// interface the HTTP layer consumes.
package service

import (
	"context"
	"sync/atomic"

	"modeltrack/internal/scraper"
	"modeltrack/internal/store"
	"modeltrack/pkg/types"
)

type Service struct {
	store   *store.Store
	scraper *scraper.Scraper
	ready   atomic.Bool
}

func New(st *store.Store, sc *scraper.Scraper) *Service {
	return &Service{store: st, scraper: sc}
}

// MarkReady flips the readiness probe once startup (open + migrate) is done.
func (s *Service) MarkReady() { s.ready.Store(true) }

func (s *Service) Ready() bool { return s.ready.Load() }

// QueryModels runs a filtered listing plus the aggregate stats the
// dashboard shows next to it.
func (s *Service) QueryModels(ctx context.Context, f store.Filters) (types.ModelsResponse, error) {
	models, total, err := s.store.Query(ctx, f)
	if err != nil {
		return types.ModelsResponse{}, err
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return types.ModelsResponse{}, err
	}
	return types.ModelsResponse{Models: models, Total: total, Stats: stats}, nil
}

func (s *Service) Stats(ctx context.Context) (types.Stats, error) {
	return s.store.Stats(ctx)
}

// Refresh triggers a synchronous discovery run.
func (s *Service) Refresh(ctx context.Context) (*types.RunSummary, error) {
	return s.scraper.Run(ctx)
}

func (s *Service) RefreshStatus() types.RefreshStatus {
	return s.scraper.Status()
}
