package types

import "time"

// ModelsResponse wraps the model listing returned by GET /api/models.
type ModelsResponse struct {
	// Matching models, after filtering and sorting.
	Models []ModelRecord `json:"models"`
	// Total number of matches before limit/offset paging.
	Total int64 `json:"total"`
	// Aggregate statistics over the whole store.
	Stats Stats `json:"stats"`
}

// Stats holds aggregate counts computed directly from current rows.
type Stats struct {
	// Total number of tracked models.
	// example: 214
	Total int64 `json:"total"`
	// Counts per category.
	ByCategory map[Category]int64 `json:"by_category"`
	// Counts per source hub.
	BySource map[Source]int64 `json:"by_source"`
	// Number of Chinese-origin models.
	Chinese int64 `json:"chinese"`
	// Number of GGUF-format models (flag or gguf-named).
	GGUF int64 `json:"gguf"`
}

// SourceState is the lifecycle substate of one source within a run.
type SourceState string

const (
	SourcePending     SourceState = "pending"
	SourceFetching    SourceState = "fetching"
	SourceNormalizing SourceState = "normalizing"
	SourceUpserting   SourceState = "upserting"
	SourceDone        SourceState = "done"
	SourceFailed      SourceState = "failed"
)

// SourceResult summarizes one source's contribution to a run.
type SourceResult struct {
	State SourceState `json:"state"`
	// Discovered counts raw candidates returned by the connector.
	Discovered int `json:"discovered"`
	// New counts rows inserted for the first time.
	New int `json:"new"`
	// Updated counts rows refreshed via upsert.
	Updated int `json:"updated"`
	// Skipped counts candidates filtered out before the store.
	Skipped int `json:"skipped"`
	// Failed counts per-record upsert failures.
	Failed int `json:"failed"`
	// Error is set when the connector itself failed.
	Error string `json:"error,omitempty"`
}

// RunSummary is the outcome of one full discovery run.
type RunSummary struct {
	StartedAt time.Time                `json:"started_at"`
	ElapsedMS int64                    `json:"elapsed_ms"`
	Sources   map[string]*SourceResult `json:"sources"`
	New       int                      `json:"new"`
	Updated   int                      `json:"updated"`
	Skipped   int                      `json:"skipped"`
	Failed    int                      `json:"failed"`
}

// RefreshStatus is returned by GET /api/scrape-status.
type RefreshStatus struct {
	InProgress bool        `json:"in_progress"`
	LastRun    *RunSummary `json:"last_run,omitempty"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: refresh already in progress
	Error string `json:"error" example:"refresh already in progress"`
	// HTTP status code.
	// example: 409
	Code int `json:"code" example:"409"`
}
