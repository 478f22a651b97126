package sources

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"modeltrack/pkg/types"
)

const hfAPIBase = "https://huggingface.co/api/models"

// HuggingFace discovers models through three passes over the hub's listing
// API: trending by likes, recently modified, and a GGUF-tagged search.
// Results are deduplicated by repo across passes within one run.
type HuggingFace struct {
	client *http.Client
	limit  int
	log    zerolog.Logger
}

func NewHuggingFace(limit int, log zerolog.Logger) *HuggingFace {
	return &HuggingFace{client: newHTTPClient(), limit: limit, log: log}
}

func (h *HuggingFace) Name() string { return string(types.SourceHuggingFace) }

// hfModel is the hub's listing schema, trimmed to what we use.
type hfModel struct {
	ID           string   `json:"id"`
	Description  string   `json:"description"`
	LastModified string   `json:"lastModified"`
	Downloads    int64    `json:"downloads"`
	Likes        int64    `json:"likes"`
	Tags         []string `json:"tags"`
	PipelineTag  string   `json:"pipeline_tag"`
	Siblings     []struct {
		Rfilename string `json:"rfilename"`
		Size      int64  `json:"size"`
	} `json:"siblings"`
}

type hfPass struct {
	name  string
	query url.Values
}

func (h *HuggingFace) passes() []hfPass {
	perPass := strconv.Itoa(max(h.limit/2, 1))
	return []hfPass{
		{"trending", url.Values{"sort": {"likes"}, "direction": {"-1"}, "limit": {perPass}}},
		{"recent", url.Values{"sort": {"lastModified"}, "direction": {"-1"}, "limit": {perPass}}},
		{"gguf", url.Values{"search": {"gguf"}, "sort": {"likes"}, "direction": {"-1"}, "limit": {perPass}, "expand[]": {"siblings"}}},
	}
}

// Discover runs all passes, merging and deduplicating by repo id. A failed
// pass is logged and skipped; a rate limit aborts the remaining passes. An
// error is returned only when every pass failed and nothing was collected.
func (h *HuggingFace) Discover(ctx context.Context) ([]Candidate, error) {
	var (
		out      []Candidate
		firstErr error
	)
	seen := make(map[string]struct{})

	for _, pass := range h.passes() {
		var page []hfModel
		if err := getJSON(ctx, h.client, hfAPIBase, pass.query, &page); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			if errors.Is(err, ErrRateLimited) {
				h.log.Warn().Str("pass", pass.name).Msg("huggingface rate limited, keeping partial results")
				break
			}
			h.log.Warn().Str("pass", pass.name).Err(err).Msg("huggingface pass failed")
			continue
		}
		added := 0
		for _, m := range page {
			if m.ID == "" {
				continue
			}
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
			out = append(out, h.toCandidate(m))
			added++
			if len(out) >= h.limit {
				break
			}
		}
		h.log.Debug().Str("pass", pass.name).Int("models", added).Msg("huggingface pass done")
		if len(out) >= h.limit {
			break
		}
	}

	if len(out) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

func (h *HuggingFace) toCandidate(m hfModel) Candidate {
	c := Candidate{
		Source:      types.SourceHuggingFace,
		RepoID:      m.ID,
		Name:        m.ID[strings.LastIndex(m.ID, "/")+1:],
		URL:         "https://huggingface.co/" + m.ID,
		Description: truncate(m.Description, 500),
		Tags:        m.Tags,
		Pipeline:    m.PipelineTag,
		Downloads:   m.Downloads,
		Likes:       m.Likes,
	}
	if ts := parseHFTime(m.LastModified); ts != nil {
		c.ReleaseDate = ts
	}
	for _, sib := range m.Siblings {
		c.SizeBytes += sib.Size
		if strings.HasSuffix(strings.ToLower(sib.Rfilename), ".gguf") {
			c.GGUFFiles = append(c.GGUFFiles, sib.Rfilename)
		}
	}
	return c
}

func parseHFTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return &ts
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
