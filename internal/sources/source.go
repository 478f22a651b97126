// Package sources holds one connector per upstream model hub. Connectors
// only fetch and shape: they never write to the store and they swallow
// upstream failures into partial results.
package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"modeltrack/pkg/types"
)

const (
	userAgent = "modeltrack/1.0"
	// fetchTimeout bounds every hub HTTP call.
	fetchTimeout = 30 * time.Second
)

// ErrRateLimited signals an upstream 429. The connector returns whatever it
// collected so far and does not retry within the same run.
var ErrRateLimited = errors.New("upstream rate limited")

// Candidate is the raw, not-yet-normalized envelope every connector
// produces.
type Candidate struct {
	Source types.Source
	// RepoID is the hub-native "org/name" identifier.
	RepoID      string
	Name        string
	URL         string
	Description string
	Tags        []string
	Pipeline    string
	ReleaseDate *time.Time
	Downloads   int64
	Likes       int64
	// SizeBytes is the sum of reported artifact sizes; 0 means unreported.
	SizeBytes int64
	// GGUFFiles lists .gguf artifacts in the repo, when the hub reported
	// its file list. Collected here so enrichment needs no network of its
	// own besides the extractor call.
	GGUFFiles []string
}

// A Source discovers candidate models from one hub.
type Source interface {
	Name() string
	Discover(ctx context.Context) ([]Candidate, error)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: fetchTimeout}
}

// getJSON fetches rawURL with standard headers and decodes the body into v.
// A 429 maps to ErrRateLimited, other non-2xx statuses to plain errors.
func getJSON(ctx context.Context, client *http.Client, rawURL string, query url.Values, v any) error {
	if len(query) > 0 {
		rawURL = rawURL + "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", ErrRateLimited, rawURL)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("GET %s: status %d", rawURL, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
