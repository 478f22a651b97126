package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"modeltrack/pkg/types"
)

const (
	// ModelScope has no public model-listing endpoint; the inference
	// catalog enumerates the models it serves.
	msCatalogURL  = "https://api-inference.modelscope.cn/v1/models"
	msFilesFormat = "https://modelscope.cn/api/v1/models/%s/repo/files"
)

// ModelScope discovers models through the hub's inference catalog, which
// has a much smaller schema than the Hugging Face listing (no downloads,
// likes or descriptions).
type ModelScope struct {
	client *http.Client
	limit  int
	log    zerolog.Logger
}

func NewModelScope(limit int, log zerolog.Logger) *ModelScope {
	return &ModelScope{client: newHTTPClient(), limit: limit, log: log}
}

func (m *ModelScope) Name() string { return string(types.SourceModelScope) }

type msCatalog struct {
	Data []struct {
		ID      string `json:"id"`
		Created int64  `json:"created"`
	} `json:"data"`
}

type msFileList struct {
	Data struct {
		Files []struct {
			Name string `json:"Name"`
		} `json:"Files"`
	} `json:"Data"`
}

func (m *ModelScope) Discover(ctx context.Context) ([]Candidate, error) {
	var catalog msCatalog
	if err := getJSON(ctx, m.client, msCatalogURL, nil, &catalog); err != nil {
		return nil, err
	}

	var out []Candidate
	for _, entry := range catalog.Data {
		if entry.ID == "" {
			continue
		}
		if len(out) >= m.limit {
			break
		}
		name := entry.ID
		var org string
		if idx := strings.LastIndex(entry.ID, "/"); idx >= 0 {
			org = entry.ID[:idx]
			name = entry.ID[idx+1:]
		}
		c := Candidate{
			Source:      types.SourceModelScope,
			RepoID:      entry.ID,
			Name:        name,
			URL:         "https://modelscope.cn/models/" + entry.ID,
			Description: "ModelScope model: " + entry.ID,
		}
		if org != "" {
			c.Tags = []string{org}
		}
		if entry.Created > 0 {
			ts := time.Unix(entry.Created, 0).UTC()
			c.ReleaseDate = &ts
		}
		// The catalog has no file listing; fetch it only for gguf-named
		// repos so the enrichment stage stays network-free.
		if strings.Contains(strings.ToLower(name), "gguf") {
			c.GGUFFiles = m.ggufFiles(ctx, entry.ID)
		}
		out = append(out, c)
	}
	return out, nil
}

// ggufFiles lists .gguf artifacts in a repo. Failures are logged and yield
// an empty list; the candidate is still usable without it.
func (m *ModelScope) ggufFiles(ctx context.Context, repoID string) []string {
	var list msFileList
	if err := getJSON(ctx, m.client, fmt.Sprintf(msFilesFormat, repoID), nil, &list); err != nil {
		m.log.Warn().Str("repo", repoID).Err(err).Msg("modelscope file listing failed")
		return nil
	}
	var files []string
	for _, f := range list.Data.Files {
		if strings.HasSuffix(strings.ToLower(f.Name), ".gguf") {
			files = append(files, f.Name)
		}
	}
	return files
}
