package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"modeltrack/internal/scraper"
	"modeltrack/internal/store"
	"modeltrack/pkg/types"
)

type fakeService struct {
	lastFilters store.Filters
	queryErr    error
	refreshErr  error
	ready       bool
	status      types.RefreshStatus
}

func (f *fakeService) QueryModels(ctx context.Context, fl store.Filters) (types.ModelsResponse, error) {
	f.lastFilters = fl
	if f.queryErr != nil {
		return types.ModelsResponse{}, f.queryErr
	}
	return types.ModelsResponse{
		Models: []types.ModelRecord{{Source: types.SourceHuggingFace, URL: "u", Name: "Mistral-7B"}},
		Total:  1,
		Stats:  types.Stats{Total: 1},
	}, nil
}

func (f *fakeService) Stats(ctx context.Context) (types.Stats, error) {
	return types.Stats{Total: 3, Chinese: 1, GGUF: 2}, nil
}

func (f *fakeService) Refresh(ctx context.Context) (*types.RunSummary, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &types.RunSummary{New: 4}, nil
}

func (f *fakeService) RefreshStatus() types.RefreshStatus { return f.status }
func (f *fakeService) Ready() bool                        { return f.ready }

func TestModelsEndpoint(t *testing.T) {
	svc := &fakeService{}
	srv := httptest.NewServer(NewMux(svc))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/models?source=huggingface&format=gguf&chinese=1&q=llama&sort=downloads_desc&limit=10&offset=5")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("nosniff header: %q", got)
	}

	f := svc.lastFilters
	if f.Source != types.SourceHuggingFace || !f.GGUFOnly || !f.ChineseOnly ||
		f.Search != "llama" || f.Sort != "downloads_desc" || f.Limit != 10 || f.Offset != 5 {
		t.Fatalf("filters: %+v", f)
	}

	var body types.ModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Total != 1 || len(body.Models) != 1 || body.Models[0].Name != "Mistral-7B" {
		t.Fatalf("body: %+v", body)
	}
}

func TestModelsBadFilter(t *testing.T) {
	srv := httptest.NewServer(NewMux(&fakeService{}))
	defer srv.Close()

	for _, q := range []string{"source=gitlab", "category=weather", "format=safetensors", "limit=nope", "since=tomorrow"} {
		resp, err := http.Get(srv.URL + "/api/models?" + q)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		var e types.ErrorResponse
		json.NewDecoder(resp.Body).Decode(&e)
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest || e.Code != http.StatusBadRequest {
			t.Fatalf("%s: status=%d body=%+v", q, resp.StatusCode, e)
		}
	}
}

func TestModelsServiceFailure(t *testing.T) {
	srv := httptest.NewServer(NewMux(&fakeService{queryErr: errors.New("db locked")}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/models")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status=%d", resp.StatusCode)
	}
}

func TestRefreshConflict(t *testing.T) {
	srv := httptest.NewServer(NewMux(&fakeService{refreshErr: scraper.ErrRunInProgress}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/refresh", "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status=%d, want 409", resp.StatusCode)
	}
	var e types.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if e.Code != http.StatusConflict {
		t.Fatalf("body: %+v", e)
	}
}

func TestRefreshReturnsSummary(t *testing.T) {
	srv := httptest.NewServer(NewMux(&fakeService{}))
	defer srv.Close()

	// GET works too; the dashboard uses a plain link.
	for _, do := range []func() (*http.Response, error){
		func() (*http.Response, error) { return http.Post(srv.URL+"/api/refresh", "application/json", nil) },
		func() (*http.Response, error) { return http.Get(srv.URL + "/api/refresh") },
	} {
		resp, err := do()
		if err != nil {
			t.Fatalf("refresh: %v", err)
		}
		var sum types.RunSummary
		if err := json.NewDecoder(resp.Body).Decode(&sum); err != nil {
			t.Fatalf("decode: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK || sum.New != 4 {
			t.Fatalf("status=%d sum=%+v", resp.StatusCode, sum)
		}
	}
}

func TestScrapeStatus(t *testing.T) {
	svc := &fakeService{status: types.RefreshStatus{InProgress: true}}
	srv := httptest.NewServer(NewMux(svc))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/scrape-status")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var st types.RefreshStatus
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !st.InProgress {
		t.Fatalf("status: %+v", st)
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv := httptest.NewServer(NewMux(&fakeService{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/stats")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var s types.Stats
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Total != 3 || s.GGUF != 2 {
		t.Fatalf("stats: %+v", s)
	}
}

func TestHealthAndReadiness(t *testing.T) {
	svc := &fakeService{}
	srv := httptest.NewServer(NewMux(svc))
	defer srv.Close()

	resp, _ := http.Get(srv.URL + "/healthz")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: %d", resp.StatusCode)
	}

	resp, _ = http.Get(srv.URL + "/readyz")
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("readyz before ready: %d", resp.StatusCode)
	}

	svc.ready = true
	resp, _ = http.Get(srv.URL + "/readyz")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("readyz after ready: %d", resp.StatusCode)
	}
}

func TestDashboardServed(t *testing.T) {
	srv := httptest.NewServer(NewMux(&fakeService{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type: %s", ct)
	}
}
