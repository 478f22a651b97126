package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"modeltrack/internal/store"
	"modeltrack/pkg/types"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

// parseFilters maps the /api/models query string onto store filters.
// Unknown enum values are a 400; the store validates sort itself.
func parseFilters(r *http.Request) (store.Filters, error) {
	q := r.URL.Query()
	f := store.Filters{Limit: defaultLimit}

	if v := q.Get("source"); v != "" {
		switch types.Source(v) {
		case types.SourceHuggingFace, types.SourceModelScope:
			f.Source = types.Source(v)
		default:
			return f, fmt.Errorf("unknown source %q", v)
		}
	}
	if v := q.Get("category"); v != "" {
		switch types.Category(v) {
		case types.CategoryText, types.CategoryImage, types.CategoryVideo,
			types.CategoryAudio, types.CategoryCoding, types.CategoryOther:
			f.Category = types.Category(v)
		default:
			return f, fmt.Errorf("unknown category %q", v)
		}
	}
	if v := q.Get("chinese"); v == "1" || v == "true" {
		f.ChineseOnly = true
	}
	if v := q.Get("format"); v != "" {
		if v != "gguf" {
			return f, fmt.Errorf("unknown format %q", v)
		}
		f.GGUFOnly = true
	}
	f.Search = q.Get("q")
	f.Sort = q.Get("sort")

	if v := q.Get("since"); v != "" {
		t, err := parseSince(v)
		if err != nil {
			return f, err
		}
		f.Since = &t
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return f, fmt.Errorf("invalid limit %q", v)
		}
		if n > maxLimit {
			n = maxLimit
		}
		f.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, fmt.Errorf("invalid offset %q", v)
		}
		f.Offset = n
	}
	return f, nil
}

// parseSince accepts an RFC 3339 timestamp or a plain date.
func parseSince(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid since %q", v)
}
