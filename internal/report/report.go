// Package report renders a weekly HTML digest of newly released models.
// It is a read-only consumer of the store.
package report

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"time"

	"modeltrack/internal/store"
	"modeltrack/pkg/types"
)

// window is the lookback period for "new this week".
const window = 7 * 24 * time.Hour

// maxRows keeps the digest readable.
const maxRows = 50

// Querier is the read-side store capability the report needs.
type Querier interface {
	Query(ctx context.Context, f store.Filters) ([]types.ModelRecord, int64, error)
	Stats(ctx context.Context) (types.Stats, error)
}

type reportData struct {
	GeneratedAt time.Time
	Since       time.Time
	Models      []types.ModelRecord
	Total       int64
	Stats       types.Stats
}

var tmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>modeltrack weekly report</title></head>
<body>
<h1>New models since {{.Since.Format "2006-01-02"}}</h1>
<p>Generated {{.GeneratedAt.Format "2006-01-02 15:04"}} UTC.
Tracking {{.Stats.Total}} models ({{.Stats.GGUF}} GGUF, {{.Stats.Chinese}} Chinese).</p>
<p>{{.Total}} released this week.</p>
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>Name</th><th>Source</th><th>Category</th><th>Size (GB)</th><th>Downloads</th><th>Released</th></tr>
{{range .Models}}<tr>
<td><a href="{{.URL}}">{{.Name}}</a></td>
<td>{{.Source}}</td>
<td>{{.Category}}</td>
<td>{{if .SizeGB}}{{.SizeGB}}{{else}}?{{end}}</td>
<td>{{.Downloads}}</td>
<td>{{if .ReleaseDate}}{{.ReleaseDate.Format "2006-01-02"}}{{end}}</td>
</tr>
{{end}}</table>
</body>
</html>
`))

// Generate writes the weekly digest to w.
func Generate(ctx context.Context, q Querier, w io.Writer) error {
	since := time.Now().UTC().Add(-window)
	models, total, err := q.Query(ctx, store.Filters{
		Since: &since,
		Sort:  "downloads_desc",
		Limit: maxRows,
	})
	if err != nil {
		return fmt.Errorf("query weekly models: %w", err)
	}
	stats, err := q.Stats(ctx)
	if err != nil {
		return fmt.Errorf("query stats: %w", err)
	}
	return tmpl.Execute(w, reportData{
		GeneratedAt: time.Now().UTC(),
		Since:       since,
		Models:      models,
		Total:       total,
		Stats:       stats,
	})
}
