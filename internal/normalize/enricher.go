package normalize

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"modeltrack/internal/gguf"
	"modeltrack/internal/sources"
	"modeltrack/pkg/types"
)

// MetadataExtractor is the capability-checked collaborator that reads GGUF
// metadata out of remote artifacts. Absence of the underlying tool is a
// first-class state reported by Available, not an exception path.
type MetadataExtractor interface {
	Available() bool
	Extract(ctx context.Context, source types.Source, repo, file string) (*types.GGUFMetadata, error)
}

// EnrichmentChecker answers whether an artifact was already enriched, so
// refreshes skip redundant extractor invocations.
type EnrichmentChecker interface {
	HasGGUFMetadata(ctx context.Context, source types.Source, url, file string) (bool, error)
}

// Options carries the config-derived knobs of the normalization stage.
type Options struct {
	// VRAMLimitGB drops candidates whose size estimate exceeds twice the
	// limit; they cannot run locally anyway. Zero disables the filter.
	VRAMLimitGB float64
	// IncludeChinese keeps Chinese-origin models when true.
	IncludeChinese bool
}

// Enricher turns candidates into model records. Pure transformation except
// for the delegated extractor call.
type Enricher struct {
	extractor MetadataExtractor
	enriched  EnrichmentChecker
	opts      Options
	log       zerolog.Logger
}

func NewEnricher(extractor MetadataExtractor, enriched EnrichmentChecker, opts Options, log zerolog.Logger) *Enricher {
	return &Enricher{extractor: extractor, enriched: enriched, opts: opts, log: log}
}

// Normalize converts one candidate. A nil record with skip == true means
// the candidate was filtered out (too large, or Chinese excluded).
func (e *Enricher) Normalize(ctx context.Context, c sources.Candidate) (rec *types.ModelRecord, skip bool) {
	isChinese := IsChineseModel(c.Name, c.Tags)
	if isChinese && !e.opts.IncludeChinese {
		return nil, true
	}
	sizeGB := EstimateSizeGB(c.SizeBytes, c.Name)
	if e.opts.VRAMLimitGB > 0 && sizeGB != nil && *sizeGB > e.opts.VRAMLimitGB*2 {
		return nil, true
	}

	rec = &types.ModelRecord{
		Source:      c.Source,
		URL:         c.URL,
		Name:        c.Name,
		Description: c.Description,
		Category:    DetectCategory(c),
		Tags:        encodeTags(c.Tags),
		ReleaseDate: releaseDate(c),
		Downloads:   c.Downloads,
		Likes:       c.Likes,
		SizeGB:      sizeGB,
		IsChinese:   isChinese,
		IsGGUF:      IsGGUF(c),
	}

	var md *types.GGUFMetadata
	if rec.IsGGUF && len(c.GGUFFiles) > 0 {
		md = e.extract(ctx, c, rec)
	}
	if rec.VRAMRequiredGB == nil {
		rec.VRAMRequiredGB = EstimateVRAMGB(rec.SizeGB, md)
	}
	return rec, false
}

// extract picks a representative artifact and runs the extractor against
// it, unless the tool is absent or the artifact was already enriched.
// Failures degrade to a record without metadata; is_gguf stays true.
func (e *Enricher) extract(ctx context.Context, c sources.Candidate, rec *types.ModelRecord) *types.GGUFMetadata {
	file := gguf.PickPreferredFile(c.GGUFFiles)
	if file == "" {
		return nil
	}
	rec.GGUFFile = &file

	if !e.extractor.Available() {
		return nil
	}
	if e.enriched != nil {
		already, err := e.enriched.HasGGUFMetadata(ctx, c.Source, c.URL, file)
		if err != nil {
			e.log.Warn().Str("url", c.URL).Err(err).Msg("enrichment lookup failed")
		} else if already {
			return nil
		}
	}

	md, err := e.extractor.Extract(ctx, c.Source, c.RepoID, file)
	if err != nil {
		// Unavailable means skip quietly; anything else is a real,
		// non-fatal extraction failure.
		if !errors.Is(err, gguf.ErrUnavailable) {
			e.log.Warn().Str("repo", c.RepoID).Str("file", file).Err(err).Msg("gguf extraction failed")
		}
		return nil
	}

	if md.Quantization != "" {
		rec.Quantization = &md.Quantization
	}
	if md.Architecture != "" {
		rec.GGUFArchitecture = &md.Architecture
	}
	if md.ContextLength > 0 {
		v := md.ContextLength
		rec.ContextLength = &v
	}
	if md.Parameters > 0 {
		v := md.Parameters
		rec.ParameterCount = &v
	}
	if md.BitsPerWeight > 0 {
		v := md.BitsPerWeight
		rec.BitsPerWeight = &v
	}
	if md.VRAMRequiredGB > 0 {
		v := md.VRAMRequiredGB
		rec.VRAMRequiredGB = &v
	}
	if rec.SizeGB == nil && md.FileSizeBytes > 0 {
		rec.SizeGB = EstimateSizeGB(md.FileSizeBytes, c.Name)
	}
	return md
}
