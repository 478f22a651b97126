package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"modeltrack/internal/common/fsutil"
	"modeltrack/pkg/types"
)

// Store is the single shared mutable resource of the tracker: a SQLite
// database of model records. All writes go through Upsert.
type Store struct {
	db  *gorm.DB
	log zerolog.Logger
}

// Open opens (creating if needed) the SQLite database at path and applies
// pending migrations. The parent directory is created on demand so a fresh
// data dir works out of the box.
func Open(path string, log zerolog.Logger) (*Store, error) {
	expanded, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	if err := fsutil.EnsureDir(filepath.Dir(expanded)); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := gorm.Open(sqlite.Open(expanded), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	s := &Store{db: db, log: log}
	if err := s.Migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Upsert inserts rec or, when a row with the same (source, url) already
// exists, refreshes that row. FirstSeenAt is immutable; LastUpdatedAt
// advances on every call. Returns whether the record was newly created.
//
// The insert-then-update shape makes a constraint violation from a
// concurrent writer resolve to an update instead of an error.
func (s *Store) Upsert(ctx context.Context, rec *types.ModelRecord) (created bool, err error) {
	if rec.Source == "" || rec.URL == "" {
		return false, fmt.Errorf("record missing source or url: %q %q", rec.Source, rec.URL)
	}
	now := time.Now().UTC()
	if rec.FirstSeenAt.IsZero() {
		rec.FirstSeenAt = now
	}
	rec.LastUpdatedAt = now

	insert := *rec
	insert.ID = 0
	err = s.db.WithContext(ctx).Create(&insert).Error
	if err == nil {
		rec.ID = insert.ID
		return true, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, fmt.Errorf("insert %s: %w", rec.URL, err)
	}

	cols := []string{
		"name", "description", "category", "tags", "release_date",
		"downloads", "likes", "size_gb", "is_chinese", "is_gguf",
		"vram_required_gb", "last_updated_at",
	}
	// Only overwrite extracted metadata when the incoming record carries
	// some; a refresh that skipped extraction must not null out a prior
	// successful enrichment.
	if rec.HasGGUFMetadata() {
		cols = append(cols,
			"quantization", "gguf_architecture", "context_length",
			"parameter_count", "bits_per_weight", "gguf_file",
		)
	}
	res := s.db.WithContext(ctx).Model(&types.ModelRecord{}).
		Where("source = ? AND url = ?", rec.Source, rec.URL).
		Select(cols).
		Updates(rec)
	if res.Error != nil {
		return false, fmt.Errorf("update %s: %w", rec.URL, res.Error)
	}
	return false, nil
}

// Filters narrows and orders a Query.
type Filters struct {
	Source      types.Source
	Category    types.Category
	ChineseOnly bool
	GGUFOnly    bool
	// Search matches name or description, case-insensitive.
	Search string
	// Since keeps records released at or after the given time.
	Since *time.Time
	// Sort is one of date_desc (default), date_asc, downloads_desc,
	// likes_desc, name_asc, size_desc.
	Sort   string
	Limit  int
	Offset int
}

// ggufPredicate matches the dashboard convention: a model counts as GGUF
// when the flag is set or the name says so, regardless of whether metadata
// extraction ever succeeded.
const ggufPredicate = "(is_gguf = ? OR lower(name) LIKE '%gguf%')"

// Query returns records matching f, ordered per f.Sort, plus the total
// match count before paging.
func (s *Store) Query(ctx context.Context, f Filters) ([]types.ModelRecord, int64, error) {
	q := s.db.WithContext(ctx).Model(&types.ModelRecord{})
	if f.Source != "" {
		q = q.Where("source = ?", f.Source)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.ChineseOnly {
		q = q.Where("is_chinese = ?", true)
	}
	if f.GGUFOnly {
		q = q.Where(ggufPredicate, true)
	}
	if f.Search != "" {
		needle := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("lower(name) LIKE ? OR lower(description) LIKE ?", needle, needle)
	}
	if f.Since != nil {
		q = q.Where("release_date >= ?", *f.Since)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count models: %w", err)
	}

	switch f.Sort {
	case "", "date_desc":
		q = q.Order("release_date DESC")
	case "date_asc":
		q = q.Order("release_date ASC")
	case "downloads_desc":
		q = q.Order("downloads DESC")
	case "likes_desc":
		q = q.Order("likes DESC")
	case "name_asc":
		q = q.Order("name COLLATE NOCASE ASC")
	case "size_desc":
		// NULL sizes sort last.
		q = q.Order("size_gb IS NULL").Order("size_gb DESC")
	default:
		return nil, 0, fmt.Errorf("unknown sort: %s", f.Sort)
	}

	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var out []types.ModelRecord
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, fmt.Errorf("query models: %w", err)
	}
	return out, total, nil
}

// Stats computes aggregate counts directly from current rows, never from a
// separately maintained cache.
func (s *Store) Stats(ctx context.Context) (types.Stats, error) {
	stats := types.Stats{
		ByCategory: make(map[types.Category]int64),
		BySource:   make(map[types.Source]int64),
	}
	db := s.db.WithContext(ctx).Model(&types.ModelRecord{})

	if err := db.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return stats, fmt.Errorf("count total: %w", err)
	}

	type bucket struct {
		Key   string
		Count int64
	}
	var byCat []bucket
	if err := db.Session(&gorm.Session{}).
		Select("category AS key, COUNT(*) AS count").
		Group("category").Scan(&byCat).Error; err != nil {
		return stats, fmt.Errorf("count by category: %w", err)
	}
	for _, b := range byCat {
		stats.ByCategory[types.Category(b.Key)] = b.Count
	}

	var bySrc []bucket
	if err := db.Session(&gorm.Session{}).
		Select("source AS key, COUNT(*) AS count").
		Group("source").Scan(&bySrc).Error; err != nil {
		return stats, fmt.Errorf("count by source: %w", err)
	}
	for _, b := range bySrc {
		stats.BySource[types.Source(b.Key)] = b.Count
	}

	if err := db.Session(&gorm.Session{}).
		Where("is_chinese = ?", true).Count(&stats.Chinese).Error; err != nil {
		return stats, fmt.Errorf("count chinese: %w", err)
	}
	if err := db.Session(&gorm.Session{}).
		Where(ggufPredicate, true).Count(&stats.GGUF).Error; err != nil {
		return stats, fmt.Errorf("count gguf: %w", err)
	}
	return stats, nil
}

// HasGGUFMetadata reports whether the stored row for (source, url) already
// carries extracted metadata for the given artifact file. Used to skip
// redundant extractor invocations on refresh.
func (s *Store) HasGGUFMetadata(ctx context.Context, source types.Source, url, file string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&types.ModelRecord{}).
		Where("source = ? AND url = ? AND gguf_file = ? AND quantization IS NOT NULL", source, url, file).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
