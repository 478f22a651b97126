package store

import (
	"fmt"

	"gorm.io/gorm"

	"modeltrack/pkg/types"
)

// A migration is an idempotent schema step. The list is applied in order on
// every startup; steps that already ran are no-ops, so the record shape can
// grow across versions without destroying existing data.
type migration struct {
	name string
	run  func(db *gorm.DB) error
}

var migrations = []migration{
	{
		name: "001_create_models",
		run: func(db *gorm.DB) error {
			return db.AutoMigrate(&types.ModelRecord{})
		},
	},
	{
		// Databases created before metadata extraction existed lack these
		// columns; add them with defaults instead of failing.
		name: "002_add_gguf_columns",
		run: func(db *gorm.DB) error {
			cols := []string{
				"is_gguf", "quantization", "gguf_architecture",
				"context_length", "parameter_count", "bits_per_weight",
				"gguf_file", "vram_required_gb",
			}
			m := db.Migrator()
			for _, col := range cols {
				if m.HasColumn(&types.ModelRecord{}, col) {
					continue
				}
				if err := m.AddColumn(&types.ModelRecord{}, col); err != nil {
					return fmt.Errorf("add column %s: %w", col, err)
				}
			}
			return nil
		},
	},
	{
		name: "003_create_indexes",
		run: func(db *gorm.DB) error {
			stmts := []string{
				"CREATE INDEX IF NOT EXISTS idx_models_source ON models(source)",
				"CREATE INDEX IF NOT EXISTS idx_models_category ON models(category)",
				"CREATE INDEX IF NOT EXISTS idx_models_release_date ON models(release_date)",
				"CREATE INDEX IF NOT EXISTS idx_models_is_gguf ON models(is_gguf)",
			}
			for _, stmt := range stmts {
				if err := db.Exec(stmt).Error; err != nil {
					return err
				}
			}
			return nil
		},
	},
}

// Migrate applies the migration list in order. Safe to run on every startup.
func (s *Store) Migrate() error {
	for _, m := range migrations {
		if err := m.run(s.db); err != nil {
			return fmt.Errorf("migration %s: %w", m.name, err)
		}
		s.log.Debug().Str("migration", m.name).Msg("migration applied")
	}
	return nil
}
