package types

import "time"

// Source identifies the upstream hub a model was discovered on.
type Source string

const (
	SourceHuggingFace Source = "huggingface"
	SourceModelScope  Source = "modelscope"
)

// Category is a coarse classification of what a model does.
type Category string

const (
	CategoryText   Category = "text"
	CategoryImage  Category = "image"
	CategoryVideo  Category = "video"
	CategoryAudio  Category = "audio"
	CategoryCoding Category = "coding"
	CategoryOther  Category = "other"
)

// ModelRecord is the canonical stored shape of a discovered model.
// (source, url) is unique; re-discovery updates the existing row.
type ModelRecord struct {
	ID          uint     `gorm:"primarykey" json:"-"`
	Source      Source   `gorm:"not null;index;uniqueIndex:idx_models_source_url" json:"source"`
	URL         string   `gorm:"not null;uniqueIndex:idx_models_source_url" json:"url"`
	Name        string   `gorm:"not null" json:"name"`
	Description string   `json:"description,omitempty"`
	Category    Category `gorm:"index;default:other" json:"category"`
	// Tags holds up to ten upstream tags, JSON-encoded.
	Tags string `json:"tags,omitempty"`

	ReleaseDate *time.Time `gorm:"index" json:"release_date,omitempty"`
	Downloads   int64      `gorm:"default:0" json:"downloads"`
	Likes       int64      `gorm:"default:0" json:"likes"`

	// SizeGB is a best-effort artifact size estimate. Nil means unknown,
	// never zero-as-placeholder.
	SizeGB    *float64 `gorm:"column:size_gb" json:"size_gb,omitempty"`
	IsChinese bool     `gorm:"default:false" json:"is_chinese"`

	// IsGGUF is derived from the name, tags or file list. It is independent
	// of whether metadata extraction succeeded.
	IsGGUF           bool     `gorm:"column:is_gguf;default:false;index" json:"is_gguf"`
	Quantization     *string  `json:"quantization,omitempty"`
	GGUFArchitecture *string  `gorm:"column:gguf_architecture" json:"gguf_architecture,omitempty"`
	ContextLength    *int64   `json:"context_length,omitempty"`
	ParameterCount   *int64   `json:"parameter_count,omitempty"`
	BitsPerWeight    *float64 `json:"bits_per_weight,omitempty"`
	GGUFFile         *string  `gorm:"column:gguf_file" json:"gguf_file,omitempty"`
	VRAMRequiredGB   *float64 `gorm:"column:vram_required_gb" json:"vram_required_gb,omitempty"`

	// FirstSeenAt is set on insert and never changes afterwards.
	FirstSeenAt   time.Time `json:"first_seen_at"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
}

// TableName keeps the table compatible with earlier releases.
func (ModelRecord) TableName() string { return "models" }

// HasGGUFMetadata reports whether extraction has populated the GGUF columns.
// A GGUF record without metadata is valid (extraction may have failed or the
// extractor tool may be absent).
func (m *ModelRecord) HasGGUFMetadata() bool {
	return m.Quantization != nil || m.GGUFArchitecture != nil
}

// GGUFMetadata is the structured output of the external gguf-parser tool
// for a single artifact.
type GGUFMetadata struct {
	// Architecture of the network, e.g. "llama".
	Architecture string `json:"architecture,omitempty"`
	// Quantization variant, e.g. "Q4_K_M".
	Quantization string `json:"quantization,omitempty"`
	// Parameters is the total weight count.
	Parameters int64 `json:"parameters,omitempty"`
	// ContextLength is the maximum context window in tokens.
	ContextLength   int64 `json:"context_length,omitempty"`
	EmbeddingLength int64 `json:"embedding_length,omitempty"`
	FileSizeBytes   int64 `json:"file_size_bytes,omitempty"`
	// BitsPerWeight is the effective quantization density.
	BitsPerWeight float64 `json:"bits_per_weight,omitempty"`
	// VRAMRequiredGB is the tool's non-UMA VRAM estimate.
	VRAMRequiredGB float64 `json:"vram_required_gb,omitempty"`
	RAMRequiredGB  float64 `json:"ram_required_gb,omitempty"`
	ModelName      string  `json:"model_name,omitempty"`
}
