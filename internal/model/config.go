package model

import (
	"path/filepath"
	"time"
)

// Config holds the complete citewell configuration
type Config struct {
	Workspace   WorkspaceConfig   `yaml:"workspace" mapstructure:"workspace"`
	Embedding   EmbeddingConfig   `yaml:"embedding" mapstructure:"embedding"`
	Judge       JudgeConfig       `yaml:"judge" mapstructure:"judge"`
	Search      SearchConfig      `yaml:"search" mapstructure:"search"`
	Loop        LoopConfig        `yaml:"loop" mapstructure:"loop"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
}

// WorkspaceConfig locates the on-disk workspace (claims, mappings, index)
type WorkspaceConfig struct {
	Dir           string `yaml:"dir" mapstructure:"dir"`                       // Root directory, default ~/.citewell
	LiteratureDir string `yaml:"literature_dir" mapstructure:"literature_dir"` // Source documents to index
}

// EmbeddingConfig configures the embedding provider
type EmbeddingConfig struct {
	Provider   string        `yaml:"provider" mapstructure:"provider"`       // "openai" or "mock"
	Model      string        `yaml:"model" mapstructure:"model"`             // e.g. text-embedding-3-small
	APIKey     string        `yaml:"-" mapstructure:"-"`                     // From env, never written to disk
	BaseURL    string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	CacheSize  int           `yaml:"cache_size" mapstructure:"cache_size"`   // LRU entries
	RatePerSec float64       `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Burst      int           `yaml:"burst" mapstructure:"burst"`
}

// JudgeConfig configures the LLM evidence judge
type JudgeConfig struct {
	Provider   string        `yaml:"provider" mapstructure:"provider"` // "openai" or "mock"
	Model      string        `yaml:"model" mapstructure:"model"`
	APIKey     string        `yaml:"-" mapstructure:"-"`
	BaseURL    string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens  int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	RatePerSec float64       `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Burst      int           `yaml:"burst" mapstructure:"burst"`
}

// SearchConfig tunes literature snippet search
type SearchConfig struct {
	TopK           int `yaml:"top_k" mapstructure:"top_k"`                       // Candidates per round
	ChunkLines     int `yaml:"chunk_lines" mapstructure:"chunk_lines"`           // Lines per indexed snippet
	ChunkOverlap   int `yaml:"chunk_overlap" mapstructure:"chunk_overlap"`       // Overlapping lines between chunks
	MatchThreshold float64 `yaml:"match_threshold" mapstructure:"match_threshold"` // Default similarity floor for claim matching
}

// LoopConfig tunes the verification feedback loop
type LoopConfig struct {
	MaxRounds         int `yaml:"max_rounds" mapstructure:"max_rounds"`
	SufficiencyTarget int `yaml:"sufficiency_target" mapstructure:"sufficiency_target"` // Supporting snippets needed to stop
}

// CacheConfig configures validation/embedding caches
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig bounds fan-out
type ConcurrencyConfig struct {
	VerifyWorkers int `yaml:"verify_workers" mapstructure:"verify_workers"` // Per-round candidate verification
	BatchWorkers  int `yaml:"batch_workers" mapstructure:"batch_workers"`   // Batch sentence matching / indexing
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Workspace: WorkspaceConfig{
			Dir: "", // Resolved to ~/.citewell by the CLI when empty
		},
		Embedding: EmbeddingConfig{
			Provider:   "openai",
			Model:      "text-embedding-3-small",
			Timeout:    30 * time.Second,
			CacheSize:  2048,
			RatePerSec: 5,
			Burst:      10,
		},
		Judge: JudgeConfig{
			Provider:   "openai",
			Model:      "gpt-4o-mini",
			Timeout:    45 * time.Second,
			MaxTokens:  400,
			RatePerSec: 2,
			Burst:      4,
		},
		Search: SearchConfig{
			TopK:           8,
			ChunkLines:     6,
			ChunkOverlap:   2,
			MatchThreshold: 0.5,
		},
		Loop: LoopConfig{
			MaxRounds:         3,
			SufficiencyTarget: 2,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			VerifyWorkers: 4,
			BatchWorkers:  4,
		},
	}
}

// ClaimsPath returns the claim table file under the workspace directory.
func (c *Config) ClaimsPath() string {
	return filepath.Join(c.Workspace.Dir, "claims.json")
}

// MappingsPath returns the sentence-claim mapping store directory.
func (c *Config) MappingsPath() string {
	return filepath.Join(c.Workspace.Dir, "mappings")
}

// IndexPath returns the literature index directory.
func (c *Config) IndexPath() string {
	return filepath.Join(c.Workspace.Dir, "literature.bleve")
}

// CacheDir returns the disk cache directory.
func (c *Config) CacheDir() string {
	return filepath.Join(c.Workspace.Dir, "cache")
}

// SourceMapPath returns the citation source mapping file.
func (c *Config) SourceMapPath() string {
	return filepath.Join(c.Workspace.Dir, "sources.json")
}

// ExtractedDir returns the directory holding extracted literature text.
func (c *Config) ExtractedDir() string {
	return filepath.Join(c.Workspace.Dir, "extracted")
}
