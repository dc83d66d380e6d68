package types

import "time"

// HTTPConfig holds shared HTTP settings for stages that call the metadata API.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "citegraph/0.1"). Per prd002-metadata R5.2.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ProviderConfig holds settings for the Semantic Scholar client.
// Per prd002-metadata R5.1-R5.4.
type ProviderConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is an optional Semantic Scholar API key for higher rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// NeighborLimit caps the reference/citation stubs requested per paper
	// (default 500, provider maximum 1000).
	NeighborLimit int `json:"neighbor_limit" yaml:"neighbor_limit"`
}

// CacheBackend identifies the response cache store implementation.
// Per prd003-cache R5.1.
type CacheBackend string

const (
	CacheSQLite CacheBackend = "sqlite"
	CacheBadger CacheBackend = "badger"
	CacheMemory CacheBackend = "memory"
)

// CacheConfig holds settings for the response cache.
// Per prd003-cache R5.1-R5.3.
type CacheConfig struct {
	// Backend selects the store: sqlite, badger, or memory.
	Backend CacheBackend `json:"backend" yaml:"backend"`

	// Path is the store location on disk (ignored by the memory backend).
	Path string `json:"path" yaml:"path"`

	// MaxAge treats entries older than this as misses; 0 means entries
	// never go stale.
	MaxAge time.Duration `json:"max_age" yaml:"max_age"`
}

// ExploreConfig holds the exploration budgets and scoring parameters.
// Per prd001-exploration R2.1-R2.6, R4.1-R4.4.
type ExploreConfig struct {
	// MaxSize is the visited-node budget (default 80). Zero means the
	// returned graph contains only the seed nodes.
	MaxSize int `json:"max_size" yaml:"max_size"`

	// MaxRequests is the live provider call budget (default 300). Cache
	// hits do not count against it.
	MaxRequests int `json:"max_requests" yaml:"max_requests"`

	// Citing also explores papers citing a visited paper, not just its
	// references.
	Citing bool `json:"citing" yaml:"citing"`

	// SeedScore is the frontier priority assigned to seeds (default 100).
	// It exceeds any score the degree-of-interest function can produce for
	// a discovered paper under the default parameters.
	SeedScore float64 `json:"seed_score" yaml:"seed_score"`

	// BaseWeight is the a-priori weight of a paper absent from the seed
	// corpus (default 1).
	BaseWeight float64 `json:"base_weight" yaml:"base_weight"`

	// SimilarityWeight scales the author-overlap bonus (default 2).
	SimilarityWeight float64 `json:"similarity_weight" yaml:"similarity_weight"`

	// Decay multiplies the inherited share of a parent's score per hop
	// (default 0.5, must stay below 1 for scores to fall with distance).
	Decay float64 `json:"decay" yaml:"decay"`

	// FailureLimit aborts the run after this many failed fetches
	// (default 10). Zero disables the limit.
	FailureLimit int `json:"failure_limit" yaml:"failure_limit"`
}

// DefaultExploreConfig returns the documented exploration defaults.
func DefaultExploreConfig() ExploreConfig {
	return ExploreConfig{
		MaxSize:          80,
		MaxRequests:      300,
		SeedScore:        100,
		BaseWeight:       1,
		SimilarityWeight: 2,
		Decay:            0.5,
		FailureLimit:     10,
	}
}

// GraphFormat selects the export format. Per prd005-export R1.1.
type GraphFormat string

const (
	FormatDOT  GraphFormat = "dot"
	FormatGEXF GraphFormat = "gexf"
	FormatJSON GraphFormat = "json"
)

// ExportConfig holds settings for graph export.
type ExportConfig struct {
	// Format selects the output format: dot, gexf, or json.
	Format GraphFormat `json:"format" yaml:"format"`

	// Outfile is the output path; empty means stdout.
	Outfile string `json:"outfile,omitempty" yaml:"outfile,omitempty"`
}

// BuildConfig groups all settings for one build run.
type BuildConfig struct {
	Provider ProviderConfig `json:"provider" yaml:"provider"`
	Cache    CacheConfig    `json:"cache" yaml:"cache"`
	Explore  ExploreConfig  `json:"explore" yaml:"explore"`
	Export   ExportConfig   `json:"export" yaml:"export"`

	// BibPath is the CSL-YAML bibliography used as the seed corpus.
	BibPath string `json:"bib_path,omitempty" yaml:"bib_path,omitempty"`

	// TagsPath is the YAML tag rules file.
	TagsPath string `json:"tags_path,omitempty" yaml:"tags_path,omitempty"`
}
