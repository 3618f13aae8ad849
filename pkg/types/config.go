package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "labpipe/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// OllamaConfig holds shared settings for stages that call the local Ollama
// inference endpoint.
type OllamaConfig struct {
	// BaseURL is the Ollama API endpoint (default "http://localhost:11434").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Model is the model identifier (e.g. "qwen2.5:14b" for parsing,
	// "mxbai-embed-large" for embeddings).
	Model string `json:"model" yaml:"model"`

	// MaxRetries is the number of retry attempts for failed calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ContentConfig locates the content store consumed by the website build.
type ContentConfig struct {
	// Dir is the content root (contains publications/ and embeddings.json).
	Dir string `json:"dir" yaml:"dir"`
}

// IngestConfig holds settings for the ingestion stage.
type IngestConfig struct {
	OllamaConfig `yaml:",inline"`

	// RequestDelay is the fixed delay between consecutive LLM calls
	// (default 500ms).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`

	// CheckpointFile records completed batches so a rerun can skip them.
	CheckpointFile string `json:"checkpoint_file" yaml:"checkpoint_file"`
}

// EnrichConfig holds settings for the enrichment stage.
type EnrichConfig struct {
	HTTPConfig `yaml:",inline"`

	// RequestDelay is the fixed delay between external API calls
	// (default 1s, rate-limit compliance).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`

	// OverlapThreshold is the minimum word-overlap similarity between a
	// record title and a search candidate title (default 0.7).
	OverlapThreshold float64 `json:"overlap_threshold" yaml:"overlap_threshold"`

	// YearWindow widens the publication-year filter on title searches by
	// ±N years (default 1).
	YearWindow int `json:"year_window" yaml:"year_window"`

	// CrossrefMailto is sent on Crossref requests for polite pool access.
	CrossrefMailto string `json:"crossref_mailto,omitempty" yaml:"crossref_mailto,omitempty"`

	// OpenAlexEmail is sent as the mailto parameter on OpenAlex requests.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// NCBIAPIKey is an optional key for the PubMed E-utilities.
	NCBIAPIKey string `json:"ncbi_api_key,omitempty" yaml:"ncbi_api_key,omitempty"`

	// CacheFile is the SQLite file holding lookup results for one pipeline
	// run. Empty disables caching.
	CacheFile string `json:"cache_file,omitempty" yaml:"cache_file,omitempty"`
}

// EmbedConfig holds settings for the embedding stage.
type EmbedConfig struct {
	OllamaConfig `yaml:",inline"`

	// Dimensions is the expected embedding dimension (default 1024).
	Dimensions int `json:"dimensions" yaml:"dimensions"`

	// RequestDelay is the fixed delay between embedding calls (default 100ms).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`
}

// ClassifyConfig holds settings for topic assignment.
type ClassifyConfig struct {
	// TopicsFile is the YAML file of topic prompt strings per category.
	TopicsFile string `json:"topics_file" yaml:"topics_file"`

	// Threshold is the minimum cosine similarity for a topic to be
	// assigned (default 0.5).
	Threshold float64 `json:"threshold" yaml:"threshold"`

	// Gap is the maximum score distance for a runner-up topic to be
	// included alongside the best one (default 0.05).
	Gap float64 `json:"gap" yaml:"gap"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Content  ContentConfig  `json:"content" yaml:"content"`
	Ingest   IngestConfig   `json:"ingest" yaml:"ingest"`
	Enrich   EnrichConfig   `json:"enrich" yaml:"enrich"`
	Embed    EmbedConfig    `json:"embed" yaml:"embed"`
	Classify ClassifyConfig `json:"classify" yaml:"classify"`
}
