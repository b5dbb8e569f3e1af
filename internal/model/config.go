package model

import "time"

// Config holds the complete wikitopics configuration
type Config struct {
	Wiki         WikiConfig         `yaml:"wiki" mapstructure:"wiki"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	Collect      CollectConfig      `yaml:"collect" mapstructure:"collect"`
	Sections     SectionsConfig     `yaml:"sections" mapstructure:"sections"`
	Normalize    NormalizeConfig    `yaml:"normalize" mapstructure:"normalize"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// WikiConfig points the client at a Wikipedia instance
type WikiConfig struct {
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`             // https://en.wikipedia.org
	APIPath       string `yaml:"api_path" mapstructure:"api_path"`             // /w/api.php
	RespectRobots bool   `yaml:"respect_robots" mapstructure:"respect_robots"` // check robots.txt before article fetches
}

// APIURL returns the full Action API endpoint
func (w WikiConfig) APIURL() string {
	return w.BaseURL + w.APIPath
}

// HTTPConfig controls outgoing requests
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	InsecureTLS  bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// RateLimitingConfig throttles requests per host
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// CacheConfig controls the response cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig controls the page fetch workers
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// CollectConfig drives the category walk.
// Negative Threshold or MaxDepth disables the corresponding limit.
type CollectConfig struct {
	Seeds     []string `yaml:"seeds" mapstructure:"seeds"`
	Threshold int      `yaml:"threshold" mapstructure:"threshold"`
	MaxDepth  int      `yaml:"max_depth" mapstructure:"max_depth"`
}

// SectionsConfig selects which article sections feed the corpus
type SectionsConfig struct {
	Keywords           []string `yaml:"keywords" mapstructure:"keywords"`
	UseSummaryFallback bool     `yaml:"use_summary_fallback" mapstructure:"use_summary_fallback"`
}

// NormalizeConfig controls tokenization and filtering
type NormalizeConfig struct {
	Lemmatize      bool     `yaml:"lemmatize" mapstructure:"lemmatize"`
	AllowedPOS     []string `yaml:"allowed_pos" mapstructure:"allowed_pos"`
	MinLength      int      `yaml:"min_length" mapstructure:"min_length"`
	ExtraStopwords []string `yaml:"extra_stopwords" mapstructure:"extra_stopwords"`
	StopwordsFile  string   `yaml:"stopwords_file,omitempty" mapstructure:"stopwords_file"`
}

// OutputConfig controls where artifacts go
type OutputConfig struct {
	Dir        string `yaml:"dir" mapstructure:"dir"`
	SQLitePath string `yaml:"sqlite_path,omitempty" mapstructure:"sqlite_path"`
	Verbose    bool   `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the configuration used for the science-fiction corpus
func DefaultConfig() *Config {
	return &Config{
		Wiki: WikiConfig{
			BaseURL:       "https://en.wikipedia.org",
			APIPath:       "/w/api.php",
			RespectRobots: true,
		},
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "wikitopics/0.1 (+https://github.com/ppiankov/wikitopics)",
			MaxBodyBytes: 8_000_000,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 5,
			BurstSize:         5,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".wikitopics-cache",
			MemoryTTL: 1 * time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 1,
		},
		Collect: CollectConfig{
			Seeds: []string{
				"Category:Science fiction novels by writer",
				"Category:Science fiction novels by year",
			},
			Threshold: 10,
			MaxDepth:  2,
		},
		Sections: SectionsConfig{
			Keywords: []string{
				"plot", "character", "summary", "summari", "topic", "theme",
				"background", "origin", "introduction", "concept", "symbol",
			},
			UseSummaryFallback: true,
		},
		Normalize: NormalizeConfig{
			Lemmatize:      true,
			AllowedPOS:     []string{"NOUN", "VERB", "ADJ", "ADV"},
			MinLength:      3,
			ExtraStopwords: []string{"novel", "book", "story", "chapter", "also"},
		},
		Output: OutputConfig{
			Dir: "./wikitopics-out",
		},
	}
}
