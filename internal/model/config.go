package model

import "time"

// Config is the full runtime configuration, loadable from
// ~/.docureel/config.yaml, DOCUREEL_* environment variables and CLI
// flags (highest priority last).
type Config struct {
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Research    ResearchConfig    `yaml:"research" mapstructure:"research"`
	Trust       TrustConfig       `yaml:"trust" mapstructure:"trust"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// HTTPConfig controls outbound page fetching.
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	RespectRobots bool         `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// ResearchConfig bounds the evidence research engine.
type ResearchConfig struct {
	MaxSearchResults  int           `yaml:"max_search_results" mapstructure:"max_search_results"`   // Per query, from the search backend
	URLsPerQuery      int           `yaml:"urls_per_query" mapstructure:"urls_per_query"`           // Top results actually fetched
	MaxQueries        int           `yaml:"max_queries" mapstructure:"max_queries"`                 // Hard cap on the research plan
	MinContentLength  int           `yaml:"min_content_length" mapstructure:"min_content_length"`   // Pages shorter than this carry no evidence
	MaxContentLength  int           `yaml:"max_content_length" mapstructure:"max_content_length"`   // Page text cap before extraction
	MaxExtractionText int           `yaml:"max_extraction_text" mapstructure:"max_extraction_text"` // Chars of page text sent to the model
	PolitenessDelay   time.Duration `yaml:"politeness_delay" mapstructure:"politeness_delay"`       // Fixed wait before each page fetch
	AllowUnlisted     bool          `yaml:"allow_unlisted" mapstructure:"allow_unlisted"`           // Tag unclassified URLs as trusted instead of dropping
}

// TrustConfig is the allow-list policy table: configuration, not
// behavior. Domains are matched exactly after www/port stripping.
type TrustConfig struct {
	NewsDomains         []string `yaml:"news_domains" mapstructure:"news_domains"`
	EncyclopediaDomains []string `yaml:"encyclopedia_domains" mapstructure:"encyclopedia_domains"`
	TechScienceDomains  []string `yaml:"tech_science_domains" mapstructure:"tech_science_domains"`
}

// LLMConfig configures the model backend and the shared rate gate.
type LLMConfig struct {
	Provider        string        `yaml:"provider" mapstructure:"provider"` // gemini, openai
	Model           string        `yaml:"model" mapstructure:"model"`       // Planning/scripting model
	ExtractionModel string        `yaml:"extraction_model" mapstructure:"extraction_model"`
	APIKey          string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL         string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout         time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens       int           `yaml:"max_tokens" mapstructure:"max_tokens"`

	// Rate gate and retry policy, shared across every component that
	// issues model calls.
	MinInterval time.Duration `yaml:"min_interval" mapstructure:"min_interval"`
	MaxRetries  int           `yaml:"max_retries" mapstructure:"max_retries"`
	RetryBase   time.Duration `yaml:"retry_base" mapstructure:"retry_base"`
	RetryJitter time.Duration `yaml:"retry_jitter" mapstructure:"retry_jitter"`
}

// CacheConfig controls page-text caching between fetches.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir     string        `yaml:"dir" mapstructure:"dir"` // Empty: memory-only
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// ConcurrencyConfig bounds worker fan-out.
type ConcurrencyConfig struct {
	BatchWorkers int `yaml:"batch_workers" mapstructure:"batch_workers"` // Concurrent topics in batch mode
}

// StoreConfig locates the research-run database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // Empty: ~/.docureel/runs.db
}

// OutputConfig controls artifact placement and verbosity.
type OutputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults, including the trust
// allow-lists. Lists are data: editing them changes policy inputs, not
// classifier behavior.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       10 * time.Second,
			UserAgent:     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
		},
		Research: ResearchConfig{
			MaxSearchResults:  5,
			URLsPerQuery:      3,
			MaxQueries:        5,
			MinContentLength:  200,
			MaxContentLength:  15_000,
			MaxExtractionText: 10_000,
			PolitenessDelay:   2 * time.Second,
			AllowUnlisted:     false,
		},
		Trust: TrustConfig{
			NewsDomains: []string{
				// Wire services and global agencies
				"reuters.com", "apnews.com", "afp.com", "bbc.com", "bbc.co.uk",
				"aljazeera.com", "dw.com",
				// North America
				"nytimes.com", "washingtonpost.com", "bloomberg.com", "wsj.com",
				"cnn.com", "cnbc.com", "npr.org", "pbs.org", "nbcnews.com",
				"cbsnews.com", "usatoday.com", "politico.com", "axios.com",
				// UK / Europe
				"theguardian.com", "telegraph.co.uk", "independent.co.uk",
				"ft.com", "economist.com", "france24.com", "euronews.com",
				"spiegel.de", "lemonde.fr", "elpais.es", "corriere.it",
				// Asia / Pacific
				"abc.net.au", "straitstimes.com", "thehindu.com", "ndtv.com",
				"scmp.com", "channelnewsasia.com", "bangkokpost.com",
				"japantimes.co.jp", "koreaherald.com",
				// Middle East / Africa
				"arabnews.com", "jpost.com", "dawn.com", "news24.com",
				"timeslive.co.za", "allafrica.com",
			},
			EncyclopediaDomains: []string{
				"wikipedia.org", "britannica.com", "scholarpedia.org",
				"encyclopedia.com", "infoplease.com", "wiktionary.org",
				"wikimedia.org", "oed.com", "merriam-webster.com",
				"investopedia.com", "techopedia.com",
			},
			TechScienceDomains: []string{
				// Journals and publishers
				"nature.com", "sciencemag.org", "pnas.org", "thelancet.com",
				"bmj.com", "ieee.org", "acm.org", "arxiv.org",
				"pubmed.ncbi.nlm.nih.gov", "plos.org", "springer.com",
				"elsevier.com", "wiley.com", "tandfonline.com",
				// Government and international science bodies
				"nasa.gov", "esa.int", "noaa.gov", "usgs.gov", "nist.gov",
				"un.org", "unesco.org", "iaea.org", "ipcc.ch", "who.int",
				// Science and tech press
				"scientificamerican.com", "newscientist.com",
				"smithsonianmag.com", "arstechnica.com", "wired.com",
				"theverge.com", "techcrunch.com", "zdnet.com", "cnet.com",
				"tomshardware.com", "anandtech.com", "semiengineering.com",
				// Market research
				"idc.com", "gartner.com", "forrester.com", "trendforce.com",
				"counterpointresearch.com", "sec.gov", "crunchbase.com",
			},
		},
		LLM: LLMConfig{
			Provider:        "gemini",
			Model:           "gemini-2.5-flash",
			ExtractionModel: "gemini-2.5-flash-lite",
			Timeout:         60 * time.Second,
			MaxTokens:       4096,
			MinInterval:     4 * time.Second,
			MaxRetries:      5,
			RetryBase:       10 * time.Second,
			RetryJitter:     2 * time.Second,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     6 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			BatchWorkers: 2,
		},
		Store: StoreConfig{},
		Output: OutputConfig{
			Dir: "output",
		},
	}
}
