package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath     string `long:"db-path" env:"DB_PATH" default:"./data/purple-check.db" description:"SQLite database file path"`
	DataDir    string `long:"data-dir" env:"DATA_DIR" default:"./data" description:"Directory for cursor state"`
	SourcesDir string `long:"sources-dir" env:"SOURCES_DIR" default:"./sources" description:"Directory containing source configuration files"`

	// Application configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP status server port"`
	PollInterval int    `long:"poll-interval" env:"POLL_INTERVAL" default:"0" description:"Seconds between harvest cycles; 0 runs a single cycle and exits"`
	BatchLimit   int    `long:"batch-limit" env:"BATCH_LIMIT" default:"0" description:"Maximum posts to process per cycle; 0 means no limit"`

	// Reddit configuration
	RedditBaseURL string `long:"reddit-base-url" env:"REDDIT_BASE_URL" default:"https://www.reddit.com" description:"Reddit API base URL"`
	UserAgent     string `long:"user-agent" env:"USER_AGENT" default:"purple-check-agent/1.0" description:"User agent string for HTTP requests"`

	// Inference service configuration
	LLMEndpoint string `long:"llm-endpoint" env:"LLM_ENDPOINT" default:"https://api.openai.com/v1/chat/completions" description:"Inference service chat completions endpoint"`
	LLMAPIKey   string `long:"llm-api-key" env:"LLM_API_KEY" description:"Inference service API key (required)" required:"true"`
	LLMModel    string `long:"llm-model" env:"LLM_MODEL" default:"gpt-4o-mini" description:"Inference service model name"`

	Debug bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:        raw.DBPath,
		DataDir:       raw.DataDir,
		SourcesDir:    raw.SourcesDir,
		Port:          raw.Port,
		PollInterval:  raw.PollInterval,
		BatchLimit:    raw.BatchLimit,
		RedditBaseURL: raw.RedditBaseURL,
		UserAgent:     raw.UserAgent,
		LLMEndpoint:   raw.LLMEndpoint,
		LLMAPIKey:     raw.LLMAPIKey,
		LLMModel:      raw.LLMModel,
		Debug:         raw.Debug,
		Version:       GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}
