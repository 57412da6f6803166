package cfg

type Cfg struct {
	// Storage configuration
	DBPath     string
	DataDir    string
	SourcesDir string

	// Application configuration
	Port         string
	PollInterval int
	BatchLimit   int

	// Reddit configuration
	RedditBaseURL string
	UserAgent     string

	// Inference service configuration
	LLMEndpoint string
	LLMAPIKey   string
	LLMModel    string

	// Application metadata
	Debug   bool
	Version string
}
