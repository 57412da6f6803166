package config

// Source describes one harvested source collection (a subreddit).
// The Name is derived from the configuration file name.
type Source struct {
	Name      string         // Derived from filename (without .yml extension)
	Subreddit string         `yaml:"subreddit"`
	Settings  SourceSettings `yaml:"settings"`
}

type SourceSettings struct {
	Enabled   bool `yaml:"enabled"`
	PageLimit int  `yaml:"page_limit"` // items per listing page request
	Timeout   int  `yaml:"timeout"`    // seconds
}
