package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type Cache struct {
	sourcesDir string
	cache      map[string]*Source
	mu         sync.RWMutex
}

func NewCache(sourcesDir string) *Cache {
	return &Cache{
		sourcesDir: sourcesDir,
		cache:      make(map[string]*Source),
	}
}

func (c *Cache) Run() error {
	if _, err := os.Stat(c.sourcesDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(c.sourcesDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	yamlFiles, err := filepath.Glob(filepath.Join(c.sourcesDir, "*.yaml"))
	if err != nil {
		return fmt.Errorf("failed to find YAML files: %w", err)
	}
	files = append(files, yamlFiles...)

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))

		source, err := c.LoadSource(name, file)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Source configuration loaded", "source", name, "subreddit", source.Subreddit, "enabled", source.Settings.Enabled)
	}

	return nil
}

func (c *Cache) LoadSource(name, configFile string) (*Source, error) {
	source, err := c.parseSource(configFile)
	if err != nil {
		return nil, err
	}

	source.Name = name
	if source.Subreddit == "" {
		source.Subreddit = name
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[source.Name] = source

	return source, nil
}

func (c *Cache) GetSource(name string) (*Source, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	source, ok := c.cache[name]
	if !ok {
		return nil, fmt.Errorf("source config with name '%s' not found", name)
	}
	return source, nil
}

// GetEnabledSources returns enabled sources in a stable name order so that
// harvest cycles walk sources deterministically.
func (c *Cache) GetEnabledSources() []*Source {
	c.mu.RLock()
	defer c.mu.RUnlock()

	sources := make([]*Source, 0, len(c.cache))
	for _, s := range c.cache {
		if s.Settings.Enabled {
			sources = append(sources, s)
		}
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Name < sources[j].Name })
	return sources
}

func (c *Cache) GetSourceCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func (c *Cache) parseSource(configFile string) (*Source, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var source Source
	if err := yaml.Unmarshal(data, &source); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if source.Settings.PageLimit == 0 {
		source.Settings.PageLimit = 100
	}
	if source.Settings.PageLimit > 100 {
		// Reddit caps listing pages at 100 items
		source.Settings.PageLimit = 100
	}
	if source.Settings.Timeout == 0 {
		source.Settings.Timeout = 30
	}

	return &source, nil
}
