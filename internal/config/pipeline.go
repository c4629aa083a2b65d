package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"bachelor-sync/internal/normalize"
)

// PortalTargets selects which listing searches a scrape run walks.
// Empty slices mean a single unfiltered search, unless Discover fills
// them from the portal's own facet pages first.
type PortalTargets struct {
	Countries   []string `yaml:"countries"`
	Disciplines []string `yaml:"disciplines"`
	MaxPages    int      `yaml:"max_pages"`

	// Discover fills empty Countries/Disciplines from the portal's
	// facet pages before searching.
	Discover bool `yaml:"discover"`
	// Details fetches every record's program page and keeps its
	// requirements text for score extraction downstream.
	Details bool `yaml:"details"`
}

// PublishOptions tune the upsert batching and per-batch retries.
type PublishOptions struct {
	BatchSize   int `yaml:"batch_size"`
	MaxAttempts int `yaml:"max_attempts"`
}

// Pipeline is the run configuration file. Everything has a usable default,
// so the file is optional.
type Pipeline struct {
	Portal    PortalTargets   `yaml:"portal"`
	Normalize normalize.Rules `yaml:"normalize"`
	Publish   PublishOptions  `yaml:"publish"`
}

func DefaultPipeline() Pipeline {
	return Pipeline{
		Portal:    PortalTargets{MaxPages: 5},
		Normalize: normalize.DefaultRules(),
		Publish:   PublishOptions{BatchSize: 500, MaxAttempts: 4},
	}
}

// LoadPipeline reads a YAML pipeline file and fills in defaults for
// anything the file leaves out. A missing path returns the defaults.
func LoadPipeline(path string) (Pipeline, error) {
	p := DefaultPipeline()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return p, fmt.Errorf("config: read %s: %w", path, err)
	}

	var file Pipeline
	if err := yaml.Unmarshal(data, &file); err != nil {
		return p, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if len(file.Portal.Countries) > 0 {
		p.Portal.Countries = file.Portal.Countries
	}
	if len(file.Portal.Disciplines) > 0 {
		p.Portal.Disciplines = file.Portal.Disciplines
	}
	if file.Portal.MaxPages > 0 {
		p.Portal.MaxPages = file.Portal.MaxPages
	}
	if file.Portal.Discover {
		p.Portal.Discover = true
	}
	if file.Portal.Details {
		p.Portal.Details = true
	}
	if file.Publish.BatchSize > 0 {
		p.Publish.BatchSize = file.Publish.BatchSize
	}
	if file.Publish.MaxAttempts > 0 {
		p.Publish.MaxAttempts = file.Publish.MaxAttempts
	}

	// rule tables replace the defaults wholesale when present, so a file
	// can also remove a builtin convention
	if len(file.Normalize.Durations) > 0 {
		p.Normalize.Durations = file.Normalize.Durations
	}
	if len(file.Normalize.Languages) > 0 {
		p.Normalize.Languages = file.Normalize.Languages
	}
	if err := p.Normalize.Compile(); err != nil {
		return p, err
	}

	return p, nil
}
