// Package bootstrap loads an optional declarative guard-set file at startup
// and feeds it into an engine, the way config.Load reads environment
// variables: a thin, fail-soft adapter between an on-disk format and the
// engine's own typed API.
package bootstrap

import (
	"fmt"
	"os"

	"github.com/sentineldb/sentineldb/internal/logger"
	"github.com/sentineldb/sentineldb/internal/sentinel"
	"gopkg.in/yaml.v3"
)

// GuardDescriptor is the YAML-facing shape of a single guard. Exactly one of
// the variant field groups is populated, selected by Type.
type GuardDescriptor struct {
	Name    string   `yaml:"name"`
	Pattern string   `yaml:"pattern"`
	Type    string   `yaml:"type"` // "range_int", "enum", "length"
	Min     int      `yaml:"min,omitempty"`
	Max     int      `yaml:"max,omitempty"`
	Allowed []string `yaml:"allowed,omitempty"`
	MinLen  int      `yaml:"min_len,omitempty"`
	MaxLen  int      `yaml:"max_len,omitempty"`
}

// GuardFile is the top-level shape of a guards.yaml document.
type GuardFile struct {
	Guards []GuardDescriptor `yaml:"guards"`
}

// LoadGuards reads path (if non-empty and present), decodes it, and
// registers every descriptor against e. A missing path is not an error —
// the guard bootstrap file is optional, matching config.Load's own
// tolerance for absent settings. A present-but-unparseable file is an error,
// since a typo in a guard definition should never pass silently.
func LoadGuards(path string, e *sentinel.Engine, log logger.Logger) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Warn("guard bootstrap file not found, skipping", logger.String("path", path))
		return nil
	}
	if err != nil {
		return fmt.Errorf("bootstrap: reading %s: %w", path, err)
	}

	var file GuardFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("bootstrap: parsing %s: %w", path, err)
	}

	for _, d := range file.Guards {
		g, err := toGuard(d)
		if err != nil {
			return fmt.Errorf("bootstrap: guard %q: %w", d.Name, err)
		}
		e.AddGuard(g)
	}

	log.Info("guard bootstrap complete",
		logger.String("path", path),
		logger.Int("guards", len(file.Guards)))
	return nil
}

func toGuard(d GuardDescriptor) (sentinel.Guard, error) {
	switch d.Type {
	case "range_int":
		return sentinel.NewRangeIntGuard(d.Name, d.Pattern, d.Min, d.Max), nil
	case "enum":
		if len(d.Allowed) == 0 {
			return sentinel.Guard{}, fmt.Errorf("enum guard requires a non-empty 'allowed' list")
		}
		return sentinel.NewEnumGuard(d.Name, d.Pattern, d.Allowed), nil
	case "length":
		return sentinel.NewLengthGuard(d.Name, d.Pattern, d.MinLen, d.MaxLen), nil
	default:
		return sentinel.Guard{}, fmt.Errorf("unknown guard type %q", d.Type)
	}
}
