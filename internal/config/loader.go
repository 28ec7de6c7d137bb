package config

import (
	"context"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if DRIFTWATCH_CONFIG is set
//  3. env (prefix DRIFTWATCH_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("DRIFTWATCH_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: DRIFTWATCH_ADDR, DRIFTWATCH_WORKER_COUNT, ...
	// Map env keys like DRIFTWATCH_WORKER_COUNT -> worker_count (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("DRIFTWATCH_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "driftwatch_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	// Basic validation
	if cfg.Addr == "" {
		return nil, ErrEmptyAddr
	}
	if cfg.ScoreSourceURL == "" {
		return nil, ErrEmptyScoreSourceURL
	}
	if cfg.DriftCriticalDrop <= cfg.DriftWarningDrop {
		return nil, ErrThresholdOrder
	}
	return &cfg, nil
}
