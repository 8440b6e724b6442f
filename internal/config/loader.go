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
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if H2E_CONFIG is set
//  3. env (prefix H2E_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("H2E_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, wrapLoadError(err)
		}
	}

	// Environment variables: H2E_ADDR, H2E_HIPPODATA_BEARER, ...
	// Map env keys like H2E_HIPPODATA_BEARER -> hippodata_bearer (flat keys).
	envProvider := env.Provider("H2E_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "h2e_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, wrapLoadError(err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, wrapLoadError(err)
	}

	if cfg.Addr == "" {
		return nil, ErrEmptyAddr
	}
	if cfg.HippodataBaseURL == "" {
		return nil, ErrEmptyHippodataURL
	}
	return &cfg, nil
}
