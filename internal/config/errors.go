package config

import (
	"errors"
	"fmt"
)

// Sentinel kinds for configuration errors.
var (
	ErrEmptyAddr         = errors.New("addr must not be empty")
	ErrEmptyHippodataURL = errors.New("hippodata_base_url must not be empty")
)

// wrapLoadError annotates errors coming from koanf providers.
func wrapLoadError(err error) error {
	return fmt.Errorf("config load: %w", err)
}
