package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TUIRSVP_"

type envConfig struct {
	WPM         *int    `env:"WPM"`
	Rates       []int   `env:"RATES" envSeparator:","`
	CountdownMs *int    `env:"COUNTDOWN_MS"`
	Immersive   *bool   `env:"IMMERSIVE"`
	File        *string `env:"FILE"`
	LogLevel    *string `env:"LOG_LEVEL"`
	LogFile     *string `env:"LOG_FILE"`
}

// ApplyEnv overlays TUIRSVP_* environment variables on cfg. Set variables
// win over the file; flags still win over both.
func ApplyEnv(cfg FileConfig) (FileConfig, error) {
	var e envConfig
	if err := env.ParseWithOptions(&e, env.Options{Prefix: EnvPrefix}); err != nil {
		return FileConfig{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	if e.WPM != nil {
		cfg.Reader.WPM = e.WPM
	}
	if len(e.Rates) > 0 {
		cfg.Reader.Rates = e.Rates
	}
	if e.CountdownMs != nil {
		cfg.Reader.CountdownMs = e.CountdownMs
	}
	if e.Immersive != nil {
		cfg.Reader.Immersive = e.Immersive
	}
	if e.File != nil {
		cfg.Reader.File = e.File
	}
	if e.LogLevel != nil {
		cfg.Log.Level = e.LogLevel
	}
	if e.LogFile != nil {
		cfg.Log.File = e.LogFile
	}
	return cfg, nil
}
