// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package config loads the gridsim command configuration from the
// environment.
//
package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the settings of the gridsim command. Command line flags
// override them.
//
type Config struct {
	LogLevel       string `env:"GRIDSIM_LOG_LEVEL" envDefault:"info"`
	LogDev         bool   `env:"GRIDSIM_LOG_DEV"`
	MaxEvaluations int    `env:"GRIDSIM_MAX_EVALUATIONS" envDefault:"1024"`
	Ticks          int    `env:"GRIDSIM_TICKS" envDefault:"1"`
}

// ParseEnv loads configuration from environment variables into target.
//
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return errors.Wrap(err, "parse env")
	}
	return nil
}

// Load returns the configuration found in the environment.
//
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate checks that cfg holds usable values.
//
func (cfg Config) Validate() error {
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return errors.Wrapf(err, "log level %q", cfg.LogLevel)
	}
	if cfg.MaxEvaluations < 1 {
		return errors.Errorf("max evaluations must be positive, got %d", cfg.MaxEvaluations)
	}
	if cfg.Ticks < 0 {
		return errors.Errorf("tick count must not be negative, got %d", cfg.Ticks)
	}
	return nil
}

// Logger builds a zap logger for cfg's level and mode.
//
func (cfg Config) Logger() (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, errors.Wrapf(err, "log level %q", cfg.LogLevel)
	}
	zc := zap.NewProductionConfig()
	if cfg.LogDev {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	l, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return l, nil
}
