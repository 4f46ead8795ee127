// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

const (
	EnvLogLevel    = "INPUTSEQ_LOG_LEVEL"
	EnvListen      = "INPUTSEQ_LISTEN"
	EnvConcurrency = "INPUTSEQ_CONCURRENCY"

	DefaultListen = ":8080"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the process configuration shared by every subcommand.
type Config struct {
	LogLevel zapcore.Level
	// Listen is the address the compile service binds.
	Listen string
	// Concurrency bounds the number of census cells compiled at once.
	Concurrency int
}

// Load resolves configuration from the environment and then from the given
// .env files, in that order of precedence. Files that do not exist are
// skipped. Unset values take their defaults.
func Load(lookupEnv func(string) (string, bool), envFiles ...string) (*Config, error) {
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	existing := make([]string, 0, len(envFiles))
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	fileEnv := map[string]string{}
	if len(existing) > 0 {
		var err error
		fileEnv, err = godotenv.Read(existing...)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read env files: %w", ErrInvalidConfig, err)
		}
	}
	lookup := func(key string) (string, bool) {
		if v, ok := lookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	}

	c := &Config{
		LogLevel:    zapcore.InfoLevel,
		Listen:      DefaultListen,
		Concurrency: defaultConcurrency(),
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		level, err := zapcore.ParseLevel(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, EnvLogLevel, err)
		}
		c.LogLevel = level
	}
	if v, ok := lookup(EnvListen); ok && v != "" {
		c.Listen = v
	}
	if v, ok := lookup(EnvConcurrency); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: %s must be a positive integer, got %q", ErrInvalidConfig, EnvConcurrency, v)
		}
		c.Concurrency = n
	}
	return c, nil
}

func defaultConcurrency() int {
	max := runtime.GOMAXPROCS(-1)
	cpus := runtime.NumCPU()
	if max > cpus {
		max = cpus
	}
	return max
}
