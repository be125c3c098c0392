// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/proxyenv-foundation/proxyenv/credstore"
	"github.com/proxyenv-foundation/proxyenv/pac"
	"github.com/proxyenv-foundation/proxyenv/resolve"
	"github.com/proxyenv-foundation/proxyenv/sysconfig"
)

// config is the on-disk configuration for the proxyenv commands. All
// fields are optional; the zero value resolves against the platform
// default source with environment-variable credentials only.
type config struct {
	// Source selects where proxy settings come from.
	Source sourceConfig `yaml:"source"`

	// Stores lists credential backends in lookup order.
	Stores []storeConfig `yaml:"stores"`

	// PAC tunes script evaluation.
	PAC pacConfig `yaml:"pac"`

	// StatePath is where each cycle's masked outcome is recorded.
	// Empty disables recording.
	StatePath string `yaml:"state_path"`

	// LogLevel is debug, info, warn, or error. Default info.
	LogLevel string `yaml:"log_level"`
}

type sourceConfig struct {
	// Type is "scutil", "file", or "static". Empty picks the platform
	// default ("scutil" on macOS, "file" elsewhere).
	Type string `yaml:"type"`

	// Path is the proxy settings YAML file for the file source.
	Path string `yaml:"path"`

	// PollInterval overrides how often polling sources re-read the
	// system configuration.
	PollInterval time.Duration `yaml:"poll_interval"`
}

type storeConfig struct {
	// Type is "env", "file", "keychain", or "prompt".
	Type string `yaml:"type"`

	// Path is the credentials YAML file for the file store.
	Path string `yaml:"path"`

	// Prefix overrides the environment variable prefix for the env
	// store.
	Prefix string `yaml:"prefix"`
}

type pacConfig struct {
	// WaitCeiling caps how long a cycle waits for PAC evaluation.
	WaitCeiling time.Duration `yaml:"wait_ceiling"`

	// FetchTimeout caps the PAC script download.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// loadConfig reads the config file at path. A missing file with an
// empty explicit path yields the zero config; a missing file at an
// explicitly given path is an error.
func loadConfig(path string, explicit bool) (config, error) {
	var cfg config
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// buildSource constructs the configuration source the config names.
func buildSource(cfg config) (sysconfig.Source, error) {
	switch cfg.Source.Type {
	case "":
		return defaultPlatformSource(cfg)
	case "scutil":
		return newScutilSource(cfg)
	case "file":
		if cfg.Source.Path == "" {
			return nil, fmt.Errorf("source type %q requires a path", cfg.Source.Type)
		}
		return sysconfig.NewFileSource(sysconfig.FileSourceOptions{
			Path:         cfg.Source.Path,
			PollInterval: cfg.Source.PollInterval,
		})
	case "static":
		return sysconfig.NewStatic(sysconfig.Snapshot{}), nil
	default:
		return nil, fmt.Errorf("unknown source type %q", cfg.Source.Type)
	}
}

// buildStore constructs the credential store chain the config names.
// No stores configured means environment variables only.
func buildStore(cfg config) (credstore.Store, error) {
	if len(cfg.Stores) == 0 {
		return credstore.Chain{&credstore.Env{}}, nil
	}
	var chain credstore.Chain
	for _, entry := range cfg.Stores {
		switch entry.Type {
		case "env":
			chain = append(chain, &credstore.Env{Prefix: entry.Prefix})
		case "file":
			if entry.Path == "" {
				return nil, fmt.Errorf("store type %q requires a path", entry.Type)
			}
			chain = append(chain, &credstore.File{Path: entry.Path})
		case "keychain":
			store, err := newKeychainStore()
			if err != nil {
				return nil, err
			}
			chain = append(chain, store)
		case "prompt":
			chain = append(chain, &credstore.Prompt{Input: os.Stdin, Output: os.Stderr})
		default:
			return nil, fmt.Errorf("unknown store type %q", entry.Type)
		}
	}
	return chain, nil
}

// buildEvaluator constructs the PAC evaluator per config.
func buildEvaluator(cfg config) (*pac.Evaluator, error) {
	var client *http.Client
	if cfg.PAC.FetchTimeout > 0 {
		client = &http.Client{
			Timeout:   cfg.PAC.FetchTimeout,
			Transport: &http.Transport{Proxy: nil},
		}
	}
	facility := pac.NewGojaFacility(pac.GojaFacilityOptions{Client: client})
	return pac.NewEvaluator(pac.EvaluatorOptions{
		Facility:    facility,
		WaitCeiling: cfg.PAC.WaitCeiling,
	})
}

// buildService assembles the resolution stack from a config. The
// returned source is shared between the service (snapshots) and the
// watcher (notifications).
func buildService(cfg config, logger *slog.Logger) (*resolve.Service, sysconfig.Source, error) {
	source, err := buildSource(cfg)
	if err != nil {
		return nil, nil, err
	}
	store, err := buildStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	evaluator, err := buildEvaluator(cfg)
	if err != nil {
		return nil, nil, err
	}
	service, err := resolve.NewService(resolve.ServiceOptions{
		Source:    source,
		Resolver:  resolve.NewResolver(resolve.ResolverOptions{Evaluator: evaluator, Logger: logger}),
		Store:     store,
		Logger:    logger,
		StatePath: cfg.StatePath,
	})
	if err != nil {
		return nil, nil, err
	}
	return service, source, nil
}

// logLevel maps the config's log_level string to a slog level.
func logLevel(cfg config) (slog.Level, error) {
	switch cfg.LogLevel {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log_level %q", cfg.LogLevel)
	}
}
