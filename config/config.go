// Package config loads the claimledger YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	LogLevel string        `yaml:"log_level"`
	Store    StoreConfig   `yaml:"store"`
	Seal     SealConfig    `yaml:"seal"`
	Metrics  MetricsConfig `yaml:"metrics"`
	// EventsFile, when set, receives a CBOR stream of ledger events.
	EventsFile string `yaml:"events_file"`
}

const (
	BackendBadger    = "badger"
	BackendAzblobDev = "azblob-dev"
)

type StoreConfig struct {
	// Backend is badger (default) or azblob-dev, the blob storage emulator
	// configured from the environment.
	Backend string `yaml:"backend"`
	// Container holds the ledger blobs of the azblob-dev backend.
	Container string `yaml:"container"`
	// Path is the badger database directory.
	Path       string `yaml:"path"`
	InMemory   bool   `yaml:"in_memory"`
	SyncWrites bool   `yaml:"sync_writes"`
}

// SealConfig enables checkpoint sealing when KeyFile is set.
type SealConfig struct {
	Issuer  string `yaml:"issuer"`
	KeyFile string `yaml:"key_file"`
	KeyID   string `yaml:"key_id"`
}

type MetricsConfig struct {
	// File, when set, receives the registry in the prometheus text format
	// when the command exits.
	File string `yaml:"file"`
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "INFO",
		Store: StoreConfig{
			Backend:    BackendBadger,
			Container:  "claimledger",
			Path:       filepath.Join(".claimledger", "db"),
			SyncWrites: true,
		},
		Seal: SealConfig{
			Issuer: "claimledger",
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read the config file %s: %w", path, err)
	}
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse the config file %s: %w", path, err)
	}
	if err = cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendBadger:
		if !c.Store.InMemory && c.Store.Path == "" {
			return fmt.Errorf("%w: store.path is required unless store.in_memory is set", ErrInvalid)
		}
	case BackendAzblobDev:
		if c.Store.Container == "" {
			return fmt.Errorf("%w: store.container is required for %s", ErrInvalid, BackendAzblobDev)
		}
	default:
		return fmt.Errorf("%w: unknown store.backend %q", ErrInvalid, c.Store.Backend)
	}
	if c.Seal.KeyFile != "" && c.Seal.Issuer == "" {
		return fmt.Errorf("%w: seal.issuer is required with seal.key_file", ErrInvalid)
	}
	return nil
}

// WriteDefault writes the default configuration to path, creating parent
// directories.
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create the config directory %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
