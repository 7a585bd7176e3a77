package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the global application configuration
var Config AppConfig

// DSNEnv overrides the selected store DSN when set
const DSNEnv = "LINEIDS_STORE_DSN"

// DefaultPaths are tried in order when no explicit path is given
var DefaultPaths = []string{"config.yml", "./configs/config.yml"}

// LoadAppConfig loads and validates the application configuration.
// An empty path falls back to DefaultPaths.
func LoadAppConfig(path string) error {
	paths := DefaultPaths
	if path != "" {
		paths = []string{path}
	}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return err
	}
	Config = *cfg
	return nil
}

// Parse decodes, defaults and validates a YAML document
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	applyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags on every section
func Validate(cfg *AppConfig) error {
	v := validator.New()
	if err := v.Struct(cfg.Zones); err != nil {
		return fmt.Errorf("zones: %w", err)
	}
	if err := v.Struct(cfg.Naming); err != nil {
		return fmt.Errorf("naming: %w", err)
	}
	if err := v.Struct(cfg.Modes); err != nil {
		return fmt.Errorf("modes: %w", err)
	}
	if err := v.Struct(cfg.GTFS); err != nil {
		return fmt.Errorf("gtfs: %w", err)
	}
	if err := v.Struct(cfg.Logging); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	// scenarios are optional; if present validate each
	for _, s := range cfg.Scenarios {
		if err := v.Struct(s); err != nil {
			return fmt.Errorf("scenario %q: %w", s.Name, err)
		}
	}
	if len(cfg.Scenarios) == 0 {
		if err := v.Struct(cfg.Store); err != nil {
			return fmt.Errorf("store: %w", err)
		}
	}
	if cfg.Naming.PadWidth <= len(cfg.Naming.FallbackLetter) {
		return errors.New("naming: padWidth must exceed the fallback letter length")
	}
	return nil
}

const defaultCounterStart = 99

func applyDefaults(cfg *AppConfig) {
	n := &cfg.Naming
	if n.FallbackLetter == "" {
		n.FallbackLetter = "V"
	}
	if n.CounterStart == nil {
		start := defaultCounterStart
		n.CounterStart = &start
	}
	if n.PadWidth == 0 {
		n.PadWidth = 4
	}
	if n.DescriptionMaxLength == 0 {
		n.DescriptionMaxLength = 115
	}
	if n.DisambiguationSuffix == "" {
		n.DisambiguationSuffix = "B"
	}
	m := &cfg.Modes
	if m.SourceMode == "" {
		m.SourceMode = "d"
	}
	if m.TargetMode == "" {
		m.TargetMode = "e"
	}
	if len(cfg.GTFS.RouteTypes) == 0 {
		// bus, bus service, regional, express, local, demand responsive
		cfg.GTFS.RouteTypes = []int{3, 700, 701, 702, 704, 715}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// SelectStore chooses a scenario store by name; fallback to first; if none, use top-level store.
// The DSNEnv environment variable replaces the DSN of whichever store is chosen.
func SelectStore(name string) StoreConfig {
	sc := selectStore(name)
	if dsn := os.Getenv(DSNEnv); dsn != "" {
		sc.DSN = dsn
	}
	return sc
}

func selectStore(name string) StoreConfig {
	if name != "" {
		for _, s := range Config.Scenarios {
			if s.Name == name {
				return s.Store
			}
		}
	}
	if len(Config.Scenarios) > 0 {
		return Config.Scenarios[0].Store
	}
	return Config.Store
}
