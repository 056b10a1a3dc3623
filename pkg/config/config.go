// Package config loads the bundler configuration from a config file,
// JSBLD_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/coldog/jsbld/pkg/bundler"
	"github.com/coldog/jsbld/pkg/loader"
	"github.com/coldog/jsbld/pkg/plugins"
)

// Config is the bundler configuration.
type Config struct {
	// Context is the root directory module ids are relative to.
	Context string `mapstructure:"context"`
	// Entry is either a single path, bundled as "main", or a map of entry
	// names to paths.
	Entry   any           `mapstructure:"entry"`
	Output  OutputConfig  `mapstructure:"output"`
	Resolve ResolveConfig `mapstructure:"resolve"`
	Module  ModuleConfig  `mapstructure:"module"`
	Plugins []string      `mapstructure:"plugins"`
	Debug   bool          `mapstructure:"debug"`
}

// OutputConfig controls where bundles are written.
type OutputConfig struct {
	Path     string `mapstructure:"path"`
	Filename string `mapstructure:"filename"`
}

// ResolveConfig controls specifier resolution.
type ResolveConfig struct {
	Extensions []string `mapstructure:"extensions"`
}

// ModuleConfig holds the transform rules.
type ModuleConfig struct {
	Rules []RuleConfig `mapstructure:"rules"`
}

// RuleConfig applies the named transforms to paths matching Test.
type RuleConfig struct {
	Test string   `mapstructure:"test"`
	Use  []string `mapstructure:"use"`
}

// DefaultEntryName is the entry name used when Entry is a single path.
const DefaultEntryName = "main"

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("output.path", "./build")
	v.SetDefault("output.filename", bundler.DefaultFilename)
	v.SetDefault("resolve.extensions", []string{".js"})
	v.SetDefault("debug", false)
}

// Load reads the configuration into v and decodes it. When file is empty,
// jsbld.{yaml,yml,json,toml} is looked up in the working directory and
// ./config; a missing file is not an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("jsbld")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	SetDefaults(v)

	v.SetEnvPrefix("JSBLD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("entry")   // JSBLD_ENTRY
	_ = v.BindEnv("context") // JSBLD_CONTEXT

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
		log.Debug().Msg("no config file found, using flags, environment and defaults")
	} else {
		log.Debug().Str("file", v.ConfigFileUsed()).Msg("config file loaded")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() error {
	for _, location := range []string{".env", ".env.local"} {
		if _, err := os.Stat(location); err == nil {
			if err := godotenv.Load(location); err != nil {
				return fmt.Errorf("load %s: %w", location, err)
			}
			log.Debug().Str("file", location).Msg(".env file loaded")
			return nil
		}
	}
	return errors.New("no .env file found")
}

// Entries normalizes Entry into a name to path map.
func (c *Config) Entries() (map[string]string, error) {
	switch e := c.Entry.(type) {
	case nil:
		return nil, errors.New("entry is required")
	case string:
		if e == "" {
			return nil, errors.New("entry is required")
		}
		return map[string]string{DefaultEntryName: e}, nil
	case map[string]string:
		return e, nil
	case map[string]any:
		entries := make(map[string]string, len(e))
		for name, p := range e {
			s, ok := p.(string)
			if !ok {
				return nil, fmt.Errorf("entry %s: path must be a string, got %T", name, p)
			}
			entries[name] = s
		}
		return entries, nil
	default:
		return nil, fmt.Errorf("entry must be a path or a map of names to paths, got %T", c.Entry)
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	entries, err := c.Entries()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return errors.New("entry is required")
	}
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := bundler.ValidateEntryName(name); err != nil {
			return err
		}
		if entries[name] == "" {
			return fmt.Errorf("entry %s: path must not be empty", name)
		}
	}

	if c.Output.Filename != "" && len(entries) > 1 && !strings.Contains(c.Output.Filename, "[name]") {
		return fmt.Errorf("output.filename %q must contain [name] with multiple entries", c.Output.Filename)
	}

	for _, ext := range c.Resolve.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("resolve.extensions: %q must start with a dot", ext)
		}
	}

	for i, rule := range c.Module.Rules {
		if _, err := regexp.Compile(rule.Test); err != nil {
			return fmt.Errorf("module.rules[%d].test: %w", i, err)
		}
		if len(rule.Use) == 0 {
			return fmt.Errorf("module.rules[%d].use: at least one transform is required", i)
		}
		for _, name := range rule.Use {
			if _, err := loader.Lookup(name); err != nil {
				return fmt.Errorf("module.rules[%d].use: %w", i, err)
			}
		}
	}

	for _, name := range c.Plugins {
		if _, err := plugins.Lookup(name); err != nil {
			return err
		}
	}
	return nil
}

// Options converts the configuration into compiler options.
func (c *Config) Options() (bundler.Options, error) {
	entries, err := c.Entries()
	if err != nil {
		return bundler.Options{}, err
	}
	opts := bundler.Options{
		Context:    c.Context,
		Entry:      entries,
		OutputPath: c.Output.Path,
		Filename:   c.Output.Filename,
		Extensions: c.Resolve.Extensions,
	}
	for i, rule := range c.Module.Rules {
		test, err := regexp.Compile(rule.Test)
		if err != nil {
			return bundler.Options{}, fmt.Errorf("module.rules[%d].test: %w", i, err)
		}
		r := loader.Rule{Test: test}
		for _, name := range rule.Use {
			t, err := loader.Lookup(name)
			if err != nil {
				return bundler.Options{}, err
			}
			r.Use = append(r.Use, t)
		}
		opts.Rules = append(opts.Rules, r)
	}
	return opts, nil
}

// LoadPlugins instantiates the configured plugins in order.
func (c *Config) LoadPlugins() ([]bundler.Plugin, error) {
	var ps []bundler.Plugin
	for _, name := range c.Plugins {
		p, err := plugins.Lookup(name)
		if err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return ps, nil
}
