// Package config resolves launcher configuration from defaults, an optional
// HCL file and LOADCTX_* environment variables. Command line flags are
// applied on top by the caller before Validate.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"

	"github.com/sliverarmory/loadctx/platform"
	"github.com/sliverarmory/loadctx/resource"
)

// EnvPrefix prefixes every environment variable read by ParseEnv.
const EnvPrefix = "LOADCTX_"

type Config struct {
	// RootDirectory is the absolute base for native library lookup.
	RootDirectory string `env:"ROOT"`
	// PlatformOverride replaces the running OS family when non-empty.
	PlatformOverride string `env:"PLATFORM"`
	// Locale is a BCP 47 tag; "und" is the invariant locale.
	Locale string `env:"LOCALE"`
	// Preload lists native libraries opened eagerly at startup.
	Preload      []string `env:"PRELOAD" envSeparator:","`
	ModuleSuffix string   `env:"MODULE_SUFFIX"`
	LogLevel     string   `env:"LOG_LEVEL"`
}

// Default returns the configuration used when nothing else is set. The
// root is the directory holding the running executable.
func Default() Config {
	return Config{
		RootDirectory: executableDir(),
		Locale:        language.Und.String(),
		ModuleSuffix:  resource.DefaultSuffix,
		LogLevel:      zapcore.InfoLevel.String(),
	}
}

// Load layers defaults, the HCL file at path (skipped when path is empty)
// and the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Family returns the OS family used for native lookup.
func (c Config) Family() (platform.Family, error) {
	if c.PlatformOverride == "" {
		return platform.Current(), nil
	}
	return platform.Parse(c.PlatformOverride)
}

// Language returns the parsed locale.
func (c Config) Language() (language.Tag, error) {
	if c.Locale == "" {
		return language.Und, nil
	}
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Und, fmt.Errorf("config: locale %q: %w", c.Locale, err)
	}
	return tag, nil
}

func (c Config) Level() (zapcore.Level, error) {
	if c.LogLevel == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("config: log level: %w", err)
	}
	return level, nil
}

// Validate reports every invalid option at once.
func (c Config) Validate() error {
	var errs []error

	switch {
	case c.RootDirectory == "":
		errs = append(errs, errors.New("config: root directory is required"))
	case !filepath.IsAbs(c.RootDirectory):
		errs = append(errs, fmt.Errorf("config: root directory %q is not absolute", c.RootDirectory))
	}
	if c.PlatformOverride != "" {
		if _, err := platform.Parse(c.PlatformOverride); err != nil {
			errs = append(errs, fmt.Errorf("config: %w", err))
		}
	}
	if _, err := c.Language(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	for _, name := range c.Preload {
		if name == "" {
			errs = append(errs, errors.New("config: empty preload library name"))
		}
	}

	return errors.Join(errs...)
}

func executableDir() string {
	exe, err := os.Executable()
	if err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}
