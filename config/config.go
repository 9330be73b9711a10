// Package config loads modelpreview settings from a TOML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-shellwords"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
)

// Engine names accepted by the engine setting.
const (
	EngineBlender = "blender"
	EngineNative  = "native"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	// Rendering engine: blender or native.
	Engine string `toml:"engine"`

	Log     LogConfig     `toml:"log"`
	Blender BlenderConfig `toml:"blender"`
	Native  NativeConfig  `toml:"native"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type BlenderConfig struct {
	// Path to the blender executable; looked up in $PATH when it is a bare
	// name. A leading ~ is expanded.
	Binary string `toml:"binary"`

	// Extra command line arguments, split using shell quoting rules.
	Args string `toml:"args"`

	// Abort blender runs after this many seconds. 0 disables the limit.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

type NativeConfig struct {
	// Vertical field of view of the native camera.
	FOVDegrees float64 `toml:"fov_degrees"`
}

// Default returns the settings used when no config file is given.
func Default() *Config {
	return &Config{
		Engine: EngineBlender,
		Log: LogConfig{
			Level: "notice",
		},
		Blender: BlenderConfig{
			Binary: "blender",
		},
		Native: NativeConfig{
			FOVDegrees: 40,
		},
	}
}

// Load reads the config file at path on top of the defaults. Unknown keys are
// rejected.
func Load(path string) (*Config, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("config: could not expand %q: %w", path, err)
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err = dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, expanded, err)
	}

	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the engine name and numeric settings.
func (c *Config) Validate() error {
	switch c.Engine {
	case EngineBlender, EngineNative:
	default:
		return fmt.Errorf("%w: unknown engine %q; expected %s or %s", ErrInvalidConfig, c.Engine, EngineBlender, EngineNative)
	}

	if c.Blender.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: blender.timeout_seconds must not be negative", ErrInvalidConfig)
	}
	if c.Native.FOVDegrees <= 0 || c.Native.FOVDegrees >= 180 {
		return fmt.Errorf("%w: native.fov_degrees must be in (0, 180); got %v", ErrInvalidConfig, c.Native.FOVDegrees)
	}
	if _, err := c.Blender.ArgList(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// BinaryPath returns the blender binary with ~ expanded.
func (b BlenderConfig) BinaryPath() (string, error) {
	return homedir.Expand(b.Binary)
}

// ArgList splits Args into separate arguments.
func (b BlenderConfig) ArgList() ([]string, error) {
	args, err := shellwords.Parse(b.Args)
	if err != nil {
		return nil, fmt.Errorf("blender.args: %w", err)
	}
	return args, nil
}

// Timeout returns the configured timeout; zero means no limit.
func (b BlenderConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}
