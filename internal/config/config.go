// Package config loads ilreverse settings. Later sources win: built-in
// defaults, then ilreverse.json in the data directory, then ILREVERSE_*
// environment variables. Command-line flags are applied by the caller.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"ilreverse/internal/metadata"
)

const (
	AppName         = "ilreverse"
	FileName        = "ilreverse.json"
	EnvPrefix       = "ILREVERSE_"
	DefaultPageSize = 50
)

// Config represents configuration for the ilreverse tool.
type Config struct {
	Debug       bool   `json:"debug,omitempty" jsonschema:"title=Debug,description=Enable debug logging"`
	DataDir     string `json:"dataDir,omitempty" jsonschema:"title=Data Directory,description=Directory for logs and the configuration file"`
	ProfilePath string `json:"profilePath,omitempty" jsonschema:"title=Profile Path,description=Path for CPU profile output"`
	PageSize    int    `json:"pageSize,omitempty" jsonschema:"title=Page Size,description=Rows per page when no limit is given; 0 prints everything,minimum=0"`
	NoColor     bool   `json:"noColor,omitempty" jsonschema:"title=No Color,description=Disable syntax highlighting and styled output"`
	CorLib      string `json:"corLib,omitempty" jsonschema:"title=Core Library,description=Assembly primitive types are imported from when an image names none"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DataDir:  defaultDataDir(),
		PageSize: DefaultPageSize,
		CorLib:   metadata.DefaultCorLib,
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, AppName)
	}
	return "." + AppName
}

// Path is the configuration file inside dataDir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, FileName)
}

// LogFile is where file logging writes.
func (c Config) LogFile() string {
	return filepath.Join(c.DataDir, "logs", AppName+".log")
}

// Load reads the configuration. dataDir overrides where the file is looked
// for; an empty value uses ILREVERSE_DATA_DIR or the default. A missing file
// is not an error.
func Load(dataDir string) (Config, error) {
	cfg := Default()
	if v, ok := os.LookupEnv(EnvPrefix + "DATA_DIR"); ok && v != "" {
		cfg.DataDir = v
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	if err := cfg.readFile(Path(cfg.DataDir)); err != nil {
		return cfg, err
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	return cfg, cfg.Validate()
}

func (c *Config) readFile(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	for name, dst := range map[string]*bool{"DEBUG": &c.Debug, "NO_COLOR": &c.NoColor} {
		v, ok := os.LookupEnv(EnvPrefix + name)
		if !ok || v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = b
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		c.NoColor = true
	}
	for name, dst := range map[string]*string{"DATA_DIR": &c.DataDir, "PROFILE_PATH": &c.ProfilePath, "CORLIB": &c.CorLib} {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	if v, ok := os.LookupEnv(EnvPrefix + "PAGE_SIZE"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sPAGE_SIZE: %w", EnvPrefix, err)
		}
		c.PageSize = n
	}
	return nil
}

// Validate rejects settings no command can work with.
func (c Config) Validate() error {
	if c.PageSize < 0 {
		return fmt.Errorf("page size must not be negative, got %d", c.PageSize)
	}
	if c.DataDir == "" {
		return errors.New("data directory must not be empty")
	}
	return nil
}
