package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".iatifetch"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .iatifetch configuration file.
// Every field is optional; set fields override the built-in defaults and
// are in turn overridden by CLI flags.
type File struct {
	// APIRoot overrides the registry API root.
	APIRoot string `yaml:"apiRoot,omitempty"`

	// CodelistIndexURL overrides the codelist index location.
	CodelistIndexURL string `yaml:"codelistIndexUrl,omitempty"`

	// Timeout overrides the per-request timeout, e.g. "45s".
	// Parsed with time.ParseDuration; unparseable values are ignored.
	Timeout string `yaml:"timeout,omitempty"`

	// Concurrency overrides the fetch ceiling.
	Concurrency int `yaml:"concurrency,omitempty"`

	// Rows overrides the package_search page size.
	Rows int `yaml:"rows,omitempty"`

	// Language overrides the fallback narrative language tag.
	Language string `yaml:"language,omitempty"`

	// DBDir overrides the database directory.
	DBDir string `yaml:"dbDir,omitempty"`

	// Redis selects and configures the Redis cache backend.
	Redis RedisFile `yaml:"redis,omitempty"`
}

// RedisFile is the Redis section of the configuration file.
type RedisFile struct {
	// Addr is the Redis server address in "host:port" format.
	Addr string `yaml:"addr,omitempty"`

	// Password authenticates against Redis when required.
	Password string `yaml:"password,omitempty"`

	// DB selects the Redis database number.
	DB int `yaml:"db,omitempty"`
}

// Apply copies the set fields of the file onto the config.
func (f *File) Apply(c *Config) {
	if f.APIRoot != "" {
		c.APIRoot = f.APIRoot
	}
	if f.CodelistIndexURL != "" {
		c.CodelistIndexURL = f.CodelistIndexURL
	}
	if f.Timeout != "" {
		if d, err := time.ParseDuration(f.Timeout); err == nil && d > 0 {
			c.Timeout = d
		}
	}
	if f.Concurrency > 0 {
		c.Concurrency = f.Concurrency
	}
	if f.Rows > 0 {
		c.Rows = f.Rows
	}
	if f.Language != "" {
		c.DefaultLanguage = f.Language
	}
	if f.DBDir != "" {
		c.DBDir = f.DBDir
	}
	if f.Redis.Addr != "" {
		c.RedisAddr = f.Redis.Addr
		c.RedisPassword = f.Redis.Password
		c.RedisDB = f.Redis.DB
	}
}

// LoadConfigFile loads overrides from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .iatifetch in the current directory
// 3. Look for .iatifetch in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
