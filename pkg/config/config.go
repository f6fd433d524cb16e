package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/harrisonrobin/gantta/pkg/sheet"
)

const (
	xdgAppName = "gantta"
	configFile = "config.toml"

	defaultProject = "Launch website"
	defaultOutput  = "data.json"
)

type Config struct {
	Project    string        `toml:"project"`
	HeaderRows int           `toml:"header_rows"`
	Output     string        `toml:"output"`
	Calendar   string        `toml:"calendar,omitempty"`
	Columns    sheet.Columns `toml:"columns"`
	Storage    StorageConfig `toml:"storage"`
	Sheets     SheetsConfig  `toml:"sheets"`
}

// StorageConfig points at an S3 compatible bucket the result is uploaded to.
type StorageConfig struct {
	Endpoint  string `toml:"endpoint"`
	Region    string `toml:"region"`
	Bucket    string `toml:"bucket"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`
	Prefix    string `toml:"prefix"`
}

// Enabled reports whether enough is configured to attempt an upload.
func (s StorageConfig) Enabled() bool {
	return s.Endpoint != "" && s.Bucket != ""
}

type SheetsConfig struct {
	SpreadsheetID string `toml:"spreadsheet_id"`
	Range         string `toml:"range"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Project:    defaultProject,
		HeaderRows: sheet.DefaultHeaderRows,
		Output:     defaultOutput,
		Storage:    StorageConfig{Region: "us-east-1", UseSSL: true},
	}
}

// ResolvedColumns returns the configured column keys with gaps filled from
// the default export layout for the project.
func (c *Config) ResolvedColumns() sheet.Columns {
	return c.Columns.Merge(sheet.DefaultColumns(c.Project))
}

func GetConfigDir() (string, error) {
	if dir := os.Getenv("GANTTA_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the config file, then applies .env and GANTTA_* overrides.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	_ = godotenv.Load()
	cfg.applyEnv(os.Getenv)
	return cfg, nil
}

// LoadStored reads only the config file at the default path. It is the base
// for saving defaults, so values from .env or GANTTA_* never get written back.
func LoadStored() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads a TOML config file. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	if cfg.Project == "" {
		cfg.Project = defaultProject
	}
	if cfg.Output == "" {
		cfg.Output = defaultOutput
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	str("GANTTA_PROJECT", &c.Project)
	str("GANTTA_OUTPUT", &c.Output)
	str("GANTTA_CALENDAR", &c.Calendar)
	str("GANTTA_SPREADSHEET_ID", &c.Sheets.SpreadsheetID)
	str("GANTTA_SHEETS_RANGE", &c.Sheets.Range)
	str("GANTTA_S3_ENDPOINT", &c.Storage.Endpoint)
	str("GANTTA_S3_REGION", &c.Storage.Region)
	str("GANTTA_S3_BUCKET", &c.Storage.Bucket)
	str("GANTTA_S3_ACCESS_KEY", &c.Storage.AccessKey)
	str("GANTTA_S3_SECRET_KEY", &c.Storage.SecretKey)
	str("GANTTA_S3_PREFIX", &c.Storage.Prefix)

	if v := strings.TrimSpace(getenv("GANTTA_HEADER_ROWS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.HeaderRows = n
		}
	}
	if v := strings.TrimSpace(getenv("GANTTA_S3_USE_SSL")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Storage.UseSSL = b
		}
	}
}

// Save writes cfg to the default config path.
func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

func SaveFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
