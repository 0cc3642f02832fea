package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"

	"github.com/calvinalkan/bugit/internal/issue"
)

// Config holds all configuration options. The storage layer itself only ever
// sees the resolved issues directory; everything else stays in the CLI.
type Config struct {
	IssuesDir       string `json:"issues_dir"`                 //nolint:tagliatelle // snake_case for config file
	BackupOnDelete  *bool  `json:"backup_on_delete,omitempty"` //nolint:tagliatelle // snake_case for config file
	DefaultSeverity string `json:"default_severity,omitempty"` //nolint:tagliatelle // snake_case for config file
}

// ConfigFileName is the default config file name, discovered in the working
// directory. The file is JSONC: comments and trailing commas are allowed.
const ConfigFileName = ".bugitrc"

// DefaultIssuesDir is used when no config file and no flag set one.
const DefaultIssuesDir = ".bugit/issues"

var (
	errConfigFileNotFound = errors.New("config file not found")
	errConfigInvalid      = errors.New("invalid config file")
	errIssuesDirEmpty     = errors.New("issues_dir cannot be empty")
	errBadSeverity        = errors.New("default_severity must be low|medium|high|critical")
)

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		IssuesDir: DefaultIssuesDir,
	}
}

// BackupEnabled reports whether deletes should write a backup first.
// Defaults to true when the config file does not say otherwise.
func (c Config) BackupEnabled() bool {
	return c.BackupOnDelete == nil || *c.BackupOnDelete
}

// Severity returns the configured default severity, or medium.
func (c Config) Severity() issue.Severity {
	if c.DefaultSeverity == "" {
		return issue.SeverityMedium
	}

	return issue.Severity(c.DefaultSeverity)
}

// LoadConfig loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Project config file at default location (.bugitrc, if exists)
// 3. Explicit config file via configPath (if non-empty)
// 4. CLI overrides.
func LoadConfig(workDir, configPath string, issuesDirOverride string) (Config, string, error) {
	cfg := DefaultConfig()

	cfgFile := filepath.Join(workDir, ConfigFileName)
	mustExist := false

	if configPath != "" {
		cfgFile = configPath
		if !filepath.IsAbs(cfgFile) {
			cfgFile = filepath.Join(workDir, cfgFile)
		}

		mustExist = true
	}

	fileCfg, loaded, loadErr := loadConfigFile(cfgFile, mustExist)
	if loadErr != nil {
		return Config{}, "", loadErr
	}

	source := ""
	if loaded {
		source = cfgFile
		cfg = mergeConfig(cfg, fileCfg)
	}

	if issuesDirOverride != "" {
		cfg.IssuesDir = issuesDirOverride
	}

	validateErr := validateConfig(cfg)
	if validateErr != nil {
		return Config{}, "", validateErr
	}

	return cfg, source, nil
}

// loadConfigFile loads a config file. If mustExist is false, missing files
// return zero config.
func loadConfigFile(path string, mustExist bool) (Config, bool, error) {
	data, readErr := os.ReadFile(path) //nolint:gosec // path is intentionally user-controlled
	if readErr != nil {
		if os.IsNotExist(readErr) && !mustExist {
			return Config{}, false, nil
		}

		return Config{}, false, fmt.Errorf("%w: %s", errConfigFileNotFound, path)
	}

	cfg, parseErr := parseConfig(data)
	if parseErr != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", errConfigInvalid, path, parseErr)
	}

	return cfg, true, nil
}

func parseConfig(data []byte) (Config, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	unmarshalErr := json.Unmarshal(standardized, &cfg)
	if unmarshalErr != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", unmarshalErr)
	}

	return cfg, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.IssuesDir != "" {
		base.IssuesDir = overlay.IssuesDir
	}

	if overlay.BackupOnDelete != nil {
		base.BackupOnDelete = overlay.BackupOnDelete
	}

	if overlay.DefaultSeverity != "" {
		base.DefaultSeverity = overlay.DefaultSeverity
	}

	return base
}

func validateConfig(cfg Config) error {
	if cfg.IssuesDir == "" {
		return errIssuesDirEmpty
	}

	if cfg.DefaultSeverity != "" && !issue.Severity(cfg.DefaultSeverity).Valid() {
		return fmt.Errorf("%w: %q", errBadSeverity, cfg.DefaultSeverity)
	}

	return nil
}

// FormatConfig returns the config as formatted JSON.
func FormatConfig(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format config: %w", err)
	}

	return string(data), nil
}
