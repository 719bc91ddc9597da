package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	defaultImportConcurrency = 4
	defaultSummaryLength     = 90
	defaultLogLevel          = "warn"
	defaultLogMaxSizeMB      = 20
	defaultLogMaxBackups     = 3
	defaultLogMaxAgeDays     = 14
)

const (
	configFolderName  = "sipcms"
	configFileName    = "config.toml"
	configPathEnvName = "XDG_CONFIG_HOME"
)

var logLevels = []string{"debug", "info", "warn", "error"}

type Config struct {
	DBPath            string
	ImportConcurrency int
	SummaryLength     int
	LogLevel          string
	LogFile           string
	LogMaxSizeMB      int
	LogMaxBackups     int
	LogMaxAgeDays     int
}

func LoadConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}

	cfg := Default(home)

	configPath, hasConfig, err := findConfigPath(home)
	if err != nil {
		return Config{}, err
	}
	if hasConfig {
		fileCfg, err := loadFileConfig(configPath)
		if err != nil {
			return Config{}, err
		}
		applyFileConfig(&cfg, fileCfg)
	}

	applyEnvOverrides(&cfg)

	if cfg.ImportConcurrency < 1 {
		cfg.ImportConcurrency = defaultImportConcurrency
	}
	if cfg.SummaryLength <= 0 {
		cfg.SummaryLength = defaultSummaryLength
	}
	return cfg, nil
}

// Default returns the built-in configuration rooted at home.
func Default(home string) Config {
	return Config{
		DBPath:            filepath.Join(home, ".local", "share", "sipcms", "sipcms.db"),
		ImportConcurrency: defaultImportConcurrency,
		SummaryLength:     defaultSummaryLength,
		LogLevel:          defaultLogLevel,
		LogMaxSizeMB:      defaultLogMaxSizeMB,
		LogMaxBackups:     defaultLogMaxBackups,
		LogMaxAgeDays:     defaultLogMaxAgeDays,
	}
}

func ValidLogLevel(level string) bool {
	for _, l := range logLevels {
		if l == level {
			return true
		}
	}
	return false
}

type fileConfig struct {
	DBPath            *string `toml:"db_path"`
	ImportConcurrency *int    `toml:"import_concurrency"`
	SummaryLength     *int    `toml:"summary_length"`
	LogLevel          *string `toml:"log_level"`
	LogFile           *string `toml:"log_file"`
	LogMaxSizeMB      *int    `toml:"log_max_size_mb"`
	LogMaxBackups     *int    `toml:"log_max_backups"`
	LogMaxAgeDays     *int    `toml:"log_max_age_days"`
}

func findConfigPath(home string) (string, bool, error) {
	candidates := make([]string, 0, 2)
	if xdgConfigHome := strings.TrimSpace(os.Getenv(configPathEnvName)); xdgConfigHome != "" {
		candidates = append(candidates, filepath.Join(xdgConfigHome, configFolderName, configFileName))
	}
	candidates = append(candidates, filepath.Join(home, ".config", configFolderName, configFileName))

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil {
			if info.IsDir() {
				return "", false, fmt.Errorf("config path %q is a directory; expected a file", candidate)
			}
			return candidate, true, nil
		}
		if os.IsNotExist(err) {
			continue
		}
		return "", false, fmt.Errorf("failed to read config path %q: %w", candidate, err)
	}
	return "", false, nil
}

func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid config file %q: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		unknown := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			unknown = append(unknown, key.String())
		}
		sort.Strings(unknown)
		return fileConfig{}, fmt.Errorf("invalid config file %q: unknown key(s): %s", path, strings.Join(unknown, ", "))
	}
	if err := validateFileConfig(path, cfg); err != nil {
		return fileConfig{}, err
	}
	return cfg, nil
}

func validateFileConfig(path string, cfg fileConfig) error {
	if cfg.DBPath != nil && strings.TrimSpace(*cfg.DBPath) == "" {
		return fmt.Errorf("invalid config file %q: db_path must be non-empty when provided", path)
	}
	if cfg.ImportConcurrency != nil && *cfg.ImportConcurrency < 1 {
		return fmt.Errorf("invalid config file %q: import_concurrency must be >= 1", path)
	}
	if cfg.SummaryLength != nil && *cfg.SummaryLength <= 0 {
		return fmt.Errorf("invalid config file %q: summary_length must be > 0", path)
	}
	if cfg.LogLevel != nil && !ValidLogLevel(*cfg.LogLevel) {
		return fmt.Errorf("invalid config file %q: log_level must be one of %s", path, strings.Join(logLevels, ", "))
	}
	if cfg.LogMaxSizeMB != nil && *cfg.LogMaxSizeMB < 1 {
		return fmt.Errorf("invalid config file %q: log_max_size_mb must be >= 1", path)
	}
	if cfg.LogMaxBackups != nil && *cfg.LogMaxBackups < 0 {
		return fmt.Errorf("invalid config file %q: log_max_backups must be >= 0", path)
	}
	if cfg.LogMaxAgeDays != nil && *cfg.LogMaxAgeDays < 0 {
		return fmt.Errorf("invalid config file %q: log_max_age_days must be >= 0", path)
	}
	return nil
}

func applyFileConfig(cfg *Config, fileCfg fileConfig) {
	if fileCfg.DBPath != nil {
		cfg.DBPath = *fileCfg.DBPath
	}
	if fileCfg.ImportConcurrency != nil {
		cfg.ImportConcurrency = *fileCfg.ImportConcurrency
	}
	if fileCfg.SummaryLength != nil {
		cfg.SummaryLength = *fileCfg.SummaryLength
	}
	if fileCfg.LogLevel != nil {
		cfg.LogLevel = *fileCfg.LogLevel
	}
	if fileCfg.LogFile != nil {
		cfg.LogFile = *fileCfg.LogFile
	}
	if fileCfg.LogMaxSizeMB != nil {
		cfg.LogMaxSizeMB = *fileCfg.LogMaxSizeMB
	}
	if fileCfg.LogMaxBackups != nil {
		cfg.LogMaxBackups = *fileCfg.LogMaxBackups
	}
	if fileCfg.LogMaxAgeDays != nil {
		cfg.LogMaxAgeDays = *fileCfg.LogMaxAgeDays
	}
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("SIPCMS_DB_PATH"); ok && v != "" {
		cfg.DBPath = v
	}
	if v, ok := os.LookupEnv("SIPCMS_IMPORT_CONCURRENCY"); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			cfg.ImportConcurrency = n
		}
	}
	if v, ok := os.LookupEnv("SIPCMS_SUMMARY_LENGTH"); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SummaryLength = n
		}
	}
	if v, ok := os.LookupEnv("SIPCMS_LOG_LEVEL"); ok && ValidLogLevel(v) {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv("SIPCMS_LOG_FILE"); ok && v != "" {
		cfg.LogFile = v
	}
}
