package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "semxref.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/semxref"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
	// EnvFile is the optional dotenv file read from the working directory
	EnvFile = ".env"
)

// Environment variables applied after the config files.
const (
	EnvRawDir        = "SEMXREF_RAW_DIR"
	EnvS3Bucket      = "SEMXREF_S3_BUCKET"
	EnvNATSURL       = "SEMXREF_NATS_URL"
	EnvNeo4jPassword = "SEMXREF_NEO4J_PASSWORD"
	EnvSQLDSN        = "SEMXREF_SQL_DSN"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger *slog.Logger
	// replaced in tests
	getenv func(string) string
	home   func() (string, error)
	cwd    func() (string, error)
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger, getenv: os.Getenv, home: os.UserHomeDir, cwd: os.Getwd}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/semxref/config.yaml)
// 3. Project config (semxref.yaml in current or parent directories)
// 4. Explicit config file (--config), when explicitPath is set
// 5. Environment variables, including those from an optional .env file
func (l *Loader) Load(explicitPath string) (*Config, error) {
	config := DefaultConfig()

	userConfigPath := l.userConfigPath()
	if userConfigPath != "" {
		if userConfig, err := LoadFromFile(userConfigPath); err == nil {
			l.logger.Debug("Loaded user config", slog.String("path", userConfigPath))
			config.Merge(userConfig)
		} else if !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("Failed to load user config", slog.String("path", userConfigPath), slog.String("error", err.Error()))
		}
	}

	projectConfigPath := l.findProjectConfig()
	if projectConfigPath != "" {
		if projectConfig, err := LoadFromFile(projectConfigPath); err == nil {
			l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
			config.Merge(projectConfig)
		} else {
			l.logger.Warn("Failed to load project config", slog.String("path", projectConfigPath), slog.String("error", err.Error()))
		}
	} else {
		l.logger.Debug("No project config found")
	}

	if explicitPath != "" {
		explicitConfig, err := LoadFromFile(explicitPath)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("Loaded config", slog.String("path", explicitPath))
		config.Merge(explicitConfig)
	}

	if err := godotenv.Load(EnvFile); err == nil {
		l.logger.Debug("Loaded env file", slog.String("path", EnvFile))
	} else if !errors.Is(err, fs.ErrNotExist) {
		l.logger.Warn("Failed to load env file", slog.String("path", EnvFile), slog.String("error", err.Error()))
	}
	l.applyEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnv overrides config values from the environment.
func (l *Loader) applyEnv(c *Config) {
	if v := l.getenv(EnvRawDir); v != "" {
		c.Raw.Dir = v
	}
	if v := l.getenv(EnvS3Bucket); v != "" {
		c.Raw.Bucket = v
	}
	if v := l.getenv(EnvNATSURL); v != "" {
		if c.Sink.Driver == SinkNATS {
			c.Sink.URL = v
		}
		if c.Runs.Driver == RunsNATS {
			c.Runs.URL = v
		}
	}
	if v := l.getenv(EnvNeo4jPassword); v != "" {
		c.Sink.Password = v
	}
	if v := l.getenv(EnvSQLDSN); v != "" {
		c.Sink.DSN = v
	}
}

// EnsureUserConfig creates the user config file with defaults if it doesn't exist
func (l *Loader) EnsureUserConfig() error {
	userConfigPath := l.userConfigPath()
	if userConfigPath == "" {
		return errors.New("no home directory")
	}

	if _, err := os.Stat(userConfigPath); err == nil {
		return nil
	}

	config := DefaultConfig()
	if err := config.SaveToFile(userConfigPath); err != nil {
		return err
	}

	l.logger.Info("Created default user config", slog.String("path", userConfigPath))
	return nil
}

// userConfigPath returns the path to the user config file
func (l *Loader) userConfigPath() string {
	home, err := l.home()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// findProjectConfig searches for semxref.yaml in current and parent directories
func (l *Loader) findProjectConfig() string {
	cwd, err := l.cwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
