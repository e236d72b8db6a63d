// Package config loads service configuration from file and environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"yt-extract-api/pkg/models"
)

// Manager manages application configuration
type Manager struct {
	config *models.Config
	viper  *viper.Viper
	logger zerolog.Logger
}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	return &Manager{
		config: &models.Config{},
		viper:  viper.New(),
		logger: zerolog.New(os.Stdout).With().Timestamp().Logger(),
	}
}

// Load loads configuration from file and environment. Environment
// variables use the YTX prefix, e.g. YTX_SERVER_PORT.
func (m *Manager) Load(configPath string) (*models.Config, error) {
	m.setDefaults()

	m.viper.SetConfigName("config")
	m.viper.SetConfigType("yaml")

	if configPath != "" {
		m.viper.AddConfigPath(configPath)
	} else {
		m.viper.AddConfigPath(".")
		m.viper.AddConfigPath("./config")
		m.viper.AddConfigPath("$HOME/.yt-extract-api")
		m.viper.AddConfigPath("/etc/yt-extract-api")
	}

	m.viper.SetEnvPrefix("YTX")
	m.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.viper.AutomaticEnv()

	if err := m.viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		m.logger.Debug().Msg("No config file found, using defaults and environment")
	}

	if err := m.viper.Unmarshal(m.config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := m.ensureDirectories(); err != nil {
		return nil, fmt.Errorf("error ensuring directories: %w", err)
	}

	m.configureLogger()

	return m.config, nil
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() *models.Config {
	return m.config
}

// Save writes the effective configuration to configPath
func (m *Manager) Save(configPath string) error {
	configFile := filepath.Join(configPath, "config.yaml")
	if err := m.viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	// Server defaults
	m.viper.SetDefault("server.host", "0.0.0.0")
	m.viper.SetDefault("server.port", 8000)
	m.viper.SetDefault("server.read_timeout", 30)
	m.viper.SetDefault("server.write_timeout", 60)

	// Extraction defaults
	m.viper.SetDefault("extraction.max_attempts", 3)
	m.viper.SetDefault("extraction.backoff_seconds", 1.0)
	m.viper.SetDefault("extraction.timeout_seconds", 30)
	m.viper.SetDefault("extraction.cache_ttl_minutes", 30)
	m.viper.SetDefault("extraction.cache_sweep_minutes", 10)
	m.viper.SetDefault("extraction.auto_install", false)

	// Rate limit defaults: one info call per 2s and one download per 3s
	// per caller
	m.viper.SetDefault("rate_limit.enabled", true)
	m.viper.SetDefault("rate_limit.info_interval_seconds", 2.0)
	m.viper.SetDefault("rate_limit.download_interval_seconds", 3.0)
	m.viper.SetDefault("rate_limit.max_entries", 10000)

	// Worker pool defaults
	m.viper.SetDefault("workers.count", 4)
	m.viper.SetDefault("workers.queue_depth", 16)

	// Playlist defaults
	m.viper.SetDefault("playlist.info_limit", 50)
	m.viper.SetDefault("playlist.download_limit", 10)
	m.viper.SetDefault("playlist.hard_ceiling", 100)

	// Database defaults
	m.viper.SetDefault("database.path", "./data/yt-extract-api.db")

	// Proxy defaults
	m.viper.SetDefault("proxy.enabled", false)
	m.viper.SetDefault("proxy.url", "")

	// Log defaults
	m.viper.SetDefault("log.level", "info")
	m.viper.SetDefault("log.format", "json")
	m.viper.SetDefault("log.output", "stdout")
}

// ensureDirectories ensures all required directories exist
func (m *Manager) ensureDirectories() error {
	if dir := filepath.Dir(m.config.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating directory %s: %w", dir, err)
		}
	}
	return nil
}

// configureLogger configures the logger based on settings
func (m *Manager) configureLogger() {
	level, err := zerolog.ParseLevel(m.config.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if m.config.Log.Format != "json" {
		m.logger = m.logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if m.config.Log.Output != "stdout" && m.config.Log.Output != "" {
		file, err := os.OpenFile(m.config.Log.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			m.logger = m.logger.Output(file)
		}
	}
}

// GetLogger returns the logger instance
func (m *Manager) GetLogger() zerolog.Logger {
	return m.logger
}
