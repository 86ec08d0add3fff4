package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram" yaml:"telegram"`
	Download DownloadConfig `mapstructure:"download" yaml:"download"`
	Search   SearchConfig   `mapstructure:"search" yaml:"search"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Store    StoreConfig    `mapstructure:"store" yaml:"store"`

	// Port for the admin API.
	Port string `mapstructure:"port" yaml:"port"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token" yaml:"token"`
	Debug bool   `mapstructure:"debug" yaml:"debug"`
}

type DownloadConfig struct {
	// WorkBase is the directory under which per-task scratch directories
	// are created.
	WorkBase string `mapstructure:"work_base" yaml:"work_base"`

	// TasksPerUser caps simultaneous downloads for a single owner.
	TasksPerUser int `mapstructure:"tasks_per_user" yaml:"tasks_per_user"`

	// WorkerSlots caps simultaneous fetch+transcode runs across all owners.
	WorkerSlots int64 `mapstructure:"worker_slots" yaml:"worker_slots"`

	// MaxArtifactBytes is the delivery size ceiling. Artifacts strictly
	// larger than this are skipped with a notice.
	MaxArtifactBytes int64 `mapstructure:"max_artifact_bytes" yaml:"max_artifact_bytes"`

	// ProgressInterval is the minimum spacing between status-message edits.
	ProgressInterval time.Duration `mapstructure:"progress_interval" yaml:"progress_interval"`

	// StartDelay lets the cancel button render before heavy work begins.
	StartDelay time.Duration `mapstructure:"start_delay" yaml:"start_delay"`

	// CookiesFile is an optional cookie jar handed to the extractor.
	// A single configured path, checked once at startup.
	CookiesFile string `mapstructure:"cookies_file" yaml:"cookies_file"`
}

type SearchConfig struct {
	ResultLimit int           `mapstructure:"result_limit" yaml:"result_limit"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
}

type LogConfig struct {
	Path          string `mapstructure:"path" yaml:"path"`
	Level         string `mapstructure:"level" yaml:"level"`
	IncludeStdout bool   `mapstructure:"include_stdout" yaml:"include_stdout"`
}

type StoreConfig struct {
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
}

func Load(path string) (*Config, error) {

	if path == "" {
		path = "config.yaml"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		// FALLBACK: Docker images mount config under /config
		if path == "config.yaml" {
			if _, errEx := os.Stat("/config/config.yaml"); errEx == nil {
				path = "/config/config.yaml"
			} else {
				return nil, fmt.Errorf("config file not found: %s", path)
			}
		} else {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
	}

	v := viper.New()

	// Set Defaults
	v.SetDefault("port", "8080")
	v.SetDefault("download.work_base", "./downloads")
	v.SetDefault("download.tasks_per_user", 3)
	v.SetDefault("download.worker_slots", 6)
	v.SetDefault("download.max_artifact_bytes", 50*1024*1024) // Telegram bot upload cap
	v.SetDefault("download.progress_interval", 2*time.Second)
	v.SetDefault("download.start_delay", 300*time.Millisecond)
	v.SetDefault("search.result_limit", 10)
	v.SetDefault("search.cache_ttl", 10*time.Minute)
	v.SetDefault("log.path", "musicjacker.log")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.include_stdout", true)
	v.SetDefault("store.sqlite_path", "./data/musicjacker.db")

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	// Support Environment Variables (MUSICJACKER_TELEGRAM_TOKEN etc.)
	v.SetEnvPrefix("MUSICJACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Telegram.Token == "" {
		return errors.New("telegram.token is required")
	}

	if c.Download.TasksPerUser <= 0 {
		c.Download.TasksPerUser = 3
	}

	if c.Download.WorkerSlots <= 0 {
		c.Download.WorkerSlots = 6
	}

	if c.Download.MaxArtifactBytes <= 0 {
		c.Download.MaxArtifactBytes = 50 * 1024 * 1024
	}

	if c.Download.ProgressInterval <= 0 {
		c.Download.ProgressInterval = 2 * time.Second
	}

	if c.Search.ResultLimit <= 0 {
		c.Search.ResultLimit = 10
	}

	if c.Download.WorkBase == "" {
		c.Download.WorkBase = "./downloads"
	}

	return nil
}
