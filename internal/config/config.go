package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token              string  `yaml:"token"`
	Workers            int     `yaml:"workers"` // polling workers
	AdminIDs           []int64 `yaml:"admin_ids"`
	NotificationChatID int64   `yaml:"notification_chat_id"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type APIConfig struct {
	Port      int    `yaml:"port"`
	JWTSecret string `yaml:"jwt_secret"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AIConfig struct {
	OpenAIKey       string `yaml:"openai_key"`
	GeminiKey       string `yaml:"gemini_key"`
	GeminiURL       string `yaml:"gemini_url"`
	DefaultModel    string `yaml:"default_model"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
	MaxPromptTokens int    `yaml:"max_prompt_tokens"` // long job content is truncated to fit
	ConcurrentLimit int    `yaml:"concurrent_limit"`  // max concurrent AI calls
	MaxRetries      int    `yaml:"max_retries"`       // per-call retries inside the adapter
}

type StorageConfig struct {
	Root string `yaml:"root"` // parent of resume_sources/, job_content/, resumes/, reports/
}

// SchedulerConfig drives the hourly notifier. Window hours are inclusive
// start, exclusive end, evaluated in a fixed UTC offset.
type SchedulerConfig struct {
	NotifyInterval  time.Duration `yaml:"notify_interval"`
	WindowStartHour int           `yaml:"window_start_hour"`
	WindowEndHour   int           `yaml:"window_end_hour"`
	UTCOffsetHours  int           `yaml:"utc_offset_hours"`
	NotifyUserID    string        `yaml:"notify_user_id"` // empty means a random user per run
}

type SearchConfig struct {
	BoardURLTemplate string        `yaml:"board_url_template"` // %s is the url-escaped keyword
	MaxPerKeyword    int           `yaml:"max_per_keyword"`
	BrowserTimeout   time.Duration `yaml:"browser_timeout"`
}

type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Log       LogConfig       `yaml:"log"`
	API       APIConfig       `yaml:"api"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	AI        AIConfig        `yaml:"ai"`
	Storage   StorageConfig   `yaml:"storage"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Search    SearchConfig    `yaml:"search"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.ApplyDefaults()

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Scheduler.WindowStartHour >= cfg.Scheduler.WindowEndHour {
		return nil, errors.New("scheduler window start must be before end")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

// ApplyDefaults fills zero values; exported so tests and cmd/seed can build
// a usable config without a file on disk.
func (cfg *Config) ApplyDefaults() {
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.API.Port == 0 {
		cfg.API.Port = 8080
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}
	if cfg.AI.MaxRetries < 0 {
		cfg.AI.MaxRetries = 0
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gpt-4o-mini"
	}
	if cfg.AI.MaxOutputTokens <= 0 {
		cfg.AI.MaxOutputTokens = 4096
	}
	if cfg.AI.MaxPromptTokens <= 0 {
		cfg.AI.MaxPromptTokens = 24000
	}
	if cfg.Storage.Root == "" {
		cfg.Storage.Root = "data"
	}
	if cfg.Scheduler.NotifyInterval <= 0 {
		cfg.Scheduler.NotifyInterval = time.Hour
	}
	if cfg.Scheduler.WindowEndHour == 0 {
		cfg.Scheduler.WindowStartHour = 7
		cfg.Scheduler.WindowEndHour = 22
	}
	if cfg.Scheduler.UTCOffsetHours == 0 {
		cfg.Scheduler.UTCOffsetHours = 9 // KST
	}
	if cfg.Search.BoardURLTemplate == "" {
		cfg.Search.BoardURLTemplate = "https://www.jobkorea.co.kr/Search/?stext=%s"
	}
	if cfg.Search.MaxPerKeyword <= 0 {
		cfg.Search.MaxPerKeyword = 5
	}
	if cfg.Search.BrowserTimeout <= 0 {
		cfg.Search.BrowserTimeout = 90 * time.Second
	}
}
