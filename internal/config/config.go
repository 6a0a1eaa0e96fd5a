package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App      App      `mapstructure:"app"`
	Gemini   Gemini   `mapstructure:"gemini"`
	SerpAPI  SerpAPI  `mapstructure:"serpapi"`
	Pipeline Pipeline `mapstructure:"pipeline"`
	Cache    Cache    `mapstructure:"cache"`
	Content  Content  `mapstructure:"content"`
}

// App holds general application configuration.
type App struct {
	Debug   bool   `mapstructure:"debug"`
	DataDir string `mapstructure:"data_dir"`
}

// Gemini holds Google Gemini configuration.
type Gemini struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

// SerpAPI holds trend source configuration.
type SerpAPI struct {
	APIKey      string `mapstructure:"api_key"`
	Region      string `mapstructure:"region"`
	WindowHours int    `mapstructure:"window_hours"`
}

// Pipeline holds scheduling and selection configuration.
type Pipeline struct {
	Interval          string `mapstructure:"interval"`            // scheduler tick, e.g. "5m"
	TopicWindowHours  int    `mapstructure:"topic_window_hours"`  // freshness of fetched topics
	CandidateLimit    int    `mapstructure:"candidate_limit"`     // topics considered per run
	PublishDelay      string `mapstructure:"publish_delay"`       // scheduled_at offset, e.g. "10m"
	PublishInstantly  bool   `mapstructure:"publish_instantly"`   // skip scheduling
	DuplicateWindow   string `mapstructure:"duplicate_window"`    // trailing duplicate-trend window
	PostRecencyWindow string `mapstructure:"post_recency_window"` // recent-post window for duplicates
}

// Cache holds conversation cache configuration.
type Cache struct {
	TTL              string `mapstructure:"ttl"`               // e.g. "24h"
	MaxConversations int    `mapstructure:"max_conversations"` // eviction bound
}

// Content holds content policy configuration. Both lists are injectable so
// they can be tuned without touching pipeline logic.
type Content struct {
	BannedWords    []string `mapstructure:"banned_words"`
	FallbackTopics []string `mapstructure:"fallback_topics"`
	RelatedKwLimit int      `mapstructure:"related_kw_limit"`
}

// DefaultBannedWords is the denylist applied when none is configured.
var DefaultBannedWords = []string{
	"porn", "xxx", "sex", "nude", "casino", "gambling", "hack", "crack", "warez",
}

// DefaultFallbackTopics is the curated evergreen list used when the trend
// source yields no usable candidates.
var DefaultFallbackTopics = []string{
	"how to improve productivity working from home",
	"best budgeting strategies for beginners",
	"how to start a vegetable garden",
	"beginner guide to strength training",
	"how to learn a new language effectively",
	"best practices for better sleep",
	"how to reduce household energy costs",
	"ultimate guide to meal prepping",
	"how to build an emergency fund",
	"beginner guide to indoor plants",
}

// Load reads configuration from .env, the environment, and an optional
// config file already wired into viper by the CLI layer.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if len(cfg.Content.BannedWords) == 0 {
		cfg.Content.BannedWords = DefaultBannedWords
	}
	if len(cfg.Content.FallbackTopics) == 0 {
		cfg.Content.FallbackTopics = DefaultFallbackTopics
	}
	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.data_dir", ".blogsmith")
	viper.SetDefault("gemini.api_key", "")
	viper.SetDefault("gemini.model", "gemini-1.5-pro")
	viper.SetDefault("gemini.max_tokens", 8192)
	viper.SetDefault("gemini.temperature", 0.7)
	viper.SetDefault("serpapi.api_key", "")
	viper.SetDefault("serpapi.region", "US")
	viper.SetDefault("serpapi.window_hours", 24)
	viper.SetDefault("pipeline.interval", "5m")
	viper.SetDefault("pipeline.topic_window_hours", 4)
	viper.SetDefault("pipeline.candidate_limit", 10)
	viper.SetDefault("pipeline.publish_delay", "10m")
	viper.SetDefault("pipeline.publish_instantly", false)
	viper.SetDefault("pipeline.duplicate_window", "1h")
	viper.SetDefault("pipeline.post_recency_window", "2h")
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("cache.max_conversations", 100)
	viper.SetDefault("content.related_kw_limit", 20)
}

// Duration parses one of the config's duration strings, falling back to def
// when empty or invalid.
func Duration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
