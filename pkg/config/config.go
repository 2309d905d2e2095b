package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

type DatabaseConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DBName      string `mapstructure:"dbname"`
	SSLMode     string `mapstructure:"sslmode"`
	UseInMemory bool   `mapstructure:"use_in_memory"`
}

type RedisConfig struct {
	Addr        string `mapstructure:"addr"`
	Password    string `mapstructure:"password"`
	DB          int    `mapstructure:"db"`
	UseInMemory bool   `mapstructure:"use_in_memory"`
}

type OpenAIConfig struct {
	APIKey      string   `mapstructure:"api_key"`
	Models      []string `mapstructure:"models"`
	MaxTokens   int      `mapstructure:"max_tokens"`
	Temperature float64  `mapstructure:"temperature"`
}

type ClassifierConfig struct {
	UnanimousConfidence float64 `mapstructure:"unanimous_confidence"`
	MajorityConfidence  float64 `mapstructure:"majority_confidence"`
	SoloConfidence      float64 `mapstructure:"solo_confidence"`
	SplitConfidence     float64 `mapstructure:"split_confidence"`
	AdditiveAccept      float64 `mapstructure:"additive_accept"`
	DestructiveAccept   float64 `mapstructure:"destructive_accept"`
	ReminderAccept      float64 `mapstructure:"reminder_accept"`
	BackendTimeoutSec   int     `mapstructure:"backend_timeout_seconds"`
}

type PipelineConfig struct {
	Timezone             string `mapstructure:"timezone"`
	MessageTimeoutSec    int    `mapstructure:"message_timeout_seconds"`
	GraceWindowSec       int    `mapstructure:"grace_window_seconds"`
	DefaultLeadMinutes   int    `mapstructure:"default_lead_minutes"`
	ContextWindowMinutes int    `mapstructure:"context_window_minutes"`
	ExtractorTimeoutSec  int    `mapstructure:"extractor_timeout_seconds"`
	ListLimit            int    `mapstructure:"list_limit"`
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}

	password, _ := u.User.Password()
	port := 5432
	if u.Port() != "" {
		fmt.Sscanf(u.Port(), "%d", &port)
	}

	return DatabaseConfig{
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   strings.TrimPrefix(u.Path, "/"),
		SSLMode:  "disable",
	}, nil
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("database.port", 5432)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.use_in_memory", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.use_in_memory", false)
	v.SetDefault("openai.models", []string{"gpt-4o-mini"})
	v.SetDefault("openai.max_tokens", 300)
	v.SetDefault("openai.temperature", 0.0)
	v.SetDefault("classifier.unanimous_confidence", 0.95)
	v.SetDefault("classifier.majority_confidence", 0.85)
	v.SetDefault("classifier.solo_confidence", 0.65)
	v.SetDefault("classifier.split_confidence", 0.60)
	v.SetDefault("classifier.additive_accept", 0.5)
	v.SetDefault("classifier.destructive_accept", 0.7)
	v.SetDefault("classifier.reminder_accept", 0.4)
	v.SetDefault("classifier.backend_timeout_seconds", 6)
	v.SetDefault("pipeline.timezone", "Asia/Jerusalem")
	v.SetDefault("pipeline.message_timeout_seconds", 15)
	v.SetDefault("pipeline.grace_window_seconds", 120)
	v.SetDefault("pipeline.default_lead_minutes", 10)
	v.SetDefault("pipeline.context_window_minutes", 30)
	v.SetDefault("pipeline.extractor_timeout_seconds", 8)
	v.SetDefault("pipeline.list_limit", 10)

	v.AutomaticEnv()

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		config.Database = dbConfig
	}

	if redisURL := v.GetString("REDIS_URL"); redisURL != "" {
		config.Redis.Addr = strings.TrimPrefix(redisURL, "redis://")
	}

	if token := v.GetString("TELEGRAM_TOKEN"); token != "" {
		config.Telegram.Token = token
	}

	if apiKey := v.GetString("OPENAI_API_KEY"); apiKey != "" {
		config.OpenAI.APIKey = apiKey
	}

	return &config, nil
}
