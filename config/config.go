package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// TheSports feed credentials
	TheSportsUser   string
	TheSportsSecret string
	APIBaseURL      string
	MQTTBroker      string
	FeedTopic       string

	// Database
	DatabaseURL string

	// Server
	Port string

	// Sync behaviour
	CompetitionAllowlist []string // empty = accept all competitions
	LiveSyncInterval     time.Duration
	DailySyncInterval    time.Duration
	CacheTTL             time.Duration

	// Optional downstream fanout
	AMQPURL      string
	AMQPExchange string

	Environment string
}

func Load() *Config {
	return &Config{
		TheSportsUser:   getEnv("THESPORTS_USER", ""),
		TheSportsSecret: getEnv("THESPORTS_SECRET", ""),
		APIBaseURL:      getEnv("THESPORTS_API_BASE_URL", "https://api.thesports.com"),
		MQTTBroker:      getEnv("THESPORTS_MQTT_BROKER", "ssl://mq.thesports.com:443"),
		FeedTopic:       getEnv("FEED_TOPIC", "thesports/football/match/v1"),

		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/livescore?sslmode=disable"),

		Port: getEnv("PORT", "8080"),

		CompetitionAllowlist: getList("COMPETITION_ALLOWLIST"),
		LiveSyncInterval:     time.Duration(getEnvInt("LIVE_SYNC_INTERVAL_SECONDS", 30)) * time.Second,
		DailySyncInterval:    time.Duration(getEnvInt("DAILY_SYNC_INTERVAL_MINUTES", 10)) * time.Minute,
		CacheTTL:             time.Duration(getEnvInt("CACHE_TTL_MINUTES", 60)) * time.Minute,

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "livescore"),

		Environment: getEnv("ENVIRONMENT", "development"),
	}
}

// HasFeedCredentials reports whether the push feed can be used at all.
// Without credentials the service runs in poll-only mode.
func (c *Config) HasFeedCredentials() bool {
	return c.TheSportsUser != "" && c.TheSportsSecret != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(value)
	if err != nil || result <= 0 {
		return defaultValue
	}
	return result
}

func getList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
