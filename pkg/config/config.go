package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/2187Nick/schwab-market-depth/pkg/questdb"
)

// Config represents the application configuration.
type Config struct {
	App     AppConfig      `envPrefix:"APP_"`
	QuestDB questdb.Config `envPrefix:"QUESTDB_"`
	Stream  StreamConfig   `envPrefix:"STREAM_"`
	Sync    SyncConfig     `envPrefix:"SYNC_"`
	Kafka   KafkaConfig    `envPrefix:"KAFKA_"`
}

// AppConfig represents the query-service configuration.
type AppConfig struct {
	Name        string `env:"NAME" envDefault:"market-depth"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

// StreamConfig represents the upstream transport configuration.
// The streamer URL is expected to be pre-authorized; token acquisition
// happens outside this process.
type StreamConfig struct {
	URL          string `env:"URL" envDefault:"wss://streamer-api.schwab.com/ws"`
	CustomerID   string `env:"CUSTOMER_ID"`
	CorrelID     string `env:"CORREL_ID"`
	BookFields   string `env:"BOOK_FIELDS" envDefault:"0,1,2,3,4,5,6,7,8"`
	LevelsFields string `env:"LEVELS_FIELDS" envDefault:"0,1,2,3,4,18,35"`
}

// SyncConfig represents the subscription synchronizer configuration.
type SyncConfig struct {
	APIURL     string `env:"API_URL" envDefault:"http://localhost:8080"`
	IntervalMS int    `env:"INTERVAL_MS" envDefault:"5000"`
	// SeedSymbol keeps the upstream channel alive when nothing is active.
	// Empty means "derive a default option symbol for today".
	SeedSymbol string `env:"SEED_SYMBOL"`
}

// KafkaConfig represents the optional event fan-out configuration.
// Publishing is disabled when Brokers is empty.
type KafkaConfig struct {
	Brokers []string `env:"BROKERS" envSeparator:","`
	Topic   string   `env:"TOPIC" envDefault:"book-events"`
}

// Load loads the configuration from the environment.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}
