package matching

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config represents the service configuration.
type Config struct {
	App       AppConfig       `envPrefix:"APP_"`
	Kafka     KafkaConfig     `envPrefix:"KAFKA_"`
	Bootstrap BootstrapConfig `envPrefix:"BOOTSTRAP_"`
}

// AppConfig represents the application configuration.
type AppConfig struct {
	Name        string `env:"NAME" envDefault:"tinyme"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

// KafkaConfig represents the Kafka transport configuration.
type KafkaConfig struct {
	Brokers       []string `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	RequestTopic  string   `env:"REQUEST_TOPIC" envDefault:"tinyme-requests"`
	EventTopic    string   `env:"EVENT_TOPIC" envDefault:"tinyme-events"`
	ConsumerGroup string   `env:"CONSUMER_GROUP" envDefault:"tinyme"`
}

// BootstrapConfig seeds the reference data the engine starts with. Entries
// use colon-separated fields: securities as "isin:tick:lot", brokers as
// "id:credit", shareholders as "id" and positions as "shareholder:isin:qty".
type BootstrapConfig struct {
	Securities   []string `env:"SECURITIES" envSeparator:","`
	Brokers      []string `env:"BROKERS" envSeparator:","`
	Shareholders []string `env:"SHAREHOLDERS" envSeparator:","`
	Positions    []string `env:"POSITIONS" envSeparator:","`
}

// LoadConfig loads the configuration from the environment, reading a .env
// file first if one exists.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}
