package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port             string `envconfig:"PORT" default:"8080"`
	Environment      string `envconfig:"ENVIRONMENT" default:"development"`
	AWSRegion        string `envconfig:"AWS_REGION" default:"eu-west-1"`
	TableName        string `envconfig:"TABLE_NAME" default:"alsabil"`
	DynamoDBEndpoint string `envconfig:"DYNAMODB_ENDPOINT" default:""` // DynamoDB Local endpoint
	KafkaEnabled     bool   `envconfig:"KAFKA_ENABLED" default:"false"`
	KafkaBrokers     string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaTopic       string `envconfig:"KAFKA_TOPIC" default:"order-events"`
	SessionSecret    string `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTLHours  int    `envconfig:"SESSION_TTL_HOURS" default:"336"` // 14 days
	EventListenerCap int    `envconfig:"EVENT_LISTENER_CAP" default:"256"`
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"`
}

func (c *Config) Production() bool {
	return c.Environment == "production"
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
