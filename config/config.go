package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

type (
	APP struct {
		Name      string `env:"SERVICE_NAME" envDefault:"userdirectory"`
		Host      string `env:"SERVICE_HOST" envDefault:"localhost"`
		Port      string `env:"SERVICE_PORT" envDefault:"5000"`
		Env       string `env:"SERVICE_ENV" envDefault:"development"`
		PublicURL string `env:"SERVICE_PUBLIC_URL"`
	}
	DB struct {
		User     string `env:"POSTGRES_USER"`
		Password string `env:"POSTGRES_PASSWORD"`
		Name     string `env:"POSTGRES_DB"`
		Host     string `env:"POSTGRES_HOST"`
		Port     string `env:"POSTGRES_PORT" envDefault:"5432"`
		SSLMode  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
		Migrate  bool   `env:"POSTGRES_MIGRATE" envDefault:"true"`
	}
	Storage struct {
		Dir            string `env:"STORAGE_DIR" envDefault:"uploads"`
		MaxUploadBytes int64  `env:"STORAGE_MAX_UPLOAD_BYTES" envDefault:"10485760"`
	}
	Cache struct {
		Size int           `env:"CACHE_SIZE" envDefault:"1024"`
		TTL  time.Duration `env:"CACHE_TTL" envDefault:"30s"`
	}
	HTTP struct {
		CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
	}
	MQ struct {
		User            string `env:"RABBITMQ_USER"`
		Password        string `env:"RABBITMQ_PASSWORD"`
		Vhost           string `env:"RABBITMQ_VHOST"`
		Host            string `env:"RABBITMQ_HOST"`
		AmqpPort        string `env:"RABBITMQ_AMQP_PORT" envDefault:"5672"`
		Exchange        string `env:"RABBITMQ_EXCHANGE" envDefault:"users"`
		ExchangeType    string `env:"RABBITMQ_EXCHANGE_TYPE" envDefault:"direct"`
		QueueName       string `env:"RABBITMQ_QUEUE_NAME" envDefault:"users.events"`
		ConsumerEnabled bool   `env:"RABBITMQ_CONSUMER_ENABLED" envDefault:"false"`
	}

	Config struct {
		App     APP
		DB      DB
		Storage Storage
		Cache   Cache
		HTTP    HTTP
		MQ      MQ
	}
)

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

func (c Config) DBDSN() (string, error) {
	if c.DB.User == "" || c.DB.Name == "" || c.DB.Host == "" || c.DB.Port == "" {
		return "", fmt.Errorf("incomplete DB config")
	}
	return fmt.Sprintf(
		"postgres://%s@%s:%s/%s?sslmode=%s",
		url.UserPassword(c.DB.User, c.DB.Password).String(),
		c.DB.Host,
		c.DB.Port,
		c.DB.Name,
		c.DB.SSLMode,
	), nil
}

// MigrateDSN is DBDSN with the scheme golang-migrate registers for its pgx/v5 driver.
func (c Config) MigrateDSN() (string, error) {
	dsn, err := c.DBDSN()
	if err != nil {
		return "", err
	}
	return "pgx5" + strings.TrimPrefix(dsn, "postgres"), nil
}

func (c Config) MQEnabled() bool { return c.MQ.Host != "" }

func (c Config) AMQPDSN() (string, error) {
	if c.MQ.User == "" || c.MQ.Host == "" || c.MQ.AmqpPort == "" {
		return "", fmt.Errorf("invalid MQ config: user, host and amqp port are required")
	}

	return fmt.Sprintf(
		"%s://%s@%s:%s/%s",
		"amqp",
		url.UserPassword(c.MQ.User, c.MQ.Password).String(),
		c.MQ.Host,
		c.MQ.AmqpPort,
		url.PathEscape(c.MQ.Vhost),
	), nil
}

// BaseURL is the address clients use to reach the service; image URLs are built on it.
func (c Config) BaseURL() string {
	if c.App.PublicURL != "" {
		return strings.TrimRight(c.App.PublicURL, "/")
	}
	return fmt.Sprintf("http://%s:%s", c.App.Host, c.App.Port)
}

func (c Config) CORSOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.HTTP.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
