package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server - настройки процесса warplanes-server.
type Server struct {
	Port      int    `env:"WP_PORT"    envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// SeatSecret - ключ HMAC для токенов мест. Пустой значит "сгенерировать на старте",
	// тогда токены не переживают перезапуск (как и сами матчи).
	SeatSecret string        `env:"WP_SEAT_SECRET"`
	SeatTTL    time.Duration `env:"WP_SEAT_TTL" envDefault:"24h"`

	CommandTimeout time.Duration `env:"WP_COMMAND_TIMEOUT" envDefault:"5s"`
	QueueSize      int           `env:"WP_QUEUE_SIZE"      envDefault:"64"`

	FinishedTTL  time.Duration `env:"WP_FINISHED_TTL"  envDefault:"10m"`
	ReapInterval time.Duration `env:"WP_REAP_INTERVAL" envDefault:"1m"`
}

// Client - настройки терминального клиента.
type Client struct {
	ServerURL string `env:"WP_SERVER" envDefault:"ws://localhost:8080"`
}

// LoadServer читает окружение и проверяет значения.
func LoadServer() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	if cfg.SeatSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return Server{}, err
		}
		cfg.SeatSecret = secret
	}
	return cfg, nil
}

func LoadClient() (Client, error) {
	var cfg Client
	if err := env.Parse(&cfg); err != nil {
		return Client{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate проверяет значения после разбора и после переопределения флагами.
func (c Server) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("WP_PORT must be in 1..65535, got %d", c.Port)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("WP_QUEUE_SIZE must be positive, got %d", c.QueueSize)
	}
	if c.CommandTimeout <= 0 {
		return fmt.Errorf("WP_COMMAND_TIMEOUT must be positive, got %s", c.CommandTimeout)
	}
	if c.SeatTTL <= 0 {
		return fmt.Errorf("WP_SEAT_TTL must be positive, got %s", c.SeatTTL)
	}
	if c.ReapInterval <= 0 {
		return fmt.Errorf("WP_REAP_INTERVAL must be positive, got %s", c.ReapInterval)
	}
	return nil
}

// Addr - адрес для http.Server.
func (c Server) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate seat secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
