package engine

import (
	"time"

	"warplanes-server/internal/config"
)

// Config хранит параметры движка матчей
type Config struct {
	// CommandTimeout - сколько ждать ответа инстанса на одну команду.
	CommandTimeout time.Duration
	// QueueSize - буфер канала команд одного матча.
	QueueSize int

	// FinishedTTL - сколько законченный матч без подключений живет до удаления.
	FinishedTTL  time.Duration
	ReapInterval time.Duration

	SeatSecret string
	SeatTTL    time.Duration
}

// NewConfig создает конфиг по умолчанию. Секрет для токенов нужно задать отдельно.
func NewConfig() Config {
	return Config{
		CommandTimeout: 5 * time.Second,
		QueueSize:      64,
		FinishedTTL:    10 * time.Minute,
		ReapInterval:   time.Minute,
		SeatTTL:        24 * time.Hour,
	}
}

// ConfigFrom переносит настройки процесса в конфиг движка.
func ConfigFrom(c config.Server) Config {
	return Config{
		CommandTimeout: c.CommandTimeout,
		QueueSize:      c.QueueSize,
		FinishedTTL:    c.FinishedTTL,
		ReapInterval:   c.ReapInterval,
		SeatSecret:     c.SeatSecret,
		SeatTTL:        c.SeatTTL,
	}
}
