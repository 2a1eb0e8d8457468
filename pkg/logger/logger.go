package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log является глобальным экземпляром логгера для всего приложения.
// До вызова Init пишет в stderr с настройками logrus по умолчанию,
// поэтому пакеты можно тестировать без инициализации.
var Log = logrus.New()

// Init настраивает глобальный логгер.
// Вызывается один раз при старте приложения, значения приходят из config.
func Init(level, format string) {
	Configure(Log, level, format, os.Stdout)
}

// Configure применяет уровень и формат к произвольному логгеру.
// Неизвестный уровень превращается в info.
func Configure(l *logrus.Logger, level, format string, out io.Writer) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	// "json" - для продакшена и сбора логов, "text" - для разработки.
	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	l.SetOutput(out)
}

// Discard глушит глобальный логгер. Нужен в тестах и в терминальном клиенте,
// где stdout занят экраном.
func Discard() {
	Log.SetOutput(io.Discard)
}
