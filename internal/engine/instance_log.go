package engine

import (
	"github.com/sirupsen/logrus"

	"warplanes-server/internal/domain"
	"warplanes-server/internal/engine/handlers"
	"warplanes-server/pkg/logger"
)

// logCommand пишет итог команды в лог инстанса.
// Ошибки игроков (не их ход, занято) - это Info, а не Error: сервер работает штатно.
func (i *Instance) logCommand(cmd domain.InternalCommand, err error) {
	entry := logger.Log.WithFields(logrus.Fields{
		"match":  i.ID,
		"side":   cmd.Side,
		"action": cmd.Action.String(),
		"phase":  i.match.Phase(),
	})
	if err != nil {
		entry.WithField("code", handlers.ErrorCode(err)).WithError(err).Info("Command rejected")
		return
	}
	entry.Debug("Command applied")
}

func (i *Instance) logEvent(side domain.Side, text string) {
	logger.Log.WithFields(logrus.Fields{
		"match":     i.ID,
		"side":      side,
		"component": "match_log",
		"phase":     i.match.Phase(),
	}).Info(text)
}
