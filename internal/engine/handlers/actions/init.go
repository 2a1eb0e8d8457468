package actions

import (
	"warplanes-server/internal/domain"
	"warplanes-server/internal/engine/handlers"
)

// Table - реестр команд. Один и тот же для WebSocket-инстансов и Nakama.
func Table() map[domain.ActionType]handlers.HandlerFunc {
	return map[domain.ActionType]handlers.HandlerFunc{
		domain.ActionPlacePlane: handlers.WithPayload(HandlePlacePlane),
		domain.ActionAttack:     handlers.WithPayload(HandleAttack),
		domain.ActionGetBoards:  handlers.WithEmptyPayload(HandleGetBoards),
	}
}
