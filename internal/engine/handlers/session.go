package handlers

import (
	"warplanes-server/internal/domain"
	"warplanes-server/pkg/api"
)

// JoinEvents собирает сообщения после того, как сторона заняла слот.
// before - фаза до входа. token пустой, если транспорт сам отвечает за сессии.
func JoinEvents(m *domain.Match, side domain.Side, before domain.Phase, token string) Result {
	var res Result
	res.Send(side, api.ServerMessage{
		Type:  api.MsgPlayerAssigned,
		Side:  side.String(),
		Phase: m.Phase().String(),
		Token: token,
	})
	if before == domain.PhaseWaiting && m.Phase() == domain.PhasePlacing {
		res.Broadcast(api.ServerMessage{
			Type:  api.MsgGameReady,
			Phase: m.Phase().String(),
		})
	}
	return res
}

// ResumeEvents - сторона вернулась на уже занятый слот: ей отдается состояние,
// сопернику уходит PLAYER_RECONNECTED.
func ResumeEvents(m *domain.Match, side domain.Side, token string) Result {
	res := JoinEvents(m, side, m.Phase(), token)
	if snap, err := m.Snapshot(side); err == nil {
		res.Send(side, BoardsMessage(snap))
	}
	res.Send(side.Opponent(), api.ServerMessage{
		Type: api.MsgPlayerReconnected,
		Side: side.String(),
	})
	return res
}

// LeaveEvents - сторона отключилась. Состояние матча не меняется.
func LeaveEvents(side domain.Side) Result {
	var res Result
	res.Send(side.Opponent(), api.ServerMessage{
		Type: api.MsgPlayerDisconnected,
		Side: side.String(),
	})
	return res
}
