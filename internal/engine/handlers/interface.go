package handlers

import (
	"encoding/json"
	"fmt"

	"warplanes-server/internal/domain"
	"warplanes-server/pkg/api"
)

// Context передает хендлеру матч и сторону, от имени которой пришла команда.
// Матч мутируется на месте, поэтому хендлер вызывается только владельцем матча.
type Context struct {
	Match *domain.Match
	Side  domain.Side
}

// Event - сообщение, которое владелец матча доставит после команды.
// To == SideNone значит "обеим сторонам".
type Event struct {
	To  domain.Side
	Msg api.ServerMessage
}

// Result - возвращает результат выполнения команды.
// Хендлер НЕ пишет в сокеты напрямую, он возвращает события.
type Result struct {
	Value  any // типизированный ответ для синхронных вызовов (AttackOutcome, Snapshot)
	Events []Event
}

// Send добавляет личное сообщение стороне.
func (r *Result) Send(to domain.Side, msg api.ServerMessage) {
	r.Events = append(r.Events, Event{To: to, Msg: msg})
}

// Broadcast добавляет сообщение обеим сторонам.
func (r *Result) Broadcast(msg api.ServerMessage) {
	r.Events = append(r.Events, Event{To: domain.SideNone, Msg: msg})
}

// HasEventFor сообщает, получит ли сторона хоть одно сообщение.
func (r Result) HasEventFor(side domain.Side) bool {
	for _, ev := range r.Events {
		if ev.To == domain.SideNone || ev.To == side {
			return true
		}
	}
	return false
}

// HandlerFunc - это контракт для любой команды (PLACE_PLANE, ATTACK, GET_BOARDS).
type HandlerFunc func(ctx Context, payload json.RawMessage) (Result, error)

// Dispatch находит хендлер по типу команды и вызывает его.
// Если команда провалилась и хендлер ничего не сказал стороне, ей уходит ERROR.
func Dispatch(table map[domain.ActionType]HandlerFunc, ctx Context, action domain.ActionType, payload json.RawMessage) (Result, error) {
	var (
		res Result
		err error
	)
	if h, ok := table[action]; ok {
		res, err = h(ctx, payload)
	} else {
		err = fmt.Errorf("%w: unknown action %q", ErrBadPayload, action)
	}

	if err != nil && !res.HasEventFor(ctx.Side) {
		res.Send(ctx.Side, ErrorMessage(err))
	}
	return res, err
}
