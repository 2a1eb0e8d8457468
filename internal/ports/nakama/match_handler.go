package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"

	"warplanes-server/internal/domain"
	"warplanes-server/internal/engine/handlers"
	"warplanes-server/internal/engine/handlers/actions"
)

// opActions переводит op code клиента в команду домена.
var opActions = map[int64]domain.ActionType{
	OpPlacePlane: domain.ActionPlacePlane,
	OpAttack:     domain.ActionAttack,
	OpGetBoards:  domain.ActionGetBoards,
}

// MatchState - состояние матча внутри рантайма Nakama. Рантайм сам
// сериализует вызовы обработчика, поэтому Match трогается из одного потока.
type MatchState struct {
	Match     *domain.Match
	Seats     map[domain.Side]string      // сторона -> user id
	Presences map[string]runtime.Presence // user id -> активное присутствие
	Handlers  map[domain.ActionType]handlers.HandlerFunc
}

// MatchLabel - метка для MatchList: "+label.open:>=1 +label.game:warplanes".
type MatchLabel struct {
	Game  string `json:"game"`
	Open  int    `json:"open"`
	Phase string `json:"phase"`
}

func (ms *MatchState) openSeats() int {
	open := 0
	for _, side := range domain.Sides {
		if !ms.Match.Joined(side) {
			open++
		}
	}
	return open
}

// sideOf возвращает сторону пользователя или SideNone.
func (ms *MatchState) sideOf(userID string) domain.Side {
	for side, id := range ms.Seats {
		if id == userID {
			return side
		}
	}
	return domain.SideNone
}

func (ms *MatchState) label() string {
	b, _ := json.Marshal(MatchLabel{
		Game:  "warplanes",
		Open:  ms.openSeats(),
		Phase: ms.Match.Phase().String(),
	})
	return string(b)
}

// NewMatch - фабрика для RegisterMatch.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return newMatchHandler(), nil
}

type matchHandler struct{}

func newMatchHandler() *matchHandler { return &matchHandler{} }

// MatchInit вызывается при создании матча.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	logger.Debug("MatchInit: match %s", matchID)

	state := &MatchState{
		Match:     domain.NewMatch(matchID),
		Seats:     make(map[domain.Side]string),
		Presences: make(map[string]runtime.Presence),
		Handlers:  actions.Table(),
	}
	return state, tickRate, state.label()
}

// MatchJoinAttempt пускает владельца занятого места обратно, новых - только при свободном слоте.
func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	ms, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}
	if ms.sideOf(presence.GetUserId()) != domain.SideNone {
		return ms, true, ""
	}
	if ms.openSeats() == 0 {
		return ms, false, "Match full"
	}
	return ms, true, ""
}

// MatchJoin занимает стороны за новыми игроками и возобновляет сессии вернувшихся.
func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	ms, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		ms.Presences[userID] = p

		if side := ms.sideOf(userID); side != domain.SideNone {
			logger.Debug("MatchJoin: user %s resumed %s", userID, side)
			mh.deliver(ms, dispatcher, logger, handlers.ResumeEvents(ms.Match, side, ""))
			continue
		}

		before := ms.Match.Phase()
		side, err := ms.Match.Join(domain.SideNone)
		if err != nil {
			// Слот успели занять между JoinAttempt и Join
			logger.Warn("MatchJoin: user %s rejected: %v", userID, err)
			mh.sendTo(dispatcher, logger, p, handlers.ErrorMessage(err))
			delete(ms.Presences, userID)
			if err := dispatcher.MatchKick([]runtime.Presence{p}); err != nil {
				logger.Warn("MatchJoin: kick %s: %v", userID, err)
			}
			continue
		}
		ms.Seats[side] = userID
		logger.Info("MatchJoin: user %s took %s", userID, side)
		mh.deliver(ms, dispatcher, logger, handlers.JoinEvents(ms.Match, side, before, ""))
	}

	mh.updateLabel(ms, dispatcher, logger)
	return ms
}

// MatchLeave освобождает присутствие, но не место: игрок может вернуться.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	ms, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		delete(ms.Presences, userID)
		if side := ms.sideOf(userID); side != domain.SideNone {
			logger.Debug("MatchLeave: user %s left %s", userID, side)
			mh.deliver(ms, dispatcher, logger, handlers.LeaveEvents(side))
		}
	}
	return ms
}

// MatchLoop применяет команды по порядку и завершает пустой законченный матч.
func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	ms, ok := state.(*MatchState)
	if !ok {
		return state
	}

	phase := ms.Match.Phase()
	for _, msg := range messages {
		mh.handleMessage(ms, dispatcher, logger, msg)
	}
	if ms.Match.Phase() != phase {
		mh.updateLabel(ms, dispatcher, logger)
	}

	if ms.Match.Phase() == domain.PhaseFinished && len(ms.Presences) == 0 {
		logger.Info("MatchLoop: finished match is empty, terminating")
		return nil
	}
	return ms
}

func (mh *matchHandler) handleMessage(ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	side := ms.sideOf(msg.GetUserId())
	if side == domain.SideNone {
		mh.sendTo(dispatcher, logger, msg, handlers.ErrorMessage(domain.ErrNotJoined))
		return
	}

	action, ok := opActions[msg.GetOpCode()]
	if !ok {
		logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		action = domain.ActionUnknown
	}

	res, err := handlers.Dispatch(ms.Handlers, handlers.Context{Match: ms.Match, Side: side}, action, msg.GetData())
	if err != nil {
		logger.Debug("MatchLoop: %s %s rejected: %v", side, action, err)
	}
	mh.deliver(ms, dispatcher, logger, res)
}

// deliver рассылает события подключенным сторонам. Отключенная сторона
// пропускает сообщения и после возврата получает снимок.
func (mh *matchHandler) deliver(ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, res handlers.Result) {
	for _, ev := range res.Events {
		data, err := json.Marshal(ev.Msg)
		if err != nil {
			logger.Error("deliver: marshal %s: %v", ev.Msg.Type, err)
			continue
		}

		var targets []runtime.Presence
		if ev.To == domain.SideNone {
			for _, side := range domain.Sides {
				if p := ms.presenceOf(side); p != nil {
					targets = append(targets, p)
				}
			}
		} else if p := ms.presenceOf(ev.To); p != nil {
			targets = []runtime.Presence{p}
		}
		if len(targets) == 0 {
			continue
		}

		if err := dispatcher.BroadcastMessage(OpServerMessage, data, targets, nil, true); err != nil {
			logger.Error("deliver: broadcast %s: %v", ev.Msg.Type, err)
		}
	}
}

func (ms *MatchState) presenceOf(side domain.Side) runtime.Presence {
	userID, ok := ms.Seats[side]
	if !ok {
		return nil
	}
	return ms.Presences[userID]
}

func (mh *matchHandler) sendTo(dispatcher runtime.MatchDispatcher, logger runtime.Logger, p runtime.Presence, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("sendTo: marshal: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpServerMessage, data, []runtime.Presence{p}, nil, true); err != nil {
		logger.Error("sendTo: broadcast: %v", err)
	}
}

func (mh *matchHandler) updateLabel(ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if err := dispatcher.MatchLabelUpdate(ms.label()); err != nil {
		logger.Warn("updateLabel: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: grace %d seconds", graceSeconds)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
