package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"warplanes-server/internal/auth"
	"warplanes-server/internal/domain"
	"warplanes-server/internal/engine/handlers"
	"warplanes-server/internal/network"
	"warplanes-server/pkg/logger"
)

// reply - ответ инстанса на синхронную команду.
type reply struct {
	value any
	err   error
}

// Состояния ticket.
const (
	ticketPending int32 = iota
	ticketTaken
	ticketAbandoned
)

// ticket решает гонку между отменой у вызывающего и выполнением в инстансе:
// запрос либо выполнен и получит ответ, либо брошен и не выполнится вовсе.
// nil ticket всегда выполняется.
type ticket struct {
	state atomic.Int32
}

// take вызывает инстанс перед выполнением запроса.
func (t *ticket) take() bool {
	return t == nil || t.state.CompareAndSwap(ticketPending, ticketTaken)
}

// abandon вызывает ждущая сторона при отмене. false - инстанс уже выполняет запрос.
func (t *ticket) abandon() bool {
	return t != nil && t.state.CompareAndSwap(ticketPending, ticketAbandoned)
}

// InstanceCommand обертка, чтобы передать команду и вернуть ответ вызвавшему
type InstanceCommand struct {
	Cmd    domain.InternalCommand
	Reply  chan reply // буферизован на 1, инстанс никогда не блокируется на ответе
	ticket *ticket
}

// JoinRequest - вход новой стороны или возврат на занятую (Resume).
type JoinRequest struct {
	Side   domain.Side // желаемая сторона, для Resume - обязательная
	Resume bool

	// Attach вызывается на горутине инстанса до рассылки событий входа,
	// чтобы подписка в хабе успела получить PLAYER_ASSIGNED.
	Attach func(domain.Side)

	Reply  chan JoinReply
	ticket *ticket
}

type JoinReply struct {
	Side  domain.Side
	Token string
	Err   error
}

// Instance - один изолированный матч со своей горутиной.
// Только эта горутина трогает domain.Match, поэтому внутри матча блокировок нет.
type Instance struct {
	ID    string
	match *domain.Match

	// Каналы коммуникации
	CommandChan chan InstanceCommand     // Команды от игроков
	JoinChan    chan JoinRequest         // Вход игроков
	LeaveChan   chan domain.Side         // Отключение игроков
	queryChan   chan func(*domain.Match) // Чтение состояния без мутаций

	hub      *network.Broadcaster
	seats    *auth.SeatIssuer
	handlers map[domain.ActionType]handlers.HandlerFunc

	done       chan struct{}
	finishedAt atomic.Int64 // unix nano, 0 пока матч не закончен
}

func NewInstance(id string, hub *network.Broadcaster, seats *auth.SeatIssuer,
	table map[domain.ActionType]handlers.HandlerFunc, queueSize int) *Instance {
	return &Instance{
		ID:          id,
		match:       domain.NewMatch(id),
		CommandChan: make(chan InstanceCommand, queueSize),
		JoinChan:    make(chan JoinRequest, 2),
		LeaveChan:   make(chan domain.Side, 2),
		queryChan:   make(chan func(*domain.Match)),
		hub:         hub,
		seats:       seats,
		handlers:    table,
		done:        make(chan struct{}),
	}
}

// Run запускает цикл ЭТОГО матча. Завершается по отмене ctx.
func (i *Instance) Run(ctx context.Context) {
	defer close(i.done)
	logger.Log.WithField("match", i.ID).Info("Instance loop started")

	for {
		select {
		case <-ctx.Done():
			logger.Log.WithField("match", i.ID).Info("Instance loop stopped")
			return

		case req := <-i.JoinChan:
			if !req.ticket.take() {
				continue
			}
			i.handleJoin(req)

		case side := <-i.LeaveChan:
			i.logEvent(side, "Player disconnected")
			i.publish(handlers.LeaveEvents(side))

		case wrapper := <-i.CommandChan:
			if !wrapper.ticket.take() {
				continue
			}
			value, err := i.executeCommand(wrapper.Cmd)
			if wrapper.Reply != nil {
				wrapper.Reply <- reply{value: value, err: err}
			}

		case query := <-i.queryChan:
			query(i.match)
		}
	}
}

// Done закрывается, когда цикл инстанса завершился.
func (i *Instance) Done() <-chan struct{} {
	return i.done
}

// FinishedAt возвращает момент окончания матча. Безопасно из любой горутины.
func (i *Instance) FinishedAt() (time.Time, bool) {
	ns := i.finishedAt.Load()
	if ns == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, ns), true
}

func (i *Instance) handleJoin(req JoinRequest) {
	before := i.match.Phase()
	side, err := i.claim(req)
	if err != nil {
		req.Reply <- JoinReply{Err: err}
		return
	}

	token, err := i.seats.Issue(i.ID, side)
	if err != nil {
		req.Reply <- JoinReply{Err: err}
		return
	}

	if req.Attach != nil {
		req.Attach(side)
	}

	if req.Resume {
		i.logEvent(side, "Player reconnected")
		i.publish(handlers.ResumeEvents(i.match, side, token))
	} else {
		i.logEvent(side, "Player joined")
		i.publish(handlers.JoinEvents(i.match, side, before, token))
	}
	req.Reply <- JoinReply{Side: side, Token: token}
}

func (i *Instance) claim(req JoinRequest) (domain.Side, error) {
	if req.Resume {
		if !i.match.Joined(req.Side) {
			return domain.SideNone, fmt.Errorf("%w: %s has not joined", domain.ErrNotJoined, req.Side)
		}
		return req.Side, nil
	}
	return i.match.Join(req.Side)
}

// executeCommand выполняет команду в контексте матча и рассылает события
func (i *Instance) executeCommand(cmd domain.InternalCommand) (any, error) {
	ctx := handlers.Context{Match: i.match, Side: cmd.Side}

	var (
		result handlers.Result
		err    error
	)
	if i.match.Joined(cmd.Side) {
		result, err = handlers.Dispatch(i.handlers, ctx, cmd.Action, cmd.Payload)
	} else {
		err = fmt.Errorf("%w: %s", domain.ErrNotJoined, cmd.Side)
		result.Send(cmd.Side, handlers.ErrorMessage(err))
	}

	i.logCommand(cmd, err)
	i.publish(result)

	if i.match.Phase() == domain.PhaseFinished && i.finishedAt.Load() == 0 {
		i.finishedAt.Store(time.Now().UnixNano())
		winner, _ := i.match.Winner()
		i.logEvent(winner, "Match finished")
	}
	return result.Value, err
}

// publish доставляет события через хаб
func (i *Instance) publish(result handlers.Result) {
	for _, ev := range result.Events {
		if ev.To == domain.SideNone {
			i.hub.Broadcast(i.ID, ev.Msg)
			continue
		}
		i.hub.SendTo(i.ID, ev.To, ev.Msg)
	}
}
