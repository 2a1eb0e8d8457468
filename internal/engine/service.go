package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"warplanes-server/internal/auth"
	"warplanes-server/internal/domain"
	"warplanes-server/internal/engine/handlers"
	"warplanes-server/internal/engine/handlers/actions"
	"warplanes-server/internal/network"
	"warplanes-server/pkg/api"
	"warplanes-server/pkg/logger"
)

// GameService - реестр матчей. Карта инстансов - единственное общее состояние,
// и RWMutex никогда не держится, пока инстанс выполняет команду.
type GameService struct {
	cfg Config

	Hub   *network.Broadcaster
	Seats *auth.SeatIssuer

	mu        sync.RWMutex
	instances map[string]*instanceHandle

	actionHandlers map[domain.ActionType]handlers.HandlerFunc

	rootCtx context.Context
	stopAll context.CancelFunc
	wg      sync.WaitGroup
}

type instanceHandle struct {
	*Instance
	cancel context.CancelFunc
}

func NewService(cfg Config) *GameService {
	ctx, cancel := context.WithCancel(context.Background())
	return &GameService{
		cfg:            cfg,
		Hub:            network.NewBroadcaster(),
		Seats:          auth.NewSeatIssuer(cfg.SeatSecret, cfg.SeatTTL),
		instances:      make(map[string]*instanceHandle),
		actionHandlers: actions.Table(),
		rootCtx:        ctx,
		stopAll:        cancel,
	}
}

// CreateMatch создает матч и запускает его горутину.
func (s *GameService) CreateMatch() string {
	id := uuid.NewString()
	inst := NewInstance(id, s.Hub, s.Seats, s.actionHandlers, s.cfg.QueueSize)
	ctx, cancel := context.WithCancel(s.rootCtx)

	s.mu.Lock()
	s.instances[id] = &instanceHandle{Instance: inst, cancel: cancel}
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		inst.Run(ctx)
	}()

	logger.Log.WithField("match", id).Info("Match created")
	return id
}

func (s *GameService) instance(id string) (*Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.instances[id]
	if !ok {
		return nil, fmt.Errorf("%w: match %s", domain.ErrNotFound, id)
	}
	return h.Instance, nil
}

// Join занимает слот. requested == SideNone - первый свободный.
// attach вызывается до первых сообщений, см. JoinRequest.
func (s *GameService) Join(ctx context.Context, id string, requested domain.Side, attach func(domain.Side)) (domain.Side, string, error) {
	return s.join(ctx, id, JoinRequest{Side: requested, Attach: attach})
}

// Resume возвращает соединение на сторону, указанную в токене места.
func (s *GameService) Resume(ctx context.Context, id, token string, attach func(domain.Side)) (domain.Side, string, error) {
	seat, err := s.Seats.Parse(token, id)
	if err != nil {
		return domain.SideNone, "", err
	}
	return s.join(ctx, id, JoinRequest{Side: seat.Side, Resume: true, Attach: attach})
}

func (s *GameService) join(ctx context.Context, id string, req JoinRequest) (domain.Side, string, error) {
	inst, err := s.instance(id)
	if err != nil {
		return domain.SideNone, "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.CommandTimeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return domain.SideNone, "", fmt.Errorf("join %s: %w", id, err)
	}

	req.Reply = make(chan JoinReply, 1)
	req.ticket = &ticket{}
	select {
	case inst.JoinChan <- req:
	case <-inst.Done():
		return domain.SideNone, "", fmt.Errorf("%w: match %s closed", domain.ErrNotFound, id)
	case <-ctx.Done():
		return domain.SideNone, "", fmt.Errorf("join %s: %w", id, ctx.Err())
	}

	r, err := await(ctx, inst, req.ticket, req.Reply)
	switch {
	case errors.Is(err, errInstanceClosed):
		return domain.SideNone, "", fmt.Errorf("%w: match %s closed", domain.ErrNotFound, id)
	case err != nil:
		return domain.SideNone, "", fmt.Errorf("join %s: %w", id, err)
	}
	return r.Side, r.Token, r.Err
}

// errInstanceClosed - горутина матча завершилась, не взяв запрос.
var errInstanceClosed = errors.New("instance closed")

// await ждет ответ инстанса на уже отправленный запрос. При отмене ctx запрос
// бросается, только если инстанс еще не начал его выполнять. Иначе ответ
// дожидается: инстанс отвечает сразу после выполнения.
func await[T any](ctx context.Context, inst *Instance, t *ticket, replies <-chan T) (T, error) {
	var zero T
	select {
	case r := <-replies:
		return r, nil
	case <-inst.Done():
	case <-ctx.Done():
		if t.abandon() {
			return zero, ctx.Err()
		}
		select {
		case r := <-replies:
			return r, nil
		case <-inst.Done():
		}
	}

	// Done закрывается после ответа на взятый запрос, ответ мог остаться в буфере
	select {
	case r := <-replies:
		return r, nil
	default:
		return zero, errInstanceClosed
	}
}

// Leave сообщает матчу, что сторона отключилась. Состояние матча не меняется.
func (s *GameService) Leave(id string, side domain.Side) {
	inst, err := s.instance(id)
	if err != nil {
		return
	}
	select {
	case inst.LeaveChan <- side:
	case <-inst.Done():
	case <-time.After(s.cfg.CommandTimeout):
		logger.Log.WithFields(logrus.Fields{"match": id, "side": side}).Warn("Leave notification timed out")
	}
}

// ProcessCommand принимает команду от внешнего мира (WebSocket, бот).
// Сторона берется из соединения, а не из сообщения.
func (s *GameService) ProcessCommand(ctx context.Context, id string, side domain.Side, cmd api.ClientCommand) (any, error) {
	return s.execute(ctx, id, domain.InternalCommand{
		Action:  domain.ParseAction(cmd.Action),
		Side:    side,
		Payload: cmd.Payload,
	})
}

func (s *GameService) execute(ctx context.Context, id string, cmd domain.InternalCommand) (any, error) {
	inst, err := s.instance(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.CommandTimeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s %s: %w", cmd.Action, id, err)
	}

	wrapper := InstanceCommand{Cmd: cmd, Reply: make(chan reply, 1), ticket: &ticket{}}
	select {
	case inst.CommandChan <- wrapper:
	case <-inst.Done():
		return nil, fmt.Errorf("%w: match %s closed", domain.ErrNotFound, id)
	case <-ctx.Done():
		return nil, fmt.Errorf("%s %s: %w", cmd.Action, id, ctx.Err())
	}

	r, err := await(ctx, inst, wrapper.ticket, wrapper.Reply)
	switch {
	case errors.Is(err, errInstanceClosed):
		return nil, fmt.Errorf("%w: match %s closed", domain.ErrNotFound, id)
	case err != nil:
		return nil, fmt.Errorf("%s %s: %w", cmd.Action, id, err)
	}
	return r.value, r.err
}

// PlacePiece ставит самолет через тот же конвейер, что и команды клиентов.
func (s *GameService) PlacePiece(ctx context.Context, id string, side domain.Side, x, y int, o domain.Orientation) error {
	payload, err := json.Marshal(api.PlacePlanePayload{X: x, Y: y, Orientation: o.String()})
	if err != nil {
		return err
	}
	_, err = s.execute(ctx, id, domain.InternalCommand{Action: domain.ActionPlacePlane, Side: side, Payload: payload})
	return err
}

// Attack стреляет по клетке соперника.
func (s *GameService) Attack(ctx context.Context, id string, side domain.Side, x, y int) (domain.AttackOutcome, error) {
	payload, err := json.Marshal(api.AttackPayload{X: x, Y: y})
	if err != nil {
		return domain.OutcomeMiss, err
	}
	value, err := s.execute(ctx, id, domain.InternalCommand{Action: domain.ActionAttack, Side: side, Payload: payload})
	if err != nil {
		return domain.OutcomeMiss, err
	}
	outcome, _ := value.(domain.AttackOutcome)
	return outcome, nil
}

// query выполняет чтение на горутине матча.
func (s *GameService) query(ctx context.Context, id string, fn func(*domain.Match)) error {
	inst, err := s.instance(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.CommandTimeout)
	defer cancel()

	finished := make(chan struct{})
	wrapped := func(m *domain.Match) {
		fn(m)
		close(finished)
	}

	select {
	case inst.queryChan <- wrapped:
	case <-inst.Done():
		return fmt.Errorf("%w: match %s closed", domain.ErrNotFound, id)
	case <-ctx.Done():
		return fmt.Errorf("query %s: %w", id, ctx.Err())
	}
	// Инстанс выполняет функцию синхронно сразу после приема
	<-finished
	return nil
}

// Snapshot - персональный снимок полей для стороны.
func (s *GameService) Snapshot(ctx context.Context, id string, side domain.Side) (domain.Snapshot, error) {
	var (
		snap    domain.Snapshot
		snapErr error
	)
	err := s.query(ctx, id, func(m *domain.Match) {
		if !m.Joined(side) {
			snapErr = fmt.Errorf("%w: %s", domain.ErrNotJoined, side)
			return
		}
		snap, snapErr = m.Snapshot(side)
	})
	if err != nil {
		return domain.Snapshot{}, err
	}
	return snap, snapErr
}

// Summary - публичная сводка матча.
func (s *GameService) Summary(ctx context.Context, id string) (domain.Summary, error) {
	var sum domain.Summary
	err := s.query(ctx, id, func(m *domain.Match) {
		sum = m.Summary()
	})
	return sum, err
}

// Summaries - сводки всех живых матчей, отсортированные по id.
func (s *GameService) Summaries(ctx context.Context) []domain.Summary {
	s.mu.RLock()
	ids := make([]string, 0, len(s.instances))
	for id := range s.instances {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)

	out := make([]domain.Summary, 0, len(ids))
	for _, id := range ids {
		// Матч мог быть удален между снятием списка и запросом
		if sum, err := s.Summary(ctx, id); err == nil {
			out = append(out, sum)
		}
	}
	return out
}

// Shutdown останавливает все инстансы и ждет их завершения.
func (s *GameService) Shutdown() {
	s.stopAll()
	s.wg.Wait()
	logger.Log.Info("All match instances stopped")
}
