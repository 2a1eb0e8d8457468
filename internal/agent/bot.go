package agent

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"warplanes-server/internal/domain"
	"warplanes-server/internal/engine"
	"warplanes-server/pkg/api"
	"warplanes-server/pkg/logger"
)

const (
	// Сколько случайных якорей пробовать на один самолет.
	maxPlacementTries = 500

	// Выстрел, который не дошел до матча, повторяется с растущей паузой.
	attackRetries = 3
	retryBackoff  = 100 * time.Millisecond

	// Если все попытки провалились, бот сверяется со снимком матча через паузу.
	refreshDelay = time.Second
)

// Bot представляет собой "Игрока-компьютера" (Headless Agent).
// Он подключается к матчу так же, как обычный игрок: подписывается в хабе,
// получает те же события и отправляет команды через тот же конвейер.
//
// Жизненный цикл:
//  1. NewBot -> Вход в матч за player2, получение личного канала (Inbox).
//  2. Run -> Расстановка двух самолетов, затем слушает Inbox.
//  3. Когда GAME_STARTED/TURN_CHANGED называет сторону бота, он стреляет
//     в случайную клетку, по которой еще не стрелял.
//  4. Если выстрел так и не дошел до матча, бот позже читает снимок и,
//     если ход все еще его, стреляет снова.
type Bot struct {
	MatchID string
	Side    domain.Side
	Service *engine.GameService
	Inbox   chan api.ServerMessage

	rng   *rand.Rand
	tried [domain.BoardSize][domain.BoardSize]bool
	log   *logrus.Entry

	shoot        func(ctx context.Context, x, y int) (domain.AttackOutcome, error)
	refreshDelay time.Duration
}

func NewBot(ctx context.Context, service *engine.GameService, matchID string, seed int64) (*Bot, error) {
	b := &Bot{
		MatchID: matchID,
		Service: service,
		rng:     rand.New(rand.NewSource(seed)),
	}

	side, _, err := service.Join(ctx, matchID, domain.SidePlayer2, func(side domain.Side) {
		// Бот регистрируется в хабе как обычный клиент
		b.Inbox = service.Hub.Register(matchID, side)
	})
	if err != nil {
		return nil, fmt.Errorf("bot join: %w", err)
	}

	b.Side = side
	b.shoot = func(ctx context.Context, x, y int) (domain.AttackOutcome, error) {
		return service.Attack(ctx, matchID, side, x, y)
	}
	b.refreshDelay = refreshDelay
	b.log = logger.Log.WithFields(logrus.Fields{"match": matchID, "side": side, "component": "bot"})
	b.log.Info("Bot joined")
	return b, nil
}

// Start создает бота и запускает его в отдельной горутине.
func Start(ctx context.Context, service *engine.GameService, matchID string, seed int64) (*Bot, error) {
	b, err := NewBot(ctx, service, matchID, seed)
	if err != nil {
		return nil, err
	}
	go b.Run(ctx)
	return b, nil
}

// Run запускает цикл жизни бота. Должен быть запущен в горутине.
func (b *Bot) Run(ctx context.Context) {
	defer func() {
		if b.Service.Hub.Unregister(b.MatchID, b.Side, b.Inbox) {
			b.Service.Leave(b.MatchID, b.Side)
		}
		b.log.Info("Bot shut down")
	}()

	if err := b.placeFleet(ctx); err != nil {
		b.log.WithError(err).Error("Bot failed to place planes")
		return
	}

	var refresh <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-refresh:
			refresh = nil
			snap, err := b.Service.Snapshot(ctx, b.MatchID, b.Side)
			switch {
			case err != nil:
				b.log.WithError(err).Warn("Bot failed to read match state")
				refresh = time.After(b.refreshDelay)
			case snap.Phase == domain.PhasePlaying && snap.Turn == b.Side:
				refresh = b.move(ctx)
			}
		case event, ok := <-b.Inbox:
			if !ok {
				return
			}
			switch event.Type {
			case api.MsgGameStarted, api.MsgTurnChanged:
				// Бот реагирует только тогда, когда матч сообщает: "Твой ход".
				if event.Turn == b.Side.String() {
					refresh = b.move(ctx)
				}
			case api.MsgGameOver:
				b.log.WithField("winner", event.Winner).Info("Bot saw game over")
				return
			}
		}
	}
}

// placeFleet ставит самолеты в случайные допустимые позиции.
// Локальное поле отсеивает заведомо неверные якоря, чтобы не гонять их через матч.
func (b *Bot) placeFleet(ctx context.Context) error {
	var local domain.Board

	for placed := 0; placed < domain.PiecesPerSide; placed++ {
		anchor, o, ok := b.pickPlacement(&local)
		if !ok {
			return fmt.Errorf("no valid placement after %d tries", maxPlacementTries)
		}
		if err := b.Service.PlacePiece(ctx, b.MatchID, b.Side, anchor.X, anchor.Y, o); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) pickPlacement(local *domain.Board) (domain.Cell, domain.Orientation, bool) {
	for try := 0; try < maxPlacementTries; try++ {
		anchor := domain.Cell{X: b.rng.Intn(domain.BoardSize), Y: b.rng.Intn(domain.BoardSize)}
		o := domain.Orientations[b.rng.Intn(len(domain.Orientations))]

		cells, vital := domain.Positions(anchor, o)
		if err := local.Place(cells[:], vital); err == nil {
			return anchor, o, true
		}
	}
	return domain.Cell{}, domain.OrientationUp, false
}

// move делает ход и возвращает таймер сверки, если выстрел не удался.
func (b *Bot) move(ctx context.Context) <-chan time.Time {
	if err := b.makeMove(ctx); err != nil && ctx.Err() == nil {
		return time.After(b.refreshDelay)
	}
	return nil
}

// makeMove - мозг бота: случайная клетка, по которой еще не стреляли.
// Ошибка значит, что выстрел не дошел до матча и клетка осталась свободной.
func (b *Bot) makeMove(ctx context.Context) error {
	target, ok := b.nextTarget()
	if !ok {
		b.log.Warn("Bot has no cells left to attack")
		return nil
	}

	var err error
	for attempt := 0; attempt < attackRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBackoff * time.Duration(attempt)):
			}
		}

		var outcome domain.AttackOutcome
		outcome, err = b.shoot(ctx, target.X, target.Y)
		if err == nil {
			b.log.WithFields(logrus.Fields{"cell": target, "outcome": outcome}).Debug("Bot attacked")
			return nil
		}
		if errors.Is(err, domain.ErrInvalidAttack) {
			// Матч отказал по правилам: ход уже не наш, повторять нечего
			b.tried[target.Y][target.X] = false
			b.log.WithError(err).Warn("Bot attack rejected")
			return nil
		}
		b.log.WithError(err).WithField("attempt", attempt+1).Warn("Bot attack failed")
	}

	b.tried[target.Y][target.X] = false
	return err
}

func (b *Bot) nextTarget() (domain.Cell, bool) {
	var free []domain.Cell
	for y := 0; y < domain.BoardSize; y++ {
		for x := 0; x < domain.BoardSize; x++ {
			if !b.tried[y][x] {
				free = append(free, domain.Cell{X: x, Y: y})
			}
		}
	}
	if len(free) == 0 {
		return domain.Cell{}, false
	}

	c := free[b.rng.Intn(len(free))]
	b.tried[c.Y][c.X] = true
	return c, true
}
