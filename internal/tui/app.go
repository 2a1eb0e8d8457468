package tui

import (
	"context"
	"errors"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"

	"warplanes-server/internal/domain"
	"warplanes-server/pkg/api"
	"warplanes-server/pkg/logger"
)

// ErrConnectionClosed - сервер закрыл соединение.
var ErrConnectionClosed = errors.New("connection closed")

// Sender - то, куда App отправляет команды. В проде это *Conn.
type Sender interface {
	Send(cmd api.ClientCommand) error
}

// App - цикл событий терминального клиента.
type App struct {
	screen   tcell.Screen
	renderer *Renderer
	state    *State
	out      Sender
	log      *logrus.Entry
}

func NewApp(screen tcell.Screen, out Sender, matchID string) *App {
	return &App{
		screen:   screen,
		renderer: NewRenderer(screen),
		state:    NewState(matchID),
		out:      out,
		log:      logger.Log.WithField("match", matchID),
	}
}

func (a *App) State() *State { return a.state }

// Run крутит цикл до выхода пользователя, закрытия соединения или отмены ctx.
// Сообщения сервера приходят в цикл как EventInterrupt, поэтому State
// меняется только в этой горутине.
func (a *App) Run(ctx context.Context, inbox <-chan api.ServerMessage) error {
	go func() {
		for msg := range inbox {
			_ = a.screen.PostEvent(tcell.NewEventInterrupt(msg))
		}
		_ = a.screen.PostEvent(tcell.NewEventInterrupt(ErrConnectionClosed))
	}()
	go func() {
		<-ctx.Done()
		_ = a.screen.PostEvent(tcell.NewEventInterrupt(ctx.Err()))
	}()

	for {
		a.renderer.RenderFrame(a.state)

		ev := a.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if err := a.HandleEvent(ev); err != nil {
			return err
		}
		if a.state.Quit {
			return nil
		}
	}
}

// HandleEvent обрабатывает одно событие экрана.
func (a *App) HandleEvent(ev tcell.Event) error {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()

	case *tcell.EventKey:
		if cmd, ok := a.state.HandleKey(ev); ok {
			a.send(cmd)
		}

	case *tcell.EventInterrupt:
		switch data := ev.Data().(type) {
		case api.ServerMessage:
			if a.state.Apply(data) {
				a.send(api.ClientCommand{Action: domain.ActionGetBoards.String()})
			}
		case error:
			return data
		}
	}
	return nil
}

func (a *App) send(cmd api.ClientCommand) {
	if err := a.out.Send(cmd); err != nil {
		a.log.WithError(err).WithField("action", cmd.Action).Warn("Send failed")
		a.state.Status = "Send failed: " + err.Error()
	}
}
