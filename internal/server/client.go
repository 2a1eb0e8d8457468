package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"warplanes-server/internal/domain"
	"warplanes-server/internal/engine"
	"warplanes-server/internal/engine/handlers"
	"warplanes-server/pkg/api"
	"warplanes-server/pkg/logger"
)

// Настройки WebSocket
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client - посредник между Websocket и GameService. Одно соединение - одна сторона.
type Client struct {
	Game    *engine.GameService
	Conn    *websocket.Conn
	Send    chan api.ServerMessage
	MatchID string
	Side    domain.Side

	updates chan api.ServerMessage
	done    chan struct{} // закрывается, когда writePump вышел
	log     *logrus.Entry
}

func NewClient(game *engine.GameService, conn *websocket.Conn, matchID string) *Client {
	return &Client{
		Game:    game,
		Conn:    conn,
		Send:    make(chan api.ServerMessage, 256),
		MatchID: matchID,
		done:    make(chan struct{}),
		log:     logger.Log.WithField("match", matchID),
	}
}

// attach подписывает сторону в хабе. Вызывается горутиной матча до первых событий.
func (c *Client) attach(side domain.Side) {
	c.updates = c.Game.Hub.Register(c.MatchID, side)
}

// handshake занимает сторону (или возвращает по токену). Пишет в сокет напрямую,
// поэтому вызывается до запуска пампов.
func (c *Client) handshake(ctx context.Context, requested, token string) error {
	var (
		side domain.Side
		err  error
	)
	if token != "" {
		side, _, err = c.Game.Resume(ctx, c.MatchID, token, c.attach)
	} else {
		var want domain.Side
		want, err = domain.ParseSide(requested)
		if err == nil {
			side, _, err = c.Game.Join(ctx, c.MatchID, want, c.attach)
		} else {
			err = fmt.Errorf("%w: %w", handlers.ErrBadPayload, err)
		}
	}
	if err != nil {
		c.reject(err)
		return err
	}

	c.Side = side
	c.log = c.log.WithField("side", side)
	c.log.Info("Client connected")
	return nil
}

// reject отправляет ERROR и закрывает соединение с кодом 1008.
func (c *Client) reject(err error) {
	c.log.WithError(err).Info("Client rejected")

	_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	if werr := c.Conn.WriteJSON(handlers.ErrorMessage(err)); werr != nil {
		c.log.WithError(werr).Debug("write error message failed")
	}
	closeMsg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, handlers.ErrorCode(err))
	if werr := c.Conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(writeWait)); werr != nil {
		c.log.WithError(werr).Debug("write close message failed")
	}
	if cerr := c.Conn.Close(); cerr != nil {
		c.log.WithError(cerr).Debug("close after reject failed")
	}
}

// forward перекладывает события матча из хаба в writePump.
// Канал хаба закрывается при отписке или при вытеснении новым соединением.
func (c *Client) forward() {
	for msg := range c.updates {
		select {
		case c.Send <- msg:
		case <-c.done:
		}
	}
	close(c.Send)
}

// readPump читает команды от клиента
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		// Если сторону уже перехватило новое соединение, сопернику ничего не сообщаем
		if c.Game.Hub.Unregister(c.MatchID, c.Side, c.updates) {
			c.Game.Leave(c.MatchID, c.Side)
		}
		if err := c.Conn.Close(); err != nil {
			c.log.WithError(err).Debug("failed to close websocket connection")
		}
		c.log.Info("Client disconnected")
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.WithError(err).Warn("failed to set read deadline")
	}
	c.Conn.SetPongHandler(func(string) error {
		if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.log.WithError(err).Warn("failed to set pong read deadline")
		}
		return nil
	})

	for {
		var cmd api.ClientCommand
		if err := c.Conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Warn("WS read error")
			}
			return
		}
		// Ответ и ошибки клиент получает событиями матча
		if _, err := c.Game.ProcessCommand(ctx, c.MatchID, c.Side, cmd); err != nil {
			c.log.WithError(err).WithField("action", cmd.Action).Debug("command failed")
		}
	}
}

// writePump отправляет данные клиенту + Ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(c.done)
		if err := c.Conn.Close(); err != nil {
			c.log.WithError(err).Debug("failed to close websocket connection in writePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.Send:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set write deadline")
			}
			if !ok {
				if err := c.Conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.log.WithError(err).Debug("write close message failed")
				}
				return
			}
			if err := c.Conn.WriteJSON(message); err != nil {
				c.log.WithError(err).Debug("write json message failed")
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set ping write deadline")
			}
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.WithError(err).Debug("ping failed")
				return
			}
		}
	}
}
