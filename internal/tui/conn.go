package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"warplanes-server/pkg/api"
)

// Conn - клиентская сторона WebSocket соединения с сервером матча.
type Conn struct {
	ws *websocket.Conn
	mu sync.Mutex // gorilla допускает только одного писателя
}

// wsURL собирает адрес /ws/{id} с необязательными side и token.
func wsURL(serverURL, matchID, side, token string) (string, error) {
	u, err := url.Parse(strings.TrimRight(serverURL, "/"))
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path += "/ws/" + url.PathEscape(matchID)

	q := url.Values{}
	if side != "" {
		q.Set("side", side)
	}
	if token != "" {
		q.Set("token", token)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// httpURL переводит ws(s):// адрес сервера в http(s)://.
func httpURL(serverURL string) string {
	switch {
	case strings.HasPrefix(serverURL, "ws://"):
		return "http://" + strings.TrimPrefix(serverURL, "ws://")
	case strings.HasPrefix(serverURL, "wss://"):
		return "https://" + strings.TrimPrefix(serverURL, "wss://")
	}
	return serverURL
}

func Dial(ctx context.Context, serverURL, matchID, side, token string) (*Conn, error) {
	addr, err := wsURL(serverURL, matchID, side, token)
	if err != nil {
		return nil, err
	}
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Conn{ws: ws}, nil
}

func (c *Conn) Send(cmd api.ClientCommand) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(cmd)
}

// Listen читает сообщения сервера, пока соединение живо, и отдает их в out.
// Закрывает out при выходе.
func (c *Conn) Listen(out chan<- api.ServerMessage) error {
	defer close(out)
	for {
		var msg api.ServerMessage
		if err := c.ws.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return err
		}
		out <- msg
	}
}

func (c *Conn) Close() error {
	c.mu.Lock()
	_ = c.ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	c.mu.Unlock()
	return c.ws.Close()
}

// CreateMatch просит сервер создать матч и возвращает его id.
func CreateMatch(ctx context.Context, serverURL string, vsBot bool) (string, error) {
	body, err := json.Marshal(map[string]bool{"vsBot": vsBot})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(httpURL(serverURL), "/")+"/game/create", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("create match: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("create match: status %s", resp.Status)
	}
	var out struct {
		GameID string `json:"gameId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode create response: %w", err)
	}
	return out.GameID, nil
}
