package api

import (
	"encoding/json"
)

// --- КЛИЕНТ -> СЕРВЕР ---

// ClientCommand это корневой объект для всех сообщений от клиента к серверу.
// Сторона берется из соединения, а не из сообщения.
type ClientCommand struct {
	// Action название действия: PLACE_PLANE, ATTACK, GET_BOARDS (регистр не важен).
	Action string `json:"action"`

	// Payload JSON-объект с данными для действия. Его структура зависит от Action.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// --- Payloads ---

// PlacePlanePayload - постановка самолета. X, Y - клетка головы.
type PlacePlanePayload struct {
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Orientation string `json:"orientation"` // up, down, left, right
}

// AttackPayload - выстрел по клетке поля противника.
type AttackPayload struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// --- СЕРВЕР -> КЛИЕНТ ---

// Типы серверных сообщений.
const (
	MsgPlayerAssigned     = "PLAYER_ASSIGNED"
	MsgGameReady          = "GAME_READY"
	MsgPlanePlaced        = "PLANE_PLACED"
	MsgGameStarted        = "GAME_STARTED"
	MsgAttackResult       = "ATTACK_RESULT"
	MsgTurnChanged        = "TURN_CHANGED"
	MsgGameOver           = "GAME_OVER"
	MsgPlayerDisconnected = "PLAYER_DISCONNECTED"
	MsgPlayerReconnected  = "PLAYER_RECONNECTED"
	MsgBoardsUpdate       = "BOARDS_UPDATE"
	MsgError              = "ERROR"
)

// ServerMessage - единый конверт для всех сообщений сервера.
// Заполняются только поля, относящиеся к Type, остальные опускаются.
type ServerMessage struct {
	Type string `json:"type"`

	// Side - сторона получателя (PLAYER_ASSIGNED) или сторона, о которой событие.
	Side   string `json:"side,omitempty"`
	Phase  string `json:"phase,omitempty"`
	Turn   string `json:"turn,omitempty"`
	Winner string `json:"winner,omitempty"`

	// Token - токен места для переподключения. Только в PLAYER_ASSIGNED.
	Token string `json:"token,omitempty"`

	// Success - итог PLANE_PLACED и ATTACK_RESULT. Указатель, чтобы false не терялся.
	Success     *bool  `json:"success,omitempty"`
	Message     string `json:"message,omitempty"`
	PlanesCount *int   `json:"planesCount,omitempty"`

	// Result - miss, hit, head_hit или already_attacked.
	Result     string `json:"result,omitempty"`
	X          *int   `json:"x,omitempty"`
	Y          *int   `json:"y,omitempty"`
	IsAttacker *bool  `json:"isAttacker,omitempty"`

	// Поля в строках протокола, индексация board[y][x].
	OwnBoard      [][]string `json:"ownBoard,omitempty"`
	OpponentBoard [][]string `json:"opponentBoard,omitempty"`

	// Code - стабильный код ошибки для ERROR и неудачных ответов.
	Code string `json:"code,omitempty"`
}

// Ptr - короткий способ заполнить необязательные поля сообщения.
func Ptr[T any](v T) *T {
	return &v
}
