package domain

import "strings"

// ActionType - Внутренний числовой идентификатор команды игрока
type ActionType uint8

const (
	ActionUnknown ActionType = iota
	ActionPlacePlane
	ActionAttack
	ActionGetBoards
)

// Маппинг для конвертации JSON -> Domain
var actionStringToCmd = map[string]ActionType{
	"PLACE_PLANE": ActionPlacePlane,
	"ATTACK":      ActionAttack,
	"GET_BOARDS":  ActionGetBoards,
}

// Маппинг для логов Domain -> String
var actionCmdToString = map[ActionType]string{
	ActionPlacePlane: "PLACE_PLANE",
	ActionAttack:     "ATTACK",
	ActionGetBoards:  "GET_BOARDS",
}

// ParseAction конвертирует строку из JSON в ActionType
func ParseAction(s string) ActionType {
	// Регистр не важен: "place_plane" и "PLACE_PLANE" - одно действие
	upper := strings.ToUpper(s)
	if val, ok := actionStringToCmd[upper]; ok {
		return val
	}
	return ActionUnknown
}

// String реализует интерфейс Stringer (для fmt.Printf)
func (a ActionType) String() string {
	if val, ok := actionCmdToString[a]; ok {
		return val
	}
	return "UNKNOWN"
}
