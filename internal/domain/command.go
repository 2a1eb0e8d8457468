package domain

import "encoding/json"

// InternalCommand - команда для движка матча.
// Использует ActionType вместо string.
type InternalCommand struct {
	Action  ActionType      // Что сделать
	Side    Side            // Кто делает
	Payload json.RawMessage // Сырые данные (парсятся хендлером)
}
