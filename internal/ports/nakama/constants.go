package nakama

const (
	// RpcCreateMatch - id RPC, которым клиент создает новый матч.
	RpcCreateMatch = "create_match"

	// MatchNameWarplanes - имя авторитетного обработчика матча в Nakama.
	MatchNameWarplanes = "warplanes_match"
)

// Op codes. Клиент шлет payload команды как есть, сервер отвечает
// api.ServerMessage в JSON под одним кодом.
const (
	// Client -> Server
	OpPlacePlane int64 = 1
	OpAttack     int64 = 2
	OpGetBoards  int64 = 3

	// Server -> Client
	OpServerMessage int64 = 100
)

// Ходы пошаговые, частый тик не нужен.
const tickRate = 5
