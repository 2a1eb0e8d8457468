package tui

import (
	"encoding/json"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"warplanes-server/internal/domain"
	"warplanes-server/pkg/api"
)

// State - все, что клиент знает о матче. Меняется только из цикла App,
// отрисовка читает его целиком.
type State struct {
	MatchID string
	Side    string
	Token   string
	Phase   string
	Turn    string
	Winner  string

	Own      [][]string
	Opponent [][]string
	Planes   int

	Cursor      domain.Cell
	Orientation domain.Orientation

	Status string
	Quit   bool
}

func NewState(matchID string) *State {
	return &State{
		MatchID:  matchID,
		Phase:    "connecting",
		Own:      emptyBoard(),
		Opponent: emptyBoard(),
		Cursor:   domain.Cell{X: domain.BoardSize / 2, Y: domain.BoardSize / 2},
	}
}

func emptyBoard() [][]string {
	rows := make([][]string, domain.BoardSize)
	for y := range rows {
		rows[y] = make([]string, domain.BoardSize)
		for x := range rows[y] {
			rows[y][x] = domain.CellEmpty.String()
		}
	}
	return rows
}

// MyTurn - можно ли сейчас стрелять.
func (s *State) MyTurn() bool {
	return s.Phase == domain.PhasePlaying.String() && s.Turn == s.Side
}

// Apply применяет сообщение сервера. Возвращает true, если стоит перезапросить поля.
func (s *State) Apply(msg api.ServerMessage) bool {
	switch msg.Type {
	case api.MsgPlayerAssigned:
		s.Side, s.Token, s.Phase = msg.Side, msg.Token, msg.Phase
		s.Status = fmt.Sprintf("You are %s", msg.Side)
		return true

	case api.MsgGameReady:
		s.Phase = msg.Phase
		s.Status = "Opponent joined, place your planes"

	case api.MsgPlanePlaced:
		if msg.PlanesCount != nil {
			s.Planes = *msg.PlanesCount
		}
		s.Status = msg.Message
		return msg.Success != nil && *msg.Success

	case api.MsgGameStarted:
		s.Phase, s.Turn = msg.Phase, msg.Turn
		s.Status = "Battle started"

	case api.MsgAttackResult:
		if msg.Result == domain.OutcomeAlreadyAttacked.String() {
			s.Status = "Cell already attacked, fire again"
			return false
		}
		if msg.Success == nil || !*msg.Success || msg.X == nil || msg.Y == nil {
			s.Status = "Attack rejected: " + msg.Message
			return false
		}
		board := s.Own
		who := "Opponent"
		if msg.IsAttacker != nil && *msg.IsAttacker {
			board, who = s.Opponent, "You"
		}
		if inBoard(*msg.X, *msg.Y) {
			board[*msg.Y][*msg.X] = resultCell(msg.Result)
		}
		s.Status = fmt.Sprintf("%s fired at (%d,%d): %s", who, *msg.X, *msg.Y, msg.Result)

	case api.MsgTurnChanged:
		s.Turn = msg.Turn

	case api.MsgGameOver:
		s.Phase, s.Winner, s.Turn = domain.PhaseFinished.String(), msg.Winner, ""
		if msg.Winner == s.Side {
			s.Status = "Victory! Press q to quit"
		} else {
			s.Status = "Defeat. Press q to quit"
		}
		return true

	case api.MsgPlayerDisconnected:
		s.Status = msg.Side + " disconnected"

	case api.MsgPlayerReconnected:
		s.Status = msg.Side + " reconnected"

	case api.MsgBoardsUpdate:
		if len(msg.OwnBoard) == domain.BoardSize {
			s.Own = msg.OwnBoard
		}
		if len(msg.OpponentBoard) == domain.BoardSize {
			s.Opponent = msg.OpponentBoard
		}
		s.Phase, s.Turn = msg.Phase, msg.Turn

	case api.MsgError:
		s.Status = fmt.Sprintf("Error %s: %s", msg.Code, msg.Message)
	}
	return false
}

func inBoard(x, y int) bool {
	return domain.Cell{X: x, Y: y}.InBounds()
}

func resultCell(result string) string {
	switch result {
	case domain.OutcomeVitalHit.String():
		return domain.CellVitalHit.String()
	case domain.OutcomeHit.String():
		return domain.CellHit.String()
	default:
		return domain.CellMiss.String()
	}
}

// HandleKey переводит нажатие в команду серверу. ok == false - команды нет.
func (s *State) HandleKey(ev *tcell.EventKey) (cmd api.ClientCommand, ok bool) {
	switch ev.Key() {
	case tcell.KeyUp:
		s.moveCursor(0, -1)
	case tcell.KeyDown:
		s.moveCursor(0, 1)
	case tcell.KeyLeft:
		s.moveCursor(-1, 0)
	case tcell.KeyRight:
		s.moveCursor(1, 0)
	case tcell.KeyEscape, tcell.KeyCtrlC:
		s.Quit = true
	case tcell.KeyEnter:
		return s.fire()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			s.Quit = true
		case 'r', 'R':
			s.Orientation = domain.Orientations[(int(s.Orientation)+1)%len(domain.Orientations)]
		case 'b', 'B':
			return api.ClientCommand{Action: domain.ActionGetBoards.String()}, true
		}
	}
	return api.ClientCommand{}, false
}

func (s *State) moveCursor(dx, dy int) {
	next := domain.Cell{X: s.Cursor.X + dx, Y: s.Cursor.Y + dy}
	if next.InBounds() {
		s.Cursor = next
	}
}

// fire - Enter: в расстановке ставит самолет, в бою стреляет.
func (s *State) fire() (api.ClientCommand, bool) {
	var (
		action  domain.ActionType
		payload any
	)
	switch {
	case s.Phase == domain.PhaseFinished.String():
		return api.ClientCommand{}, false
	case s.Phase == domain.PhasePlaying.String():
		if !s.MyTurn() {
			s.Status = "Wait for your turn"
			return api.ClientCommand{}, false
		}
		action, payload = domain.ActionAttack, api.AttackPayload{X: s.Cursor.X, Y: s.Cursor.Y}
	default:
		if s.Planes >= domain.PiecesPerSide {
			s.Status = "All planes placed, waiting for opponent"
			return api.ClientCommand{}, false
		}
		action = domain.ActionPlacePlane
		payload = api.PlacePlanePayload{X: s.Cursor.X, Y: s.Cursor.Y, Orientation: s.Orientation.String()}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		s.Status = err.Error()
		return api.ClientCommand{}, false
	}
	return api.ClientCommand{Action: action.String(), Payload: raw}, true
}
