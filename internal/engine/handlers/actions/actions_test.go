package actions

import (
	"encoding/json"
	"errors"
	"testing"

	"warplanes-server/internal/domain"
	"warplanes-server/internal/engine/handlers"
	"warplanes-server/pkg/api"
)

func joinedMatch(t *testing.T) *domain.Match {
	t.Helper()
	m := domain.NewMatch("m")
	for range domain.Sides {
		if _, err := m.Join(domain.SideNone); err != nil {
			t.Fatal(err)
		}
	}
	return m
}

func dispatch(t *testing.T, m *domain.Match, side domain.Side, action domain.ActionType, payload any) (handlers.Result, error) {
	t.Helper()
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		raw = b
	}
	return handlers.Dispatch(Table(), handlers.Context{Match: m, Side: side}, action, raw)
}

func place(t *testing.T, m *domain.Match, side domain.Side, x, y int, o string) handlers.Result {
	t.Helper()
	res, err := dispatch(t, m, side, domain.ActionPlacePlane, api.PlacePlanePayload{X: x, Y: y, Orientation: o})
	if err != nil {
		t.Fatalf("place (%d,%d) %s for %s: %v", x, y, o, side, err)
	}
	return res
}

func playingMatch(t *testing.T) *domain.Match {
	t.Helper()
	m := joinedMatch(t)
	for _, side := range domain.Sides {
		place(t, m, side, 5, 2, "up")
		place(t, m, side, 2, 7, "left")
	}
	return m
}

// types собирает типы сообщений, адресованных стороне (включая широковещательные).
func types(res handlers.Result, side domain.Side) []string {
	var out []string
	for _, ev := range res.Events {
		if ev.To == domain.SideNone || ev.To == side {
			out = append(out, ev.Msg.Type)
		}
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPlacePlane_Success(t *testing.T) {
	m := joinedMatch(t)

	res := place(t, m, domain.SidePlayer1, 5, 2, "UP")
	if len(res.Events) != 1 {
		t.Fatalf("events = %+v, want one PLANE_PLACED", res.Events)
	}
	ev := res.Events[0]
	if ev.To != domain.SidePlayer1 || ev.Msg.Type != api.MsgPlanePlaced {
		t.Fatalf("event = %+v", ev)
	}
	if !*ev.Msg.Success || *ev.Msg.PlanesCount != 1 {
		t.Errorf("success = %v, count = %d", *ev.Msg.Success, *ev.Msg.PlanesCount)
	}
}

func TestPlacePlane_LastPlaneStartsGame(t *testing.T) {
	m := joinedMatch(t)
	place(t, m, domain.SidePlayer1, 5, 2, "up")
	place(t, m, domain.SidePlayer1, 2, 7, "left")
	place(t, m, domain.SidePlayer2, 5, 2, "up")

	res := place(t, m, domain.SidePlayer2, 2, 7, "left")

	want := []string{api.MsgPlanePlaced, api.MsgGameStarted}
	if got := types(res, domain.SidePlayer2); !equal(got, want) {
		t.Fatalf("player2 messages = %v, want %v", got, want)
	}
	if got := types(res, domain.SidePlayer1); !equal(got, []string{api.MsgGameStarted}) {
		t.Fatalf("player1 messages = %v", got)
	}
	if turn := res.Events[1].Msg.Turn; turn != "player1" {
		t.Errorf("GAME_STARTED turn = %q, want player1", turn)
	}
}

func TestPlacePlane_Failures(t *testing.T) {
	tests := []struct {
		name     string
		payload  any
		wantErr  error
		wantCode string
		wantType string
	}{
		{
			name:     "overlap",
			payload:  api.PlacePlanePayload{X: 5, Y: 3, Orientation: "up"},
			wantErr:  domain.ErrOverlap,
			wantCode: handlers.CodeOverlap,
			wantType: api.MsgPlanePlaced,
		},
		{
			name:     "out of bounds",
			payload:  api.PlacePlanePayload{X: 0, Y: 0, Orientation: "up"},
			wantErr:  domain.ErrOutOfBounds,
			wantCode: handlers.CodeOutOfBounds,
			wantType: api.MsgPlanePlaced,
		},
		{
			name:     "bad orientation",
			payload:  api.PlacePlanePayload{X: 5, Y: 2, Orientation: "north"},
			wantErr:  handlers.ErrBadPayload,
			wantCode: handlers.CodeBadRequest,
			wantType: api.MsgError,
		},
		{
			name:     "not an object",
			payload:  []int{1, 2},
			wantErr:  handlers.ErrBadPayload,
			wantCode: handlers.CodeBadRequest,
			wantType: api.MsgError,
		},
		{
			name:     "missing payload",
			payload:  nil,
			wantErr:  handlers.ErrBadPayload,
			wantCode: handlers.CodeBadRequest,
			wantType: api.MsgError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := joinedMatch(t)
			place(t, m, domain.SidePlayer1, 5, 2, "up")

			res, err := dispatch(t, m, domain.SidePlayer1, domain.ActionPlacePlane, tt.payload)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if len(res.Events) != 1 {
				t.Fatalf("events = %+v, want exactly one reply", res.Events)
			}
			msg := res.Events[0].Msg
			if msg.Type != tt.wantType || msg.Code != tt.wantCode {
				t.Errorf("reply = %s/%s, want %s/%s", msg.Type, msg.Code, tt.wantType, tt.wantCode)
			}
			if m.PieceCount(domain.SidePlayer1) != 1 {
				t.Error("failed placement changed piece count")
			}
		})
	}
}

func TestAttack_EventsForBothSides(t *testing.T) {
	m := playingMatch(t)

	res, err := dispatch(t, m, domain.SidePlayer1, domain.ActionAttack, api.AttackPayload{X: 5, Y: 4})
	if err != nil {
		t.Fatal(err)
	}
	if res.Value != domain.OutcomeHit {
		t.Errorf("value = %v, want hit", res.Value)
	}

	for _, side := range domain.Sides {
		got := types(res, side)
		want := []string{api.MsgAttackResult, api.MsgTurnChanged}
		if !equal(got, want) {
			t.Errorf("%s messages = %v, want %v", side, got, want)
		}
	}

	for _, ev := range res.Events {
		if ev.Msg.Type != api.MsgAttackResult {
			continue
		}
		if *ev.Msg.IsAttacker != (ev.To == domain.SidePlayer1) {
			t.Errorf("isAttacker for %s = %v", ev.To, *ev.Msg.IsAttacker)
		}
		if ev.Msg.Result != "hit" || *ev.Msg.X != 5 || *ev.Msg.Y != 4 {
			t.Errorf("result = %+v", ev.Msg)
		}
	}
	if turn := res.Events[len(res.Events)-1].Msg.Turn; turn != "player2" {
		t.Errorf("TURN_CHANGED turn = %q", turn)
	}
}

func TestAttack_AlreadyAttackedOnlyTellsAttacker(t *testing.T) {
	m := playingMatch(t)
	if _, err := dispatch(t, m, domain.SidePlayer1, domain.ActionAttack, api.AttackPayload{X: 0, Y: 0}); err != nil {
		t.Fatal(err)
	}
	if _, err := dispatch(t, m, domain.SidePlayer2, domain.ActionAttack, api.AttackPayload{X: 0, Y: 0}); err != nil {
		t.Fatal(err)
	}

	res, err := dispatch(t, m, domain.SidePlayer1, domain.ActionAttack, api.AttackPayload{X: 0, Y: 0})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Events) != 1 || res.Events[0].To != domain.SidePlayer1 {
		t.Fatalf("events = %+v, want one reply to attacker", res.Events)
	}
	if msg := res.Events[0].Msg; *msg.Success || msg.Result != "already_attacked" {
		t.Errorf("reply = %+v", msg)
	}
	if m.Turn() != domain.SidePlayer1 {
		t.Errorf("turn = %v, want player1", m.Turn())
	}
}

func TestAttack_OutOfTurn(t *testing.T) {
	m := playingMatch(t)

	res, err := dispatch(t, m, domain.SidePlayer2, domain.ActionAttack, api.AttackPayload{X: 0, Y: 0})
	if !errors.Is(err, domain.ErrInvalidAttack) {
		t.Fatalf("error = %v, want ErrInvalidAttack", err)
	}
	if len(res.Events) != 1 || res.Events[0].Msg.Code != handlers.CodeInvalidAttack {
		t.Errorf("events = %+v", res.Events)
	}
}

func TestAttack_GameOver(t *testing.T) {
	m := playingMatch(t)
	moves := []struct {
		side domain.Side
		x, y int
	}{
		{domain.SidePlayer1, 5, 2},
		{domain.SidePlayer2, 2, 2},
	}
	for _, mv := range moves {
		if _, err := dispatch(t, m, mv.side, domain.ActionAttack, api.AttackPayload{X: mv.x, Y: mv.y}); err != nil {
			t.Fatal(err)
		}
	}

	res, err := dispatch(t, m, domain.SidePlayer1, domain.ActionAttack, api.AttackPayload{X: 2, Y: 7})
	if err != nil {
		t.Fatal(err)
	}
	last := res.Events[len(res.Events)-1].Msg
	if last.Type != api.MsgGameOver || last.Winner != "player1" {
		t.Errorf("last event = %+v, want GAME_OVER player1", last)
	}
	for _, ev := range res.Events {
		if ev.Msg.Type == api.MsgTurnChanged {
			t.Error("TURN_CHANGED after the winning shot")
		}
	}
}

func TestGetBoards(t *testing.T) {
	m := playingMatch(t)

	res, err := dispatch(t, m, domain.SidePlayer2, domain.ActionGetBoards, nil)
	if err != nil {
		t.Fatal(err)
	}
	snap, ok := res.Value.(domain.Snapshot)
	if !ok || snap.Side != domain.SidePlayer2 {
		t.Fatalf("value = %#v", res.Value)
	}

	msg := res.Events[0].Msg
	if msg.Type != api.MsgBoardsUpdate || msg.Phase != "playing" || msg.Turn != "player1" {
		t.Errorf("message = %+v", msg)
	}
	if msg.OwnBoard[2][5] != "head" {
		t.Errorf("own head = %q", msg.OwnBoard[2][5])
	}
	if msg.OpponentBoard[2][5] != "empty" {
		t.Errorf("opponent head leaked as %q", msg.OpponentBoard[2][5])
	}
}

func TestDispatch_UnknownAction(t *testing.T) {
	m := joinedMatch(t)
	res, err := dispatch(t, m, domain.SidePlayer1, domain.ActionUnknown, nil)
	if !errors.Is(err, handlers.ErrBadPayload) {
		t.Fatalf("error = %v, want ErrBadPayload", err)
	}
	if len(res.Events) != 1 || res.Events[0].Msg.Type != api.MsgError {
		t.Errorf("events = %+v", res.Events)
	}
}
