package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/heroiclabs/nakama-common/runtime"

	"warplanes-server/internal/domain"
	"warplanes-server/internal/engine/handlers"
	"warplanes-server/pkg/api"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

// warnLogger keeps Warn lines so tests can check what was reported.
type warnLogger struct {
	noopLogger
	warnings *[]string
}

func (l warnLogger) Warn(format string, v ...interface{}) {
	*l.warnings = append(*l.warnings, fmt.Sprintf(format, v...))
}

type sentMessage struct {
	opCode int64
	data   []byte
	to     []string
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	sent       []sentMessage
	labels     []string
	kickCount  int
	kickErr    error
	broadcasts int
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.broadcasts++
	to := make([]string, 0, len(presences))
	for _, p := range presences {
		to = append(to, p.GetUserId())
	}
	md.sent = append(md.sent, sentMessage{opCode: opCode, data: append([]byte(nil), data...), to: to})
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	md.kickCount++
	return md.kickErr
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labels = append(md.labels, label)
	return nil
}

// messagesFor decodes everything delivered to userID, in order.
func (md *mockDispatcher) messagesFor(t *testing.T, userID string) []api.ServerMessage {
	t.Helper()
	var out []api.ServerMessage
	for _, s := range md.sent {
		for _, id := range s.to {
			if id != userID {
				continue
			}
			if s.opCode != OpServerMessage {
				t.Fatalf("unexpected op code %d", s.opCode)
			}
			var msg api.ServerMessage
			if err := json.Unmarshal(s.data, &msg); err != nil {
				t.Fatal(err)
			}
			out = append(out, msg)
		}
	}
	return out
}

func (md *mockDispatcher) reset() { md.sent = nil }

// testPresence overrides only what the handler reads.
type testPresence struct {
	runtime.Presence
	userID string
}

func (p testPresence) GetUserId() string    { return p.userID }
func (p testPresence) GetSessionId() string { return "session-" + p.userID }

type testData struct {
	runtime.MatchData
	userID string
	opCode int64
	data   []byte
}

func (d testData) GetUserId() string { return d.userID }
func (d testData) GetOpCode() int64  { return d.opCode }
func (d testData) GetData() []byte   { return d.data }

func presence(userID string) runtime.Presence { return testPresence{userID: userID} }

func command(t *testing.T, userID string, op int64, payload any) runtime.MatchData {
	t.Helper()
	var raw []byte
	if payload != nil {
		var err error
		if raw, err = json.Marshal(payload); err != nil {
			t.Fatal(err)
		}
	}
	return testData{userID: userID, opCode: op, data: raw}
}

func types(msgs []api.ServerMessage) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Type
	}
	return out
}

func hasType(msgs []api.ServerMessage, typ string) bool {
	for _, m := range msgs {
		if m.Type == typ {
			return true
		}
	}
	return false
}

type harness struct {
	t     *testing.T
	mh    *matchHandler
	ctx   context.Context
	disp  *mockDispatcher
	state interface{}
	tick  int64
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.WithValue(context.Background(), runtime.RUNTIME_CTX_MATCH_ID, "match-1")
	mh := newMatchHandler()
	state, rate, label := mh.MatchInit(ctx, noopLogger{}, (*sql.DB)(nil), nil, nil)
	if rate != tickRate {
		t.Fatalf("tick rate = %d", rate)
	}
	var l MatchLabel
	if err := json.Unmarshal([]byte(label), &l); err != nil {
		t.Fatal(err)
	}
	if l.Open != 2 || l.Phase != "waiting" || l.Game != "warplanes" {
		t.Fatalf("initial label = %+v", l)
	}
	return &harness{t: t, mh: mh, ctx: ctx, disp: &mockDispatcher{}, state: state}
}

func (h *harness) attempt(userID string) (bool, string) {
	h.t.Helper()
	state, ok, reason := h.mh.MatchJoinAttempt(h.ctx, noopLogger{}, nil, nil, h.disp, h.tick, h.state, presence(userID), nil)
	h.state = state
	return ok, reason
}

func (h *harness) join(userIDs ...string) {
	h.t.Helper()
	ps := make([]runtime.Presence, len(userIDs))
	for i, id := range userIDs {
		ps[i] = presence(id)
	}
	h.state = h.mh.MatchJoin(h.ctx, noopLogger{}, nil, nil, h.disp, h.tick, h.state, ps)
}

func (h *harness) leave(userIDs ...string) {
	h.t.Helper()
	ps := make([]runtime.Presence, len(userIDs))
	for i, id := range userIDs {
		ps[i] = presence(id)
	}
	h.state = h.mh.MatchLeave(h.ctx, noopLogger{}, nil, nil, h.disp, h.tick, h.state, ps)
}

func (h *harness) loop(msgs ...runtime.MatchData) interface{} {
	h.t.Helper()
	h.tick++
	h.state = h.mh.MatchLoop(h.ctx, noopLogger{}, nil, nil, h.disp, h.tick, h.state, msgs)
	return h.state
}

func (h *harness) matchState() *MatchState {
	h.t.Helper()
	ms, ok := h.state.(*MatchState)
	if !ok {
		h.t.Fatalf("state is %T", h.state)
	}
	return ms
}

func (h *harness) placeFleets() {
	h.t.Helper()
	for _, user := range []string{"alice", "bob"} {
		h.loop(
			command(h.t, user, OpPlacePlane, api.PlacePlanePayload{X: 5, Y: 2, Orientation: "up"}),
			command(h.t, user, OpPlacePlane, api.PlacePlanePayload{X: 2, Y: 7, Orientation: "left"}),
		)
	}
}

func TestMatchJoinAttempt(t *testing.T) {
	h := newHarness(t)

	if ok, _ := h.attempt("alice"); !ok {
		t.Fatal("first player rejected")
	}
	h.join("alice")
	if ok, _ := h.attempt("bob"); !ok {
		t.Fatal("second player rejected")
	}
	h.join("bob")

	if ok, reason := h.attempt("carol"); ok || reason != "Match full" {
		t.Fatalf("third player: ok=%v reason=%q", ok, reason)
	}
	if ok, _ := h.attempt("alice"); !ok {
		t.Fatal("seated player must be able to come back")
	}
}

func TestMatchJoin_AssignsSidesAndAnnouncesReady(t *testing.T) {
	h := newHarness(t)
	h.join("alice")
	h.join("bob")

	alice := h.disp.messagesFor(t, "alice")
	bob := h.disp.messagesFor(t, "bob")

	if len(alice) == 0 || alice[0].Type != api.MsgPlayerAssigned || alice[0].Side != "player1" {
		t.Fatalf("alice got %v", types(alice))
	}
	if alice[0].Token != "" {
		t.Error("nakama sessions do not carry seat tokens")
	}
	if len(bob) == 0 || bob[0].Type != api.MsgPlayerAssigned || bob[0].Side != "player2" {
		t.Fatalf("bob got %v", types(bob))
	}
	if !hasType(alice, api.MsgGameReady) || !hasType(bob, api.MsgGameReady) {
		t.Errorf("GAME_READY missing: alice %v, bob %v", types(alice), types(bob))
	}

	var l MatchLabel
	if err := json.Unmarshal([]byte(h.disp.labels[len(h.disp.labels)-1]), &l); err != nil {
		t.Fatal(err)
	}
	if l.Open != 0 || l.Phase != "placing" {
		t.Errorf("label after join = %+v", l)
	}
}

func TestMatchLoop_FullGame(t *testing.T) {
	h := newHarness(t)
	h.join("alice", "bob")
	h.placeFleets()

	if !hasType(h.disp.messagesFor(t, "bob"), api.MsgGameStarted) {
		t.Fatal("GAME_STARTED not delivered")
	}
	h.disp.reset()

	h.loop(command(t, "alice", OpAttack, api.AttackPayload{X: 5, Y: 2}))
	h.loop(command(t, "bob", OpAttack, api.AttackPayload{X: 0, Y: 0}))
	h.loop(command(t, "alice", OpAttack, api.AttackPayload{X: 2, Y: 7}))

	bob := h.disp.messagesFor(t, "bob")
	last := bob[len(bob)-1]
	if last.Type != api.MsgGameOver || last.Winner != "player1" {
		t.Fatalf("bob last message = %+v (all %v)", last, types(bob))
	}

	var l MatchLabel
	if err := json.Unmarshal([]byte(h.disp.labels[len(h.disp.labels)-1]), &l); err != nil {
		t.Fatal(err)
	}
	if l.Phase != "finished" {
		t.Errorf("label phase = %q", l.Phase)
	}

	// Законченный матч живет, пока в нем кто-то есть
	if h.loop() == nil {
		t.Fatal("match terminated while players are present")
	}
	h.leave("alice", "bob")
	if h.loop() != nil {
		t.Fatal("empty finished match must terminate")
	}
}

func TestMatchLoop_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		op       int64
		payload  any
		wantType string
		wantCode string
	}{
		{"unknown opcode", "alice", 42, nil, api.MsgError, "BAD_REQUEST"},
		{"not seated", "mallory", OpGetBoards, nil, api.MsgError, "NOT_JOINED"},
		{"bad payload", "alice", OpPlacePlane, map[string]string{"orientation": "sideways"}, api.MsgError, "BAD_REQUEST"},
		{"attack before play", "alice", OpAttack, api.AttackPayload{X: 1, Y: 1}, api.MsgAttackResult, "INVALID_ATTACK"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.join("alice", "bob")
			h.disp.reset()

			h.loop(command(t, tt.user, tt.op, tt.payload))

			msgs := h.disp.messagesFor(t, tt.user)
			if len(msgs) != 1 {
				t.Fatalf("got %v, want one reply", types(msgs))
			}
			if msgs[0].Type != tt.wantType || msgs[0].Code != tt.wantCode {
				t.Errorf("reply = %s/%s, want %s/%s", msgs[0].Type, msgs[0].Code, tt.wantType, tt.wantCode)
			}
			if tt.user == "alice" && len(h.disp.messagesFor(t, "bob")) != 0 {
				t.Error("opponent must not see a rejected command")
			}
		})
	}
}

func TestMatchLeaveAndResume(t *testing.T) {
	h := newHarness(t)
	h.join("alice", "bob")
	h.loop(command(t, "bob", OpPlacePlane, api.PlacePlanePayload{X: 5, Y: 2, Orientation: "up"}))
	h.disp.reset()

	h.leave("bob")
	alice := h.disp.messagesFor(t, "alice")
	if len(alice) != 1 || alice[0].Type != api.MsgPlayerDisconnected || alice[0].Side != "player2" {
		t.Fatalf("alice got %v", types(alice))
	}
	if ms := h.matchState(); ms.Seats[domain.SidePlayer2] != "bob" || ms.Match.PieceCount(domain.SidePlayer2) != 1 {
		t.Fatal("leaving must keep the seat and the board")
	}

	// Сообщения, пока bob отсутствует, ему не отправляются
	h.disp.reset()
	h.loop(command(t, "alice", OpPlacePlane, api.PlacePlanePayload{X: 5, Y: 2, Orientation: "up"}))
	if len(h.disp.messagesFor(t, "bob")) != 0 {
		t.Fatal("absent player received messages")
	}

	h.disp.reset()
	if ok, _ := h.attempt("bob"); !ok {
		t.Fatal("resume rejected")
	}
	h.join("bob")

	bob := h.disp.messagesFor(t, "bob")
	if !hasType(bob, api.MsgPlayerAssigned) || !hasType(bob, api.MsgBoardsUpdate) {
		t.Fatalf("bob got %v", types(bob))
	}
	for _, m := range bob {
		if m.Type == api.MsgBoardsUpdate && m.OwnBoard[2][5] != "head" {
			t.Errorf("resumed board lost the plane: %v", m.OwnBoard[2])
		}
	}
	if alice := h.disp.messagesFor(t, "alice"); !hasType(alice, api.MsgPlayerReconnected) {
		t.Errorf("alice got %v", types(alice))
	}
}

func TestMatchJoin_KicksOverflowPresence(t *testing.T) {
	tests := []struct {
		name     string
		kickErr  error
		wantWarn string
	}{
		{name: "kick succeeds"},
		{name: "kick fails", kickErr: errors.New("presence gone"), wantWarn: "kick carol: presence gone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.disp.kickErr = tt.kickErr

			// Все трое прошли JoinAttempt до того, как кто-то занял место
			var warnings []string
			ps := []runtime.Presence{presence("alice"), presence("bob"), presence("carol")}
			h.state = h.mh.MatchJoin(h.ctx, warnLogger{warnings: &warnings}, nil, nil, h.disp, h.tick, h.state, ps)

			if h.disp.kickCount != 1 {
				t.Fatalf("kickCount = %d", h.disp.kickCount)
			}
			carol := h.disp.messagesFor(t, "carol")
			if len(carol) != 1 || carol[0].Type != api.MsgError || carol[0].Code != handlers.CodeFull {
				t.Fatalf("carol got %+v", carol)
			}
			if _, ok := h.matchState().Presences["carol"]; ok {
				t.Error("rejected presence kept in state")
			}

			found := false
			for _, w := range warnings {
				if tt.wantWarn != "" && strings.Contains(w, tt.wantWarn) {
					found = true
				}
				if tt.wantWarn == "" && strings.Contains(w, "kick") {
					t.Errorf("unexpected warning %q", w)
				}
			}
			if tt.wantWarn != "" && !found {
				t.Errorf("warnings %q do not mention %q", warnings, tt.wantWarn)
			}
		})
	}
}
