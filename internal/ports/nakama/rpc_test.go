package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"github.com/heroiclabs/nakama-common/runtime"
)

type mockNakama struct {
	runtime.NakamaModule
	modules []string
	err     error
}

func (m *mockNakama) MatchCreate(ctx context.Context, module string, params map[string]interface{}) (string, error) {
	m.modules = append(m.modules, module)
	if m.err != nil {
		return "", m.err
	}
	return "match-42", nil
}

type mockInitializer struct {
	runtime.Initializer
	rpcs    []string
	matches []string
}

func (m *mockInitializer) RegisterRpc(id string, fn func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error)) error {
	m.rpcs = append(m.rpcs, id)
	return nil
}

func (m *mockInitializer) RegisterMatch(name string, fn func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error)) error {
	m.matches = append(m.matches, name)
	return nil
}

func TestRpcCreateMatch(t *testing.T) {
	ctx := context.WithValue(context.Background(), runtime.RUNTIME_CTX_USER_ID, "alice")
	nk := &mockNakama{}

	out, err := rpcCreateMatch(ctx, noopLogger{}, nil, nk, "")
	if err != nil {
		t.Fatal(err)
	}
	var resp CreateMatchResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.MatchID != "match-42" {
		t.Errorf("match id = %q", resp.MatchID)
	}
	if len(nk.modules) != 1 || nk.modules[0] != MatchNameWarplanes {
		t.Errorf("MatchCreate modules = %v", nk.modules)
	}
}

func TestRpcCreateMatch_Error(t *testing.T) {
	nk := &mockNakama{err: errors.New("boom")}
	if _, err := rpcCreateMatch(context.Background(), noopLogger{}, nil, nk, ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestInitModule(t *testing.T) {
	initializer := &mockInitializer{}
	if err := InitModule(context.Background(), noopLogger{}, nil, nil, initializer); err != nil {
		t.Fatal(err)
	}
	if len(initializer.rpcs) != 1 || initializer.rpcs[0] != RpcCreateMatch {
		t.Errorf("rpcs = %v", initializer.rpcs)
	}
	if len(initializer.matches) != 1 || initializer.matches[0] != MatchNameWarplanes {
		t.Errorf("matches = %v", initializer.matches)
	}
}
