package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"
)

// CreateMatchResponse - ответ RPC create_match.
type CreateMatchResponse struct {
	MatchID string `json:"match_id"`
}

// rpcCreateMatch всегда создает новый матч. Поиск открытых матчей делает
// клиент через стандартный MatchList по метке open.
func rpcCreateMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	matchID, err := nk.MatchCreate(ctx, MatchNameWarplanes, map[string]interface{}{})
	if err != nil {
		logger.Error("rpcCreateMatch [User:%s]: MatchCreate error: %v", userID, err)
		return "", err
	}

	logger.Info("rpcCreateMatch [User:%s]: Created match %s", userID, matchID)
	b, err := json.Marshal(CreateMatchResponse{MatchID: matchID})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
