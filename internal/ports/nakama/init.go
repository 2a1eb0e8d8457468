package nakama

import (
	"context"
	"database/sql"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule регистрирует RPC и обработчик матча в рантайме Nakama.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcCreateMatch, rpcCreateMatch); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameWarplanes, NewMatch); err != nil {
		return err
	}

	logger.Info("Warplanes Go module loaded.")
	return nil
}
