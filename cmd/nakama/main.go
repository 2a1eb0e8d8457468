package main

import (
	"context"
	"database/sql"

	"warplanes-server/internal/ports/nakama"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule - точка входа плагина Nakama (go build -buildmode=plugin).
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	return nakama.InitModule(ctx, logger, db, nk, initializer)
}

func main() {}
