package actions

import (
	"warplanes-server/internal/engine/handlers"
)

// HandleGetBoards отдает стороне ее поле и маску поля соперника.
func HandleGetBoards(ctx handlers.Context) (handlers.Result, error) {
	snap, err := ctx.Match.Snapshot(ctx.Side)
	if err != nil {
		return handlers.Result{}, err
	}

	res := handlers.Result{Value: snap}
	res.Send(ctx.Side, handlers.BoardsMessage(snap))
	return res, nil
}
