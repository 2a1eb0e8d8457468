package actions

import (
	"fmt"

	"warplanes-server/internal/domain"
	"warplanes-server/internal/engine/handlers"
	"warplanes-server/pkg/api"
)

func HandlePlacePlane(ctx handlers.Context, p api.PlacePlanePayload) (handlers.Result, error) {
	var res handlers.Result

	o, err := domain.ParseOrientation(p.Orientation)
	if err != nil {
		return res, fmt.Errorf("%w: %w", handlers.ErrBadPayload, err)
	}

	before := ctx.Match.Phase()
	_, err = ctx.Match.PlacePiece(ctx.Side, domain.Cell{X: p.X, Y: p.Y}, o)
	count := ctx.Match.PieceCount(ctx.Side)
	if err != nil {
		res.Send(ctx.Side, api.ServerMessage{
			Type:        api.MsgPlanePlaced,
			Success:     api.Ptr(false),
			Message:     err.Error(),
			Code:        handlers.ErrorCode(err),
			PlanesCount: api.Ptr(count),
		})
		return res, err
	}

	res.Send(ctx.Side, api.ServerMessage{
		Type:        api.MsgPlanePlaced,
		Success:     api.Ptr(true),
		Message:     fmt.Sprintf("Plane %d/%d placed", count, domain.PiecesPerSide),
		PlanesCount: api.Ptr(count),
	})

	// Последний самолет второй стороны запускает бой
	if before != domain.PhasePlaying && ctx.Match.Phase() == domain.PhasePlaying {
		res.Broadcast(api.ServerMessage{
			Type:  api.MsgGameStarted,
			Phase: ctx.Match.Phase().String(),
			Turn:  ctx.Match.Turn().String(),
		})
	}
	return res, nil
}
