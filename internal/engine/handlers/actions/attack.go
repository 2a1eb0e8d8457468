package actions

import (
	"warplanes-server/internal/domain"
	"warplanes-server/internal/engine/handlers"
	"warplanes-server/pkg/api"
)

func HandleAttack(ctx handlers.Context, p api.AttackPayload) (handlers.Result, error) {
	res := handlers.Result{Value: domain.OutcomeMiss}

	outcome, err := ctx.Match.Attack(ctx.Side, p.X, p.Y)
	if err != nil {
		res.Send(ctx.Side, api.ServerMessage{
			Type:    api.MsgAttackResult,
			Success: api.Ptr(false),
			Message: err.Error(),
			Code:    handlers.ErrorCode(err),
			X:       api.Ptr(p.X),
			Y:       api.Ptr(p.Y),
		})
		return res, err
	}
	res.Value = outcome

	// Повторный выстрел: ход не переходит, сопернику знать не нужно.
	if outcome == domain.OutcomeAlreadyAttacked {
		res.Send(ctx.Side, api.ServerMessage{
			Type:    api.MsgAttackResult,
			Success: api.Ptr(false),
			Result:  outcome.String(),
			Message: "Cell already attacked",
			X:       api.Ptr(p.X),
			Y:       api.Ptr(p.Y),
		})
		return res, nil
	}

	for _, side := range domain.Sides {
		res.Send(side, api.ServerMessage{
			Type:       api.MsgAttackResult,
			Success:    api.Ptr(true),
			Result:     outcome.String(),
			X:          api.Ptr(p.X),
			Y:          api.Ptr(p.Y),
			IsAttacker: api.Ptr(side == ctx.Side),
		})
	}

	if winner, ok := ctx.Match.Winner(); ok {
		res.Broadcast(api.ServerMessage{
			Type:   api.MsgGameOver,
			Phase:  ctx.Match.Phase().String(),
			Winner: winner.String(),
		})
		return res, nil
	}

	res.Broadcast(api.ServerMessage{
		Type: api.MsgTurnChanged,
		Turn: ctx.Match.Turn().String(),
	})
	return res, nil
}
