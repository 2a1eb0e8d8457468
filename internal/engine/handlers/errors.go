package handlers

import (
	"errors"

	"warplanes-server/internal/auth"
	"warplanes-server/internal/domain"
	"warplanes-server/pkg/api"
)

// Стабильные коды ошибок протокола.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeFull            = "FULL"
	CodeOutOfBounds     = "OUT_OF_BOUNDS"
	CodeOverlap         = "OVERLAP"
	CodeAlreadyComplete = "ALREADY_COMPLETE"
	CodeInvalidAttack   = "INVALID_ATTACK"
	CodeNotJoined       = "NOT_JOINED"
	CodeBadRequest      = "BAD_REQUEST"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeInternal        = "INTERNAL"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{domain.ErrNotFound, CodeNotFound},
	{domain.ErrFull, CodeFull},
	{domain.ErrOutOfBounds, CodeOutOfBounds},
	{domain.ErrOverlap, CodeOverlap},
	{domain.ErrAlreadyComplete, CodeAlreadyComplete},
	{domain.ErrInvalidAttack, CodeInvalidAttack},
	{domain.ErrNotJoined, CodeNotJoined},
	{ErrBadPayload, CodeBadRequest},
	{auth.ErrInvalidSeat, CodeUnauthorized},
}

// ErrorCode переводит ошибку в код протокола.
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return CodeInternal
}

// ErrorMessage - ответ ERROR для стороны.
func ErrorMessage(err error) api.ServerMessage {
	return api.ServerMessage{
		Type:    api.MsgError,
		Code:    ErrorCode(err),
		Message: err.Error(),
	}
}
