package domain

import "errors"

// Ошибки движка. Все они локальные и восстановимые: матч после них остается
// в том же состоянии, что и до команды. Проверять через errors.Is.
var (
	ErrNotFound        = errors.New("match not found")
	ErrFull            = errors.New("match is full")
	ErrOutOfBounds     = errors.New("out of bounds")
	ErrOverlap         = errors.New("plane overlaps with another plane")
	ErrAlreadyComplete = errors.New("already placed all planes")
	ErrInvalidAttack   = errors.New("invalid attack")
	ErrNotJoined       = errors.New("side has not joined the match")
)
