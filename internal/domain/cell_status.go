package domain

import "fmt"

// CellStatus - состояние одной клетки поля.
// Occupied и Vital видит только владелец поля, остальные статусы видны обеим сторонам.
type CellStatus uint8

const (
	CellEmpty CellStatus = iota
	CellOccupied
	CellVital
	CellHit
	CellVitalHit
	CellMiss
)

// Строки статусов клеток в BOARDS_UPDATE.
var cellStatusToString = map[CellStatus]string{
	CellEmpty:    "empty",
	CellOccupied: "plane",
	CellVital:    "head",
	CellHit:      "hit",
	CellVitalHit: "head_hit",
	CellMiss:     "miss",
}

var stringToCellStatus = map[string]CellStatus{
	"empty":    CellEmpty,
	"plane":    CellOccupied,
	"head":     CellVital,
	"hit":      CellHit,
	"head_hit": CellVitalHit,
	"miss":     CellMiss,
}

func (s CellStatus) String() string {
	if v, ok := cellStatusToString[s]; ok {
		return v
	}
	return "unknown"
}

// Attacked сообщает, стреляли ли уже по клетке.
func (s CellStatus) Attacked() bool {
	switch s {
	case CellHit, CellVitalHit, CellMiss:
		return true
	default:
		return false
	}
}

// Masked возвращает статус так, как его видит противник.
func (s CellStatus) Masked() CellStatus {
	switch s {
	case CellOccupied, CellVital:
		return CellEmpty
	default:
		return s
	}
}

func (s CellStatus) MarshalText() ([]byte, error) {
	v, ok := cellStatusToString[s]
	if !ok {
		return nil, fmt.Errorf("invalid cell status %d", s)
	}
	return []byte(v), nil
}

func (s *CellStatus) UnmarshalText(data []byte) error {
	v, ok := stringToCellStatus[string(data)]
	if !ok {
		return fmt.Errorf("unknown cell status %q", data)
	}
	*s = v
	return nil
}

// AttackOutcome - результат выстрела по клетке.
type AttackOutcome uint8

const (
	OutcomeMiss AttackOutcome = iota
	OutcomeHit
	OutcomeVitalHit
	OutcomeAlreadyAttacked
)

var outcomeToString = map[AttackOutcome]string{
	OutcomeMiss:            "miss",
	OutcomeHit:             "hit",
	OutcomeVitalHit:        "head_hit",
	OutcomeAlreadyAttacked: "already_attacked",
}

func (o AttackOutcome) String() string {
	if v, ok := outcomeToString[o]; ok {
		return v
	}
	return "unknown"
}

func (o AttackOutcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
