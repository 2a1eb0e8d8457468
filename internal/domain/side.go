package domain

import (
	"fmt"
	"strings"
)

// Side - один из двух участников матча. SideNone означает "не указано".
type Side uint8

const (
	SideNone Side = iota
	SidePlayer1
	SidePlayer2
)

// Sides - обе стороны в каноническом порядке.
var Sides = [...]Side{SidePlayer1, SidePlayer2}

var sideToString = map[Side]string{
	SidePlayer1: "player1",
	SidePlayer2: "player2",
}

// ParseSide конвертирует "player1"/"player2" в Side. Пустая строка - SideNone.
func ParseSide(s string) (Side, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SideNone, nil
	}
	for side, name := range sideToString {
		if name == s {
			return side, nil
		}
	}
	return SideNone, fmt.Errorf("unknown side %q", s)
}

// Valid сообщает, является ли значение одной из двух канонических сторон.
func (s Side) Valid() bool {
	return s == SidePlayer1 || s == SidePlayer2
}

// Opponent возвращает противоположную сторону.
func (s Side) Opponent() Side {
	switch s {
	case SidePlayer1:
		return SidePlayer2
	case SidePlayer2:
		return SidePlayer1
	default:
		return SideNone
	}
}

func (s Side) index() int {
	return int(s) - 1
}

func (s Side) String() string {
	return sideToString[s]
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(data []byte) error {
	parsed, err := ParseSide(string(data))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Phase - положение матча в машине состояний. Движется только вперед.
type Phase uint8

const (
	PhaseWaiting Phase = iota
	PhasePlacing
	PhasePlaying
	PhaseFinished
)

var phaseToString = map[Phase]string{
	PhaseWaiting:  "waiting",
	PhasePlacing:  "placing",
	PhasePlaying:  "playing",
	PhaseFinished: "finished",
}

func (p Phase) String() string {
	if v, ok := phaseToString[p]; ok {
		return v
	}
	return "unknown"
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
