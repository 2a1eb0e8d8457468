package domain

import (
	"fmt"
	"strings"
)

// Cell - координата клетки поля. X - столбец, Y - строка (растет вниз).
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// InBounds проверяет, что клетка лежит внутри поля [0,BoardSize)x[0,BoardSize).
func (c Cell) InBounds() bool {
	return c.X >= 0 && c.X < BoardSize && c.Y >= 0 && c.Y < BoardSize
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Orientation - куда смотрит нос самолета.
type Orientation uint8

const (
	OrientationUp Orientation = iota
	OrientationRight
	OrientationDown
	OrientationLeft
)

// Orientations перечисляет все повороты по часовой стрелке, начиная с Up.
var Orientations = [...]Orientation{OrientationUp, OrientationRight, OrientationDown, OrientationLeft}

var orientationToString = map[Orientation]string{
	OrientationUp:    "up",
	OrientationRight: "right",
	OrientationDown:  "down",
	OrientationLeft:  "left",
}

var stringToOrientation = map[string]Orientation{
	"up":    OrientationUp,
	"right": OrientationRight,
	"down":  OrientationDown,
	"left":  OrientationLeft,
}

// ParseOrientation конвертирует строку протокола ("up", "LEFT", ...) в Orientation.
func ParseOrientation(s string) (Orientation, error) {
	if o, ok := stringToOrientation[strings.ToLower(strings.TrimSpace(s))]; ok {
		return o, nil
	}
	return OrientationUp, fmt.Errorf("unknown orientation %q", s)
}

func (o Orientation) String() string {
	if s, ok := orientationToString[o]; ok {
		return s
	}
	return "unknown"
}

func (o Orientation) MarshalText() ([]byte, error) {
	if _, ok := orientationToString[o]; !ok {
		return nil, fmt.Errorf("invalid orientation %d", o)
	}
	return []byte(o.String()), nil
}

func (o *Orientation) UnmarshalText(data []byte) error {
	parsed, err := ParseOrientation(string(data))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// pieceOffsets - смещения клеток самолета относительно головы для каждого поворота.
// Голова всегда первая, остальные клетки идут в порядке построчного обхода
// повернутой фигуры. Up:
//
//	. . H . .
//	X X X X X
//	. . X . .
//	. X X X .
//
// Right, Down, Left - та же фигура, повернутая на 90, 180 и 270 градусов по часовой.
var pieceOffsets = [4][CellsPerPiece]Cell{
	OrientationUp: {
		{0, 0},
		{-2, 1}, {-1, 1}, {0, 1}, {1, 1}, {2, 1},
		{0, 2},
		{-1, 3}, {0, 3}, {1, 3},
	},
	OrientationRight: {
		{0, 0},
		{-1, -2},
		{-3, -1}, {-1, -1},
		{-3, 0}, {-2, 0}, {-1, 0},
		{-3, 1}, {-1, 1},
		{-1, 2},
	},
	OrientationDown: {
		{0, 0},
		{-1, -3}, {0, -3}, {1, -3},
		{0, -2},
		{-2, -1}, {-1, -1}, {0, -1}, {1, -1}, {2, -1},
	},
	OrientationLeft: {
		{0, 0},
		{1, -2},
		{1, -1}, {3, -1},
		{1, 0}, {2, 0}, {3, 0},
		{1, 1}, {3, 1},
		{1, 2},
	},
}

// Positions вычисляет абсолютные клетки самолета с головой в anchor.
// Функция тотальная: клетки могут выйти за пределы поля, границы проверяет Board.
// Первая клетка результата всегда равна vital (и anchor).
func Positions(anchor Cell, o Orientation) (cells [CellsPerPiece]Cell, vital Cell) {
	offsets := pieceOffsets[o%4]
	for i, off := range offsets {
		cells[i] = Cell{X: anchor.X + off.X, Y: anchor.Y + off.Y}
	}
	return cells, cells[0]
}
