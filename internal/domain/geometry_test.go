package domain

import (
	"sort"
	"testing"
)

func sortedCells(cells []Cell) []Cell {
	out := append([]Cell(nil), cells...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	return out
}

func sameCells(a, b []Cell) bool {
	if len(a) != len(b) {
		return false
	}
	a, b = sortedCells(a), sortedCells(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPositions_TenDistinctCellsVitalFirst(t *testing.T) {
	anchors := []Cell{{5, 5}, {0, 0}, {9, 9}, {-4, 12}}
	for _, o := range Orientations {
		for _, anchor := range anchors {
			cells, vital := Positions(anchor, o)

			if vital != anchor {
				t.Errorf("%s at %s: vital = %s, want anchor", o, anchor, vital)
			}
			if cells[0] != vital {
				t.Errorf("%s at %s: first cell %s is not vital", o, anchor, cells[0])
			}

			seen := make(map[Cell]bool, len(cells))
			for _, c := range cells {
				if seen[c] {
					t.Errorf("%s at %s: duplicate cell %s", o, anchor, c)
				}
				seen[c] = true
			}
			if len(seen) != CellsPerPiece {
				t.Errorf("%s at %s: got %d distinct cells, want %d", o, anchor, len(seen), CellsPerPiece)
			}
		}
	}
}

func TestPositions_KnownShapes(t *testing.T) {
	tests := []struct {
		name   string
		anchor Cell
		o      Orientation
		want   []Cell
	}{
		{
			name:   "up",
			anchor: Cell{5, 2},
			o:      OrientationUp,
			want: []Cell{
				{5, 2},
				{3, 3}, {4, 3}, {5, 3}, {6, 3}, {7, 3}, // крылья
				{5, 4},                 // корпус
				{4, 5}, {5, 5}, {6, 5}, // хвост
			},
		},
		{
			name:   "down",
			anchor: Cell{5, 7},
			o:      OrientationDown,
			want: []Cell{
				{5, 7},
				{4, 4}, {5, 4}, {6, 4},
				{5, 5},
				{3, 6}, {4, 6}, {5, 6}, {6, 6}, {7, 6},
			},
		},
		{
			name:   "left",
			anchor: Cell{2, 5},
			o:      OrientationLeft,
			want: []Cell{
				{2, 5},
				{3, 3}, {3, 4}, {3, 5}, {3, 6}, {3, 7},
				{4, 5},
				{5, 4}, {5, 5}, {5, 6},
			},
		},
		{
			name:   "right",
			anchor: Cell{7, 5},
			o:      OrientationRight,
			want: []Cell{
				{7, 5},
				{4, 4}, {4, 5}, {4, 6},
				{5, 5},
				{6, 3}, {6, 4}, {6, 5}, {6, 6}, {6, 7},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells, _ := Positions(tt.anchor, tt.o)
			if !sameCells(cells[:], tt.want) {
				t.Errorf("Positions(%s, %s) = %v, want %v", tt.anchor, tt.o, sortedCells(cells[:]), sortedCells(tt.want))
			}
		})
	}
}

func TestPositions_RowMajorAfterVital(t *testing.T) {
	for _, o := range Orientations {
		cells, _ := Positions(Cell{5, 5}, o)
		rest := cells[1:]
		for i := 1; i < len(rest); i++ {
			prev, cur := rest[i-1], rest[i]
			if cur.Y < prev.Y || (cur.Y == prev.Y && cur.X <= prev.X) {
				t.Errorf("%s: cells %s then %s break row-major order", o, prev, cur)
			}
		}
	}
}

// Поворот по часовой в экранных координатах (y растет вниз): (dx, dy) -> (-dy, dx).
func rotateClockwise(offsets []Cell) []Cell {
	out := make([]Cell, len(offsets))
	for i, c := range offsets {
		out[i] = Cell{X: -c.Y, Y: c.X}
	}
	return out
}

func relativeOffsets(o Orientation) []Cell {
	anchor := Cell{4, 4}
	cells, _ := Positions(anchor, o)
	out := make([]Cell, len(cells))
	for i, c := range cells {
		out[i] = Cell{X: c.X - anchor.X, Y: c.Y - anchor.Y}
	}
	return out
}

func TestPositions_RotationConsistency(t *testing.T) {
	for i, o := range Orientations {
		next := Orientations[(i+1)%len(Orientations)]
		rotated := rotateClockwise(relativeOffsets(o))
		if !sameCells(rotated, relativeOffsets(next)) {
			t.Errorf("%s rotated clockwise = %v, want offsets of %s %v",
				o, sortedCells(rotated), next, sortedCells(relativeOffsets(next)))
		}
	}
}

func TestParseOrientation(t *testing.T) {
	tests := []struct {
		input   string
		want    Orientation
		wantErr bool
	}{
		{"up", OrientationUp, false},
		{"DOWN", OrientationDown, false},
		{" Left ", OrientationLeft, false},
		{"right", OrientationRight, false},
		{"diagonal", OrientationUp, true},
		{"", OrientationUp, true},
	}

	for _, tt := range tests {
		got, err := ParseOrientation(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOrientation(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseOrientation(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
