package domain

// Piece - поставленный самолет. Набор клеток неизменен после постановки,
// меняются только попадания и флаг уничтожения.
type Piece struct {
	cells       [CellsPerPiece]Cell
	vital       Cell
	orientation Orientation
	hits        []Cell
	destroyed   bool
}

func newPiece(anchor Cell, o Orientation) *Piece {
	cells, vital := Positions(anchor, o)
	return &Piece{
		cells:       cells,
		vital:       vital,
		orientation: o,
		hits:        make([]Cell, 0, CellsPerPiece),
	}
}

// Cells возвращает клетки самолета, голова первой.
func (p *Piece) Cells() []Cell {
	out := make([]Cell, len(p.cells))
	copy(out, p.cells[:])
	return out
}

func (p *Piece) Vital() Cell              { return p.vital }
func (p *Piece) Orientation() Orientation { return p.orientation }
func (p *Piece) Destroyed() bool          { return p.destroyed }

// Hits возвращает клетки, в которые уже попали.
func (p *Piece) Hits() []Cell {
	out := make([]Cell, len(p.hits))
	copy(out, p.hits)
	return out
}

// Contains проверяет, принадлежит ли клетка самолету.
func (p *Piece) Contains(c Cell) bool {
	for _, own := range p.cells {
		if own == c {
			return true
		}
	}
	return false
}

// recordHit запоминает попадание. Попадание в голову уничтожает самолет.
func (p *Piece) recordHit(c Cell) {
	for _, h := range p.hits {
		if h == c {
			return
		}
	}
	p.hits = append(p.hits, c)
	if c == p.vital {
		p.destroyed = true
	}
}
