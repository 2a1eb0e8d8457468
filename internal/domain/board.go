package domain

import "fmt"

// Grid - снимок поля. Индексация grid[y][x], строки 0..9, столбцы 0..9.
type Grid [BoardSize][BoardSize]CellStatus

// Strings переводит снимок в строки протокола.
func (g Grid) Strings() [][]string {
	rows := make([][]string, BoardSize)
	for y := range g {
		rows[y] = make([]string, BoardSize)
		for x, status := range g[y] {
			rows[y][x] = status.String()
		}
	}
	return rows
}

// Board - поле одной стороны. Знает только статусы клеток, но не границы самолетов.
type Board struct {
	cells Grid
}

// At возвращает статус клетки. Координаты должны быть в пределах поля.
func (b *Board) At(c Cell) CellStatus {
	return b.cells[c.Y][c.X]
}

// Place ставит самолет на поле. Сначала проверяются все клетки, и только потом
// поле меняется, поэтому при ошибке Board остается нетронутым.
func (b *Board) Place(cells []Cell, vital Cell) error {
	for _, c := range cells {
		if !c.InBounds() {
			return fmt.Errorf("%w: cell %s", ErrOutOfBounds, c)
		}
	}
	for _, c := range cells {
		if b.At(c) != CellEmpty {
			return fmt.Errorf("%w: cell %s", ErrOverlap, c)
		}
	}

	for _, c := range cells {
		b.cells[c.Y][c.X] = CellOccupied
	}
	b.cells[vital.Y][vital.X] = CellVital
	return nil
}

// ReceiveAttack применяет выстрел. Границы проверяет вызывающий (Match).
// Повторный выстрел по клетке ничего не меняет и возвращает OutcomeAlreadyAttacked.
func (b *Board) ReceiveAttack(c Cell) AttackOutcome {
	switch b.At(c) {
	case CellHit, CellVitalHit, CellMiss:
		return OutcomeAlreadyAttacked
	case CellVital:
		b.cells[c.Y][c.X] = CellVitalHit
		return OutcomeVitalHit
	case CellOccupied:
		b.cells[c.Y][c.X] = CellHit
		return OutcomeHit
	default:
		b.cells[c.Y][c.X] = CellMiss
		return OutcomeMiss
	}
}

// View возвращает полный снимок поля для владельца.
func (b *Board) View() Grid {
	return b.cells
}

// MaskedView возвращает снимок для противника: нетронутые клетки самолетов выглядят пустыми.
func (b *Board) MaskedView() Grid {
	var masked Grid
	for y := range b.cells {
		for x, status := range b.cells[y] {
			masked[y][x] = status.Masked()
		}
	}
	return masked
}
