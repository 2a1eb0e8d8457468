package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"warplanes-server/internal/domain"
)

// Раскладка экрана. Клетка поля занимает два символа по ширине.
const (
	headerRow    = 0
	boardTop     = 3
	ownLeft      = 1
	opponentLeft = 29
	cellWidth    = 2
	labelWidth   = 3
	statusRow    = boardTop + domain.BoardSize + 1
	helpRow      = statusRow + 1
)

var (
	styleTitle   = tcell.StyleDefault.Bold(true)
	styleLabel   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleStatus  = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	stylePreview = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleBlocked = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

type glyph struct {
	r     rune
	style tcell.Style
}

// cellGlyph - символ и стиль для строки протокола.
var cellGlyph = map[string]glyph{
	domain.CellEmpty.String():    {'·', styleLabel},
	domain.CellOccupied.String(): {'#', tcell.StyleDefault.Foreground(tcell.ColorAqua)},
	domain.CellVital.String():    {'@', tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)},
	domain.CellHit.String():      {'X', tcell.StyleDefault.Foreground(tcell.ColorOrange)},
	domain.CellVitalHit.String(): {'*', tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)},
	domain.CellMiss.String():     {'o', tcell.StyleDefault.Foreground(tcell.ColorBlue)},
}

// Renderer рисует State на tcell.Screen.
type Renderer struct {
	screen tcell.Screen
}

func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{screen: screen}
}

// cellPos - экранные координаты клетки (x, y) поля с левым краем left.
func cellPos(left, x, y int) (int, int) {
	return left + labelWidth + x*cellWidth, boardTop + y
}

// RenderFrame перерисовывает экран целиком.
func (r *Renderer) RenderFrame(st *State) {
	r.screen.Clear()

	r.drawHeader(st)
	r.drawBoard(ownLeft, "Your fleet", st.Own)
	r.drawBoard(opponentLeft, "Enemy sky", st.Opponent)

	if st.Phase == domain.PhasePlaying.String() {
		r.drawCursor(opponentLeft, st)
	} else if st.Phase != domain.PhaseFinished.String() && st.Planes < domain.PiecesPerSide {
		r.drawPreview(st)
	}

	r.drawText(0, statusRow, styleStatus, st.Status)
	r.drawText(0, helpRow, styleLabel, helpLine(st))

	r.screen.Show()
}

func (r *Renderer) drawHeader(st *State) {
	line := fmt.Sprintf("WARPLANES  match %s  you: %s  phase: %s", st.MatchID, orDash(st.Side), st.Phase)
	switch {
	case st.Winner != "":
		line += "  winner: " + st.Winner
	case st.MyTurn():
		line += "  YOUR TURN"
	case st.Turn != "":
		line += "  turn: " + st.Turn
	}
	r.drawText(0, headerRow, styleTitle, line)
}

func (r *Renderer) drawBoard(left int, title string, board [][]string) {
	r.drawText(left, boardTop-2, styleTitle, title)
	for x := 0; x < domain.BoardSize; x++ {
		sx, _ := cellPos(left, x, 0)
		r.screen.SetContent(sx, boardTop-1, rune('0'+x), nil, styleLabel)
	}

	for y := 0; y < domain.BoardSize; y++ {
		r.drawText(left, boardTop+y, styleLabel, fmt.Sprintf("%d", y))
		for x := 0; x < domain.BoardSize; x++ {
			g := glyphAt(board, x, y)
			sx, sy := cellPos(left, x, y)
			r.screen.SetContent(sx, sy, g.r, nil, g.style)
		}
	}
}

func glyphAt(board [][]string, x, y int) glyph {
	if y < len(board) && x < len(board[y]) {
		if g, ok := cellGlyph[board[y][x]]; ok {
			return g
		}
	}
	return cellGlyph[domain.CellEmpty.String()]
}

// drawCursor подсвечивает прицел на поле противника.
func (r *Renderer) drawCursor(left int, st *State) {
	g := glyphAt(st.Opponent, st.Cursor.X, st.Cursor.Y)
	sx, sy := cellPos(left, st.Cursor.X, st.Cursor.Y)
	style := g.style.Reverse(true)
	if !st.MyTurn() {
		style = styleLabel.Reverse(true)
	}
	r.screen.SetContent(sx, sy, g.r, nil, style)
}

// drawPreview показывает, где встанет самолет. Красным - если не влезает.
func (r *Renderer) drawPreview(st *State) {
	cells, vital := domain.Positions(st.Cursor, st.Orientation)
	style := stylePreview
	if !fits(st.Own, cells[:]) {
		style = styleBlocked
	}
	for _, c := range cells {
		if !c.InBounds() {
			continue
		}
		ch := '+'
		if c == vital {
			ch = '^'
		}
		sx, sy := cellPos(ownLeft, c.X, c.Y)
		r.screen.SetContent(sx, sy, ch, nil, style.Reverse(true))
	}
}

func fits(board [][]string, cells []domain.Cell) bool {
	empty := domain.CellEmpty.String()
	for _, c := range cells {
		if !c.InBounds() || board[c.Y][c.X] != empty {
			return false
		}
	}
	return true
}

func (r *Renderer) drawText(x, y int, style tcell.Style, text string) {
	for _, ch := range text {
		r.screen.SetContent(x, y, ch, nil, style)
		x++
	}
}

func helpLine(st *State) string {
	switch st.Phase {
	case domain.PhasePlaying.String():
		return "arrows: aim  enter: fire  b: refresh  q: quit"
	case domain.PhaseFinished.String():
		return "q: quit"
	default:
		return fmt.Sprintf("arrows: move  r: rotate (%s)  enter: place  q: quit", st.Orientation)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

