package domain

import "fmt"

// Match - агрегат одной партии: два поля, два набора самолетов, фаза и очередь хода.
// Match не потокобезопасен: все команды к одному матчу должны идти
// последовательно от единственного владельца (см. engine.Instance).
type Match struct {
	ID string

	boards [sideSlotsCount]Board
	pieces [sideSlotsCount][]*Piece
	joined [sideSlotsCount]bool
	ready  [sideSlotsCount]bool

	phase  Phase
	turn   Side
	winner Side
}

// Snapshot - то, что видит одна сторона: свое поле целиком и чужое в маске.
type Snapshot struct {
	Side          Side  `json:"side"`
	OwnBoard      Grid  `json:"ownBoard"`
	OpponentBoard Grid  `json:"opponentBoard"`
	Phase         Phase `json:"phase"`
	Turn          Side  `json:"turn,omitempty"`
}

// Summary - публичная сводка по матчу без раскрытия полей.
type Summary struct {
	ID         string        `json:"id"`
	Phase      Phase         `json:"phase"`
	Turn       Side          `json:"turn,omitempty"`
	SideJoined map[Side]bool `json:"players"`
	Winner     Side          `json:"winner,omitempty"`
}

func NewMatch(id string) *Match {
	return &Match{
		ID:    id,
		phase: PhaseWaiting,
	}
}

func (m *Match) Phase() Phase { return m.phase }

// Turn возвращает сторону, которая сейчас стреляет. Имеет смысл только в PhasePlaying.
func (m *Match) Turn() Side {
	if m.phase != PhasePlaying {
		return SideNone
	}
	return m.turn
}

// Winner возвращает победителя, если матч завершен.
func (m *Match) Winner() (Side, bool) {
	if m.phase != PhaseFinished {
		return SideNone, false
	}
	return m.winner, true
}

// Joined сообщает, занят ли слот стороны.
func (m *Match) Joined(side Side) bool {
	return side.Valid() && m.joined[side.index()]
}

// Ready сообщает, поставила ли сторона все самолеты.
func (m *Match) Ready(side Side) bool {
	return side.Valid() && m.ready[side.index()]
}

// PieceCount возвращает число поставленных самолетов стороны.
func (m *Match) PieceCount(side Side) int {
	if !side.Valid() {
		return 0
	}
	return len(m.pieces[side.index()])
}

// Pieces возвращает самолеты стороны. Указатели только для чтения.
func (m *Match) Pieces(side Side) []*Piece {
	if !side.Valid() {
		return nil
	}
	out := make([]*Piece, len(m.pieces[side.index()]))
	copy(out, m.pieces[side.index()])
	return out
}

// Join занимает слот. Без предпочтения (SideNone) берется первый свободный,
// с предпочтением - только указанный. Второй занятый слот переводит матч в PhasePlacing.
func (m *Match) Join(requested Side) (Side, error) {
	side, err := m.pickSlot(requested)
	if err != nil {
		return SideNone, err
	}

	m.joined[side.index()] = true
	if m.phase == PhaseWaiting && m.joined[0] && m.joined[1] {
		m.phase = PhasePlacing
	}
	return side, nil
}

func (m *Match) pickSlot(requested Side) (Side, error) {
	if requested == SideNone {
		for _, s := range Sides {
			if !m.joined[s.index()] {
				return s, nil
			}
		}
		return SideNone, ErrFull
	}
	if !requested.Valid() {
		return SideNone, fmt.Errorf("%w: unknown side %d", ErrNotJoined, requested)
	}
	if m.joined[requested.index()] {
		return SideNone, fmt.Errorf("%w: %s is taken", ErrFull, requested)
	}
	return requested, nil
}

// PlacePiece ставит самолет стороны с головой в anchor.
// Когда обе стороны поставили по два самолета, матч переходит в PhasePlaying
// и первым ходит player1.
func (m *Match) PlacePiece(side Side, anchor Cell, o Orientation) (*Piece, error) {
	if !m.Joined(side) {
		return nil, ErrNotJoined
	}
	idx := side.index()
	if len(m.pieces[idx]) >= PiecesPerSide {
		return nil, ErrAlreadyComplete
	}

	piece := newPiece(anchor, o)
	if err := m.boards[idx].Place(piece.cells[:], piece.vital); err != nil {
		return nil, err
	}

	m.pieces[idx] = append(m.pieces[idx], piece)
	if len(m.pieces[idx]) == PiecesPerSide {
		m.ready[idx] = true
	}

	if m.phase == PhasePlacing && m.ready[0] && m.ready[1] {
		m.phase = PhasePlaying
		m.turn = SidePlayer1
	}
	return piece, nil
}

// Attack - выстрел стороны attacker по полю противника.
// Повторный выстрел по той же клетке возвращает OutcomeAlreadyAttacked без смены хода.
func (m *Match) Attack(attacker Side, x, y int) (AttackOutcome, error) {
	if m.phase != PhasePlaying {
		return OutcomeMiss, fmt.Errorf("%w: match is %s", ErrInvalidAttack, m.phase)
	}
	if attacker != m.turn {
		return OutcomeMiss, fmt.Errorf("%w: not your turn", ErrInvalidAttack)
	}
	target := Cell{X: x, Y: y}
	if !target.InBounds() {
		return OutcomeMiss, fmt.Errorf("%w: cell %s is out of bounds", ErrInvalidAttack, target)
	}

	defender := attacker.Opponent()
	outcome := m.boards[defender.index()].ReceiveAttack(target)
	if outcome == OutcomeAlreadyAttacked {
		return outcome, nil
	}

	if outcome == OutcomeHit || outcome == OutcomeVitalHit {
		if piece := m.pieceAt(defender, target); piece != nil {
			piece.recordHit(target)
		}
	}

	if m.allDestroyed(defender) {
		m.phase = PhaseFinished
		m.winner = attacker
		return outcome, nil
	}

	m.turn = defender
	return outcome, nil
}

func (m *Match) pieceAt(side Side, c Cell) *Piece {
	for _, p := range m.pieces[side.index()] {
		if p.Contains(c) {
			return p
		}
	}
	return nil
}

func (m *Match) allDestroyed(side Side) bool {
	pieces := m.pieces[side.index()]
	if len(pieces) < PiecesPerSide {
		return false
	}
	for _, p := range pieces {
		if !p.Destroyed() {
			return false
		}
	}
	return true
}

// BoardView возвращает полное поле стороны (для ее владельца).
func (m *Match) BoardView(side Side) Grid {
	if !side.Valid() {
		return Grid{}
	}
	return m.boards[side.index()].View()
}

// Snapshot собирает персональный снимок для стороны.
func (m *Match) Snapshot(side Side) (Snapshot, error) {
	if !side.Valid() {
		return Snapshot{}, fmt.Errorf("%w: unknown side %d", ErrNotJoined, side)
	}
	return Snapshot{
		Side:          side,
		OwnBoard:      m.boards[side.index()].View(),
		OpponentBoard: m.boards[side.Opponent().index()].MaskedView(),
		Phase:         m.phase,
		Turn:          m.Turn(),
	}, nil
}

func (m *Match) Summary() Summary {
	winner, _ := m.Winner()
	return Summary{
		ID:    m.ID,
		Phase: m.phase,
		Turn:  m.Turn(),
		SideJoined: map[Side]bool{
			SidePlayer1: m.joined[0],
			SidePlayer2: m.joined[1],
		},
		Winner: winner,
	}
}
