package domain

// Параметры поля и флота. Размеры фиксированы и не настраиваются.
const (
	BoardSize      = 10 // Сторона квадратного поля
	PiecesPerSide  = 2  // Сколько самолетов ставит каждая сторона
	CellsPerPiece  = 10 // Клеток в одном самолете, включая голову
	sideSlotsCount = 2
)
