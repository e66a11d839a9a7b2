package entity

const (
	PlayerX = "X"
	PlayerO = "O"

	EmptyCell = ""

	BoardSize = 9
)

// WinCombos - rows, columns and diagonals, scanned in this order.
var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board is a 3x3 grid in row-major order. It is an array, so assignment copies it.
type Board [BoardSize]string

// CalculateWinner returns the mark holding a full line, or EmptyCell when nobody does.
func CalculateWinner(board Board) string {
	line, ok := board.WinningLine()
	if !ok {
		return EmptyCell
	}

	return board[line[0]]
}

// WinningLine returns the first combo filled with one mark.
func (that Board) WinningLine() ([3]int, bool) {
	for _, combo := range WinCombos {
		a, b, c := that[combo[0]], that[combo[1]], that[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return combo, true
		}
	}

	return [3]int{}, false
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

func (that Board) IsOccupied(cell int) bool {
	return that[cell] != EmptyCell
}

// MarksCount returns how many cells are taken.
func (that Board) MarksCount() int {
	count := 0
	for _, cell := range that {
		if cell != EmptyCell {
			count++
		}
	}

	return count
}

func IsValidCell(cell int) bool {
	return cell >= 0 && cell < BoardSize
}

func IsValidMark(mark string) bool {
	return mark == EmptyCell || mark == PlayerX || mark == PlayerO
}

// MarkForStep - X moves on even steps, O on odd ones.
func MarkForStep(step int) string {
	if step%2 == 0 {
		return PlayerX
	}
	return PlayerO
}
