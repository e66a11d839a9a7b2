package view

import (
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

const rowSize = 3

// GameView is the rendered form of a game, shared by the page template and the websocket payloads.
type GameView struct {
	Cells      []Cell `json:"cells"`
	Status     string `json:"status"`
	Winner     string `json:"winner,omitempty"`
	NextPlayer string `json:"next_player"`
	Draw       bool   `json:"draw"`
	Step       int    `json:"step"`
	Moves      []Move `json:"moves"`
}

type Cell struct {
	Index   int    `json:"index"`
	Mark    string `json:"mark"`
	Winning bool   `json:"winning,omitempty"`
}

type Move struct {
	Step    int    `json:"step"`
	Label   string `json:"label"`
	Current bool   `json:"current"`
}

// New builds the view of the board the controller currently shows.
func New(game *tictactoe.Controller) *GameView {
	board := game.CurrentBoard()
	status := game.Status()

	var winning [entity.BoardSize]bool
	if line, ok := board.WinningLine(); ok {
		for _, idx := range line {
			winning[idx] = true
		}
	}

	cells := make([]Cell, 0, entity.BoardSize)
	for i, mark := range board {
		cells = append(cells, Cell{Index: i, Mark: mark, Winning: winning[i]})
	}

	moves := make([]Move, 0, game.HistoryLen())
	for _, move := range game.Moves() {
		moves = append(moves, Move{Step: move.Step, Label: move.Label, Current: move.Current})
	}

	return &GameView{
		Cells:      cells,
		Status:     status.String(),
		Winner:     status.Winner,
		NextPlayer: status.NextPlayer,
		Draw:       status.Draw,
		Step:       game.StepNumber(),
		Moves:      moves,
	}
}

// Rows splits the cells into the three board rows.
func (that *GameView) Rows() [][]Cell {
	rows := make([][]Cell, 0, rowSize)
	for i := 0; i < len(that.Cells); i += rowSize {
		rows = append(rows, that.Cells[i:i+rowSize])
	}

	return rows
}
