package tictactoe

import (
	"fmt"
	"strconv"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

const (
	statusWinner     = "Winner: "
	statusNextPlayer = "Next player: "

	labelGameStart = "Go to game start"
	labelMove      = "Go to move #"
)

// Controller owns the history of one game and the step currently shown.
// It is not safe for concurrent use.
type Controller struct {
	history *entity.History
	step    int
}

// Status is either the winner of the current board or the mark that moves next.
type Status struct {
	Winner     string
	NextPlayer string
	// Draw is set when the board is full without a winner. The status line does not
	// report it and keeps showing the next player.
	Draw bool
}

// Move is an entry of the history list.
type Move struct {
	Step    int
	Label   string
	Current bool
}

func NewGameController() *Controller {
	return &Controller{
		history: entity.NewHistory(),
	}
}

// Restore rebuilds a controller from its stored state.
func Restore(state *entity.GameState) (*Controller, error) {
	if state == nil {
		return nil, fmt.Errorf("%w: state is nil", apperror.ErrInvalidState)
	}

	history, err := entity.RestoreHistory(state.History)
	if err != nil {
		return nil, fmt.Errorf("failed to restore history: %w", err)
	}

	if state.Step < 0 || state.Step >= history.Len() {
		return nil, fmt.Errorf("%w: step %d of %d", apperror.ErrInvalidState, state.Step, history.Len())
	}

	return &Controller{
		history: history,
		step:    state.Step,
	}, nil
}

// Snapshot returns the storable state of the game.
func (that *Controller) Snapshot() *entity.GameState {
	return &entity.GameState{
		History: that.history.Entries(),
		Step:    that.step,
	}
}

// ApplyMove puts the next mark into cell. The move is ignored when the current board already
// has a winner, the cell is taken or the index is off the board; it reports whether the move
// was applied.
func (that *Controller) ApplyMove(cell int) bool {
	if !entity.IsValidCell(cell) {
		return false
	}

	board := that.CurrentBoard()
	if entity.CalculateWinner(board) != entity.EmptyCell || board.IsOccupied(cell) {
		return false
	}

	board[cell] = that.NextPlayer()

	if err := that.history.Advance(that.step, board); err != nil {
		return false
	}

	that.step++

	return true
}

// JumpTo moves the cursor to step without changing the history.
func (that *Controller) JumpTo(step int) error {
	if step < 0 || step >= that.history.Len() {
		return fmt.Errorf("%w: %d, history has %d steps", apperror.ErrStepOutOfRange, step, that.history.Len())
	}

	that.step = step

	return nil
}

func (that *Controller) CurrentBoard() entity.Board {
	board, _ := that.history.At(that.step)
	return board
}

func (that *Controller) StepNumber() int {
	return that.step
}

func (that *Controller) HistoryLen() int {
	return that.history.Len()
}

// NextPlayer is derived from the step parity, X moves on even steps.
func (that *Controller) NextPlayer() string {
	return entity.MarkForStep(that.step)
}

func (that *Controller) Winner() string {
	return entity.CalculateWinner(that.CurrentBoard())
}

func (that *Controller) Status() Status {
	board := that.CurrentBoard()

	if winner := entity.CalculateWinner(board); winner != entity.EmptyCell {
		return Status{Winner: winner}
	}

	return Status{
		NextPlayer: that.NextPlayer(),
		Draw:       board.IsFull(),
	}
}

// Moves lists one entry per history step.
func (that *Controller) Moves() []Move {
	moves := make([]Move, 0, that.history.Len())
	for step := range that.history.Len() {
		moves = append(moves, Move{
			Step:    step,
			Label:   moveLabel(step),
			Current: step == that.step,
		})
	}

	return moves
}

func (that Status) IsFinished() bool {
	return that.Winner != entity.EmptyCell
}

func (that Status) String() string {
	if that.IsFinished() {
		return statusWinner + that.Winner
	}

	return statusNextPlayer + that.NextPlayer
}

func moveLabel(step int) string {
	if step == 0 {
		return labelGameStart
	}

	return labelMove + strconv.Itoa(step)
}
