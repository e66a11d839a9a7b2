package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
)

// History holds a board snapshot for every step of the game. Entry 0 is the empty board and
// entry i is the board after i moves.
type History struct {
	entries []Board
}

// GameState is the storable form of a game: the history and the step being viewed.
type GameState struct {
	History []Board `json:"history"`
	Step    int     `json:"step"`
}

func NewHistory() *History {
	return &History{
		entries: []Board{{}},
	}
}

// RestoreHistory rebuilds a history from stored entries. Every entry must add exactly one
// mark to the previous one, alternating X and O starting with X.
func RestoreHistory(entries []Board) (*History, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: history is empty", apperror.ErrInvalidState)
	}

	if entries[0] != (Board{}) {
		return nil, fmt.Errorf("%w: first board is not empty", apperror.ErrInvalidState)
	}

	for step := 1; step < len(entries); step++ {
		if CalculateWinner(entries[step-1]) != EmptyCell {
			return nil, fmt.Errorf("%w: step %d follows a won board", apperror.ErrInvalidState, step)
		}

		if err := validateSuccessor(entries[step-1], entries[step], step); err != nil {
			return nil, fmt.Errorf("%w: step %d: %w", apperror.ErrInvalidState, step, err)
		}
	}

	restored := make([]Board, len(entries))
	copy(restored, entries)

	return &History{entries: restored}, nil
}

func validateSuccessor(prev, next Board, step int) error {
	changed := 0
	for i := range next {
		if !IsValidMark(next[i]) {
			return fmt.Errorf("unknown mark %q in cell %d", next[i], i)
		}

		if prev[i] == next[i] {
			continue
		}

		if prev[i] != EmptyCell {
			return fmt.Errorf("cell %d was overwritten", i)
		}

		if next[i] != MarkForStep(step-1) {
			return fmt.Errorf("cell %d holds %s out of turn", i, next[i])
		}

		changed++
	}

	if changed != 1 {
		return fmt.Errorf("expected one new mark, got %d", changed)
	}

	return nil
}

func (that *History) Len() int {
	return len(that.entries)
}

func (that *History) At(step int) (Board, bool) {
	if step < 0 || step >= len(that.entries) {
		return Board{}, false
	}

	return that.entries[step], true
}

// Entries returns a copy of all snapshots.
func (that *History) Entries() []Board {
	entries := make([]Board, len(that.entries))
	copy(entries, that.entries)

	return entries
}

// Advance drops every entry after step and appends board as step+1.
func (that *History) Advance(step int, board Board) error {
	if step < 0 || step >= len(that.entries) {
		return fmt.Errorf("%w: %d of %d", apperror.ErrStepOutOfRange, step, len(that.entries))
	}

	kept := make([]Board, step+1, step+2)
	copy(kept, that.entries[:step+1])

	that.entries = append(kept, board)

	return nil
}
