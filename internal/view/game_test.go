package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

func playMoves(t *testing.T, cells ...int) *tictactoe.Controller {
	t.Helper()

	game := tictactoe.NewGameController()
	for _, cell := range cells {
		require.True(t, game.ApplyMove(cell))
	}

	return game
}

func TestNew(t *testing.T) {
	t.Run("New game", func(t *testing.T) {
		// Given: a fresh game
		game := tictactoe.NewGameController()

		// When: building the view
		v := New(game)

		// Then: the board should be empty with X to move
		require.Len(t, v.Cells, entity.BoardSize)
		for i, cell := range v.Cells {
			assert.Equal(t, i, cell.Index)
			assert.Equal(t, entity.EmptyCell, cell.Mark)
			assert.False(t, cell.Winning)
		}
		assert.Equal(t, "Next player: X", v.Status)
		assert.Equal(t, entity.PlayerX, v.NextPlayer)
		assert.Empty(t, v.Winner)
		assert.Equal(t, []Move{{Step: 0, Label: "Go to game start", Current: true}}, v.Moves)
	})

	t.Run("Won game highlights the winning line", func(t *testing.T) {
		// Given: X wins on the diagonal
		game := playMoves(t, 0, 1, 4, 2, 8)

		// When: building the view
		v := New(game)

		// Then: the diagonal should be marked as winning
		assert.Equal(t, "Winner: X", v.Status)
		assert.Equal(t, entity.PlayerX, v.Winner)
		for _, cell := range v.Cells {
			want := cell.Index == 0 || cell.Index == 4 || cell.Index == 8
			assert.Equal(t, want, cell.Winning, "cell %d", cell.Index)
		}
		require.Len(t, v.Moves, 6)
		assert.Equal(t, "Go to move #5", v.Moves[5].Label)
		assert.True(t, v.Moves[5].Current)
	})

	t.Run("Rewound game shows the earlier board", func(t *testing.T) {
		game := playMoves(t, 0, 1, 4)
		require.NoError(t, game.JumpTo(1))

		v := New(game)

		assert.Equal(t, 1, v.Step)
		assert.Equal(t, entity.PlayerX, v.Cells[0].Mark)
		assert.Equal(t, entity.EmptyCell, v.Cells[1].Mark)
		assert.Equal(t, "Next player: O", v.Status)
		require.Len(t, v.Moves, 4)
		assert.True(t, v.Moves[1].Current)
		assert.False(t, v.Moves[3].Current)
	})

	t.Run("Draw keeps the next player line", func(t *testing.T) {
		game := playMoves(t, 0, 1, 2, 4, 3, 5, 7, 6, 8)

		v := New(game)

		assert.True(t, v.Draw)
		assert.Equal(t, "Next player: O", v.Status)
	})
}

func TestGameView_Rows(t *testing.T) {
	v := New(playMoves(t, 4))

	rows := v.Rows()

	require.Len(t, rows, 3)
	for i, row := range rows {
		require.Len(t, row, 3)
		assert.Equal(t, i*3, row[0].Index)
	}
	assert.Equal(t, entity.PlayerX, rows[1][1].Mark)
}
