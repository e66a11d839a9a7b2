package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
)

func TestNewHistory(t *testing.T) {
	// When: a new history is created
	history := NewHistory()

	// Then: it should hold only the empty board
	require.Equal(t, 1, history.Len())

	board, ok := history.At(0)
	require.True(t, ok)
	assert.Equal(t, Board{}, board)
}

func TestHistory_Advance(t *testing.T) {
	t.Run("Appends after the last step", func(t *testing.T) {
		// Given: a new history
		history := NewHistory()

		// When: a board is appended after step 0
		err := history.Advance(0, Board{PlayerX})

		// Then: the history should have two entries
		require.NoError(t, err)
		require.Equal(t, 2, history.Len())

		board, ok := history.At(1)
		require.True(t, ok)
		assert.Equal(t, Board{PlayerX}, board)
	})

	t.Run("Drops entries after the step", func(t *testing.T) {
		// Given: a history with three moves
		history := NewHistory()
		require.NoError(t, history.Advance(0, Board{PlayerX}))
		require.NoError(t, history.Advance(1, Board{PlayerX, PlayerO}))
		require.NoError(t, history.Advance(2, Board{PlayerX, PlayerO, PlayerX}))

		// When: a new board is appended after step 1
		err := history.Advance(1, Board{PlayerX, EmptyCell, EmptyCell, PlayerO})

		// Then: the entries after step 1 should be replaced by the new board
		require.NoError(t, err)
		assert.Equal(t, []Board{
			{},
			{PlayerX},
			{PlayerX, EmptyCell, EmptyCell, PlayerO},
		}, history.Entries())
	})

	t.Run("Does not touch previously returned entries", func(t *testing.T) {
		// Given: a history and a copy of its entries
		history := NewHistory()
		require.NoError(t, history.Advance(0, Board{PlayerX}))
		require.NoError(t, history.Advance(1, Board{PlayerX, PlayerO}))
		before := history.Entries()

		// When: the history is rewound and advanced
		require.NoError(t, history.Advance(0, Board{EmptyCell, PlayerX}))

		// Then: the copy should be unchanged
		assert.Equal(t, []Board{{}, {PlayerX}, {PlayerX, PlayerO}}, before)
	})

	t.Run("Rejects steps out of range", func(t *testing.T) {
		history := NewHistory()

		require.ErrorIs(t, history.Advance(1, Board{PlayerX}), apperror.ErrStepOutOfRange)
		require.ErrorIs(t, history.Advance(-1, Board{PlayerX}), apperror.ErrStepOutOfRange)
		assert.Equal(t, 1, history.Len())
	})
}

func TestHistory_At(t *testing.T) {
	history := NewHistory()

	_, ok := history.At(1)
	assert.False(t, ok)

	_, ok = history.At(-1)
	assert.False(t, ok)
}

func TestRestoreHistory(t *testing.T) {
	t.Run("Restores a valid history", func(t *testing.T) {
		// Given: the entries of a legal game
		entries := []Board{
			{},
			{PlayerX},
			{PlayerX, PlayerO},
		}

		// When: restoring the history
		history, err := RestoreHistory(entries)

		// Then: it should hold the same entries
		require.NoError(t, err)
		assert.Equal(t, entries, history.Entries())
	})

	t.Run("Rejects corrupted histories", func(t *testing.T) {
		cases := map[string][]Board{
			"empty":                 {},
			"first board not empty": {{PlayerX}},
			"two marks at once":     {{}, {PlayerX, PlayerO}},
			"no new mark":           {{}, {}},
			"O moves first":         {{}, {PlayerO}},
			"overwritten cell":      {{}, {PlayerX}, {PlayerO}},
			"unknown mark":          {{}, {"Z"}},
			"move after a win": {
				{},
				{PlayerX},
				{PlayerX, EmptyCell, EmptyCell, PlayerO},
				{PlayerX, PlayerX, EmptyCell, PlayerO},
				{PlayerX, PlayerX, EmptyCell, PlayerO, PlayerO},
				{PlayerX, PlayerX, PlayerX, PlayerO, PlayerO},
				{PlayerX, PlayerX, PlayerX, PlayerO, PlayerO, PlayerO},
			},
		}

		for name, entries := range cases {
			t.Run(name, func(t *testing.T) {
				// When: restoring the corrupted history
				history, err := RestoreHistory(entries)

				// Then: ErrInvalidState should be returned
				require.ErrorIs(t, err, apperror.ErrInvalidState)
				assert.Nil(t, history)
			})
		}
	})
}
