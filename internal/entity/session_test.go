package entity

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/rocketscienceinc/inarow-backend/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunningSession(t *testing.T, size int) *Session {
	t.Helper()

	session := NewSession("123")
	_, err := session.Initialize(size)
	require.NoError(t, err)

	return session
}

func playMoves(t *testing.T, session *Session, cells ...int) []Event {
	t.Helper()

	var events []Event
	for _, cell := range cells {
		produced, err := session.ApplyMove(cell)
		require.NoError(t, err, "cell %d", cell)
		events = append(events, produced...)
	}

	return events
}

func TestSession_Initialize(t *testing.T) {
	t.Run("Starts an empty game with X to move", func(t *testing.T) {
		// Given: a fresh session
		session := NewSession("123")

		// When: initializing a 4x4 board
		events, err := session.Initialize(4)

		// Then: the board is empty, X moves first and the turn is announced
		require.NoError(t, err)
		assert.Equal(t, StatusOngoing, session.Status)
		assert.Equal(t, PlayerX, session.Turn)
		assert.Len(t, session.Board, 16)
		assert.Len(t, session.Rows(), 10)
		for _, cell := range session.Board {
			assert.Equal(t, EmptyCell, cell)
		}

		require.Equal(t, []Event{TurnChanged(PlayerX)}, events)
		assert.Equal(t, "--- Player X's Turn ---", events[0].Status)
	})

	t.Run("Rejects sizes outside the playable range", func(t *testing.T) {
		for _, size := range []int{-1, 0, 2, 11, 100} {
			// Given: a fresh session
			session := NewSession("123")

			// When: initializing with an out of range size
			events, err := session.Initialize(size)

			// Then: ErrInvalidSize is returned and nothing changes
			require.ErrorIs(t, err, apperror.ErrInvalidSize, "size %d", size)
			assert.Nil(t, events)
			assert.Equal(t, NewSession("123"), session)
		}
	})

	t.Run("Refuses to reset an active game", func(t *testing.T) {
		// Given: a game with one move played
		session := newRunningSession(t, 3)
		playMoves(t, session, 4)
		before := session.Clone()

		// When: initializing again
		_, err := session.Initialize(5)

		// Then: ErrSessionActive is returned and the game is untouched
		require.ErrorIs(t, err, apperror.ErrSessionActive)
		assert.Equal(t, before.Board, session.Board)
		assert.Equal(t, 3, session.Size)
		assert.Equal(t, PlayerO, session.Turn)
	})

	t.Run("A finished game can be started again", func(t *testing.T) {
		// Given: a game X has won
		session := newRunningSession(t, 3)
		playMoves(t, session, 0, 1, 4, 2, 8)
		require.True(t, session.IsFinished())

		// When: initializing a bigger board
		_, err := session.Initialize(5)

		// Then: a new empty game is running
		require.NoError(t, err)
		assert.True(t, session.IsRunning())
		assert.Len(t, session.Board, 25)
		assert.Equal(t, EmptyCell, session.Winner)
		assert.Nil(t, session.WinningRow)
	})
}

func TestSession_ApplyMove(t *testing.T) {
	t.Run("Successful move passes the turn", func(t *testing.T) {
		// Given: a new 3x3 game
		session := newRunningSession(t, 3)

		// When: X plays the center
		events, err := session.ApplyMove(4)

		// Then: the mark is placed and O is to move
		require.NoError(t, err)
		assert.Equal(t, PlayerX, session.Board[4])
		assert.Equal(t, PlayerO, session.Turn)
		require.Equal(t, []Event{MarkPlaced(4, PlayerX), TurnChanged(PlayerO)}, events)
	})

	t.Run("Main diagonal win", func(t *testing.T) {
		// Given: a new 3x3 game
		session := newRunningSession(t, 3)

		// When: X@0, O@1, X@4, O@2, X@8
		events := playMoves(t, session, 0, 1, 4, 2, 8)

		// Then: X wins on the main diagonal
		assert.Equal(t, StatusFinished, session.Status)
		assert.Equal(t, PlayerX, session.Winner)
		assert.Equal(t, []int{0, 4, 8}, session.WinningRow)
		assert.Equal(t, "--- Player X Won!!! ---", session.StatusText())

		last := events[len(events)-1]
		assert.Equal(t, EventWin, last.Kind)
		assert.Equal(t, PlayerX, last.Mark)
		assert.Equal(t, []int{0, 4, 8}, last.Cells)
	})

	t.Run("Full board without a row is a draw", func(t *testing.T) {
		// Given: a new 3x3 game
		session := newRunningSession(t, 3)

		// When: X@0,O@1,X@2,O@4,X@3,O@5,X@7,O@6,X@8
		events := playMoves(t, session, 0, 1, 2, 4, 3, 5, 7, 6, 8)

		// Then: the game ends in a draw
		assert.Equal(t, StatusFinished, session.Status)
		assert.True(t, session.IsDraw())
		assert.Equal(t, PlayerTie, session.Winner)
		assert.Nil(t, session.WinningRow)
		assert.Equal(t, Draw(), events[len(events)-1])
		assert.Equal(t, "--- It's a Draw!!! ---", session.StatusText())
	})

	t.Run("Simultaneous rows report the first in canonical order", func(t *testing.T) {
		// Given: X holds 1, 2, 3 and 6, O holds 4, 5, 7 and 8
		session := newRunningSession(t, 3)
		playMoves(t, session, 1, 4, 2, 5, 3, 7, 6, 8)
		require.True(t, session.IsRunning())

		// When: X fills the last cell, completing the top row and the left column
		playMoves(t, session, 0)

		// Then: the top row wins, even though the board is full
		assert.Equal(t, PlayerX, session.Winner)
		assert.Equal(t, []int{0, 1, 2}, session.WinningRow)
		assert.False(t, session.IsDraw())
	})

	t.Run("O can win too", func(t *testing.T) {
		// Given: a new 4x4 game
		session := newRunningSession(t, 4)

		// When: O completes the second column while X scatters
		playMoves(t, session, 0, 1, 2, 5, 3, 9, 15, 13)

		// Then: O wins with [1,5,9,13]
		assert.Equal(t, PlayerO, session.Winner)
		assert.Equal(t, []int{1, 5, 9, 13}, session.WinningRow)
		assert.Equal(t, PlayerO, session.Turn)
	})

	t.Run("Error on cell already occupied", func(t *testing.T) {
		// Given: a game where cell 0 belongs to X
		session := newRunningSession(t, 3)
		playMoves(t, session, 0)
		before := session.Clone()

		// When: O tries the same cell
		events, err := session.ApplyMove(0)

		// Then: ErrCellOccupied is returned and the board does not change
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		require.ErrorIs(t, err, apperror.ErrInvalidMove)
		assert.Nil(t, events)
		assert.Equal(t, before.Board, session.Board)
		assert.Equal(t, before.Turn, session.Turn)
	})

	t.Run("Error on out of range cell", func(t *testing.T) {
		for _, cell := range []int{-1, 9, 20} {
			// Given: a new 3x3 game
			session := newRunningSession(t, 3)

			// When: playing outside the board
			_, err := session.ApplyMove(cell)

			// Then: ErrCellOutOfRange is returned
			require.ErrorIs(t, err, apperror.ErrCellOutOfRange, "cell %d", cell)
			require.ErrorIs(t, err, apperror.ErrInvalidMove)
			assert.Equal(t, PlayerX, session.Turn)
		}
	})

	t.Run("Error when the game is not running", func(t *testing.T) {
		// Given: a session that was never initialized
		session := NewSession("123")

		// When: playing a move
		_, err := session.ApplyMove(0)

		// Then: ErrGameNotRunning is returned
		require.ErrorIs(t, err, apperror.ErrGameNotRunning)
		require.ErrorIs(t, err, apperror.ErrInvalidMove)
	})

	t.Run("Move after the game finished", func(t *testing.T) {
		// Given: a game X has won
		session := newRunningSession(t, 3)
		playMoves(t, session, 0, 1, 4, 2, 8)
		before := session.Clone()

		// When: O tries to keep playing
		_, err := session.ApplyMove(3)

		// Then: ErrGameNotRunning is returned and the board is unchanged
		require.ErrorIs(t, err, apperror.ErrGameNotRunning)
		assert.Equal(t, before.Board, session.Board)
	})

	t.Run("Mark counts stay balanced for random games", func(t *testing.T) {
		rnd := rand.New(rand.NewSource(42)) //nolint: gosec // deterministic test data

		for game := 0; game < 200; game++ {
			size := MinBoardSize + rnd.Intn(MaxBoardSize-MinBoardSize+1)
			session := newRunningSession(t, size)

			for session.IsRunning() {
				cell := rnd.Intn(size * size)
				_, err := session.ApplyMove(cell)
				if err != nil {
					require.ErrorIs(t, err, apperror.ErrCellOccupied)
				}

				x, o := session.CountMarks()
				diff := x - o
				require.True(t, diff == 0 || diff == 1, "x=%d o=%d", x, o)
			}

			require.True(t, session.IsFinished())
		}
	})
}

func TestSession_Terminate(t *testing.T) {
	t.Run("Terminate returns to uninitialized", func(t *testing.T) {
		// Given: a running game with moves
		session := newRunningSession(t, 5)
		playMoves(t, session, 0, 6)

		// When: terminating
		events := session.Terminate()

		// Then: the session is empty again
		assert.Equal(t, []Event{Cleared()}, events)
		assert.Equal(t, StatusUninitialized, session.Status)
		assert.Nil(t, session.Board)
		assert.Nil(t, session.Rows())
		assert.Equal(t, PlayerX, session.Turn)
		assert.Equal(t, "", session.StatusText())
	})

	t.Run("Terminate twice equals once", func(t *testing.T) {
		// Given: two identical running games
		once := newRunningSession(t, 3)
		twice := newRunningSession(t, 3)

		// When: one is terminated once, the other twice
		once.Terminate()
		twice.Terminate()
		twice.Terminate()

		// Then: both end in the same state
		assert.Equal(t, once, twice)
	})

	t.Run("Initialize after terminate gives an empty board", func(t *testing.T) {
		// Given: a game that was terminated mid play
		session := newRunningSession(t, 3)
		playMoves(t, session, 0, 1)
		session.Terminate()

		// When: initializing again
		_, err := session.Initialize(3)

		// Then: the board is empty and X moves
		require.NoError(t, err)
		assert.Equal(t, make([]Mark, 9), session.Board)
		assert.Equal(t, PlayerX, session.Turn)
	})
}

func TestSession_JSON(t *testing.T) {
	t.Run("Decoded session keeps playing", func(t *testing.T) {
		// Given: an encoded game in progress
		session := newRunningSession(t, 3)
		playMoves(t, session, 0, 1, 4, 2)

		data, err := json.Marshal(session)
		require.NoError(t, err)

		// When: decoding it and playing the winning move
		var decoded Session
		require.NoError(t, json.Unmarshal(data, &decoded))
		_, err = decoded.ApplyMove(8)

		// Then: the regenerated rows detect the win
		require.NoError(t, err)
		assert.Equal(t, PlayerX, decoded.Winner)
		assert.Equal(t, []int{0, 4, 8}, decoded.WinningRow)
	})

	t.Run("Board not matching the size is rejected", func(t *testing.T) {
		var decoded Session
		err := json.Unmarshal([]byte(`{"id":"1","size":3,"board":["X"],"status":"ongoing"}`), &decoded)

		require.Error(t, err)
	})
	t.Run("Unknown marks are rejected", func(t *testing.T) {
		// Given: a full top row of an unknown mark
		data := []byte(`{"id":"1","size":3,"board":["Z","Z","Z","","","","","",""],"status":"ongoing"}`)

		// When: decoding it
		var decoded Session
		err := json.Unmarshal(data, &decoded)

		// Then: it is refused instead of producing a winner
		assert.ErrorContains(t, err, `unknown mark "Z"`)
	})
}

func TestEvent_JSON(t *testing.T) {
	// Given: events without a status text
	for _, event := range []Event{MarkPlaced(3, PlayerO), Cleared()} {
		// When: encoding them
		data, err := json.Marshal(event)
		require.NoError(t, err)

		// Then: no empty status is written
		assert.NotContains(t, string(data), `"status"`)
	}

	data, err := json.Marshal(TurnChanged(PlayerX))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status":"--- Player X's Turn ---"`)
}
