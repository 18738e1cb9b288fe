package session

import (
	"testing"
	"time"

	"github.com/rocketscienceinc/tactical-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tactical-tictactoe/internal/entity"
	"github.com/rocketscienceinc/tactical-tictactoe/internal/tictactoe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// firstCellRand always picks the first tied cell.
type firstCellRand struct{}

func (firstCellRand) Intn(int) int { return 0 }

func newController(t *testing.T, mode entity.Mode) *Controller {
	t.Helper()

	controller := NewController(tictactoe.NewPolicy(firstCellRand{}), entity.PlayerO, nil)
	require.NoError(t, controller.SelectMode(mode))

	return controller
}

func requestMoves(t *testing.T, controller *Controller, cells ...int) {
	t.Helper()

	for _, cell := range cells {
		require.NoError(t, controller.RequestMove(cell), "cell %d", cell)
	}
}

func TestController_Setup(t *testing.T) {
	t.Run("Starts in setup and rejects moves", func(t *testing.T) {
		// Given: a controller without a mode
		controller := NewController(tictactoe.NewPolicy(nil), entity.PlayerO, nil)

		// When: a move is requested
		err := controller.RequestMove(0)

		// Then: it is rejected and the controller stays in setup
		require.ErrorIs(t, err, apperror.ErrGameIsNotStarted)
		assert.Equal(t, entity.StateSetup, controller.State())
		assert.ErrorIs(t, controller.Reset(), apperror.ErrGameIsNotStarted)
	})

	t.Run("SelectMode starts a fresh game", func(t *testing.T) {
		controller := newController(t, entity.ModeHumanVsHuman)

		snapshot := controller.Snapshot()

		assert.Equal(t, entity.StateInProgress, snapshot.State)
		assert.Equal(t, entity.ModeHumanVsHuman, snapshot.Mode)
		assert.Equal(t, entity.Board{}, snapshot.Board)
		assert.Equal(t, entity.PlayerX, snapshot.Turn)
		assert.Equal(t, entity.InProgress(), snapshot.Outcome)
		assert.Empty(t, snapshot.AutomatedPlayer)
	})

	t.Run("SelectMode rejects unknown modes", func(t *testing.T) {
		controller := NewController(tictactoe.NewPolicy(nil), entity.PlayerO, nil)

		err := controller.SelectMode("chess")

		require.ErrorIs(t, err, entity.ErrUnknownMode)
		assert.Equal(t, entity.StateSetup, controller.State())
	})

	t.Run("Panics for an invalid automated mark", func(t *testing.T) {
		assert.Panics(t, func() { NewController(tictactoe.NewPolicy(nil), entity.EmptyCell, nil) })
	})
}

func TestController_HumanVsHuman(t *testing.T) {
	t.Run("X wins the top row", func(t *testing.T) {
		controller := newController(t, entity.ModeHumanVsHuman)

		// When: moves 0,3,1,4,2 are played alternately
		requestMoves(t, controller, 0, 3, 1, 4, 2)

		// Then: X has won and the session is terminal
		snapshot := controller.Snapshot()
		assert.Equal(t, entity.StateTerminal, snapshot.State)
		assert.Equal(t, entity.Won(entity.PlayerX, [3]int{0, 1, 2}), snapshot.Outcome)
		assert.Empty(t, snapshot.Turn)
		assert.Equal(t, "Operator X Victorious", snapshot.Headline)
	})

	t.Run("Draw", func(t *testing.T) {
		controller := newController(t, entity.ModeHumanVsHuman)

		requestMoves(t, controller, 0, 1, 2, 4, 3, 5, 7, 6, 8)

		snapshot := controller.Snapshot()
		assert.Equal(t, entity.StateTerminal, snapshot.State)
		assert.Equal(t, entity.Draw(), snapshot.Outcome)
		assert.Equal(t, "Mission Stalemate", snapshot.Headline)
	})

	t.Run("Rejected moves change nothing", func(t *testing.T) {
		controller := newController(t, entity.ModeHumanVsHuman)
		requestMoves(t, controller, 4)
		before := controller.Snapshot()

		// When: occupied and out of range cells are requested
		require.ErrorIs(t, controller.RequestMove(4), apperror.ErrCellOccupied)
		require.ErrorIs(t, controller.RequestMove(9), apperror.ErrInvalidCell)
		require.ErrorIs(t, controller.RequestMove(-3), apperror.ErrInvalidCell)

		// Then: the state is the same
		assert.Equal(t, before, controller.Snapshot())
	})

	t.Run("Moves after the end are rejected", func(t *testing.T) {
		controller := newController(t, entity.ModeHumanVsHuman)
		requestMoves(t, controller, 0, 3, 1, 4, 2)
		before := controller.Snapshot()

		err := controller.RequestMove(8)

		require.ErrorIs(t, err, apperror.ErrGameFinished)
		assert.Equal(t, before, controller.Snapshot())
	})

	t.Run("PlayAutomated is rejected without an automated player", func(t *testing.T) {
		controller := newController(t, entity.ModeHumanVsHuman)

		_, err := controller.PlayAutomated()

		require.ErrorIs(t, err, apperror.ErrNoAutomatedTurn)
	})
}

func TestController_HumanVsAutomated(t *testing.T) {
	t.Run("Human move hands the turn to the automated player", func(t *testing.T) {
		controller := newController(t, entity.ModeHumanVsAutomated)

		// When: the human plays the corner
		requestMoves(t, controller, 0)

		// Then: the automated player is due
		snapshot := controller.Snapshot()
		assert.True(t, snapshot.AutomatedTurn)
		assert.Equal(t, entity.PlayerO, snapshot.Turn)
		assert.Equal(t, entity.PlayerO, snapshot.AutomatedPlayer)
	})

	t.Run("Human cannot play during the automated turn", func(t *testing.T) {
		controller := newController(t, entity.ModeHumanVsAutomated)
		requestMoves(t, controller, 0)
		before := controller.Snapshot()

		err := controller.RequestMove(1)

		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Equal(t, before, controller.Snapshot())
	})

	t.Run("Automated player takes the center", func(t *testing.T) {
		controller := newController(t, entity.ModeHumanVsAutomated)
		requestMoves(t, controller, 0)

		cell, err := controller.PlayAutomated()

		require.NoError(t, err)
		assert.Equal(t, 4, cell)
		assert.Equal(t, entity.PlayerX, controller.Snapshot().Turn)
		assert.False(t, controller.AutomatedTurn())
	})

	t.Run("Automated player blocks", func(t *testing.T) {
		controller := newController(t, entity.ModeHumanVsAutomated)
		requestMoves(t, controller, 0)
		_, err := controller.PlayAutomated() // center
		require.NoError(t, err)
		requestMoves(t, controller, 1)

		cell, err := controller.PlayAutomated()

		require.NoError(t, err)
		assert.Equal(t, 2, cell)
	})

	t.Run("PlayAutomated is rejected on the human turn", func(t *testing.T) {
		controller := newController(t, entity.ModeHumanVsAutomated)
		before := controller.Snapshot()

		_, err := controller.PlayAutomated()

		require.ErrorIs(t, err, apperror.ErrNoAutomatedTurn)
		assert.Equal(t, before, controller.Snapshot())
	})

	t.Run("Automated X opens the game", func(t *testing.T) {
		controller := NewController(tictactoe.NewPolicy(firstCellRand{}), entity.PlayerX, nil)
		require.NoError(t, controller.SelectMode(entity.ModeHumanVsAutomated))

		require.True(t, controller.AutomatedTurn())
		require.ErrorIs(t, controller.RequestMove(0), apperror.ErrNotYourTurn)

		cell, err := controller.PlayAutomated()
		require.NoError(t, err)
		assert.Equal(t, 4, cell)
		require.NoError(t, controller.RequestMove(0))
	})

	t.Run("Full game against the automated player ends", func(t *testing.T) {
		controller := newController(t, entity.ModeHumanVsAutomated)

		for controller.State() == entity.StateInProgress {
			if controller.AutomatedTurn() {
				_, err := controller.PlayAutomated()
				require.NoError(t, err)
				continue
			}

			board := controller.Snapshot().Board
			require.NoError(t, controller.RequestMove(board.EmptyCells()[0]))
		}

		snapshot := controller.Snapshot()
		assert.Equal(t, entity.StateTerminal, snapshot.State)
		assert.NotEmpty(t, snapshot.Headline)
	})
}

func TestController_ResetAndChangeMode(t *testing.T) {
	t.Run("Reset keeps the mode", func(t *testing.T) {
		controller := newController(t, entity.ModeHumanVsAutomated)
		requestMoves(t, controller, 0)

		require.NoError(t, controller.Reset())

		snapshot := controller.Snapshot()
		assert.Equal(t, entity.ModeHumanVsAutomated, snapshot.Mode)
		assert.Equal(t, entity.Board{}, snapshot.Board)
		assert.Equal(t, entity.PlayerX, snapshot.Turn)
		assert.Equal(t, entity.InProgress(), snapshot.Outcome)
		assert.False(t, snapshot.AutomatedTurn)
	})

	t.Run("Reset after a win", func(t *testing.T) {
		controller := newController(t, entity.ModeHumanVsHuman)
		requestMoves(t, controller, 0, 3, 1, 4, 2)

		require.NoError(t, controller.Reset())

		assert.Equal(t, entity.StateInProgress, controller.State())
		require.NoError(t, controller.RequestMove(0))
	})

	t.Run("ChangeMode returns to setup", func(t *testing.T) {
		controller := newController(t, entity.ModeHumanVsHuman)
		requestMoves(t, controller, 0)

		controller.ChangeMode()

		snapshot := controller.Snapshot()
		assert.Equal(t, entity.StateSetup, snapshot.State)
		assert.Empty(t, snapshot.Mode)
		assert.Equal(t, entity.Board{}, snapshot.Board)
		require.ErrorIs(t, controller.RequestMove(1), apperror.ErrGameIsNotStarted)
	})
}

func TestController_Subscribe(t *testing.T) {
	// Given: a listener on a fresh controller
	controller := NewController(tictactoe.NewPolicy(firstCellRand{}), entity.PlayerO, nil)

	var snapshots []entity.Snapshot
	controller.Subscribe(func(snapshot entity.Snapshot) {
		snapshots = append(snapshots, snapshot)
	})

	// When: accepted and rejected transitions happen
	require.NoError(t, controller.SelectMode(entity.ModeHumanVsAutomated))
	require.NoError(t, controller.RequestMove(0))
	require.Error(t, controller.RequestMove(0))
	_, err := controller.PlayAutomated()
	require.NoError(t, err)

	// Then: only accepted transitions are published, in order
	require.Len(t, snapshots, 3)
	assert.Equal(t, entity.Board{}, snapshots[0].Board)
	assert.True(t, snapshots[1].AutomatedTurn)
	assert.Equal(t, entity.PlayerO, snapshots[2].Board[4])
}

func TestController_Clock(t *testing.T) {
	// Given: a controller on a manual clock
	now := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	controller := NewController(tictactoe.NewPolicy(firstCellRand{}), entity.PlayerO, func() time.Time { return now })
	assert.Equal(t, now, controller.Snapshot().UpdatedAt)

	// When: time passes and a move is accepted
	now = now.Add(time.Minute)
	require.NoError(t, controller.SelectMode(entity.ModeHumanVsHuman))
	now = now.Add(time.Minute)
	require.NoError(t, controller.RequestMove(0))

	// Then: the snapshot carries the time of the last transition
	movedAt := now
	assert.Equal(t, movedAt, controller.Snapshot().UpdatedAt)

	// When: a rejected move happens later
	now = now.Add(time.Minute)
	require.Error(t, controller.RequestMove(0))

	// Then: the timestamp does not move
	assert.Equal(t, movedAt, controller.Snapshot().UpdatedAt)
}
