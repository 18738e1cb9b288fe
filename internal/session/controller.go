// Package session drives a single game through its lifecycle: mode selection,
// human and automated moves, reset and mode change.
//
// A Controller is not safe for concurrent use. Its owner serializes calls.
package session

import (
	"fmt"
	"time"

	"github.com/rocketscienceinc/tactical-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tactical-tictactoe/internal/entity"
	"github.com/rocketscienceinc/tactical-tictactoe/internal/tictactoe"
)

type movePolicy interface {
	ChooseMove(board entity.Board, player entity.Cell) int
}

// Listener receives the session state after every accepted transition.
type Listener func(snapshot entity.Snapshot)

type Controller struct {
	policy    movePolicy
	automated entity.Cell
	now       func() time.Time

	mode      entity.Mode
	game      *entity.Game
	updatedAt time.Time

	listeners []Listener
}

// NewController returns a controller in setup state. automated is the mark the
// policy plays under ModeHumanVsAutomated. now stamps transitions; nil uses time.Now.
func NewController(policy movePolicy, automated entity.Cell, now func() time.Time) *Controller {
	if !automated.IsPlayer() {
		panic(fmt.Sprintf("automated player must be X or O, got %q", automated))
	}

	if now == nil {
		now = time.Now
	}

	controller := &Controller{
		policy:    policy,
		automated: automated,
		now:       now,
	}
	controller.updatedAt = controller.now()

	return controller
}

func (that *Controller) Subscribe(listener Listener) {
	that.listeners = append(that.listeners, listener)
}

func (that *Controller) Mode() entity.Mode {
	return that.mode
}

func (that *Controller) State() entity.State {
	switch {
	case that.game == nil:
		return entity.StateSetup
	case that.game.IsFinished():
		return entity.StateTerminal
	default:
		return entity.StateInProgress
	}
}

// SelectMode starts a fresh game in mode, discarding any current one.
func (that *Controller) SelectMode(mode entity.Mode) error {
	if !mode.IsValid() {
		return fmt.Errorf("%w: %q", entity.ErrUnknownMode, mode)
	}

	that.mode = mode
	that.game = entity.NewGame()
	that.changed()

	return nil
}

// ChangeMode drops the game and returns to setup.
func (that *Controller) ChangeMode() {
	that.mode = ""
	that.game = nil
	that.changed()
}

// Reset starts a fresh game keeping the mode.
func (that *Controller) Reset() error {
	if that.game == nil {
		return apperror.ErrGameIsNotStarted
	}

	that.game = entity.NewGame()
	that.changed()

	return nil
}

// RequestMove plays cell for the human whose turn it is. Under
// ModeHumanVsAutomated a request during the automated player's turn is
// rejected. A rejected request changes nothing.
func (that *Controller) RequestMove(cell int) error {
	if that.game == nil {
		return apperror.ErrGameIsNotStarted
	}

	if err := tictactoe.MakeTurn(that.game, that.humanMark(), cell); err != nil {
		return fmt.Errorf("move rejected: %w", err)
	}

	that.changed()

	return nil
}

// PlayAutomated lets the policy play the automated player's turn and returns the chosen cell.
func (that *Controller) PlayAutomated() (int, error) {
	if that.game == nil {
		return 0, apperror.ErrGameIsNotStarted
	}

	if !that.AutomatedTurn() {
		return 0, apperror.ErrNoAutomatedTurn
	}

	cell := that.policy.ChooseMove(that.game.Board, that.automated)
	if err := tictactoe.MakeTurn(that.game, that.automated, cell); err != nil {
		// the policy only returns empty cells
		panic(fmt.Sprintf("automated move on cell %d: %v", cell, err))
	}

	that.changed()

	return cell, nil
}

// AutomatedTurn reports whether the automated player is due to move.
func (that *Controller) AutomatedTurn() bool {
	return that.mode.WithAutomatedPlayer() &&
		that.game != nil &&
		that.game.IsOngoing() &&
		that.game.Turn == that.automated
}

func (that *Controller) Snapshot() entity.Snapshot {
	snapshot := entity.Snapshot{
		State:     that.State(),
		Mode:      that.mode,
		UpdatedAt: that.updatedAt,
	}

	if that.mode.WithAutomatedPlayer() {
		snapshot.AutomatedPlayer = that.automated
	}

	if that.game == nil {
		return snapshot
	}

	snapshot.Board = that.game.Board
	snapshot.Turn = that.game.Turn
	snapshot.Outcome = that.game.Outcome
	snapshot.Outcome.Line = append([]int(nil), that.game.Outcome.Line...)
	snapshot.AutomatedTurn = that.AutomatedTurn()
	snapshot.Headline = entity.Headline(that.mode, that.game.Outcome, that.automated)

	return snapshot
}

// humanMark is the mark a human request plays. Under ModeHumanVsAutomated the
// human always holds the automated player's opponent mark.
func (that *Controller) humanMark() entity.Cell {
	if that.mode.WithAutomatedPlayer() {
		return that.automated.Opponent()
	}

	return that.game.Turn
}

func (that *Controller) changed() {
	that.updatedAt = that.now()

	snapshot := that.Snapshot()
	for _, listener := range that.listeners {
		listener(snapshot)
	}
}
