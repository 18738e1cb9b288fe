package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tactical-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tactical-tictactoe/internal/entity"
)

// MakeTurn places player's mark on cell. A rejected move returns an error and leaves the game untouched.
func MakeTurn(game *entity.Game, player entity.Cell, cell int) error {
	if game.IsFinished() {
		return apperror.ErrGameFinished
	}

	if err := validateMove(game, player, cell); err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	game.Board[cell] = player
	updateGameStatus(game, player)

	return nil
}

// validateMove - checks if the move is valid.
func validateMove(game *entity.Game, player entity.Cell, cell int) error {
	if cell < 0 || cell >= entity.BoardSize {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if game.Turn != player {
		return apperror.ErrNotYourTurn
	}

	if game.Board.IsOccupied(cell) {
		return apperror.ErrCellOccupied
	}

	return nil
}

// updateGameStatus - evaluates the board after player's move; the turn only passes while the game goes on.
func updateGameStatus(game *entity.Game, player entity.Cell) {
	game.Outcome = Evaluate(game.Board)

	if game.IsFinished() {
		game.Turn = entity.EmptyCell
		return
	}

	game.Turn = player.Opponent()
}
