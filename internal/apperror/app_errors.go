package apperror

import "errors"

var (
	ErrGameFinished     = errors.New("game is already finished")
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrInvalidCell      = errors.New("invalid cell index")
	ErrNoAutomatedTurn  = errors.New("automated player has no turn to play")
	ErrSessionNotFound  = errors.New("session not found")
	ErrNotFound         = errors.New("not found")
)

// IsRejectedMove reports whether err is a gameplay rejection that leaves state untouched.
func IsRejectedMove(err error) bool {
	return errors.Is(err, ErrGameFinished) ||
		errors.Is(err, ErrGameIsNotStarted) ||
		errors.Is(err, ErrNotYourTurn) ||
		errors.Is(err, ErrCellOccupied) ||
		errors.Is(err, ErrInvalidCell) ||
		errors.Is(err, ErrNoAutomatedTurn)
}
