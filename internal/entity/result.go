package entity

import "time"

// Result is a finished game as kept in the match history.
type Result struct {
	SessionID string `json:"session_id"`
	Mode      Mode   `json:"mode"`
	// AutomatedPlayer is the mark the automated player held, empty without one.
	AutomatedPlayer Cell      `json:"automated_player,omitempty"`
	Winner          Cell      `json:"winner,omitempty"`
	Line            []int     `json:"line,omitempty"`
	Board           Board     `json:"board"`
	FinishedAt      time.Time `json:"finished_at"`
}

func NewResult(snapshot *Snapshot) *Result {
	return &Result{
		SessionID:       snapshot.ID,
		Mode:            snapshot.Mode,
		AutomatedPlayer: snapshot.AutomatedPlayer,
		Winner:          snapshot.Outcome.Winner,
		Line:            snapshot.Outcome.Line,
		Board:           snapshot.Board,
		FinishedAt:      snapshot.UpdatedAt,
	}
}

func (that *Result) IsDraw() bool {
	return that.Winner == EmptyCell
}

// WonByAutomated reports whether the automated player won this game.
func (that *Result) WonByAutomated() bool {
	return that.AutomatedPlayer != EmptyCell && that.Winner == that.AutomatedPlayer
}

type Stats struct {
	Games  int `json:"games"`
	XWins  int `json:"x_wins"`
	OWins  int `json:"o_wins"`
	Draws  int `json:"draws"`
	AIWins int `json:"ai_wins"`
}
