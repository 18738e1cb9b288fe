package entity

import "time"

type State string

const (
	StateSetup      State = "setup"
	StateInProgress State = "in_progress"
	StateTerminal   State = "terminal"
	// StateClosed marks the last update of a deleted session.
	StateClosed State = "closed"
)

// Snapshot is the read-only view of a session handed to presentation layers.
type Snapshot struct {
	ID              string    `json:"id,omitempty"`
	Revision        uint64    `json:"revision"`
	State           State     `json:"state"`
	Mode            Mode      `json:"mode,omitempty"`
	Board           Board     `json:"board"`
	Turn            Cell      `json:"player_turn,omitempty"`
	Outcome         Outcome   `json:"outcome"`
	AutomatedPlayer Cell      `json:"automated_player,omitempty"`
	AutomatedTurn   bool      `json:"automated_turn"`
	Headline        string    `json:"headline,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (that *Snapshot) IsTerminal() bool {
	return that.State == StateTerminal
}

func (that *Snapshot) IsClosed() bool {
	return that.State == StateClosed
}

// Headline is the banner shown once a game is over.
func Headline(mode Mode, outcome Outcome, automated Cell) string {
	switch {
	case outcome.Status == StatusDraw:
		return "Mission Stalemate"
	case outcome.Status != StatusWon:
		return ""
	case mode == ModeHumanVsAutomated && outcome.Winner == automated:
		return "AI Victorious"
	case mode == ModeHumanVsAutomated:
		return "Mission Accomplished"
	default:
		return "Operator " + string(outcome.Winner) + " Victorious"
	}
}
