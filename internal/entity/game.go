package entity

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusDraw       Status = "draw"
)

// Outcome is the terminal verdict of a board. Winner and Line are only set for StatusWon.
type Outcome struct {
	Status Status `json:"status"`
	Winner Cell   `json:"winner,omitempty"`
	Line   []int  `json:"line,omitempty"`
}

func InProgress() Outcome {
	return Outcome{Status: StatusInProgress}
}

func Won(player Cell, line [3]int) Outcome {
	return Outcome{Status: StatusWon, Winner: player, Line: []int{line[0], line[1], line[2]}}
}

func Draw() Outcome {
	return Outcome{Status: StatusDraw}
}

func (that Outcome) IsTerminal() bool {
	return that.Status == StatusWon || that.Status == StatusDraw
}

// Game is the mutable state of one match. Turn is EmptyCell once the game is finished.
type Game struct {
	Board   Board   `json:"board"`
	Turn    Cell    `json:"player_turn"`
	Outcome Outcome `json:"outcome"`
}

func NewGame() *Game {
	return &Game{
		Turn:    PlayerX,
		Outcome: InProgress(),
	}
}

func (that *Game) IsFinished() bool {
	return that.Outcome.IsTerminal()
}

func (that *Game) IsOngoing() bool {
	return that.Outcome.Status == StatusInProgress
}
