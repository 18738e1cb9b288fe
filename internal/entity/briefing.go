package entity

import "time"

// BriefingStepInterval is how long each briefing line stays on screen.
const BriefingStepInterval = 3 * time.Second

// Briefing holds the intro lines shown before the mode choice.
var Briefing = []string{
	"Welcome to Tactical Tic-Tac-toe, soldier.",
	"Your objective: Create a line of three identical symbols - horizontally, vertically, or diagonally.",
	"X moves first, followed by O. Choose your positions strategically.",
	"You can challenge another operator or face our advanced AI system.",
	"Remember: Victory comes to those who think ahead. Good luck, operator.",
}
