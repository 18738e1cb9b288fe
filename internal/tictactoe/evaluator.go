// Package tictactoe holds the rules of the game: outcome evaluation, move
// application and the automated opponent's move policy.
package tictactoe

import "github.com/rocketscienceinc/tactical-tictactoe/internal/entity"

// WinCombos lists every winning line: rows top to bottom, columns left to right, then diagonals.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Evaluate returns the outcome of the board. The first uniform line in WinCombos order wins.
func Evaluate(board entity.Board) entity.Outcome {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return entity.Won(a, combo)
		}
	}

	if board.IsFull() {
		return entity.Draw()
	}

	return entity.InProgress()
}

// hasLine reports whether player owns a complete line on the board.
func hasLine(board entity.Board, player entity.Cell) bool {
	for _, combo := range WinCombos {
		if board[combo[0]] == player && board[combo[1]] == player && board[combo[2]] == player {
			return true
		}
	}

	return false
}
