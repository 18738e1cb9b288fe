package tictactoe

import (
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/tactical-tictactoe/internal/entity"
)

const centerCell = 4

var cornerCells = [4]int{0, 2, 6, 8}

// Rand is the randomness used to break ties between equally good cells.
type Rand interface {
	Intn(n int) int
}

type globalRand struct{}

func (globalRand) Intn(n int) int {
	return rand.Intn(n) //nolint: gosec // move choice, not security
}

// Policy picks the automated player's move with a fixed cascade of rules:
// win, block, center, random corner, random cell. It looks one ply ahead only,
// so a fork beats it.
type Policy struct {
	rnd Rand
}

// NewPolicy returns a policy drawing ties from rnd, or from the shared math/rand source when rnd is nil.
func NewPolicy(rnd Rand) *Policy {
	if rnd == nil {
		rnd = globalRand{}
	}

	return &Policy{rnd: rnd}
}

// ChooseMove returns an empty cell for player. It panics if the board is full.
func (that *Policy) ChooseMove(board entity.Board, player entity.Cell) int {
	if !player.IsPlayer() {
		panic(fmt.Sprintf("policy asked to move for %q", player))
	}

	available := board.EmptyCells()
	if len(available) == 0 {
		panic("policy asked to move on a full board")
	}

	if cell, ok := winningCell(board, available, player); ok {
		return cell
	}

	if cell, ok := winningCell(board, available, player.Opponent()); ok {
		return cell
	}

	if !board.IsOccupied(centerCell) {
		return centerCell
	}

	corners := make([]int, 0, len(cornerCells))
	for _, cell := range cornerCells {
		if !board.IsOccupied(cell) {
			corners = append(corners, cell)
		}
	}

	if len(corners) > 0 {
		return corners[that.rnd.Intn(len(corners))]
	}

	return available[that.rnd.Intn(len(available))]
}

// winningCell returns the lowest available cell that would complete a line for player.
func winningCell(board entity.Board, available []int, player entity.Cell) (int, bool) {
	for _, cell := range available {
		board[cell] = player
		won := hasLine(board, player)
		board[cell] = entity.EmptyCell

		if won {
			return cell, true
		}
	}

	return 0, false
}
