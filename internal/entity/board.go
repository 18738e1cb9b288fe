package entity

import (
	"fmt"
	"strings"
)

const BoardSize = 9

type Cell string

const (
	PlayerX   Cell = "X"
	PlayerO   Cell = "O"
	EmptyCell Cell = ""
)

// IsPlayer reports whether the cell holds a player mark rather than being empty or garbage.
func (that Cell) IsPlayer() bool {
	return that == PlayerX || that == PlayerO
}

// Opponent returns the other player's mark. EmptyCell has no opponent.
func (that Cell) Opponent() Cell {
	switch that {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return EmptyCell
	}
}

// Board is the 3x3 grid stored row-major: 0,1,2 / 3,4,5 / 6,7,8.
type Board [BoardSize]Cell

// IsOccupied panics on an index outside the board; callers validate gameplay input first.
func (that Board) IsOccupied(index int) bool {
	if index < 0 || index >= BoardSize {
		panic(fmt.Sprintf("board index %d out of range", index))
	}

	return that[index] != EmptyCell
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// EmptyCells returns the free indices in ascending order.
func (that Board) EmptyCells() []int {
	cells := make([]int, 0, BoardSize)
	for i, cell := range that {
		if cell == EmptyCell {
			cells = append(cells, i)
		}
	}

	return cells
}

func (that Board) String() string {
	var s strings.Builder
	for i, cell := range that {
		if cell == EmptyCell {
			s.WriteByte('.')
		} else {
			s.WriteString(string(cell))
		}

		if i%3 == 2 && i != BoardSize-1 {
			s.WriteByte('/')
		}
	}

	return s.String()
}
