package entity

import (
	"errors"
	"fmt"
)

var ErrUnknownMode = errors.New("unknown game mode")

type Mode string

const (
	ModeHumanVsHuman     Mode = "pvp"
	ModeHumanVsAutomated Mode = "ai"
)

func ParseMode(value string) (Mode, error) {
	switch mode := Mode(value); mode {
	case ModeHumanVsHuman, ModeHumanVsAutomated:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, value)
	}
}

func (that Mode) IsValid() bool {
	return that == ModeHumanVsHuman || that == ModeHumanVsAutomated
}

func (that Mode) WithAutomatedPlayer() bool {
	return that == ModeHumanVsAutomated
}
