package config

import "errors"

var ErrInvalidBotMark = errors.New("bot mark must be X or O")
