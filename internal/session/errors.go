package session

import "errors"

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidMode      = errors.New("invalid game mode")
	ErrIllegalMove      = errors.New("illegal move")
	ErrGameFinished     = errors.New("game already finished")
	ErrInvalidMoveIndex = errors.New("invalid move index")
)
