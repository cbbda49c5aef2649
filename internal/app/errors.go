package app

import "errors"

var (
	ErrInvalidState  = errors.New("invalid state")
	ErrNotConnected  = errors.New("connection not bound")
	ErrUnknownEngine = errors.New("no engine for game type")
)
