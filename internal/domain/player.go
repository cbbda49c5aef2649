// Package domain contains the game entities and their invariants, no transport here.
package domain

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	MaxPlayerNameLen = 32
	MaxRoomIDLen     = 64
)

var (
	ErrPlayerNameEmpty   = errors.New("player name empty")
	ErrPlayerNameTooLong = errors.New("player name too long")
)

// ConnID identifies one WebSocket connection. Human players use it as their id.
type ConnID string

type Player struct {
	ID        ConnID `json:"id"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Connected bool   `json:"connected"`
	Host      bool   `json:"host"`
	Bot       bool   `json:"bot,omitempty"`
}

// NewPlayer avoids raw literals in adapters and keeps construction obvious.
func NewPlayer(id ConnID, name string) (*Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrPlayerNameEmpty
	}
	if utf8.RuneCountInString(name) > MaxPlayerNameLen {
		return nil, ErrPlayerNameTooLong
	}
	return &Player{ID: id, Name: name, Connected: true}, nil
}

func NewBot(id ConnID, name string) *Player {
	return &Player{ID: id, Name: name, Connected: true, Bot: true}
}

func (p *Player) AddScore(delta int) { p.Score += delta }

func (p *Player) ResetScore() { p.Score = 0 }
