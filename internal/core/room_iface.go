package core

import "github.com/dkeye/EducaGame/internal/domain"

// LeaveHook runs under the room lock right after a player was removed.
type LeaveHook func(s *domain.GameSession, wasCurrent bool)

// RoomStore is the session store as seen by the orchestrator and bots.
type RoomStore interface {
	CreateRoom(theme string, gameType domain.GameType, private bool) *domain.GameSession
	GetSession(roomID string) (*domain.GameSession, bool)
	// WithSession runs fn under the room lock. False when the room is gone.
	WithSession(roomID string, fn func(s *domain.GameSession)) bool
	// CheckJoin is JoinRoom's capacity and lookup check without the join.
	CheckJoin(roomID string, connID domain.ConnID) error
	JoinRoom(roomID string, connID domain.ConnID, playerName string) error
	LeaveRoom(connID domain.ConnID, hook LeaveHook) (roomID string, removed bool)
	ListPublicRooms() []domain.Room
	// Room returns the listing DTO of any room, private ones included.
	Room(roomID string) (domain.Room, bool)
	MaxPlayers() int
	Count() int
}
