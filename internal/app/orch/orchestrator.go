// Package orch ties the transport to the session store, the engines and the
// broadcaster. Every mutation and the broadcast that follows it run under
// the room lock.
package orch

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/EducaGame/internal/app"
	"github.com/dkeye/EducaGame/internal/app/wheel"
	"github.com/dkeye/EducaGame/internal/core"
	"github.com/dkeye/EducaGame/internal/domain"
)

var (
	ErrNotHost       = errors.New("only the host can start the game")
	ErrNotInRoom     = errors.New("not in a room")
	ErrWrongGameType = errors.New("action not supported by this game type")
)

// BotScheduler is the part of bots.Scheduler the orchestrator needs.
type BotScheduler interface {
	ScheduleIfNeeded(roomID string) bool
}

type Orchestrator struct {
	Registry    *app.Registry
	Rooms       core.RoomStore
	Engines     *app.Engines
	Wheel       *wheel.Engine
	Bots        BotScheduler
	Broadcaster *app.Broadcaster
	History     core.HistoryRecorder
}

// roomOf resolves the room the connection is bound to.
func (o *Orchestrator) roomOf(connID domain.ConnID) (string, error) {
	roomID, ok := o.Registry.RoomOf(connID)
	if !ok {
		return "", ErrNotInRoom
	}
	return roomID, nil
}

// withRoom runs fn under the room lock and maps a vanished room to ErrNotInRoom.
func (o *Orchestrator) withRoom(roomID string, fn func(s *domain.GameSession) error) error {
	var err error
	if !o.Rooms.WithSession(roomID, func(s *domain.GameSession) { err = fn(s) }) {
		return ErrNotInRoom
	}
	return err
}

// publishState must be called with the room lock held.
func (o *Orchestrator) publishState(s *domain.GameSession) {
	o.broadcast(s.RoomID, core.StateEnvelope(s))
}

// broadcast must be called with the room lock held.
func (o *Orchestrator) broadcast(roomID string, env core.Envelope) {
	res := o.Broadcaster.Broadcast(roomID, env)
	if len(res.Dropped) > 0 {
		ids := make([]string, len(res.Dropped))
		for i, id := range res.Dropped {
			ids[i] = string(id)
		}
		log.Warn().Str("module", "orch").Str("room_id", roomID).Str("type", env.Type).
			Strs("dropped", ids).Int("sent_to", res.SentTo).Msg("broadcast not delivered to every member")
	}
}

// scheduleBots must be called without the room lock.
func (o *Orchestrator) scheduleBots(roomID string) {
	if o.Bots != nil {
		o.Bots.ScheduleIfNeeded(roomID)
	}
}

func (o *Orchestrator) recordCreated(t domain.GameType) {
	if o.History != nil {
		o.History.RecordGameCreated(t)
	}
}

// CreateRoom opens a new LOBBY room and counts it in the stats.
func (o *Orchestrator) CreateRoom(theme string, gameType domain.GameType, private bool) domain.Room {
	s := o.Rooms.CreateRoom(theme, gameType, private)
	o.recordCreated(gameType)
	return domain.Room{
		RoomID:     s.RoomID,
		Theme:      s.Theme,
		GameType:   s.GameType,
		MaxPlayers: o.Rooms.MaxPlayers(),
		IsPrivate:  private,
	}
}
