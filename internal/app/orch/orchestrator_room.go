package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/EducaGame/internal/core"
	"github.com/dkeye/EducaGame/internal/domain"
)

// Join puts the connection in roomID, leaving any previous room first.
// A switch to a missing or full room fails before the previous room is left.
// The joiner gets JOIN_OK before the room's STATE.
func (o *Orchestrator) Join(connID domain.ConnID, roomID, playerName string) error {
	if err := o.Rooms.CheckJoin(roomID, connID); err != nil {
		return err
	}
	if prev, ok := o.Registry.RoomOf(connID); ok && prev != roomID {
		o.leave(connID)
		log.Info().Str("module", "orch").Str("conn_id", string(connID)).Str("from_room", prev).Msg("left previous room")
	}
	if err := o.Rooms.JoinRoom(roomID, connID, playerName); err != nil {
		return err
	}
	err := o.withRoom(roomID, func(s *domain.GameSession) error {
		if !s.HasPlayer(connID) {
			return ErrNotInRoom
		}
		o.Registry.UpdateRoom(connID, roomID)
		if err := o.Broadcaster.SendTo(connID, core.EventEnvelope(core.MsgJoinOK, core.JoinOKPayload{ConnectionID: connID})); err != nil {
			log.Warn().Err(err).Str("module", "orch").Str("conn_id", string(connID)).Msg("join ok not delivered")
		}
		o.publishState(s)
		return nil
	})
	if err != nil {
		return err
	}
	log.Info().Str("module", "orch").Str("conn_id", string(connID)).Str("room_id", roomID).Msg("joined room")
	return nil
}

// Disconnect removes the connection from its room and from the registry.
func (o *Orchestrator) Disconnect(connID domain.ConnID) {
	o.leave(connID)
	o.Registry.Unbind(connID)
}

func (o *Orchestrator) leave(connID domain.ConnID) {
	o.Registry.RemoveRoom(connID)
	roomID, removed := o.Rooms.LeaveRoom(connID, o.Engines.PlayerLeft)
	if roomID == "" {
		return
	}
	if removed {
		o.Rooms.WithSession(roomID, o.publishState)
	}
	o.scheduleBots(roomID)
}
