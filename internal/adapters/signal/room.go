package signal

import (
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/EducaGame/internal/app"
	"github.com/dkeye/EducaGame/internal/app/orch"
	"github.com/dkeye/EducaGame/internal/core"
	"github.com/dkeye/EducaGame/internal/domain"
)

type joinPayload struct {
	RoomID     string `json:"roomId" validate:"required,roomid"`
	PlayerName string `json:"playerName" validate:"required,playername"`
}

func (ctl *SignalWSController) handleJoin(id domain.ConnID, conn core.SignalConnection, data []byte) {
	var p joinPayload
	if err := decode(data, &p); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("conn_id", string(id)).Msg("bad join payload")
		ctl.sendError(conn, "Invalid room or player name")
		return
	}
	log.Info().Str("module", "signal").Str("conn_id", string(id)).Str("room_id", p.RoomID).Msg("join")

	if err := ctl.Orch.Join(id, p.RoomID, strings.TrimSpace(p.PlayerName)); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn_id", string(id)).Str("room_id", p.RoomID).Msg("join failed")
		switch {
		case errors.Is(err, app.ErrRoomFull):
			ctl.sendError(conn, "Room is full")
		case errors.Is(err, app.ErrRoomNotFound):
			ctl.sendError(conn, "Room not found")
		default:
			ctl.sendError(conn, "Could not join room")
		}
	}
}

func (ctl *SignalWSController) handleStart(id domain.ConnID, conn core.SignalConnection) {
	if err := ctl.Orch.Start(id); err != nil {
		ctl.sendError(conn, errorMessage(err, "Invalid state"))
	}
}

// errorMessage maps orchestrator errors to client text.
func errorMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, orch.ErrNotInRoom):
		return "Join a room first"
	case errors.Is(err, orch.ErrNotHost):
		return "Only the host can start the game"
	case errors.Is(err, orch.ErrWrongGameType):
		return "Not available in this game"
	}
	return fallback
}
