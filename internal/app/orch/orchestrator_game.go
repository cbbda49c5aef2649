package orch

import (
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/EducaGame/internal/app"
	"github.com/dkeye/EducaGame/internal/app/wheel"
	"github.com/dkeye/EducaGame/internal/core"
	"github.com/dkeye/EducaGame/internal/domain"
)

// Start moves the caller's room from LOBBY to PLAYING. Host only.
func (o *Orchestrator) Start(connID domain.ConnID) error {
	roomID, err := o.roomOf(connID)
	if err != nil {
		return err
	}
	err = o.withRoom(roomID, func(s *domain.GameSession) error {
		if s.HostConnectionID != connID {
			return ErrNotHost
		}
		if err := o.Engines.Start(s); err != nil {
			return err
		}
		o.publishState(s)
		return nil
	})
	if err != nil {
		return err
	}
	log.Info().Str("module", "orch").Str("conn_id", string(connID)).Str("room_id", roomID).Msg("game started")
	o.scheduleBots(roomID)
	return nil
}

func (o *Orchestrator) Spin(connID domain.ConnID) error {
	return o.wheelAction(connID, func(s *domain.GameSession) error {
		res, ok := o.Wheel.SpinWheel(s, connID)
		if !ok {
			return app.ErrInvalidState
		}
		o.broadcast(s.RoomID, core.EventEnvelope(core.MsgWheelSpun, res))
		return nil
	})
}

// Guess uses the first rune of letter.
func (o *Orchestrator) Guess(connID domain.ConnID, letter string) error {
	r, _ := utf8.DecodeRuneInString(letter)
	if r == utf8.RuneError {
		return app.ErrInvalidState
	}
	return o.wheelAction(connID, func(s *domain.GameSession) error {
		if !o.Wheel.ProcessGuess(s, connID, r) {
			return app.ErrInvalidState
		}
		return nil
	})
}

func (o *Orchestrator) Solve(connID domain.ConnID, phrase string) error {
	return o.wheelAction(connID, func(s *domain.GameSession) error {
		if !o.Wheel.ProcessSolve(s, connID, phrase) {
			return app.ErrInvalidState
		}
		return nil
	})
}

// wheelAction runs a ROLETRANDO move, broadcasts STATE on success and then
// gives the bots a chance to play.
func (o *Orchestrator) wheelAction(connID domain.ConnID, fn func(s *domain.GameSession) error) error {
	roomID, err := o.roomOf(connID)
	if err != nil {
		return err
	}
	err = o.withRoom(roomID, func(s *domain.GameSession) error {
		if s.GameType != domain.GameRoletrando {
			return ErrWrongGameType
		}
		if err := fn(s); err != nil {
			return err
		}
		o.publishState(s)
		return nil
	})
	if err != nil {
		return err
	}
	o.scheduleBots(roomID)
	return nil
}

// PlayBotTurn plays one move for the bot holding the turn, if any.
func (o *Orchestrator) PlayBotTurn(roomID string) {
	o.Rooms.WithSession(roomID, func(s *domain.GameSession) {
		if !wheel.BotTurn(s) {
			return
		}
		spin, acted := o.Wheel.PlayBot(s)
		if !acted {
			return
		}
		if spin != nil {
			o.broadcast(roomID, core.EventEnvelope(core.MsgWheelSpun, spin))
		}
		o.publishState(s)
	})
}
