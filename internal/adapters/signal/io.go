package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/EducaGame/internal/app"
	"github.com/dkeye/EducaGame/internal/core"
	"github.com/dkeye/EducaGame/internal/domain"
)

const (
	msgJoin      = "JOIN"
	msgStart     = "START"
	msgWheelSpin = "WHEEL_SPIN"
	msgGuess     = "GUESS"
	msgSolve     = "SOLVE"
	msgPing      = "PING"

	errInvalidMessage = "Invalid message"
	errTooMany        = "Too many messages"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, id domain.ConnID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn_id", string(id)).Msg("readPump closing")
		cancel()
		c.Close()
		ctl.limiter.Forget(id)
		ctl.Orch.Disconnect(id)
	}()

	pongWait := ctl.opts.PingPeriod * 10 / 9
	c.conn.SetReadLimit(ctl.opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("conn_id", string(id)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Err(err).Str("module", "signal").Str("conn_id", string(id)).Msg("readPump read error")
				}
				return
			}
			_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
			ctl.handleSignal(id, c, data)
		}
	}
}

// handleSignal dispatches one inbound message. Nothing a client sends can
// take the connection down: panics become an ERROR reply.
func (ctl *SignalWSController) handleSignal(id domain.ConnID, c core.SignalConnection, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "signal").Str("conn_id", string(id)).Interface("panic", r).Msg("handler panic")
			ctl.sendError(c, errInvalidMessage)
		}
	}()

	if !ctl.limiter.Allow(id) {
		ctl.sendError(c, errTooMany)
		return
	}

	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil || env.Type == "" {
		log.Debug().Err(err).Str("module", "signal").Str("conn_id", string(id)).Msg("bad json")
		ctl.sendError(c, errInvalidMessage)
		return
	}

	switch env.Type {
	case msgJoin:
		ctl.handleJoin(id, c, data)
	case msgStart:
		ctl.handleStart(id, c)
	case msgWheelSpin:
		ctl.handleSpin(id, c)
	case msgGuess:
		ctl.handleGuess(id, c, data)
	case msgSolve:
		ctl.handleSolve(id, c, data)
	case msgPing:
		ctl.handlePing(c)
	default:
		log.Debug().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
		ctl.sendError(c, "Unknown type: "+env.Type)
	}
}

// decode unmarshals and validates an inbound payload.
func decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}
	return domain.Validator().Struct(v)
}

func (ctl *SignalWSController) sendJSON(c core.SignalConnection, env core.Envelope) {
	if err := app.Send(c, env); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("type", env.Type).Msg("sendJSON")
	}
}

func (ctl *SignalWSController) sendError(c core.SignalConnection, msg string) {
	ctl.sendJSON(c, core.ErrorEnvelope(msg))
}
