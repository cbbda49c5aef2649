package core

import "github.com/dkeye/EducaGame/internal/domain"

const (
	MsgState     = "STATE"
	MsgError     = "ERROR"
	MsgPong      = "PONG"
	MsgJoinOK    = "JOIN_OK"
	MsgWheelSpun = "WHEEL_SPUN"
)

// Envelope is the outbound {type, payload} message.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type JoinOKPayload struct {
	ConnectionID domain.ConnID `json:"connectionId"`
}

func StateEnvelope(s *domain.GameSession) Envelope {
	return Envelope{Type: MsgState, Payload: s.State()}
}

func EventEnvelope(eventType string, payload any) Envelope {
	return Envelope{Type: eventType, Payload: payload}
}

func ErrorEnvelope(msg string) Envelope {
	return Envelope{Type: MsgError, Payload: ErrorPayload{Message: msg}}
}

func PongEnvelope() Envelope {
	return Envelope{Type: MsgPong}
}
