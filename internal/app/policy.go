package app

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/EducaGame/internal/core"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

// Policy decides what happens to a connection whose send buffer is full.
type Policy interface {
	OnBackPressure(roomID string, conn core.SignalConnection) BackpressureAction
}

// SimplePolicy kicks slow members; their teardown then runs as a normal close.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(string, core.SignalConnection) BackpressureAction {
	return KickMember
}

// LenientPolicy only drops the frame.
type LenientPolicy struct{}

func (LenientPolicy) OnBackPressure(string, core.SignalConnection) BackpressureAction {
	return DropFrame
}

// PolicyByName maps the backpressure config value onto a Policy.
// Unknown names get SimplePolicy.
func PolicyByName(name string) Policy {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "kick":
		return SimplePolicy{}
	case "drop":
		return LenientPolicy{}
	default:
		log.Warn().Str("module", "app.broadcast").Str("policy", name).Msg("unknown backpressure policy, kicking slow members")
		return SimplePolicy{}
	}
}
