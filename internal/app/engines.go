package app

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/EducaGame/internal/core"
	"github.com/dkeye/EducaGame/internal/domain"
)

// Engines is the closed game-type → engine table, built once at startup.
type Engines struct {
	byType map[domain.GameType]core.Engine
}

// NewEngines panics unless every domain.GameType has exactly one engine.
func NewEngines(engines ...core.Engine) *Engines {
	byType := make(map[domain.GameType]core.Engine, len(engines))
	for _, e := range engines {
		if _, dup := byType[e.Type()]; dup {
			panic(fmt.Sprintf("engine registered twice for %s", e.Type()))
		}
		byType[e.Type()] = e
	}
	for _, t := range domain.AllGameTypes {
		if _, ok := byType[t]; !ok {
			panic(fmt.Sprintf("no engine registered for %s", t))
		}
	}
	log.Info().Str("module", "app.engines").Int("engines", len(byType)).Msg("engines registered")
	return &Engines{byType: byType}
}

func (e *Engines) For(t domain.GameType) (core.Engine, error) {
	eng, ok := e.byType[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, t)
	}
	return eng, nil
}

// Start runs the engine's start and the move to PLAYING as one step.
func (e *Engines) Start(s *domain.GameSession) error {
	if s.Phase != domain.PhaseLobby {
		return ErrInvalidState
	}
	eng, err := e.For(s.GameType)
	if err != nil {
		return err
	}
	if err := eng.Start(s); err != nil {
		return err
	}
	return eng.TransitionToPlaying(s)
}

func (e *Engines) PlayerLeft(s *domain.GameSession, wasCurrent bool) {
	if eng, err := e.For(s.GameType); err == nil {
		eng.PlayerLeft(s, wasCurrent)
	}
}

// GenericEngine runs only the shared LOBBY → COUNTDOWN → PLAYING transitions.
// It serves the modes without a dedicated scoring engine.
type GenericEngine struct {
	typ domain.GameType
	now func() time.Time
}

func NewGenericEngine(t domain.GameType) *GenericEngine {
	return &GenericEngine{typ: t, now: time.Now}
}

// GenericEngines returns a GenericEngine for every type not in except.
func GenericEngines(except ...domain.GameType) []core.Engine {
	skip := make(map[domain.GameType]bool, len(except))
	for _, t := range except {
		skip[t] = true
	}
	out := make([]core.Engine, 0, len(domain.AllGameTypes))
	for _, t := range domain.AllGameTypes {
		if !skip[t] {
			out = append(out, NewGenericEngine(t))
		}
	}
	return out
}

func (g *GenericEngine) Type() domain.GameType { return g.typ }

func (g *GenericEngine) Start(s *domain.GameSession) error {
	if s.GameType != g.typ || s.Phase != domain.PhaseLobby {
		return ErrInvalidState
	}
	s.Phase = domain.PhaseCountdown
	s.CurrentTurnIndex = 0
	s.RoundStartedAt = g.now()
	log.Info().Str("module", "app.engines").Str("room_id", s.RoomID).Str("game_type", string(g.typ)).Msg("game started")
	return nil
}

func (g *GenericEngine) TransitionToPlaying(s *domain.GameSession) error {
	if s.Phase != domain.PhaseLobby && s.Phase != domain.PhaseCountdown {
		return ErrInvalidState
	}
	s.Phase = domain.PhasePlaying
	s.RoundStartedAt = g.now()
	return nil
}

func (g *GenericEngine) PlayerLeft(*domain.GameSession, bool) {}
