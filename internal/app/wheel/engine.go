// Package wheel implements the ROLETRANDO wheel-and-phrase game.
package wheel

import (
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/EducaGame/internal/app"
	"github.com/dkeye/EducaGame/internal/core"
	"github.com/dkeye/EducaGame/internal/domain"
)

const (
	DefaultPhrase = "BRASIL"
	MinPlayers    = 3
	SolveBonus    = 1000
)

// Engine is stateless between calls; all game state lives in the session.
type Engine struct {
	content    core.ContentProvider
	history    core.HistoryRecorder
	maxPlayers int
	intN       func(n int) int
	now        func() time.Time
	botID      func() domain.ConnID
}

type Option func(*Engine)

// WithRand replaces the uniform source used for phrase and segment draws.
func WithRand(intN func(n int) int) Option { return func(e *Engine) { e.intN = intN } }

func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

func WithMaxPlayers(n int) Option { return func(e *Engine) { e.maxPlayers = n } }

func New(content core.ContentProvider, history core.HistoryRecorder, opts ...Option) *Engine {
	e := &Engine{
		content:    content,
		history:    history,
		maxPlayers: app.DefaultMaxPlayers,
		intN:       rand.IntN,
		now:        time.Now,
		botID:      newBotID,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ core.Engine = (*Engine)(nil)

func (e *Engine) Type() domain.GameType { return domain.GameRoletrando }

func (e *Engine) Start(s *domain.GameSession) error {
	if s.GameType != domain.GameRoletrando || s.Phase != domain.PhaseLobby {
		return app.ErrInvalidState
	}
	s.Phase = domain.PhaseCountdown
	s.CurrentTurnIndex = 0
	s.RoundStartedAt = e.now()

	phrase := e.pickPhrase(s.Theme)
	e.fillWithBots(s)
	s.Payload = domain.NewWheelPayload(phrase)

	log.Info().Str("module", "wheel").Str("room_id", s.RoomID).Int("players", len(s.Players)).
		Int("phrase_len", len([]rune(phrase))).Msg("roletrando started")
	return nil
}

func (e *Engine) pickPhrase(theme string) string {
	phrases := e.content.Phrases(theme)
	if len(phrases) > 0 {
		if p := Normalize(phrases[e.intN(len(phrases))]); p != "" {
			return p
		}
	}
	return Normalize(DefaultPhrase)
}

func (e *Engine) fillWithBots(s *domain.GameSession) {
	if s.HumanCount() >= MinPlayers {
		return
	}
	toAdd := min(MinPlayers, e.maxPlayers) - len(s.Players)
	bots := len(s.Players) - s.HumanCount()
	for i := 0; i < toAdd; i++ {
		bots++
		s.AddPlayer(domain.NewBot(e.botID(), botName(bots)))
	}
}

func (e *Engine) TransitionToPlaying(s *domain.GameSession) error {
	if s.Phase != domain.PhaseLobby && s.Phase != domain.PhaseCountdown {
		return app.ErrInvalidState
	}
	s.Phase = domain.PhasePlaying
	if w, ok := s.Wheel(); ok {
		w.ClearSpin()
	}
	return nil
}

// SpinWheel draws a segment for the current player. The bool is false when
// the call is out of turn or out of phase; nothing is mutated then.
func (e *Engine) SpinWheel(s *domain.GameSession, connID domain.ConnID) (*domain.SpinResult, bool) {
	w, ok := s.Wheel()
	if !ok || s.Phase != domain.PhasePlaying || !s.IsCurrentTurn(connID) {
		return nil, false
	}
	segments := e.content.WheelSegments(s.Theme)
	if len(segments) == 0 {
		return nil, false
	}
	idx := e.intN(len(segments))
	seg := segments[idx]
	if seg.Type == "" {
		seg.Type = domain.SegmentNormal
	}
	res := domain.SpinResult{SegmentIndex: idx, Segment: seg}

	s.Phase = domain.PhaseSpinning
	spin := res
	w.Spin = &spin
	s.RoundStartedAt = e.now()

	if seg.LosesTurn() {
		player, _ := s.CurrentPlayer()
		if seg.Type == domain.SegmentLoseAll {
			player.ResetScore()
		}
		log.Info().Str("module", "wheel").Str("room_id", s.RoomID).Str("player", player.Name).
			Str("segment_type", string(seg.Type)).Msg("turn lost on spin")
		e.passTurn(s, w)
		return &res, true
	}
	s.Phase = domain.PhaseGuessing
	log.Debug().Str("module", "wheel").Str("room_id", s.RoomID).Int("segment", idx).
		Str("segment_type", string(seg.Type)).Int("value", seg.Value).Msg("wheel spun")
	return &res, true
}

// ProcessGuess applies a letter guess. False means rejected without mutation.
func (e *Engine) ProcessGuess(s *domain.GameSession, connID domain.ConnID, letter rune) bool {
	w, ok := s.Wheel()
	if !ok || s.Phase != domain.PhaseGuessing || !s.IsCurrentTurn(connID) {
		return false
	}
	l, ok := NormalizeLetter(letter)
	if !ok || w.IsRevealed(l) {
		return false
	}
	player, _ := s.CurrentPlayer()

	count := w.Occurrences(l)
	if count == 0 {
		log.Debug().Str("module", "wheel").Str("room_id", s.RoomID).Str("letter", string(l)).Msg("guess missed")
		e.passTurn(s, w)
		return true
	}

	w.Reveal(l)
	value := 0
	if w.Spin != nil {
		value = w.Spin.Segment.Value
	}
	player.AddScore(count * value)
	log.Debug().Str("module", "wheel").Str("room_id", s.RoomID).Str("letter", string(l)).
		Int("count", count).Int("points", count*value).Msg("guess hit")
	if w.AllRevealed() {
		e.finish(s, w, player)
	}
	return true
}

// ProcessSolve checks a full-phrase attempt. A wrong attempt zeroes the
// player's score and passes the turn.
func (e *Engine) ProcessSolve(s *domain.GameSession, connID domain.ConnID, attempt string) bool {
	w, ok := s.Wheel()
	if !ok || s.Phase != domain.PhaseGuessing || !s.IsCurrentTurn(connID) {
		return false
	}
	player, _ := s.CurrentPlayer()

	if Normalize(attempt) != w.Phrase {
		player.ResetScore()
		log.Info().Str("module", "wheel").Str("room_id", s.RoomID).Str("player", player.Name).Msg("solve wrong, score zeroed")
		e.passTurn(s, w)
		return true
	}
	bonus := SolveBonus * w.HiddenCount()
	player.AddScore(bonus)
	log.Info().Str("module", "wheel").Str("room_id", s.RoomID).Str("player", player.Name).Int("bonus", bonus).Msg("phrase solved")
	e.finish(s, w, player)
	return true
}

// PlayerLeft resets a spin that belonged to the player who just left.
func (e *Engine) PlayerLeft(s *domain.GameSession, wasCurrent bool) {
	w, ok := s.Wheel()
	if !ok || !wasCurrent {
		return
	}
	if s.Phase == domain.PhaseSpinning || s.Phase == domain.PhaseGuessing {
		s.Phase = domain.PhasePlaying
		w.ClearSpin()
	}
}

func (e *Engine) passTurn(s *domain.GameSession, w *domain.WheelPayload) {
	s.AdvanceTurn()
	s.Phase = domain.PhasePlaying
	w.ClearSpin()
}

func (e *Engine) finish(s *domain.GameSession, w *domain.WheelPayload, solver *domain.Player) {
	s.Phase = domain.PhaseGameEnd
	w.SolvedBy = solver.Name
	w.ClearSpin()
	if e.history != nil {
		e.history.RecordGame(domain.NewGameResult(s, e.now()))
	}
}
