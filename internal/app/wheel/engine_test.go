package wheel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/EducaGame/internal/app"
	"github.com/dkeye/EducaGame/internal/domain"
)

type stubContent struct {
	phrases  []string
	segments []domain.Segment
}

func (c *stubContent) Themes() []string                      { return []string{"default"} }
func (c *stubContent) Phrases(string) []string               { return c.phrases }
func (c *stubContent) WheelSegments(string) []domain.Segment { return c.segments }

type stubHistory struct {
	games   []domain.GameResult
	created []domain.GameType
}

func (h *stubHistory) RecordGame(r domain.GameResult)      { h.games = append(h.games, r) }
func (h *stubHistory) RecordGameCreated(t domain.GameType) { h.created = append(h.created, t) }

var fixedNow = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

// fixedRand always picks index i, clamped to n.
func fixedRand(i int) func(int) int {
	return func(n int) int { return min(i, n-1) }
}

func newEngine(content *stubContent, hist *stubHistory, pick int) *Engine {
	return New(content, hist, WithRand(fixedRand(pick)), WithClock(func() time.Time { return fixedNow }))
}

func newSession(t *testing.T, names ...string) *domain.GameSession {
	t.Helper()
	s := domain.NewGameSession("room-1", "default", domain.GameRoletrando, false)
	for _, n := range names {
		p, err := domain.NewPlayer(domain.ConnID("c-"+n), n)
		require.NoError(t, err)
		s.AddPlayer(p)
	}
	return s
}

func startedSession(t *testing.T, e *Engine, names ...string) *domain.GameSession {
	t.Helper()
	s := newSession(t, names...)
	require.NoError(t, e.Start(s))
	require.NoError(t, e.TransitionToPlaying(s))
	return s
}

func normal(v int) domain.Segment { return domain.Segment{Type: domain.SegmentNormal, Value: v} }

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"café":           "CAFE",
		"São Paulo":      "SAOPAULO",
		"  brasil \t":    "BRASIL",
		"Ação":           "ACAO",
		"ÉÈÊË":           "EEEE",
		"":               "",
		"Pão de Açúcar!": "PAODEACUCAR!",
		"ǰ":              "J",
		"J̌":              "J",
		"ΐ":              "Ι",
		"ΰ":              "Υ",
	}
	for in, want := range cases {
		got := Normalize(in)
		assert.Equal(t, want, got, "Normalize(%q)", in)
		assert.Equal(t, got, Normalize(got), "not idempotent for %q", in)
	}
}

func TestNormalizeLetter(t *testing.T) {
	l, ok := NormalizeLetter('ã')
	require.True(t, ok)
	assert.Equal(t, 'A', l)

	_, ok = NormalizeLetter('7')
	assert.False(t, ok)
	_, ok = NormalizeLetter(' ')
	assert.False(t, ok)
}

func TestStart(t *testing.T) {
	t.Run("tops up with bots to three players", func(t *testing.T) {
		e := newEngine(&stubContent{phrases: []string{"Olá mundo"}}, &stubHistory{}, 0)
		s := newSession(t, "ana")

		require.NoError(t, e.Start(s))

		assert.Equal(t, domain.PhaseCountdown, s.Phase)
		assert.Equal(t, 0, s.CurrentTurnIndex)
		assert.Equal(t, fixedNow, s.RoundStartedAt)
		require.Len(t, s.Players, 3)
		assert.False(t, s.Players[0].Bot)
		assert.True(t, s.Players[1].Bot)
		assert.Equal(t, "Bot 1", s.Players[1].Name)
		assert.Equal(t, "Bot 2", s.Players[2].Name)
		assert.NotEqual(t, s.Players[1].ID, s.Players[2].ID)

		w, ok := s.Wheel()
		require.True(t, ok)
		assert.Equal(t, "OLAMUNDO", w.Phrase)
		assert.Empty(t, w.Revealed)
	})

	t.Run("no bots with three humans", func(t *testing.T) {
		e := newEngine(&stubContent{phrases: []string{"x"}}, &stubHistory{}, 0)
		s := newSession(t, "a", "b", "c")
		require.NoError(t, e.Start(s))
		assert.Len(t, s.Players, 3)
		assert.Zero(t, len(s.Players)-s.HumanCount())
	})

	t.Run("bots never exceed capacity", func(t *testing.T) {
		e := New(&stubContent{}, nil, WithMaxPlayers(2), WithRand(fixedRand(0)))
		s := newSession(t, "a")
		require.NoError(t, e.Start(s))
		assert.Len(t, s.Players, 2)
	})

	t.Run("falls back to the default phrase", func(t *testing.T) {
		e := newEngine(&stubContent{}, &stubHistory{}, 0)
		s := newSession(t, "a", "b", "c")
		require.NoError(t, e.Start(s))
		w, _ := s.Wheel()
		assert.Equal(t, DefaultPhrase, w.Phrase)
	})

	t.Run("only from lobby", func(t *testing.T) {
		e := newEngine(&stubContent{}, &stubHistory{}, 0)
		s := newSession(t, "a")
		s.Phase = domain.PhasePlaying
		assert.ErrorIs(t, e.Start(s), app.ErrInvalidState)
		assert.Nil(t, s.Payload)
	})
}

func TestSpinWheel(t *testing.T) {
	t.Run("normal segment moves to guessing", func(t *testing.T) {
		e := newEngine(&stubContent{phrases: []string{"BANANA"}, segments: []domain.Segment{normal(100)}}, &stubHistory{}, 0)
		s := startedSession(t, e, "a", "b", "c")

		res, ok := e.SpinWheel(s, "c-a")
		require.True(t, ok)
		assert.Equal(t, 0, res.SegmentIndex)
		assert.Equal(t, 100, res.Segment.Value)
		assert.Equal(t, domain.PhaseGuessing, s.Phase)
		w, _ := s.Wheel()
		require.NotNil(t, w.Spin)
		assert.Equal(t, 100, w.Spin.Segment.Value)
	})

	t.Run("out of turn is rejected without mutation", func(t *testing.T) {
		e := newEngine(&stubContent{segments: []domain.Segment{normal(100)}}, &stubHistory{}, 0)
		s := startedSession(t, e, "a", "b", "c")

		_, ok := e.SpinWheel(s, "c-b")
		assert.False(t, ok)
		assert.Equal(t, domain.PhasePlaying, s.Phase)
		assert.Equal(t, 0, s.CurrentTurnIndex)
	})

	t.Run("lose all zeroes score and passes turn", func(t *testing.T) {
		e := newEngine(&stubContent{segments: []domain.Segment{{Type: domain.SegmentLoseAll}}}, &stubHistory{}, 0)
		s := startedSession(t, e, "a", "b", "c")
		s.Players[0].Score = 700

		_, ok := e.SpinWheel(s, "c-a")
		require.True(t, ok)
		assert.Zero(t, s.Players[0].Score)
		assert.Equal(t, 1, s.CurrentTurnIndex)
		assert.Equal(t, domain.PhasePlaying, s.Phase)
		w, _ := s.Wheel()
		assert.Nil(t, w.Spin)
	})

	t.Run("lose turn keeps score", func(t *testing.T) {
		e := newEngine(&stubContent{segments: []domain.Segment{{Type: domain.SegmentLoseTurn}}}, &stubHistory{}, 0)
		s := startedSession(t, e, "a", "b", "c")
		s.Players[0].Score = 700

		_, ok := e.SpinWheel(s, "c-a")
		require.True(t, ok)
		assert.Equal(t, 700, s.Players[0].Score)
		assert.Equal(t, 1, s.CurrentTurnIndex)
	})

	t.Run("not while guessing", func(t *testing.T) {
		e := newEngine(&stubContent{segments: []domain.Segment{normal(100)}}, &stubHistory{}, 0)
		s := startedSession(t, e, "a", "b", "c")
		_, ok := e.SpinWheel(s, "c-a")
		require.True(t, ok)
		_, ok = e.SpinWheel(s, "c-a")
		assert.False(t, ok)
	})
}

func TestProcessGuess(t *testing.T) {
	setup := func(t *testing.T) (*Engine, *stubHistory, *domain.GameSession) {
		h := &stubHistory{}
		e := newEngine(&stubContent{phrases: []string{"BANANA"}, segments: []domain.Segment{normal(100)}}, h, 0)
		s := startedSession(t, e, "a", "b", "c")
		_, ok := e.SpinWheel(s, "c-a")
		require.True(t, ok)
		return e, h, s
	}

	t.Run("hit scores value per occurrence", func(t *testing.T) {
		e, _, s := setup(t)
		require.True(t, e.ProcessGuess(s, "c-a", 'n'))
		assert.Equal(t, 200, s.Players[0].Score)
		assert.Equal(t, domain.PhaseGuessing, s.Phase)
		assert.Equal(t, 0, s.CurrentTurnIndex)

		assert.False(t, e.ProcessGuess(s, "c-a", 'N'), "revealed letter must be rejected")
		assert.Equal(t, 200, s.Players[0].Score)
	})

	t.Run("miss passes turn", func(t *testing.T) {
		e, _, s := setup(t)
		require.True(t, e.ProcessGuess(s, "c-a", 'Z'))
		assert.Zero(t, s.Players[0].Score)
		assert.Equal(t, 1, s.CurrentTurnIndex)
		assert.Equal(t, domain.PhasePlaying, s.Phase)
	})

	t.Run("non letter rejected", func(t *testing.T) {
		e, _, s := setup(t)
		assert.False(t, e.ProcessGuess(s, "c-a", '3'))
		assert.Equal(t, domain.PhaseGuessing, s.Phase)
	})

	t.Run("last letter ends the game", func(t *testing.T) {
		e, h, s := setup(t)
		require.True(t, e.ProcessGuess(s, "c-a", 'B'))
		require.True(t, e.ProcessGuess(s, "c-a", 'N'))
		require.True(t, e.ProcessGuess(s, "c-a", 'Á'))

		assert.Equal(t, domain.PhaseGameEnd, s.Phase)
		w, _ := s.Wheel()
		assert.Equal(t, "a", w.SolvedBy)
		require.Len(t, h.games, 1)
		assert.Equal(t, "a", h.games[0].WinnerName)
		assert.Equal(t, 600, h.games[0].WinnerScore)
	})

	t.Run("wrong player rejected", func(t *testing.T) {
		e, _, s := setup(t)
		assert.False(t, e.ProcessGuess(s, "c-b", 'A'))
	})
}

func TestOutOfTurnNeverMutates(t *testing.T) {
	cases := map[string]func(e *Engine, s *domain.GameSession) bool{
		"guess hit":   func(e *Engine, s *domain.GameSession) bool { return e.ProcessGuess(s, "c-b", 'A') },
		"guess miss":  func(e *Engine, s *domain.GameSession) bool { return e.ProcessGuess(s, "c-b", 'Z') },
		"solve right": func(e *Engine, s *domain.GameSession) bool { return e.ProcessSolve(s, "c-b", "BANANA") },
		"solve wrong": func(e *Engine, s *domain.GameSession) bool { return e.ProcessSolve(s, "c-b", "ABACAXI") },
		"spin":        func(e *Engine, s *domain.GameSession) bool { _, ok := e.SpinWheel(s, "c-b"); return ok },
	}
	for name, act := range cases {
		t.Run(name, func(t *testing.T) {
			e := newEngine(&stubContent{phrases: []string{"BANANA"}, segments: []domain.Segment{normal(100)}}, &stubHistory{}, 0)
			s := startedSession(t, e, "a", "b", "c")
			_, ok := e.SpinWheel(s, "c-a")
			require.True(t, ok)
			require.True(t, e.ProcessGuess(s, "c-a", 'N'))
			for i, p := range s.Players {
				p.Score = 300 + i
			}
			require.Equal(t, domain.PhaseGuessing, s.Phase)

			before := s.State()
			w, _ := s.Wheel()
			revealed := w.RevealedLetters()

			assert.False(t, act(e, s))
			assert.Equal(t, before, s.State())
			assert.Equal(t, domain.PhaseGuessing, s.Phase)
			assert.Equal(t, 0, s.CurrentTurnIndex)
			assert.Equal(t, revealed, w.RevealedLetters())
			for i, p := range s.Players {
				assert.Equal(t, 300+i, p.Score)
			}
		})
	}
}

func TestProcessSolve(t *testing.T) {
	setup := func(t *testing.T, h *stubHistory) (*Engine, *domain.GameSession) {
		e := newEngine(&stubContent{phrases: []string{"Banana"}, segments: []domain.Segment{normal(100)}}, h, 0)
		s := startedSession(t, e, "a", "b", "c")
		_, ok := e.SpinWheel(s, "c-a")
		require.True(t, ok)
		return e, s
	}

	t.Run("correct attempt awards bonus per hidden position", func(t *testing.T) {
		h := &stubHistory{}
		e, s := setup(t, h)
		require.True(t, e.ProcessGuess(s, "c-a", 'N'))

		require.True(t, e.ProcessSolve(s, "c-a", " banaña "))
		// 200 for the N guess, then B + three A positions still hidden.
		assert.Equal(t, 200+4*SolveBonus, s.Players[0].Score)
		assert.Equal(t, domain.PhaseGameEnd, s.Phase)
		require.Len(t, h.games, 1)
	})

	t.Run("wrong attempt zeroes score and passes turn", func(t *testing.T) {
		e, s := setup(t, &stubHistory{})
		require.True(t, e.ProcessGuess(s, "c-a", 'N'))

		require.True(t, e.ProcessSolve(s, "c-a", "ABACAXI"))
		assert.Zero(t, s.Players[0].Score)
		assert.Equal(t, 1, s.CurrentTurnIndex)
		assert.Equal(t, domain.PhasePlaying, s.Phase)
	})

	t.Run("not while playing", func(t *testing.T) {
		e := newEngine(&stubContent{phrases: []string{"Banana"}}, &stubHistory{}, 0)
		s := startedSession(t, e, "a", "b", "c")
		assert.False(t, e.ProcessSolve(s, "c-a", "BANANA"))
	})
}

func TestPlayerLeftMidSpin(t *testing.T) {
	e := newEngine(&stubContent{phrases: []string{"BANANA"}, segments: []domain.Segment{normal(100)}}, &stubHistory{}, 0)
	s := startedSession(t, e, "a", "b", "c")
	_, ok := e.SpinWheel(s, "c-a")
	require.True(t, ok)

	_, wasCurrent := s.RemovePlayer("c-a")
	require.True(t, wasCurrent)
	e.PlayerLeft(s, wasCurrent)

	assert.Equal(t, domain.PhasePlaying, s.Phase)
	w, _ := s.Wheel()
	assert.Nil(t, w.Spin)
	assert.True(t, s.IsCurrentTurn("c-b"))
}

func TestGenericSessionIsIgnored(t *testing.T) {
	e := newEngine(&stubContent{segments: []domain.Segment{normal(100)}}, &stubHistory{}, 0)
	s := domain.NewGameSession("room-2", "default", domain.GameQuizSpeed, false)
	p, _ := domain.NewPlayer("c-a", "a")
	s.AddPlayer(p)
	s.Phase = domain.PhasePlaying

	_, ok := e.SpinWheel(s, "c-a")
	assert.False(t, ok)
	assert.False(t, e.ProcessGuess(s, "c-a", 'A'))
	assert.ErrorIs(t, e.Start(s), app.ErrInvalidState)
}
