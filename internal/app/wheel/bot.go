package wheel

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dkeye/EducaGame/internal/domain"
)

const (
	botLetterPriority = "AEIOURSTNM"
	botAlphabet       = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	botSolveMaxLen    = 12
)

type MoveKind int

const (
	MoveNone MoveKind = iota
	MoveSpin
	MoveGuess
	MoveSolve
)

// Move is what a bot decided to do on its turn.
type Move struct {
	Kind   MoveKind
	Letter rune
	Phrase string
}

// BotTurn reports whether the current player is a bot that has something to do.
func BotTurn(s *domain.GameSession) bool {
	if s.GameType != domain.GameRoletrando {
		return false
	}
	if s.Phase != domain.PhasePlaying && s.Phase != domain.PhaseGuessing {
		return false
	}
	p, ok := s.CurrentPlayer()
	return ok && p.Bot
}

// ChooseBotMove picks the next move for the bot holding the turn.
func (e *Engine) ChooseBotMove(s *domain.GameSession) Move {
	w, ok := s.Wheel()
	if !ok || !BotTurn(s) {
		return Move{}
	}
	if s.Phase == domain.PhasePlaying {
		return Move{Kind: MoveSpin}
	}

	if l, ok := firstPresent(w, botLetterPriority); ok {
		return Move{Kind: MoveGuess, Letter: l}
	}
	if l, ok := firstPresent(w, botAlphabet); ok {
		return Move{Kind: MoveGuess, Letter: l}
	}
	if len([]rune(w.Phrase)) <= botSolveMaxLen && e.intN(2) == 0 {
		return Move{Kind: MoveSolve, Phrase: w.Phrase}
	}

	var candidates []rune
	for _, l := range botAlphabet {
		if !w.IsRevealed(l) {
			candidates = append(candidates, l)
		}
	}
	if len(candidates) == 0 {
		return Move{Kind: MoveSolve, Phrase: w.Phrase}
	}
	return Move{Kind: MoveGuess, Letter: candidates[e.intN(len(candidates))]}
}

func firstPresent(w *domain.WheelPayload, letters string) (rune, bool) {
	for _, l := range letters {
		if !w.IsRevealed(l) && strings.ContainsRune(w.Phrase, l) {
			return l, true
		}
	}
	return 0, false
}

// PlayBot chooses and applies one bot move. spin is set when the move was a
// wheel spin so the caller can announce it.
func (e *Engine) PlayBot(s *domain.GameSession) (spin *domain.SpinResult, acted bool) {
	cur, ok := s.CurrentPlayer()
	if !ok {
		return nil, false
	}
	m := e.ChooseBotMove(s)
	switch m.Kind {
	case MoveSpin:
		return e.SpinWheel(s, cur.ID)
	case MoveGuess:
		return nil, e.ProcessGuess(s, cur.ID, m.Letter)
	case MoveSolve:
		return nil, e.ProcessSolve(s, cur.ID, m.Phrase)
	}
	return nil, false
}

func newBotID() domain.ConnID {
	return domain.ConnID("bot-" + uuid.NewString()[:6])
}

func botName(n int) string { return fmt.Sprintf("Bot %d", n) }
