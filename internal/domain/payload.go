package domain

import (
	"sort"
	"strings"
	"unicode"
)

// Payload is the per-game state of a session. Each game type owns exactly one
// implementation; the set is sealed by the unexported method.
type Payload interface {
	GameType() GameType
	view(phase Phase) any
}

type SegmentType string

const (
	SegmentNormal   SegmentType = "NORMAL"
	SegmentBonus    SegmentType = "BONUS"
	SegmentLoseTurn SegmentType = "LOSE_TURN"
	SegmentLoseAll  SegmentType = "LOSE_ALL"
)

// Segment is one slot of the wheel.
type Segment struct {
	Label string      `json:"label,omitempty"`
	Type  SegmentType `json:"type"`
	Value int         `json:"value"`
}

// LosesTurn reports whether the segment ends the turn without a guess.
func (s Segment) LosesTurn() bool {
	return s.Type == SegmentLoseTurn || s.Type == SegmentLoseAll
}

// SpinResult is the WHEEL_SPUN event payload.
type SpinResult struct {
	SegmentIndex int     `json:"segmentIndex"`
	Segment      Segment `json:"segment"`
}

// WheelPayload is the ROLETRANDO state. Phrase is stored normalized.
type WheelPayload struct {
	Phrase   string
	Revealed map[rune]struct{}
	Spin     *SpinResult
	SolvedBy string
}

func NewWheelPayload(phrase string) *WheelPayload {
	return &WheelPayload{Phrase: phrase, Revealed: make(map[rune]struct{})}
}

func (*WheelPayload) GameType() GameType { return GameRoletrando }

func (w *WheelPayload) ClearSpin() { w.Spin = nil }

func (w *WheelPayload) IsRevealed(r rune) bool {
	_, ok := w.Revealed[r]
	return ok
}

func (w *WheelPayload) Reveal(r rune) { w.Revealed[r] = struct{}{} }

// Occurrences counts r in the phrase.
func (w *WheelPayload) Occurrences(r rune) int {
	return strings.Count(w.Phrase, string(r))
}

// HiddenCount is the number of letter positions not yet revealed.
func (w *WheelPayload) HiddenCount() int {
	n := 0
	for _, r := range w.Phrase {
		if unicode.IsLetter(r) && !w.IsRevealed(r) {
			n++
		}
	}
	return n
}

func (w *WheelPayload) AllRevealed() bool { return w.HiddenCount() == 0 }

// Masked renders the phrase with unrevealed letters replaced by '_'.
func (w *WheelPayload) Masked() string {
	var b strings.Builder
	for _, r := range w.Phrase {
		if unicode.IsLetter(r) && !w.IsRevealed(r) {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (w *WheelPayload) RevealedLetters() []string {
	out := make([]string, 0, len(w.Revealed))
	for r := range w.Revealed {
		out = append(out, string(r))
	}
	sort.Strings(out)
	return out
}

// WheelState is the client view of a WheelPayload.
type WheelState struct {
	Phrase       string      `json:"phrase,omitempty"`
	Masked       string      `json:"masked"`
	Revealed     []string    `json:"revealed"`
	SegmentIndex *int        `json:"segmentIndex,omitempty"`
	Segment      *Segment    `json:"segment,omitempty"`
	SegmentType  SegmentType `json:"segmentType,omitempty"`
	SegmentValue int         `json:"segmentValue,omitempty"`
	SolvedBy     string      `json:"solvedBy,omitempty"`
}

// The phrase itself only leaves the server once the game is over.
func (w *WheelPayload) view(phase Phase) any {
	st := WheelState{
		Masked:   w.Masked(),
		Revealed: w.RevealedLetters(),
		SolvedBy: w.SolvedBy,
	}
	if phase == PhaseGameEnd {
		st.Phrase = w.Phrase
	}
	if w.Spin != nil {
		idx := w.Spin.SegmentIndex
		seg := w.Spin.Segment
		st.SegmentIndex = &idx
		st.Segment = &seg
		st.SegmentType = seg.Type
		st.SegmentValue = seg.Value
	}
	return st
}
