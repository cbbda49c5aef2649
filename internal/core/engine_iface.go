package core

import "github.com/dkeye/EducaGame/internal/domain"

// Engine drives the phase machine of one game type.
// Every method is called with the room lock held.
type Engine interface {
	Type() domain.GameType
	Start(s *domain.GameSession) error
	TransitionToPlaying(s *domain.GameSession) error
	PlayerLeft(s *domain.GameSession, wasCurrent bool)
}

// ContentProvider looks up theme data, falling back to the default theme.
type ContentProvider interface {
	Themes() []string
	Phrases(theme string) []string
	WheelSegments(theme string) []domain.Segment
}

// HistoryRecorder is fire-and-forget.
type HistoryRecorder interface {
	RecordGame(r domain.GameResult)
	RecordGameCreated(t domain.GameType)
}
