package domain

// GameType is the closed set of game modes a room can host.
type GameType string

const (
	GameRoletrando      GameType = "ROLETRANDO"
	GameQuizSpeed       GameType = "QUIZ_SPEED"
	GameQuizIncremental GameType = "QUIZ_INCREMENTAL"
	GameSurvival        GameType = "SURVIVAL"
	GameSequencing      GameType = "SEQUENCING"
	GameDetective       GameType = "DETECTIVE"
	GameBuzzer          GameType = "BUZZER"
	GameSensory         GameType = "SENSORY"
	GameBinaryDecision  GameType = "BINARY_DECISION"
	GameCombination     GameType = "COMBINATION"
)

// AllGameTypes lists every mode. Engine registration is checked against it.
var AllGameTypes = []GameType{
	GameRoletrando,
	GameQuizSpeed,
	GameQuizIncremental,
	GameSurvival,
	GameSequencing,
	GameDetective,
	GameBuzzer,
	GameSensory,
	GameBinaryDecision,
	GameCombination,
}

// ParseGameType accepts "roletrando", "quiz-speed", "QUIZ_SPEED" and the like.
func ParseGameType(s string) (GameType, bool) {
	norm := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '-':
			c = '_'
		case c >= 'a' && c <= 'z':
			c -= 'a' - 'A'
		}
		norm = append(norm, c)
	}
	gt := GameType(norm)
	for _, known := range AllGameTypes {
		if known == gt {
			return gt, true
		}
	}
	return "", false
}

// Phase is the current step of a room's state machine.
type Phase string

const (
	PhaseLobby               Phase = "LOBBY"
	PhaseCountdown           Phase = "COUNTDOWN"
	PhasePlaying             Phase = "PLAYING"
	PhaseSpinning            Phase = "SPINNING"
	PhaseGuessing            Phase = "GUESSING"
	PhaseRoundEnd            Phase = "ROUND_END"
	PhaseGameEnd             Phase = "GAME_END"
	PhaseQuizQuestion        Phase = "QUIZ_QUESTION"
	PhaseQuizFeedback        Phase = "QUIZ_FEEDBACK"
	PhaseQuizRanking         Phase = "QUIZ_RANKING"
	PhaseMillionaireQuestion Phase = "MILLIONAIRE_QUESTION"
)
