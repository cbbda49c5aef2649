package domain

import "time"

// GameSession is the authoritative state of one room.
// It is not safe for concurrent use; callers hold the room lock.
type GameSession struct {
	RoomID           string
	Theme            string
	GameType         GameType
	Private          bool
	HostConnectionID ConnID
	Players          []*Player
	Phase            Phase
	CurrentTurnIndex int
	Payload          Payload
	RoundStartedAt   time.Time
}

func NewGameSession(roomID, theme string, gameType GameType, private bool) *GameSession {
	return &GameSession{
		RoomID:   roomID,
		Theme:    theme,
		GameType: gameType,
		Private:  private,
		Phase:    PhaseLobby,
	}
}

// Wheel returns the ROLETRANDO payload, if the session carries one.
func (s *GameSession) Wheel() (*WheelPayload, bool) {
	if s.GameType != GameRoletrando {
		return nil, false
	}
	w, ok := s.Payload.(*WheelPayload)
	return w, ok && w != nil
}

func (s *GameSession) Player(id ConnID) (*Player, int) {
	for i, p := range s.Players {
		if p.ID == id {
			return p, i
		}
	}
	return nil, -1
}

func (s *GameSession) HasPlayer(id ConnID) bool {
	_, i := s.Player(id)
	return i >= 0
}

// AddPlayer appends p unless a player with the same id is present.
func (s *GameSession) AddPlayer(p *Player) bool {
	if s.HasPlayer(p.ID) {
		return false
	}
	s.Players = append(s.Players, p)
	return true
}

// RemovePlayer drops the player and keeps the turn index pointing at a
// present player. wasCurrent reports whether the removed player held the turn.
func (s *GameSession) RemovePlayer(id ConnID) (removed *Player, wasCurrent bool) {
	p, r := s.Player(id)
	if r < 0 {
		return nil, false
	}
	turn := s.TurnIndex()
	wasCurrent = r == turn
	p.Connected = false
	s.Players = append(s.Players[:r], s.Players[r+1:]...)

	if len(s.Players) == 0 {
		s.CurrentTurnIndex = 0
		return p, wasCurrent
	}
	if r < turn {
		turn--
	}
	s.CurrentTurnIndex = turn % len(s.Players)
	return p, wasCurrent
}

// SetConnected toggles the connected flag of a player.
func (s *GameSession) SetConnected(id ConnID, connected bool) {
	if p, _ := s.Player(id); p != nil {
		p.Connected = connected
	}
}

// TurnIndex is CurrentTurnIndex modulo the current player count, -1 when empty.
func (s *GameSession) TurnIndex() int {
	if len(s.Players) == 0 {
		return -1
	}
	idx := s.CurrentTurnIndex % len(s.Players)
	if idx < 0 {
		idx += len(s.Players)
	}
	return idx
}

func (s *GameSession) CurrentPlayer() (*Player, bool) {
	idx := s.TurnIndex()
	if idx < 0 {
		return nil, false
	}
	return s.Players[idx], true
}

func (s *GameSession) IsCurrentTurn(id ConnID) bool {
	p, ok := s.CurrentPlayer()
	return ok && p.ID == id
}

// AdvanceTurn moves the turn to the next player.
func (s *GameSession) AdvanceTurn() {
	idx := s.TurnIndex()
	if idx < 0 {
		return
	}
	s.CurrentTurnIndex = (idx + 1) % len(s.Players)
}

func (s *GameSession) HumanCount() int {
	n := 0
	for _, p := range s.Players {
		if !p.Bot {
			n++
		}
	}
	return n
}

// FirstHuman returns the earliest joined non-bot player.
func (s *GameSession) FirstHuman() (*Player, bool) {
	for _, p := range s.Players {
		if !p.Bot {
			return p, true
		}
	}
	return nil, false
}

// SessionState is the read-only snapshot sent as the STATE payload.
type SessionState struct {
	RoomID           string   `json:"roomId"`
	Theme            string   `json:"theme"`
	GameType         GameType `json:"gameType"`
	HostConnectionID ConnID   `json:"hostConnectionId,omitempty"`
	Players          []Player `json:"players"`
	Phase            Phase    `json:"phase"`
	CurrentTurnIndex int      `json:"currentTurnIndex"`
	GamePayload      any      `json:"gamePayload,omitempty"`
	RoundStartedAt   int64    `json:"roundStartedAt,omitempty"`
}

// State copies the session into a view that is safe to marshal later.
func (s *GameSession) State() SessionState {
	st := SessionState{
		RoomID:           s.RoomID,
		Theme:            s.Theme,
		GameType:         s.GameType,
		HostConnectionID: s.HostConnectionID,
		Players:          make([]Player, 0, len(s.Players)),
		Phase:            s.Phase,
		CurrentTurnIndex: max(s.TurnIndex(), 0),
	}
	for _, p := range s.Players {
		st.Players = append(st.Players, *p)
	}
	if s.Payload != nil {
		st.GamePayload = s.Payload.view(s.Phase)
	}
	if !s.RoundStartedAt.IsZero() {
		st.RoundStartedAt = s.RoundStartedAt.UnixMilli()
	}
	return st
}

// Room is the listing projection of a session.
type Room struct {
	RoomID      string   `json:"roomId"`
	Theme       string   `json:"theme"`
	GameType    GameType `json:"gameType"`
	PlayerCount int      `json:"playerCount"`
	MaxPlayers  int      `json:"maxPlayers"`
	IsPrivate   bool     `json:"isPrivate"`
}

func (s *GameSession) Room(maxPlayers int) Room {
	return Room{
		RoomID:      s.RoomID,
		Theme:       s.Theme,
		GameType:    s.GameType,
		PlayerCount: len(s.Players),
		MaxPlayers:  maxPlayers,
		IsPrivate:   s.Private,
	}
}
