package app

import (
	"crypto/rand"
	"errors"
	"math/big"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/EducaGame/internal/core"
	"github.com/dkeye/EducaGame/internal/domain"
)

const (
	DefaultMaxPlayers = 10
	DefaultTheme      = "default"

	PrivateRoomIDLen = 8
	// No 0/O or 1/I.
	privateRoomAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room full")
)

type roomEntry struct {
	mu      sync.Mutex
	session *domain.GameSession
	closed  bool
}

// RoomManagerImpl is the in-memory session store. The map is guarded by mu,
// each session by its entry lock.
type RoomManagerImpl struct {
	mu         sync.RWMutex
	rooms      map[string]*roomEntry
	byConn     map[domain.ConnID]string
	maxPlayers int
}

func NewRoomManager(maxPlayers int) *RoomManagerImpl {
	if maxPlayers <= 0 {
		maxPlayers = DefaultMaxPlayers
	}
	return &RoomManagerImpl{
		rooms:      make(map[string]*roomEntry),
		byConn:     make(map[domain.ConnID]string),
		maxPlayers: maxPlayers,
	}
}

var _ core.RoomStore = (*RoomManagerImpl)(nil)

func (f *RoomManagerImpl) MaxPlayers() int { return f.maxPlayers }

func (f *RoomManagerImpl) CreateRoom(theme string, gameType domain.GameType, private bool) *domain.GameSession {
	if theme == "" {
		theme = DefaultTheme
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var id string
	if private {
		id = f.uniquePrivateIDLocked()
	} else {
		id = uuid.NewString()
	}
	s := domain.NewGameSession(id, theme, gameType, private)
	f.rooms[id] = &roomEntry{session: s}
	log.Info().Str("module", "app.rooms").Str("room_id", id).Str("theme", theme).
		Str("game_type", string(gameType)).Bool("private", private).Msg("room created")
	return s
}

func (f *RoomManagerImpl) entry(roomID string) (*roomEntry, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	e, ok := f.rooms[roomID]
	return e, ok
}

// GetSession is a lookup only. Fields of the returned session must be read
// through WithSession.
func (f *RoomManagerImpl) GetSession(roomID string) (*domain.GameSession, bool) {
	e, ok := f.entry(roomID)
	if !ok {
		return nil, false
	}
	return e.session, true
}

func (f *RoomManagerImpl) WithSession(roomID string, fn func(s *domain.GameSession)) bool {
	e, ok := f.entry(roomID)
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	fn(e.session)
	return true
}

func (f *RoomManagerImpl) JoinRoom(roomID string, connID domain.ConnID, playerName string) error {
	e, ok := f.entry(roomID)
	if !ok {
		log.Warn().Str("module", "app.rooms").Str("room_id", roomID).Msg("join failed: room not found")
		return ErrRoomNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := f.checkJoinLocked(e, connID); err != nil {
		log.Warn().Err(err).Str("module", "app.rooms").Str("room_id", roomID).Msg("join failed")
		return err
	}
	s := e.session
	if s.HasPlayer(connID) {
		return nil
	}
	p, err := domain.NewPlayer(connID, playerName)
	if err != nil {
		return err
	}
	if len(s.Players) == 0 {
		p.Host = true
		s.HostConnectionID = connID
	}
	s.AddPlayer(p)

	f.mu.Lock()
	f.byConn[connID] = roomID
	f.mu.Unlock()

	log.Info().Str("module", "app.rooms").Str("room_id", roomID).Str("conn_id", string(connID)).
		Str("player", p.Name).Msg("player joined")
	return nil
}

func (f *RoomManagerImpl) LeaveRoom(connID domain.ConnID, hook core.LeaveHook) (string, bool) {
	f.mu.Lock()
	roomID, ok := f.byConn[connID]
	delete(f.byConn, connID)
	e := f.rooms[roomID]
	f.mu.Unlock()
	if !ok || e == nil {
		return "", false
	}

	e.mu.Lock()
	s := e.session
	s.SetConnected(connID, false)
	removed, wasCurrent := s.RemovePlayer(connID)
	if removed != nil && hook != nil {
		hook(s, wasCurrent)
	}
	if s.HumanCount() == 0 {
		// Bots never outlive the humans they were added for.
		s.Players = nil
		s.CurrentTurnIndex = 0
	}
	if removed != nil && removed.Host {
		f.reassignHostLocked(s)
	}
	empty := len(s.Players) == 0
	if empty {
		e.closed = true
	}
	e.mu.Unlock()

	if empty {
		f.mu.Lock()
		if f.rooms[roomID] == e {
			delete(f.rooms, roomID)
		}
		f.mu.Unlock()
		log.Info().Str("module", "app.rooms").Str("room_id", roomID).Msg("room removed (empty)")
	}
	log.Info().Str("module", "app.rooms").Str("room_id", roomID).Str("conn_id", string(connID)).Msg("player left")
	return roomID, removed != nil
}

func (f *RoomManagerImpl) reassignHostLocked(s *domain.GameSession) {
	s.HostConnectionID = ""
	next, ok := s.FirstHuman()
	if !ok {
		return
	}
	next.Host = true
	s.HostConnectionID = next.ID
	log.Info().Str("module", "app.rooms").Str("room_id", s.RoomID).Str("conn_id", string(next.ID)).Msg("host reassigned")
}

// CheckJoin reports whether connID could join roomID right now. A
// connection already in the room always can.
func (f *RoomManagerImpl) CheckJoin(roomID string, connID domain.ConnID) error {
	e, ok := f.entry(roomID)
	if !ok {
		return ErrRoomNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return f.checkJoinLocked(e, connID)
}

func (f *RoomManagerImpl) checkJoinLocked(e *roomEntry, connID domain.ConnID) error {
	switch {
	case e.closed:
		return ErrRoomNotFound
	case e.session.HasPlayer(connID):
		return nil
	case len(e.session.Players) >= f.maxPlayers:
		return ErrRoomFull
	}
	return nil
}

// ListPublicRooms lists every open room outside the private-code namespace.
func (f *RoomManagerImpl) ListPublicRooms() []domain.Room {
	f.mu.RLock()
	entries := make([]*roomEntry, 0, len(f.rooms))
	for _, e := range f.rooms {
		entries = append(entries, e)
	}
	f.mu.RUnlock()

	out := make([]domain.Room, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.closed && !IsPrivateRoomID(e.session.RoomID) {
			out = append(out, e.session.Room(f.maxPlayers))
		}
		e.mu.Unlock()
	}
	return out
}

// Room returns the listing DTO of any room, private ones included.
func (f *RoomManagerImpl) Room(roomID string) (domain.Room, bool) {
	var r domain.Room
	ok := f.WithSession(roomID, func(s *domain.GameSession) {
		r = s.Room(f.maxPlayers)
	})
	return r, ok
}

func (f *RoomManagerImpl) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.rooms)
}

// IsPrivateRoomID reports whether id has the private-code shape.
func IsPrivateRoomID(id string) bool {
	if len(id) != PrivateRoomIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if !(c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

func (f *RoomManagerImpl) uniquePrivateIDLocked() string {
	for {
		id := generatePrivateRoomID()
		if _, taken := f.rooms[id]; !taken {
			return id
		}
	}
}

func generatePrivateRoomID() string {
	code := make([]byte, PrivateRoomIDLen)
	limit := big.NewInt(int64(len(privateRoomAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			panic(err)
		}
		code[i] = privateRoomAlphabet[n.Int64()]
	}
	return string(code)
}
