// Package bots drives bot turns off the connection goroutines.
package bots

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/EducaGame/internal/app/wheel"
	"github.com/dkeye/EducaGame/internal/core"
	"github.com/dkeye/EducaGame/internal/domain"
)

const (
	DefaultMinDelay = 1500 * time.Millisecond
	DefaultMaxDelay = 4000 * time.Millisecond

	dueQueueSize = 64
)

// Mover plays one bot turn in a room. It must re-check the session itself.
type Mover interface {
	PlayBotTurn(roomID string)
}

// Scheduler arms at most one timer per room. Fired timers only enqueue the
// room; moves run on the single Run goroutine.
type Scheduler struct {
	rooms    core.RoomStore
	minDelay time.Duration
	maxDelay time.Duration

	due  chan string
	done chan struct{}

	mu      sync.Mutex
	pending map[string]*time.Timer
	stopped bool
}

func NewScheduler(rooms core.RoomStore, minDelay, maxDelay time.Duration) *Scheduler {
	if minDelay <= 0 {
		minDelay = DefaultMinDelay
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Scheduler{
		rooms:    rooms,
		minDelay: minDelay,
		maxDelay: maxDelay,
		due:      make(chan string, dueQueueSize),
		done:     make(chan struct{}),
		pending:  make(map[string]*time.Timer),
	}
}

// ScheduleIfNeeded arms a bot move when a bot holds the turn. It takes the
// room lock, so callers must not hold it.
func (s *Scheduler) ScheduleIfNeeded(roomID string) bool {
	need := false
	s.rooms.WithSession(roomID, func(gs *domain.GameSession) {
		need = wheel.BotTurn(gs)
	})
	if !need {
		return false
	}
	return s.arm(roomID)
}

func (s *Scheduler) arm(roomID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	if _, ok := s.pending[roomID]; ok {
		return true
	}
	d := s.delay()
	s.pending[roomID] = time.AfterFunc(d, func() {
		select {
		case s.due <- roomID:
		case <-s.done:
		}
	})
	log.Debug().Str("module", "bots").Str("room_id", roomID).Dur("delay", d).Msg("bot move armed")
	return true
}

func (s *Scheduler) delay() time.Duration {
	spread := s.maxDelay - s.minDelay
	if spread <= 0 {
		return s.minDelay
	}
	return s.minDelay + rand.N(spread+1)
}

// Run executes due bot moves until ctx is done.
func (s *Scheduler) Run(ctx context.Context, m Mover) error {
	log.Info().Str("module", "bots").Msg("bot worker started")
	defer s.stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "bots").Msg("bot worker stopped")
			return nil
		case roomID := <-s.due:
			s.mu.Lock()
			delete(s.pending, roomID)
			s.mu.Unlock()

			s.play(m, roomID)
			s.ScheduleIfNeeded(roomID)
		}
	}
}

func (s *Scheduler) play(m Mover, roomID string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "bots").Str("room_id", roomID).Interface("panic", r).Msg("bot move panicked")
		}
	}()
	m.PlayBotTurn(roomID)
}

func (s *Scheduler) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	close(s.done)
	for id, t := range s.pending {
		t.Stop()
		delete(s.pending, id)
	}
}

// Pending is the number of armed rooms.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
