// Package history keeps finished game results and creation counters in memory.
package history

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/EducaGame/internal/core"
	"github.com/dkeye/EducaGame/internal/domain"
)

const (
	MaxResults     = 500
	MaxLeaderboard = 100
)

type LeaderboardEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Games int    `json:"games"`
}

type Summary struct {
	UptimeMs          int64                     `json:"uptimeMs"`
	TotalGamesCreated int64                     `json:"totalGamesCreated"`
	GamesByType       map[domain.GameType]int64 `json:"gamesByType"`
}

type Service struct {
	mu        sync.RWMutex
	results   []domain.GameResult // newest first
	created   map[domain.GameType]int64
	startedAt time.Time
	now       func() time.Time
}

func NewService() *Service {
	return NewServiceWithClock(time.Now)
}

func NewServiceWithClock(now func() time.Time) *Service {
	return &Service{
		created:   make(map[domain.GameType]int64),
		startedAt: now(),
		now:       now,
	}
}

var _ core.HistoryRecorder = (*Service)(nil)

func (h *Service) RecordGame(r domain.GameResult) {
	h.mu.Lock()
	h.results = append([]domain.GameResult{r}, h.results...)
	if len(h.results) > MaxResults {
		h.results = h.results[:MaxResults]
	}
	h.mu.Unlock()
	log.Debug().Str("module", "history").Str("room_id", r.GameID).Str("game_type", string(r.GameType)).Msg("recorded game")
}

func (h *Service) RecordGameCreated(t domain.GameType) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.created[t]++
}

// RecentResults returns at most limit results, newest first. limit < 1 is 1.
func (h *Service) RecentResults(limit int) []domain.GameResult {
	limit = max(1, limit)
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := min(limit, len(h.results))
	out := make([]domain.GameResult, n)
	copy(out, h.results[:n])
	return out
}

// Leaderboard sums the winning scores of mode per winner name, compared
// case-insensitively. The first spelling seen (newest game) is kept.
func (h *Service) Leaderboard(mode domain.GameType, limit int) []LeaderboardEntry {
	limit = min(MaxLeaderboard, max(1, limit))

	h.mu.RLock()
	byName := make(map[string]*LeaderboardEntry)
	var order []string
	for _, r := range h.results {
		if r.GameType != mode || r.WinnerName == "" {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(r.WinnerName))
		e, ok := byName[key]
		if !ok {
			e = &LeaderboardEntry{Name: r.WinnerName}
			byName[key] = e
			order = append(order, key)
		}
		e.Score += r.WinnerScore
		e.Games++
	}
	h.mu.RUnlock()

	out := make([]LeaderboardEntry, 0, len(order))
	for _, k := range order {
		out = append(out, *byName[k])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (h *Service) Uptime() time.Duration {
	return h.now().Sub(h.startedAt)
}

func (h *Service) TotalGamesCreated() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var total int64
	for _, n := range h.created {
		total += n
	}
	return total
}

func (h *Service) GamesCreatedByType() map[domain.GameType]int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[domain.GameType]int64, len(h.created))
	for t, n := range h.created {
		out[t] = n
	}
	return out
}

func (h *Service) Summary() Summary {
	return Summary{
		UptimeMs:          h.Uptime().Milliseconds(),
		TotalGamesCreated: h.TotalGamesCreated(),
		GamesByType:       h.GamesCreatedByType(),
	}
}
