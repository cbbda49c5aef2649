package domain

import (
	"sort"
	"time"
)

type RankEntry struct {
	ID    ConnID `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// GameResult is the history record of a finished game. Bots are not ranked.
type GameResult struct {
	GameID      string      `json:"gameId"`
	GameType    GameType    `json:"gameType"`
	Theme       string      `json:"theme"`
	FinishedAt  time.Time   `json:"finishedAt"`
	WinnerID    ConnID      `json:"winnerId,omitempty"`
	WinnerName  string      `json:"winnerName,omitempty"`
	WinnerScore int         `json:"winnerScore"`
	Ranking     []RankEntry `json:"ranking,omitempty"`
}

func NewGameResult(s *GameSession, finishedAt time.Time) GameResult {
	r := GameResult{
		GameID:     s.RoomID,
		GameType:   s.GameType,
		Theme:      s.Theme,
		FinishedAt: finishedAt,
	}
	for _, p := range s.Players {
		if p.Bot {
			continue
		}
		r.Ranking = append(r.Ranking, RankEntry{ID: p.ID, Name: p.Name, Score: p.Score})
	}
	sort.SliceStable(r.Ranking, func(i, j int) bool {
		return r.Ranking[i].Score > r.Ranking[j].Score
	})
	if len(r.Ranking) > 0 {
		top := r.Ranking[0]
		r.WinnerID, r.WinnerName, r.WinnerScore = top.ID, top.Name, top.Score
	}
	return r
}
