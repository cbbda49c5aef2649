// Package http holds the REST handlers for rooms, themes and stats.
package http

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/dkeye/EducaGame/internal/app/history"
	"github.com/dkeye/EducaGame/internal/app/orch"
	"github.com/dkeye/EducaGame/internal/core"
	"github.com/dkeye/EducaGame/internal/domain"
)

const (
	defaultLeaderboardLimit = 10
	defaultHistoryLimit     = 20
)

type CreateRoomRequest struct {
	Theme       string `json:"theme" binding:"omitempty,roomid"`
	GameType    string `json:"gameType" binding:"required"`
	PrivateRoom bool   `json:"privateRoom"`
}

type themeURI struct {
	Theme string `uri:"theme" binding:"required,roomid"`
}

type roomURI struct {
	RoomID string `uri:"roomId" binding:"required,roomid"`
}

type leaderboardQuery struct {
	Mode  string `form:"mode"`
	Limit int    `form:"limit"`
}

type historyQuery struct {
	Limit int `form:"limit"`
}

// SummaryResponse is the history summary plus live server counters.
type SummaryResponse struct {
	history.Summary
	ActiveRooms       int `json:"activeRooms"`
	ActiveConnections int `json:"activeConnections"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type Handlers struct {
	Orch    *orch.Orchestrator
	Content core.ContentProvider
	History *history.Service
}

var bindingsOnce sync.Once

// RegisterBindings adds the domain validation tags to gin's validator.
func RegisterBindings() {
	bindingsOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			if err := domain.RegisterValidations(v); err != nil {
				panic(err)
			}
		}
	})
}

func (h *Handlers) Register(api *gin.RouterGroup) {
	RegisterBindings()

	api.GET("/themes", h.listThemes)
	api.GET("/themes/:theme/wheel", h.themeWheel)

	api.GET("/rooms", h.listRooms)
	api.POST("/rooms", h.createRoom)
	api.GET("/rooms/:roomId", h.getRoom)

	stats := api.Group("/stats")
	stats.GET("/summary", h.summary)
	stats.GET("/leaderboard", h.leaderboard)
	stats.GET("/history", h.history)
}

func (h *Handlers) listThemes(c *gin.Context) {
	c.JSON(http.StatusOK, h.Content.Themes())
}

func (h *Handlers) themeWheel(c *gin.Context) {
	var uri themeURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid theme"})
		return
	}
	c.JSON(http.StatusOK, h.Content.WheelSegments(uri.Theme))
}

func (h *Handlers) listRooms(c *gin.Context) {
	c.JSON(http.StatusOK, h.Orch.Rooms.ListPublicRooms())
}

func (h *Handlers) createRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "gameType required"})
		return
	}
	gt, ok := domain.ParseGameType(req.GameType)
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid gameType"})
		return
	}
	room := h.Orch.CreateRoom(strings.TrimSpace(req.Theme), gt, req.PrivateRoom)
	zerolog.Ctx(c.Request.Context()).Info().Str("module", "transport.http").Str("room_id", room.RoomID).
		Str("game_type", string(gt)).Msg("room created over REST")
	c.JSON(http.StatusCreated, room)
}

func (h *Handlers) getRoom(c *gin.Context) {
	var uri roomURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid roomId"})
		return
	}
	room, ok := h.Orch.Rooms.Room(uri.RoomID)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *Handlers) summary(c *gin.Context) {
	c.JSON(http.StatusOK, SummaryResponse{
		Summary:           h.History.Summary(),
		ActiveRooms:       h.Orch.Rooms.Count(),
		ActiveConnections: h.Orch.Registry.Count(),
	})
}

func (h *Handlers) leaderboard(c *gin.Context) {
	q := leaderboardQuery{Limit: defaultLeaderboardLimit}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query"})
		return
	}
	mode := domain.GameRoletrando
	if strings.TrimSpace(q.Mode) != "" {
		gt, ok := domain.ParseGameType(q.Mode)
		if !ok {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid mode"})
			return
		}
		mode = gt
	}
	c.JSON(http.StatusOK, h.History.Leaderboard(mode, q.Limit))
}

func (h *Handlers) history(c *gin.Context) {
	q := historyQuery{Limit: defaultHistoryLimit}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query"})
		return
	}
	c.JSON(http.StatusOK, h.History.RecentResults(q.Limit))
}
