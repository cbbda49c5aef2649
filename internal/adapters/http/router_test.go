package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/EducaGame/internal/adapters/signal"
	"github.com/dkeye/EducaGame/internal/app"
	"github.com/dkeye/EducaGame/internal/app/content"
	"github.com/dkeye/EducaGame/internal/app/history"
	"github.com/dkeye/EducaGame/internal/app/orch"
	"github.com/dkeye/EducaGame/internal/config"
	"github.com/dkeye/EducaGame/internal/domain"
	resthttp "github.com/dkeye/EducaGame/internal/transport/http"
)

func newRouter(t *testing.T) (*gin.Engine, *orch.Orchestrator, *history.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	reg := app.NewRegistry()
	hist := history.NewService()
	o := &orch.Orchestrator{
		Registry:    reg,
		Rooms:       app.NewRoomManager(0),
		Engines:     app.NewEngines(app.GenericEngines()...),
		Broadcaster: app.NewBroadcaster(reg, nil),
		History:     hist,
	}
	cfg := &config.Config{Mode: "test", Secret: "test-secret"}
	ctl := signal.NewSignalWSController(o, signal.Options{})
	rest := &resthttp.Handlers{Orch: o, Content: content.New(""), History: hist}
	return SetupRouter(context.Background(), cfg, ctl, rest), o, hist
}

func do(r http.Handler, method, path, body string, hdr ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r, _, _ := newRouter(t)

	w := do(r, http.MethodGet, "/api/themes", "", RequestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = do(r, http.MethodGet, "/api/themes", "")
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestSessionCookieIsSet(t *testing.T) {
	r, _, _ := newRouter(t)
	w := do(r, http.MethodGet, "/api/rooms", "")
	assert.Contains(t, w.Header().Get("Set-Cookie"), sessionName)
}

func TestThemes(t *testing.T) {
	r, _, _ := newRouter(t)

	w := do(r, http.MethodGet, "/api/themes", "")
	require.Equal(t, http.StatusOK, w.Code)
	var themes []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &themes))
	assert.Contains(t, themes, "default")

	w = do(r, http.MethodGet, "/api/themes/unknown-theme/wheel", "")
	require.Equal(t, http.StatusOK, w.Code)
	var segs []domain.Segment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &segs))
	assert.NotEmpty(t, segs, "unknown theme falls back to default")

	w = do(r, http.MethodGet, "/api/themes/bad%20theme/wheel", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRooms(t *testing.T) {
	r, _, hist := newRouter(t)

	w := do(r, http.MethodPost, "/api/rooms", `{"gameType":"roletrando","theme":"ciencias"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var pub domain.Room
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pub))
	assert.Equal(t, domain.GameRoletrando, pub.GameType)
	assert.Equal(t, "ciencias", pub.Theme)

	w = do(r, http.MethodPost, "/api/rooms", `{"gameType":"quiz-speed","privateRoom":true}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var priv domain.Room
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &priv))
	assert.Len(t, priv.RoomID, app.PrivateRoomIDLen)
	assert.Equal(t, "default", priv.Theme)

	w = do(r, http.MethodGet, "/api/rooms", "")
	var rooms []domain.Room
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, pub.RoomID, rooms[0].RoomID)

	w = do(r, http.MethodGet, "/api/rooms/"+priv.RoomID, "")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/rooms/nope", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/rooms/bad.id", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/rooms", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/rooms", `{"gameType":"chess"}`).Code)

	assert.Equal(t, int64(2), hist.TotalGamesCreated())
}

func TestStats(t *testing.T) {
	r, _, hist := newRouter(t)
	hist.RecordGame(domain.GameResult{GameID: "g1", GameType: domain.GameRoletrando, WinnerName: "Ana", WinnerScore: 300})
	hist.RecordGame(domain.GameResult{GameID: "g2", GameType: domain.GameBuzzer, WinnerName: "Bia", WinnerScore: 10})

	w := do(r, http.MethodGet, "/api/stats/leaderboard", "")
	require.Equal(t, http.StatusOK, w.Code)
	var board []history.LeaderboardEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	require.Len(t, board, 1)
	assert.Equal(t, "Ana", board[0].Name)

	w = do(r, http.MethodGet, "/api/stats/leaderboard?mode=buzzer", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	require.Len(t, board, 1)
	assert.Equal(t, "Bia", board[0].Name)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/stats/leaderboard?mode=chess", "").Code)

	w = do(r, http.MethodGet, "/api/stats/history?limit=1", "")
	var recent []domain.GameResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recent))
	require.Len(t, recent, 1)
	assert.Equal(t, "g2", recent[0].GameID)

	w = do(r, http.MethodGet, "/api/stats/summary", "")
	require.Equal(t, http.StatusOK, w.Code)
	var sum resthttp.SummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sum))
	assert.GreaterOrEqual(t, sum.UptimeMs, int64(0))
	assert.Zero(t, sum.ActiveRooms)
	assert.Zero(t, sum.ActiveConnections)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/rooms", strings.NewReader(`{"gameType":"buzzer"}`)))
	w = do(r, http.MethodGet, "/api/stats/summary", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sum))
	assert.Equal(t, 1, sum.ActiveRooms)
}
