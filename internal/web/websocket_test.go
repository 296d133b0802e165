package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialWatcher(t *testing.T, srv *httptest.Server, gameID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?gameId=" + gameID
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// nextUpdate reads updates until one of type want arrives.
func nextUpdate(t *testing.T, conn *websocket.Conn, want string) json.RawMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var update struct {
			GameID string          `json:"gameId"`
			Type   string          `json:"type"`
			Data   json.RawMessage `json:"data"`
		}
		require.NoError(t, conn.ReadJSON(&update))
		if update.Type == want {
			return update.Data
		}
	}
}

func TestWebSocketWatcherReceivesUpdates(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	view := env.create(t)
	conn := dialWatcher(t, srv, view.GameID)
	nextUpdate(t, conn, UpdateWatchers)
	assert.Equal(t, 1, env.hub.Watchers(view.GameID))

	env.move(t, view.GameID, "f2", "f3")
	var moved MoveResponse
	require.NoError(t, json.Unmarshal(nextUpdate(t, conn, UpdateMove), &moved))
	assert.Equal(t, "f3", moved.Move.SAN)
	assert.Equal(t, 1, moved.Game.Watchers)

	env.move(t, view.GameID, "e7", "e5")
	env.move(t, view.GameID, "g2", "g4")
	env.move(t, view.GameID, "d8", "h4")

	var ended GameView
	require.NoError(t, json.Unmarshal(nextUpdate(t, conn, UpdateGameEnd), &ended))
	assert.Equal(t, "0-1", ended.Result)
	assert.Equal(t, "Checkmate", ended.Termination)

	rec := env.do(t, "POST", "/api/games/"+view.GameID+"/undo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var undone GameView
	require.NoError(t, json.Unmarshal(nextUpdate(t, conn, UpdateUndo), &undone))
	assert.False(t, undone.GameOver)
	assert.Len(t, undone.History, 3)
}

func TestWebSocketPing(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	view := env.create(t)
	conn := dialWatcher(t, srv, view.GameID)
	nextUpdate(t, conn, UpdateWatchers)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	nextUpdate(t, conn, "pong")
}

func TestWebSocketWatchersLeave(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	view := env.create(t)
	first := dialWatcher(t, srv, view.GameID)
	nextUpdate(t, first, UpdateWatchers)
	second := dialWatcher(t, srv, view.GameID)
	nextUpdate(t, second, UpdateWatchers)

	require.Eventually(t, func() bool { return env.hub.Watchers(view.GameID) == 2 }, 2*time.Second, 10*time.Millisecond)

	second.Close()
	require.Eventually(t, func() bool { return env.hub.Watchers(view.GameID) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocketRejectsUnknownGame(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(base, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(base+"?gameId=42", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
