package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-classic/internal/mines"
)

func dialGame(t *testing.T, g *GameHandler, id string) *websocket.Conn {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /game/{id}/connect", g.ConnectWS)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/game/" + id + "/connect"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, text string) wsReply {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(text)))
	var reply wsReply
	require.NoError(t, conn.ReadJSON(&reply))
	return reply
}

func TestConnectWS(t *testing.T) {
	g, records := newTestGameHandler(t)
	dto := createGame(t, g, "rows=3&cols=3&mines=0")
	conn := dialGame(t, g, dto.SessionID)

	reply := send(t, conn, "g")
	assert.Empty(t, reply.Error)
	assert.Equal(t, dto.SessionID, reply.SessionID)
	assert.Equal(t, mines.InProgress, reply.Status)

	reply = send(t, conn, "f 0 0\nf 0 1")
	assert.Empty(t, reply.Error)
	assert.Equal(t, 2, reply.Flags)

	reply = send(t, conn, "x 1 1")
	assert.Contains(t, reply.Error, "unknown command")
	assert.Equal(t, 2, reply.Flags)

	reply = send(t, conn, "o 5 5")
	assert.Contains(t, reply.Error, "out of bounds")

	// the flagged cells block the flood until they are revealed directly
	reply = send(t, conn, "o 2 2\nf 0 0\nf 0 1\no 0 0\no 0 1")
	assert.Empty(t, reply.Error)
	assert.Equal(t, mines.Won, reply.Status)
	assert.Len(t, records.Created(), 1)

	reply = send(t, conn, "n")
	assert.Equal(t, mines.InProgress, reply.Status)
	assert.Nil(t, reply.EndedAt)
}

func TestConnectWSUnknownSession(t *testing.T) {
	g, _ := newTestGameHandler(t)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /game/{id}/connect", g.ConnectWS)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/game/missing/connect"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
