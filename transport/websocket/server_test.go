package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/quatro-backend/internal/entity"
	"github.com/rocketscienceinc/quatro-backend/testing/suite"
)

const readTimeout = 2 * time.Second

func newTestServer(t *testing.T) string {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	server := New(logger, suite.NewGameManager(t))

	httpServer := httptest.NewServer(server.Handler(ctx))
	t.Cleanup(httpServer.Close)

	return "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func sendAction(t *testing.T, conn *websocket.Conn, action string, payload any) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	require.NoError(t, conn.WriteJSON(Message{Action: action, Payload: body}))
}

func readPayload(t *testing.T, conn *websocket.Conn) (string, Payload) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(readTimeout)))

	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))

	var payload Payload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))

	return msg.Action, payload
}

func startGame(t *testing.T, conn *websocket.Conn) string {
	t.Helper()

	sendAction(t, conn, actionNewGame, map[string]string{"player1": "Alice", "player2": "Bob"})

	action, payload := readPayload(t, conn)
	require.Equal(t, actionNewGame, action)
	require.Empty(t, payload.Error)
	require.NotNil(t, payload.Game)

	return payload.GameID
}

func TestServer_NewGame(t *testing.T) {
	t.Run("Creates a game", func(t *testing.T) {
		conn := dial(t, newTestServer(t))

		// When: a game is requested
		sendAction(t, conn, actionNewGame, map[string]string{"player1": "Alice", "player2": "Bob"})

		// Then: the new game is returned
		action, payload := readPayload(t, conn)
		assert.Equal(t, actionNewGame, action)
		assert.NotEmpty(t, payload.GameID)
		assert.Equal(t, "Alice's turn", payload.StatusLine)
		assert.Equal(t, entity.StatusOngoing, payload.Game.Status)
	})

	t.Run("Rejects blank names", func(t *testing.T) {
		conn := dial(t, newTestServer(t))

		sendAction(t, conn, actionNewGame, map[string]string{"player1": "", "player2": "Bob"})

		_, payload := readPayload(t, conn)
		assert.NotEmpty(t, payload.Error)
		assert.Nil(t, payload.Game)
	})
}

func TestServer_UnknownAction(t *testing.T) {
	conn := dial(t, newTestServer(t))

	sendAction(t, conn, "game:fly", map[string]string{})

	action, payload := readPayload(t, conn)
	assert.Equal(t, "game:fly", action)
	assert.Equal(t, "unknown action", payload.Error)
}

func TestServer_Broadcast(t *testing.T) {
	// Given: one connection owning a game and another watching it
	url := newTestServer(t)
	owner := dial(t, url)
	watcher := dial(t, url)

	gameID := startGame(t, owner)

	sendAction(t, watcher, actionJoin, Payload{GameID: gameID})
	action, joined := readPayload(t, watcher)
	require.Equal(t, actionJoin, action)
	require.Equal(t, gameID, joined.GameID)

	// When: the owner selects a piece
	piece := entity.Piece{Color: entity.White, Shape: entity.Circle}
	sendAction(t, owner, actionSelect, Payload{GameID: gameID, Piece: &piece})

	// Then: both connections see the selection
	for _, conn := range []*websocket.Conn{owner, watcher} {
		action, payload := readPayload(t, conn)
		assert.Equal(t, actionSelect, action)
		require.NotNil(t, payload.Game.Selected)
		assert.Equal(t, piece, *payload.Game.Selected)
	}

	// When: the owner places it
	row, col := 1, 2
	sendAction(t, owner, actionPlace, Payload{GameID: gameID, Row: &row, Col: &col})

	// Then: both see the board change and the turn pass to Bob
	for _, conn := range []*websocket.Conn{owner, watcher} {
		action, payload := readPayload(t, conn)
		assert.Equal(t, actionPlace, action)
		assert.Equal(t, &piece, payload.Game.Board[entity.CellIndex(row, col)])
		assert.Equal(t, "Bob's turn", payload.StatusLine)
	}
}

func TestServer_IllegalMoveAnswersSenderOnly(t *testing.T) {
	// Given: a watched game
	url := newTestServer(t)
	owner := dial(t, url)
	watcher := dial(t, url)

	gameID := startGame(t, owner)
	sendAction(t, watcher, actionJoin, Payload{GameID: gameID})
	_, _ = readPayload(t, watcher)

	// When: the owner places without a selection
	row, col := 0, 0
	sendAction(t, owner, actionPlace, Payload{GameID: gameID, Row: &row, Col: &col})

	// Then: only the owner gets the error together with the unchanged game
	action, payload := readPayload(t, owner)
	assert.Equal(t, actionPlace, action)
	assert.NotEmpty(t, payload.Error)
	require.NotNil(t, payload.Game)
	assert.Equal(t, entity.Board{}, payload.Game.Board)

	// And: the watcher sees the next real update, not the error
	sendAction(t, owner, actionRestart, Payload{GameID: gameID})
	action, payload = readPayload(t, watcher)
	assert.Equal(t, actionRestart, action)
	assert.Empty(t, payload.Error)
}

func TestServer_Leave(t *testing.T) {
	url := newTestServer(t)
	owner := dial(t, url)
	watcher := dial(t, url)

	gameID := startGame(t, owner)
	sendAction(t, watcher, actionJoin, Payload{GameID: gameID})
	_, _ = readPayload(t, watcher)

	// When: the owner leaves
	sendAction(t, owner, actionLeave, Payload{GameID: gameID})

	// Then: every subscriber is told
	for _, conn := range []*websocket.Conn{owner, watcher} {
		action, payload := readPayload(t, conn)
		assert.Equal(t, actionLeave, action)
		assert.Equal(t, gameID, payload.GameID)
	}

	// And: the game is gone
	sendAction(t, watcher, actionJoin, Payload{GameID: gameID})
	_, payload := readPayload(t, watcher)
	assert.Equal(t, "game not found", payload.Error)
}

func TestServer_ClosesConnectionsOnShutdown(t *testing.T) {
	// Given: an open connection subscribed to a game
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	server := New(slog.New(slog.NewJSONHandler(io.Discard, nil)), suite.NewGameManager(t))
	httpServer := httptest.NewServer(server.Handler(ctx))
	t.Cleanup(httpServer.Close)

	conn := dial(t, "ws"+strings.TrimPrefix(httpServer.URL, "http")+"/ws")
	startGame(t, conn)

	// When: the server context is cancelled
	cancel()

	// Then: the connection is closed well before the pong deadline
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(readTimeout)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)

	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		assert.False(t, netErr.Timeout(), "connection was not closed by the server")
	}
}
