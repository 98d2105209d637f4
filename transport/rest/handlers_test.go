package rest

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/quatro-backend/internal/entity"
	"github.com/rocketscienceinc/quatro-backend/testing/suite"
)

type testAPI struct {
	t       *testing.T
	handler http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	server := New(logger, suite.NewGameManager(t))

	return &testAPI{t: t, handler: server.Handler()}
}

func (that *testAPI) do(method, path, body string) (int, GameResponse) {
	that.t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()

	that.handler.ServeHTTP(rec, req)

	var resp GameResponse
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(that.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}

	return rec.Code, resp
}

func (that *testAPI) startGame() string {
	that.t.Helper()

	code, resp := that.do(http.MethodPost, "/games", `{"player1":"Alice","player2":"Bob"}`)
	require.Equal(that.t, http.StatusCreated, code)
	require.NotNil(that.t, resp.Game)

	return resp.Game.ID
}

func TestPing(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestGameHandler_StartGame(t *testing.T) {
	t.Run("Creates a game", func(t *testing.T) {
		api := newTestAPI(t)

		// When: a game is started with two names
		code, resp := api.do(http.MethodPost, "/games", `{"player1":"Alice","player2":"Bob"}`)

		// Then: it is created with Alice to move
		require.Equal(t, http.StatusCreated, code)
		require.NotNil(t, resp.Game)
		assert.NotEmpty(t, resp.Game.ID)
		assert.Equal(t, "Alice's turn", resp.StatusLine)
	})

	t.Run("Rejects a blank name", func(t *testing.T) {
		api := newTestAPI(t)

		code, resp := api.do(http.MethodPost, "/games", `{"player1":"Alice","player2":"  "}`)

		assert.Equal(t, http.StatusBadRequest, code)
		assert.NotEmpty(t, resp.Error)
	})

	t.Run("Rejects malformed json", func(t *testing.T) {
		api := newTestAPI(t)

		code, _ := api.do(http.MethodPost, "/games", `{"player1":`)

		assert.Equal(t, http.StatusBadRequest, code)
	})
}

func TestGameHandler_GetGame(t *testing.T) {
	api := newTestAPI(t)
	id := api.startGame()

	code, resp := api.do(http.MethodGet, "/games/"+id, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, id, resp.Game.ID)

	code, _ = api.do(http.MethodGet, "/games/unknown", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestGameHandler_Play(t *testing.T) {
	t.Run("Plays a winning row and restarts", func(t *testing.T) {
		// Given: a started game
		api := newTestAPI(t)
		id := api.startGame()

		moves := []struct {
			piece string
			cell  string
		}{
			{`{"color":"white","shape":"circle"}`, `{"row":0,"col":0}`},
			{`{"color":"white","shape":"square"}`, `{"row":1,"col":1}`},
			{`{"color":"white","shape":"circle"}`, `{"row":0,"col":1}`},
			{`{"color":"black","shape":"circle"}`, `{"row":2,"col":2}`},
			{`{"color":"white","shape":"circle"}`, `{"row":0,"col":2}`},
			{`{"color":"black","shape":"square"}`, `{"row":3,"col":3}`},
			{`{"color":"white","shape":"circle"}`, `{"row":0,"col":3}`},
		}

		// When: the moves are played through the API
		var resp GameResponse
		for _, move := range moves {
			code, _ := api.do(http.MethodPost, "/games/"+id+"/select", move.piece)
			require.Equal(t, http.StatusOK, code)

			code, resp = api.do(http.MethodPost, "/games/"+id+"/place", move.cell)
			require.Equal(t, http.StatusOK, code)
		}

		// Then: Alice wins
		assert.Equal(t, entity.StatusWon, resp.Game.Status)
		assert.Equal(t, "Alice", resp.Game.Winner)
		assert.Equal(t, "Alice wins!", resp.StatusLine)

		// And: further placements conflict and leave the game as it was
		code, conflict := api.do(http.MethodPost, "/games/"+id+"/place", `{"row":3,"col":0}`)
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, resp.Game, conflict.Game)

		// And: restart brings the game back
		code, restarted := api.do(http.MethodPost, "/games/"+id+"/restart", "")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "Alice's turn", restarted.StatusLine)
		assert.Equal(t, entity.Board{}, restarted.Game.Board)
	})

	t.Run("Placing before selecting conflicts", func(t *testing.T) {
		api := newTestAPI(t)
		id := api.startGame()

		code, resp := api.do(http.MethodPost, "/games/"+id+"/place", `{"row":0,"col":0}`)

		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, entity.Board{}, resp.Game.Board)
	})

	t.Run("Validates input", func(t *testing.T) {
		api := newTestAPI(t)
		id := api.startGame()

		code, _ := api.do(http.MethodPost, "/games/"+id+"/select", `{"color":"green","shape":"circle"}`)
		assert.Equal(t, http.StatusBadRequest, code)

		code, _ = api.do(http.MethodPost, "/games/"+id+"/place", `{"row":1}`)
		assert.Equal(t, http.StatusBadRequest, code)

		_, _ = api.do(http.MethodPost, "/games/"+id+"/select", `{"color":"black","shape":"circle"}`)
		code, _ = api.do(http.MethodPost, "/games/"+id+"/place", `{"row":4,"col":0}`)
		assert.Equal(t, http.StatusBadRequest, code)
	})
}

func TestGameHandler_EndGame(t *testing.T) {
	api := newTestAPI(t)
	id := api.startGame()

	code, _ := api.do(http.MethodDelete, "/games/"+id, "")
	assert.Equal(t, http.StatusNoContent, code)

	code, _ = api.do(http.MethodDelete, "/games/"+id, "")
	assert.Equal(t, http.StatusNotFound, code)
}
