package rest

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := tictactoe.NewEngine(logger, tictactoe.DefaultDepthPolicy(), 1, nil)

	server := httptest.NewServer(New(logger, engine).Router())
	t.Cleanup(server.Close)

	return server
}

func postJSON(t *testing.T, server *httptest.Server, path, body string) *http.Response {
	t.Helper()

	resp, err := http.Post(server.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

// emptyBoardText - builds the text form of an empty size x size board.
func emptyBoardText(size int) string {
	rows := make([]string, size)
	for i := range rows {
		rows[i] = strings.Repeat(".", size)
	}

	return strings.Join(rows, "/")
}

func TestPing(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pong", string(body))
}

func TestEvaluate(t *testing.T) {
	server := newTestServer(t)

	t.Run("Reports the winning line", func(t *testing.T) {
		// Given: a board where O holds the anti-diagonal
		resp := postJSON(t, server, "/api/evaluate", `{"board":"XXO/OOX/OXX"}`)

		// Then: the outcome names O and the line
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var outcome entity.Outcome
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&outcome))
		assert.Equal(t, entity.Outcome{Kind: entity.OutcomeWin, Winner: entity.PlayerO, Line: []int{2, 4, 6}}, outcome)
	})

	t.Run("Open board is in progress", func(t *testing.T) {
		resp := postJSON(t, server, "/api/evaluate", `{"board":"X.../..../..../...."}`)

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var outcome entity.Outcome
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&outcome))
		assert.Equal(t, entity.OutcomeInProgress, outcome.Kind)
	})

	t.Run("Bad board is a bad request", func(t *testing.T) {
		for _, body := range []string{`{"board":"XO"}`, `{"board":"XO?/.../..."}`, `not json`} {
			resp := postJSON(t, server, "/api/evaluate", body)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		}
	})

	t.Run("Oversized board is a bad request", func(t *testing.T) {
		// Given: a well-formed 16x16 board
		resp := postJSON(t, server, "/api/evaluate", `{"board":"`+emptyBoardText(16)+`"}`)

		// Then: it is refused as an invalid size
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Contains(t, body.Error, apperror.ErrInvalidSize.Error())
	})

	t.Run("Rejects other content types", func(t *testing.T) {
		resp, err := http.Post(server.URL+"/api/evaluate", "text/plain", strings.NewReader(`{"board":".../.../..."}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	})
}

func TestMove(t *testing.T) {
	server := newTestServer(t)

	t.Run("Plays the winning move", func(t *testing.T) {
		// Given: X can complete the top row
		resp := postJSON(t, server, "/api/move", `{"board":"XX./OO./...","mark":"X"}`)

		// Then: the move, the new board and the win are returned
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var move MoveResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&move))
		assert.Equal(t, 2, move.Move)
		assert.Equal(t, tictactoe.WinScore, move.Score)
		assert.Equal(t, "XXX/OO./...", move.Board)
		assert.Equal(t, entity.Outcome{Kind: entity.OutcomeWin, Winner: entity.PlayerX, Line: []int{0, 1, 2}}, move.Outcome)
	})

	t.Run("Decided board is a conflict", func(t *testing.T) {
		resp := postJSON(t, server, "/api/move", `{"board":"XOX/XOO/OXX","mark":"X"}`)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)

		var body ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.NotEmpty(t, body.Error)
	})

	t.Run("Missing mark is a bad request", func(t *testing.T) {
		resp := postJSON(t, server, "/api/move", `{"board":".../.../..."}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Oversized board is refused before searching", func(t *testing.T) {
		for _, size := range []int{5, 16, 40} {
			start := time.Now()
			resp := postJSON(t, server, "/api/move", `{"board":"`+emptyBoardText(size)+`","mark":"X"}`)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, size)
			assert.Less(t, time.Since(start), time.Second, size)
		}
	})

	t.Run("Huge body is refused", func(t *testing.T) {
		resp := postJSON(t, server, "/api/move", `{"board":"`+emptyBoardText(80)+`","mark":"X"}`)

		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	})

	t.Run("Unknown mark is a bad request", func(t *testing.T) {
		resp := postJSON(t, server, "/api/move", `{"board":".../.../...","mark":"Z"}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
