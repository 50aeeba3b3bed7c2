package tictactoe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

var errRedisDown = errors.New("redis down")

type mockMoveCache struct {
	mock.Mock
}

func (that *mockMoveCache) Get(ctx context.Context, key string) (entity.SearchResult, error) {
	args := that.Called(ctx, key)

	return args.Get(0).(entity.SearchResult), args.Error(1)
}

func (that *mockMoveCache) Set(ctx context.Context, key string, result entity.SearchResult) error {
	args := that.Called(ctx, key, result)

	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEngine_BestMove(t *testing.T) {
	ctx := context.Background()

	t.Run("Searches on a cache miss and stores the result", func(t *testing.T) {
		// Given: an engine with an empty cache
		cache := &mockMoveCache{}
		engine := NewEngine(discardLogger(), DefaultDepthPolicy(), 1, cache)
		board := mustParseBoard(t, "XX./OO./...")
		key := cacheKey(board, entity.PlayerX, 6)
		expected := entity.SearchResult{Move: 2, Score: WinScore}

		cache.On("Get", mock.Anything, key).Return(entity.SearchResult{}, apperror.ErrMoveNotCached).Once()
		cache.On("Set", mock.Anything, key, expected).Return(nil).Once()

		// When: X asks for a move
		result, err := engine.BestMove(ctx, board, entity.PlayerX)

		// Then: the winning move is found and cached
		require.NoError(t, err)
		assert.Equal(t, expected, result)
		cache.AssertExpectations(t)
	})

	t.Run("Returns a cached move without searching", func(t *testing.T) {
		cache := &mockMoveCache{}
		engine := NewEngine(discardLogger(), DefaultDepthPolicy(), 1, cache)
		board := mustParseBoard(t, "XX./OO./...")
		cached := entity.SearchResult{Move: 8, Score: 7}

		cache.On("Get", mock.Anything, mock.AnythingOfType("string")).Return(cached, nil).Once()

		result, err := engine.BestMove(ctx, board, entity.PlayerX)

		require.NoError(t, err)
		assert.Equal(t, cached, result)
		cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Ignores a cached move on an occupied cell", func(t *testing.T) {
		// Given: the cache answers with a cell that is already taken
		cache := &mockMoveCache{}
		engine := NewEngine(discardLogger(), DefaultDepthPolicy(), 1, cache)
		board := mustParseBoard(t, "XX./OO./...")

		cache.On("Get", mock.Anything, mock.AnythingOfType("string")).
			Return(entity.SearchResult{Move: 0, Score: 100}, nil).
			Once()
		cache.On("Set", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("entity.SearchResult")).
			Return(nil).
			Once()

		// When: X asks for a move
		result, err := engine.BestMove(ctx, board, entity.PlayerX)

		// Then: the engine searches again and never plays the occupied cell
		require.NoError(t, err)
		assert.Equal(t, 2, result.Move)
		cache.AssertExpectations(t)
	})

	t.Run("Cache failures never fail the move", func(t *testing.T) {
		cache := &mockMoveCache{}
		engine := NewEngine(discardLogger(), DefaultDepthPolicy(), 1, cache)
		board := mustParseBoard(t, "XX./OO./...")

		cache.On("Get", mock.Anything, mock.AnythingOfType("string")).Return(entity.SearchResult{}, errRedisDown).Once()
		cache.On("Set", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("entity.SearchResult")).
			Return(errRedisDown).
			Once()

		result, err := engine.BestMove(ctx, board, entity.PlayerX)

		require.NoError(t, err)
		assert.Equal(t, entity.SearchResult{Move: 2, Score: WinScore}, result)
		cache.AssertExpectations(t)
	})

	t.Run("Refuses a decided board", func(t *testing.T) {
		cache := &mockMoveCache{}
		engine := NewEngine(discardLogger(), DefaultDepthPolicy(), 1, cache)

		for _, s := range []string{"XXX/OO./...", "XOX/XOO/OXX"} {
			result, err := engine.BestMove(ctx, mustParseBoard(t, s), entity.PlayerO)

			require.ErrorIs(t, err, apperror.ErrGameFinished)
			assert.False(t, result.HasMove())
		}

		cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("Refuses boards larger than the policy covers", func(t *testing.T) {
		// Given: an engine with the default policy and a 16x16 board
		cache := &mockMoveCache{}
		engine := NewEngine(discardLogger(), DefaultDepthPolicy(), 1, cache)

		board, err := entity.NewBoard(16)
		require.NoError(t, err)

		// When: a move is requested
		result, err := engine.BestMove(ctx, board, entity.PlayerX)

		// Then: it fails before touching the cache or searching
		require.ErrorIs(t, err, apperror.ErrInvalidSize)
		assert.False(t, result.HasMove())
		cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("Refuses an empty mark", func(t *testing.T) {
		engine := NewEngine(discardLogger(), nil, 1, nil)

		_, err := engine.BestMove(ctx, mustParseBoard(t, ".../.../..."), entity.Empty)

		require.ErrorIs(t, err, apperror.ErrInvalidMark)
	})

	t.Run("Works without a cache and with parallel workers", func(t *testing.T) {
		sequential := NewEngine(discardLogger(), nil, 1, nil)
		parallel := NewEngine(discardLogger(), nil, 4, nil)

		for _, s := range midgameBoards {
			board := mustParseBoard(t, s)

			want, err := sequential.BestMove(ctx, board, entity.PlayerX)
			require.NoError(t, err)

			got, err := parallel.BestMove(ctx, board, entity.PlayerX)
			require.NoError(t, err)

			assert.Equal(t, want, got, s)
			assert.Equal(t, s, board.String())
		}
	})

	t.Run("Parallel search reports cancellation", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		engine := NewEngine(discardLogger(), nil, 4, nil)

		_, err := engine.BestMove(canceled, mustParseBoard(t, ".../.../..."), entity.PlayerX)

		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestCacheKey(t *testing.T) {
	board := mustParseBoard(t, "X../.O./...")

	key := cacheKey(board, entity.PlayerX, 6)

	assert.Equal(t, key, cacheKey(board.Clone(), entity.PlayerX, 6))
	assert.NotEqual(t, key, cacheKey(board, entity.PlayerO, 6))
	assert.NotEqual(t, key, cacheKey(board, entity.PlayerX, 5))
	assert.NotEqual(t, key, cacheKey(mustParseBoard(t, "X../..O/..."), entity.PlayerX, 6))
}
