package tictactoe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

type moveCache interface {
	Get(ctx context.Context, key string) (entity.SearchResult, error)
	Set(ctx context.Context, key string, result entity.SearchResult) error
}

// Engine picks moves for the computer player.
type Engine struct {
	logger  *slog.Logger
	policy  DepthPolicy
	workers int

	// cache is optional; search results are deterministic, so a hit is always safe to reuse.
	cache moveCache
}

func NewEngine(logger *slog.Logger, policy DepthPolicy, workers int, cache moveCache) *Engine {
	if len(policy) == 0 {
		policy = DefaultDepthPolicy()
	}

	return &Engine{
		logger:  logger.With("component", "engine"),
		policy:  policy,
		workers: workers,
		cache:   cache,
	}
}

// MaxBoardSize - returns the largest board size BestMove accepts.
func (that *Engine) MaxBoardSize() int {
	return that.policy.MaxSize()
}

// BestMove - searches the best move for mark on board. The board is left as it was.
func (that *Engine) BestMove(ctx context.Context, board *entity.Board, mark entity.Mark) (entity.SearchResult, error) {
	log := that.logger.With("method", "BestMove")

	if !mark.IsPlayer() {
		return entity.SearchResult{Move: entity.NoMove}, fmt.Errorf("%w: cannot search for an empty mark", apperror.ErrInvalidMark)
	}

	if maxSize := that.MaxBoardSize(); board.Size() > maxSize {
		return entity.SearchResult{Move: entity.NoMove},
			fmt.Errorf("%w: %dx%d board is larger than %dx%d", apperror.ErrInvalidSize, board.Size(), board.Size(), maxSize, maxSize)
	}

	if board.Evaluate().IsOver() {
		return entity.SearchResult{Move: entity.NoMove}, apperror.ErrGameFinished
	}

	depthLimit := that.policy.DepthLimit(board.Size())
	key := cacheKey(board, mark, depthLimit)

	if result, ok := that.lookup(ctx, log, key, board); ok {
		return result, nil
	}

	result, err := that.search(ctx, board, mark, depthLimit)
	if err != nil {
		return result, err
	}

	log.Debug("move chosen", "board", board.String(), "mark", mark.String(), "depth_limit", depthLimit,
		"move", result.Move, "score", result.Score)

	if that.cache != nil {
		if err = that.cache.Set(ctx, key, result); err != nil {
			log.Error("failed to cache move", "error", err)
		}
	}

	return result, nil
}

func (that *Engine) search(ctx context.Context, board *entity.Board, mark entity.Mark, depthLimit int) (entity.SearchResult, error) {
	if that.workers > 1 {
		result, err := ChooseMoveParallel(ctx, board, mark, mark.Opponent(), depthLimit, that.workers)
		if err != nil {
			return result, fmt.Errorf("failed to search move: %w", err)
		}

		return result, nil
	}

	return ChooseMove(board, mark, mark.Opponent(), depthLimit), nil
}

func (that *Engine) lookup(ctx context.Context, log *slog.Logger, key string, board *entity.Board) (entity.SearchResult, bool) {
	if that.cache == nil {
		return entity.SearchResult{}, false
	}

	result, err := that.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, apperror.ErrMoveNotCached) {
			log.Error("failed to read cached move", "error", err)
		}

		return entity.SearchResult{}, false
	}

	// a hash collision must never produce an illegal move
	if result.Move < 0 || result.Move >= board.Size()*board.Size() || board.Cell(result.Move) != entity.Empty {
		log.Warn("ignoring cached move for an occupied cell", "move", result.Move, "board", board.String())
		return entity.SearchResult{}, false
	}

	return result, true
}

func cacheKey(board *entity.Board, mark entity.Mark, depthLimit int) string {
	raw := board.String() + "|" + mark.String() + "|" + strconv.Itoa(depthLimit)

	return strconv.FormatUint(xxhash.Sum64String(raw), 16)
}
