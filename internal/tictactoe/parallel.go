package tictactoe

import (
	"context"
	"fmt"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// ChooseMoveParallel - same result as ChooseMove, with the root moves spread over workers.
// Every root move gets its own copy of the board, so board is never mutated.
func ChooseMoveParallel(
	ctx context.Context, board *entity.Board, maximizing, minimizing entity.Mark, depthLimit, workers int,
) (entity.SearchResult, error) {
	cells := slices.Collect(board.EmptyCells())
	if len(cells) == 0 {
		return entity.SearchResult{Move: entity.NoMove, Score: DrawScore}, nil
	}

	scores := make([]int, len(cells))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(max(workers, 1))

	for i, cell := range cells {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return fmt.Errorf("search canceled: %w", err)
			}

			scores[i] = scoreRootMove(board.Clone(), cell, maximizing, minimizing, depthLimit)

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return entity.SearchResult{Move: entity.NoMove, Score: DrawScore}, err
	}

	best := entity.SearchResult{Move: entity.NoMove, Score: DrawScore}
	bestScore := math.MinInt
	for i, score := range scores {
		if score > bestScore {
			bestScore = score
			best = entity.SearchResult{Move: cells[i], Score: score}
		}
	}

	return best, nil
}
