package tictactoe

import (
	"math"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const (
	WinScore  = 100
	LossScore = -WinScore
	DrawScore = 0
)

// ChooseMove - picks the empty cell with the best minimax score for maximizing.
// Ties go to the lowest index. The board is used as scratch space and is restored before returning.
// Callers must check that the game is not already decided.
func ChooseMove(board *entity.Board, maximizing, minimizing entity.Mark, depthLimit int) entity.SearchResult {
	best := entity.SearchResult{Move: entity.NoMove, Score: DrawScore}
	bestScore := math.MinInt

	for cell := range board.EmptyCells() {
		score := scoreRootMove(board, cell, maximizing, minimizing, depthLimit)

		if score > bestScore {
			bestScore = score
			best = entity.SearchResult{Move: cell, Score: score}
		}
	}

	return best
}

// scoreRootMove - plays cell for maximizing and searches the reply tree with a full window.
func scoreRootMove(board *entity.Board, cell int, maximizing, minimizing entity.Mark, depthLimit int) int {
	s := searcher{
		board:      board,
		maximizing: maximizing,
		minimizing: minimizing,
		depthLimit: depthLimit,
	}

	s.place(cell, maximizing)
	score := s.minimax(0, false, math.MinInt, math.MaxInt)
	s.undo(cell)

	return score
}

type searcher struct {
	board      *entity.Board
	maximizing entity.Mark
	minimizing entity.Mark
	depthLimit int
}

func (that *searcher) minimax(depth int, maximizingTurn bool, alpha, beta int) int {
	outcome := that.board.Evaluate()

	switch {
	case outcome.Kind == entity.OutcomeWin && outcome.Winner == that.maximizing:
		return WinScore - depth
	case outcome.Kind == entity.OutcomeWin && outcome.Winner == that.minimizing:
		return LossScore + depth
	case outcome.Kind == entity.OutcomeDraw:
		return DrawScore
	case depth >= that.depthLimit:
		// unresolved positions past the horizon count as neutral
		return DrawScore
	}

	if maximizingTurn {
		best := math.MinInt
		for cell := range that.board.EmptyCells() {
			that.place(cell, that.maximizing)
			score := that.minimax(depth+1, false, alpha, beta)
			that.undo(cell)

			best = max(best, score)
			alpha = max(alpha, score)
			if beta <= alpha {
				break
			}
		}

		return best
	}

	best := math.MaxInt
	for cell := range that.board.EmptyCells() {
		that.place(cell, that.minimizing)
		score := that.minimax(depth+1, true, alpha, beta)
		that.undo(cell)

		best = min(best, score)
		beta = min(beta, score)
		if beta <= alpha {
			break
		}
	}

	return best
}

// place and undo only ever touch cells yielded by EmptyCells, so errors are impossible here.
func (that *searcher) place(cell int, mark entity.Mark) {
	_ = that.board.Place(cell, mark)
}

func (that *searcher) undo(cell int) {
	_ = that.board.Clear(cell)
}
