package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

type moveEngine interface {
	BestMove(ctx context.Context, board *entity.Board, mark entity.Mark) (entity.SearchResult, error)
	MaxBoardSize() int
}

// GameManager drives a single game session for any front end.
type GameManager struct {
	logger *slog.Logger
	engine moveEngine
}

func NewGameManager(logger *slog.Logger, engine moveEngine) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),
		engine: engine,
	}
}

func (that *GameManager) NewGame(settings entity.Settings) (*entity.Game, error) {
	log := that.logger.With("method", "NewGame")

	game, err := entity.NewGame(settings, that.engine.MaxBoardSize())
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	log.Info("game started", "size", settings.Size, "mode", settings.Mode,
		"user_mark", settings.UserMark.String(), "starter", settings.Starter)

	return game, nil
}

// MakeTurn - plays cell for the human side to move.
func (that *GameManager) MakeTurn(_ context.Context, game *entity.Game, cell int) (*entity.Game, error) {
	if err := game.ConfirmOngoingState(); err != nil {
		return game, err
	}

	if game.IsAITurn() {
		return game, apperror.ErrNotYourTurn
	}

	if err := game.MakeTurn(game.Turn, cell); err != nil {
		return game, fmt.Errorf("failed make turn: %w", err)
	}

	that.logFinished(game)

	return game, nil
}

// MakeAITurn - asks the engine for the computer's move and plays it.
func (that *GameManager) MakeAITurn(ctx context.Context, game *entity.Game) (entity.SearchResult, error) {
	noMove := entity.SearchResult{Move: entity.NoMove}

	if err := game.ConfirmOngoingState(); err != nil {
		return noMove, err
	}

	if !game.IsAITurn() {
		return noMove, apperror.ErrNotYourTurn
	}

	mark := game.AIMark()

	result, err := that.engine.BestMove(ctx, game.Board, mark)
	if err != nil {
		return noMove, fmt.Errorf("failed to choose move: %w", err)
	}

	if !result.HasMove() {
		return noMove, apperror.ErrNoLegalMove
	}

	if err = game.MakeTurn(mark, result.Move); err != nil {
		return noMove, fmt.Errorf("failed make turn: %w", err)
	}

	that.logFinished(game)

	return result, nil
}

// Hint - suggests a move for the side to move without playing it.
func (that *GameManager) Hint(ctx context.Context, game *entity.Game) (entity.SearchResult, error) {
	noMove := entity.SearchResult{Move: entity.NoMove}

	if err := game.ConfirmOngoingState(); err != nil {
		return noMove, err
	}

	result, err := that.engine.BestMove(ctx, game.Board, game.Turn)
	if err != nil {
		return noMove, fmt.Errorf("failed to choose move: %w", err)
	}

	if !result.HasMove() {
		return noMove, apperror.ErrNoLegalMove
	}

	return result, nil
}

func (that *GameManager) logFinished(game *entity.Game) {
	if !game.IsFinished() {
		return
	}

	that.logger.With("method", "logFinished").Info("game finished",
		"outcome", string(game.Outcome.Kind), "winner", game.Outcome.Winner.String(), "board", game.Board.String())
}
