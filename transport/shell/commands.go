package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

var (
	errNoGame        = errors.New("no game in progress, type new")
	errWrongArgCount = errors.New("wrong number of arguments")
)

const helpText = `Commands:
  new                      start a new game with the current settings
  size <n>                 board size (3 up to the engine limit), starts a new game
  mode <pvc|pvp>           play the computer or a friend, starts a new game
  symbol <X|O>             your mark against the computer, starts a new game
  starter <player|computer> who moves first against the computer, starts a new game
  move <cell>, <cell>      place the mark of the side to move, cells are numbered from 0
  hint                     suggest a move for the side to move
  board                    show the board
  help                     show this help
  exit                     leave`

func (that *Shell) cmdNew(ctx context.Context, _ []string) error {
	return that.startGame(ctx, that.settings)
}

// startGame - replaces the current game; the settings are kept only when the game starts.
func (that *Shell) startGame(ctx context.Context, settings entity.Settings) error {
	game, err := that.manager.NewGame(settings)
	if err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}

	that.settings = settings
	that.game = game
	that.showMessage(render(game))

	return that.playComputerTurn(ctx)
}

// changeSettings - applies update to a copy of the settings and restarts the game when they are valid.
func (that *Shell) changeSettings(ctx context.Context, args []string, update func(settings *entity.Settings, arg string) error) error {
	if len(args) != 1 {
		return errWrongArgCount
	}

	settings := that.settings
	if err := update(&settings, args[0]); err != nil {
		return err
	}

	return that.startGame(ctx, settings)
}

func (that *Shell) cmdSize(ctx context.Context, args []string) error {
	return that.changeSettings(ctx, args, func(settings *entity.Settings, arg string) error {
		size, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("%w: size %q", apperror.ErrInvalidSettings, arg)
		}

		settings.Size = size

		return nil
	})
}

func (that *Shell) cmdMode(ctx context.Context, args []string) error {
	return that.changeSettings(ctx, args, func(settings *entity.Settings, arg string) error {
		settings.Mode = arg
		return nil
	})
}

func (that *Shell) cmdSymbol(ctx context.Context, args []string) error {
	return that.changeSettings(ctx, args, func(settings *entity.Settings, arg string) error {
		mark, err := entity.ParseMark(arg)
		if err != nil {
			return err
		}

		settings.UserMark = mark

		return nil
	})
}

func (that *Shell) cmdStarter(ctx context.Context, args []string) error {
	return that.changeSettings(ctx, args, func(settings *entity.Settings, arg string) error {
		settings.Starter = arg
		return nil
	})
}

func (that *Shell) cmdMove(ctx context.Context, args []string) error {
	if that.game == nil {
		return errNoGame
	}

	if len(args) != 1 {
		return errWrongArgCount
	}

	cell, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%w: %q", apperror.ErrIndexOutOfBounds, args[0])
	}

	if _, err = that.manager.MakeTurn(ctx, that.game, cell); err != nil {
		return err
	}

	that.showMessage(render(that.game))

	return that.playComputerTurn(ctx)
}

func (that *Shell) cmdHint(ctx context.Context, _ []string) error {
	if that.game == nil {
		return errNoGame
	}

	result, err := that.manager.Hint(ctx, that.game)
	if err != nil {
		return err
	}

	that.showMessage(fmt.Sprintf("Hint: %s could play %d (score %d)", that.game.Turn, result.Move, result.Score))

	return nil
}

func (that *Shell) cmdBoard(_ context.Context, _ []string) error {
	if that.game == nil {
		return errNoGame
	}

	that.showMessage(render(that.game))

	return nil
}

func (that *Shell) cmdHelp(_ context.Context, _ []string) error {
	that.showMessage(helpText)
	return nil
}

func (that *Shell) cmdExit(_ context.Context, _ []string) error {
	that.quit = true
	return nil
}

// playComputerTurn - lets the computer answer after the configured delay, if it is its turn.
func (that *Shell) playComputerTurn(ctx context.Context) error {
	if !that.game.IsAITurn() {
		return nil
	}

	that.showMessage("Computer is thinking...")

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(that.aiDelay):
	}

	result, err := that.manager.MakeAITurn(ctx, that.game)
	if err != nil {
		return err
	}

	that.logger.Debug("computer moved", "cell", result.Move, "score", result.Score)

	that.showMessage(fmt.Sprintf("Computer plays %d", result.Move))
	that.showMessage(render(that.game))

	return nil
}
