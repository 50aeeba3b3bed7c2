package shell

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
)

func newTestShell(t *testing.T, settings entity.Settings) (*Shell, *bytes.Buffer) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := tictactoe.NewEngine(logger, tictactoe.DefaultDepthPolicy(), 1, nil)
	manager := usecase.NewGameManager(logger, engine)

	out := &bytes.Buffer{}
	shell := newShell(logger, manager, settings, 0, out)

	require.NoError(t, shell.Execute(context.Background(), "new"))

	return shell, out
}

func friendlySettings() entity.Settings {
	settings := entity.DefaultSettings()
	settings.Mode = entity.ModeVsFriend

	return settings
}

func TestShell_New(t *testing.T) {
	_, out := newTestShell(t, entity.DefaultSettings())

	assert.Equal(t, " 0  1  2 \n 3  4  5 \n 6  7  8 \nX to move\n", out.String())
}

func TestShell_MoveAgainstComputer(t *testing.T) {
	// Given: a game against the computer where the user starts
	shell, out := newTestShell(t, entity.DefaultSettings())
	out.Reset()

	// When: the user takes the center
	err := shell.Execute(context.Background(), "move 4")

	// Then: the computer answers right away
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Computer is thinking...")
	assert.Contains(t, out.String(), "Computer plays")
	assert.Len(t, slices.Collect(shell.game.Board.EmptyCells()), 7)
	assert.Equal(t, entity.PlayerX, shell.game.Turn)
}

func TestShell_BareNumberIsAMove(t *testing.T) {
	shell, _ := newTestShell(t, friendlySettings())

	require.NoError(t, shell.Execute(context.Background(), "0"))

	assert.Equal(t, entity.PlayerX, shell.game.Board.Cell(0))
	assert.Equal(t, entity.PlayerO, shell.game.Turn)
}

func TestShell_WinHighlightsLine(t *testing.T) {
	// Given: two friends on one terminal
	shell, out := newTestShell(t, friendlySettings())

	// When: X completes the top row
	for _, cell := range []string{"0", "3", "1", "4"} {
		require.NoError(t, shell.Execute(context.Background(), cell))
	}
	out.Reset()

	require.NoError(t, shell.Execute(context.Background(), "move 2"))

	// Then: the row is bracketed and X is announced
	assert.Equal(t, "[X][X][X]\n O  O  5 \n 6  7  8 \nX wins\n", out.String())

	err := shell.Execute(context.Background(), "move 8")
	require.ErrorIs(t, err, apperror.ErrGameFinished)
}

func TestShell_Settings(t *testing.T) {
	ctx := context.Background()

	t.Run("Symbol O switches marks", func(t *testing.T) {
		shell, out := newTestShell(t, entity.DefaultSettings())
		out.Reset()

		require.NoError(t, shell.Execute(ctx, "symbol o"))

		assert.Equal(t, entity.PlayerO, shell.settings.UserMark)
		assert.Equal(t, entity.PlayerX, shell.game.AIMark())
		assert.Equal(t, entity.PlayerO, shell.game.Turn)
		assert.Contains(t, out.String(), "O to move")
	})

	t.Run("Starter computer", func(t *testing.T) {
		shell, _ := newTestShell(t, entity.DefaultSettings())

		require.NoError(t, shell.Execute(ctx, "starter computer"))

		assert.Len(t, slices.Collect(shell.game.Board.EmptyCells()), 8)
		assert.Equal(t, entity.PlayerX, shell.game.Turn)
	})

	t.Run("Size starts a bigger game", func(t *testing.T) {
		shell, _ := newTestShell(t, friendlySettings())

		require.NoError(t, shell.Execute(ctx, "size 4"))

		assert.Equal(t, 4, shell.game.Board.Size())
	})

	t.Run("Invalid values keep the current settings", func(t *testing.T) {
		shell, _ := newTestShell(t, entity.DefaultSettings())
		before := shell.settings

		require.ErrorIs(t, shell.Execute(ctx, "size 2"), apperror.ErrInvalidSettings)
		require.ErrorIs(t, shell.Execute(ctx, "size 40"), apperror.ErrInvalidSize)
		require.ErrorIs(t, shell.Execute(ctx, "size big"), apperror.ErrInvalidSettings)
		require.ErrorIs(t, shell.Execute(ctx, "mode online"), apperror.ErrInvalidSettings)
		require.ErrorIs(t, shell.Execute(ctx, "symbol Z"), apperror.ErrInvalidMark)
		require.ErrorIs(t, shell.Execute(ctx, "symbol ."), apperror.ErrInvalidSettings)
		require.ErrorIs(t, shell.Execute(ctx, "starter nobody"), apperror.ErrInvalidSettings)
		require.ErrorIs(t, shell.Execute(ctx, "mode"), errWrongArgCount)

		assert.Equal(t, before, shell.settings)
	})
}

func TestShell_Commands(t *testing.T) {
	ctx := context.Background()

	t.Run("Hint does not play", func(t *testing.T) {
		shell, out := newTestShell(t, entity.DefaultSettings())
		out.Reset()

		require.NoError(t, shell.Execute(ctx, "hint"))

		assert.Contains(t, out.String(), "Hint: X could play")
		assert.Len(t, slices.Collect(shell.game.Board.EmptyCells()), 9)
	})

	t.Run("Board and help print", func(t *testing.T) {
		shell, out := newTestShell(t, entity.DefaultSettings())
		out.Reset()

		require.NoError(t, shell.Execute(ctx, "board"))
		require.NoError(t, shell.Execute(ctx, "HELP"))

		assert.Contains(t, out.String(), "X to move")
		assert.Contains(t, out.String(), "Commands:")
	})

	t.Run("Exit stops the loop", func(t *testing.T) {
		shell, _ := newTestShell(t, entity.DefaultSettings())

		require.NoError(t, shell.Execute(ctx, "exit"))

		assert.True(t, shell.quit)
	})

	t.Run("Bad input is reported", func(t *testing.T) {
		shell, _ := newTestShell(t, entity.DefaultSettings())

		require.ErrorIs(t, shell.Execute(ctx, "frobnicate"), errUnknownCommand)
		require.ErrorIs(t, shell.Execute(ctx, "move"), errWrongArgCount)
		require.ErrorIs(t, shell.Execute(ctx, "move 9"), apperror.ErrIndexOutOfBounds)
		require.ErrorIs(t, shell.Execute(ctx, "move four"), apperror.ErrIndexOutOfBounds)
		require.Error(t, shell.Execute(ctx, `move "4`))
		require.NoError(t, shell.Execute(ctx, "   "))
	})

	t.Run("Move before new", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		shell := newShell(logger, usecase.NewGameManager(logger, nil), entity.DefaultSettings(), 0, io.Discard)

		require.ErrorIs(t, shell.Execute(ctx, "move 1"), errNoGame)
		require.ErrorIs(t, shell.Execute(ctx, "hint"), errNoGame)
	})
}
