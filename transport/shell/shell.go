package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

var errUnknownCommand = errors.New("unknown command, type help")

type gameManager interface {
	NewGame(settings entity.Settings) (*entity.Game, error)
	MakeTurn(ctx context.Context, game *entity.Game, cell int) (*entity.Game, error)
	MakeAITurn(ctx context.Context, game *entity.Game) (entity.SearchResult, error)
	Hint(ctx context.Context, game *entity.Game) (entity.SearchResult, error)
}

type command func(ctx context.Context, args []string) error

// Shell plays one game at a time in the terminal.
type Shell struct {
	logger   *slog.Logger
	manager  gameManager
	settings entity.Settings
	aiDelay  time.Duration

	game     *entity.Game
	out      io.Writer
	rl       *readline.Instance
	commands map[string]command
	quit     bool
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func New(logger *slog.Logger, manager gameManager, settings entity.Settings, aiDelay time.Duration) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[36mtictactoe>\033[0m ",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
		AutoComplete:    completer(),

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open terminal: %w", err)
	}

	shell := newShell(logger, manager, settings, aiDelay, rl.Stdout())
	shell.rl = rl

	return shell, nil
}

func newShell(logger *slog.Logger, manager gameManager, settings entity.Settings, aiDelay time.Duration, out io.Writer) *Shell {
	shell := &Shell{
		logger:   logger.With("component", "shell"),
		manager:  manager,
		settings: settings,
		aiDelay:  aiDelay,
		out:      out,
	}

	shell.commands = map[string]command{
		"new":     shell.cmdNew,
		"size":    shell.cmdSize,
		"mode":    shell.cmdMode,
		"symbol":  shell.cmdSymbol,
		"starter": shell.cmdStarter,
		"move":    shell.cmdMove,
		"hint":    shell.cmdHint,
		"board":   shell.cmdBoard,
		"help":    shell.cmdHelp,
		"exit":    shell.cmdExit,
		"quit":    shell.cmdExit,
	}

	return shell
}

func completer() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("new"),
		readline.PcItem("size", readline.PcItem("3"), readline.PcItem("4")),
		readline.PcItem("mode", readline.PcItem(entity.ModeVsComputer), readline.PcItem(entity.ModeVsFriend)),
		readline.PcItem("symbol", readline.PcItem("X"), readline.PcItem("O")),
		readline.PcItem("starter", readline.PcItem(entity.StarterPlayer), readline.PcItem(entity.StarterComputer)),
		readline.PcItem("move"),
		readline.PcItem("hint"),
		readline.PcItem("board"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)
}

// Loop - reads commands until exit, EOF or an interrupt on an empty line.
func (that *Shell) Loop(ctx context.Context) error {
	defer that.rl.Close()

	if err := that.Execute(ctx, "new"); err != nil {
		return err
	}

	for !that.quit {
		line, err := that.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				return nil
			}
			continue
		} else if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return fmt.Errorf("failed to read line: %w", err)
		}

		if err = that.Execute(ctx, line); err != nil {
			that.showError(err)
		}

		if ctx.Err() != nil {
			return nil
		}
	}

	return nil
}

// Execute - runs a single command line. A bare number is a move.
func (that *Shell) Execute(ctx context.Context, line string) error {
	fields, err := shellquote.Split(line)
	if err != nil {
		return fmt.Errorf("failed to parse command: %w", err)
	}

	if len(fields) == 0 {
		return nil
	}

	name, args := strings.ToLower(fields[0]), fields[1:]

	if _, err = strconv.Atoi(name); err == nil {
		return that.cmdMove(ctx, fields)
	}

	cmd, ok := that.commands[name]
	if !ok {
		return fmt.Errorf("%w: %q", errUnknownCommand, name)
	}

	return cmd(ctx, args)
}

func (that *Shell) showMessage(msg string) {
	_, _ = io.WriteString(that.out, msg)
	_, _ = io.WriteString(that.out, "\n")
}

func (that *Shell) showError(err error) {
	that.showMessage("Error: " + err.Error())
}
