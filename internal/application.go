package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-engine/internal/config"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-engine/transport/rest"
	"github.com/rocketscienceinc/tictactoe-engine/transport/shell"
	"github.com/rocketscienceinc/tictactoe-engine/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the HTTP and WebSocket servers until a signal arrives or one of them fails.
// It returns only after both servers have stopped, so the move cache outlives every request.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := signalContext(log)
	defer cancel()

	engine, closeCache, err := newEngine(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer closeCache()

	settings, err := SessionSettings(conf.Session, engine.MaxBoardSize())
	if err != nil {
		return err
	}

	gameManager := usecase.NewGameManager(logger, engine)

	return serve(ctx, log,
		func(ctx context.Context) error {
			log.Info("Starting HTTP server", "port", conf.HTTPPort)
			if httpErr := rest.New(logger, engine).Start(ctx, conf.HTTPPort); httpErr != nil {
				return fmt.Errorf("HTTP server error: %w", httpErr)
			}
			return nil
		},
		func(ctx context.Context) error {
			log.Info("Starting WebSocket server", "port", conf.SocketPort)
			wsServer := websocket.New(logger, gameManager, settings, conf.Session.AIDelay)
			if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
				return fmt.Errorf("WebSocket server error: %w", wsErr)
			}
			return nil
		},
	)
}

// serve - runs every server until ctx is canceled or one fails, which stops the rest.
// It waits for all of them to return.
func serve(ctx context.Context, log *slog.Logger, servers ...func(ctx context.Context) error) error {
	group, groupCtx := errgroup.WithContext(ctx)

	for _, server := range servers {
		group.Go(func() error {
			return server(groupCtx)
		})
	}

	if err := group.Wait(); err != nil {
		log.Error("server stopped with error", "error", err)
		return err
	}

	log.Info("Application context canceled, servers stopped")

	return nil
}

// RunShell - plays in the terminal until the user leaves.
func RunShell(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "shell-app")

	ctx, cancel := signalContext(log)
	defer cancel()

	engine, closeCache, err := newEngine(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer closeCache()

	settings, err := SessionSettings(conf.Session, engine.MaxBoardSize())
	if err != nil {
		return err
	}

	sh, err := shell.New(logger, usecase.NewGameManager(logger, engine), settings, conf.Session.AIDelay)
	if err != nil {
		return fmt.Errorf("failed to start shell: %w", err)
	}

	return sh.Loop(ctx)
}

// SessionSettings - converts the configured session into game settings for boards up to maxSize.
func SessionSettings(session config.Session, maxSize int) (entity.Settings, error) {
	mark, err := entity.ParseMark(session.UserMark)
	if err != nil {
		return entity.Settings{}, fmt.Errorf("invalid session config: %w", err)
	}

	settings := entity.Settings{
		Size:     session.Size,
		Mode:     session.Mode,
		UserMark: mark,
		Starter:  session.Starter,
	}

	if err = settings.Validate(maxSize); err != nil {
		return entity.Settings{}, fmt.Errorf("invalid session config: %w", err)
	}

	return settings, nil
}

func signalContext(log *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigs)
	}()

	return ctx, cancel
}

// newEngine - builds the engine, backed by the redis move cache when it is enabled.
func newEngine(ctx context.Context, logger *slog.Logger, conf *config.Config) (*tictactoe.Engine, func(), error) {
	log := logger.With("method", "newEngine")
	policy := tictactoe.DepthPolicy(conf.Engine.DepthLimits)

	if !conf.Redis.Enabled {
		return tictactoe.NewEngine(logger, policy, conf.Engine.Workers, nil), func() {}, nil
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return nil, nil, ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	closeCache := func() {
		if closeErr := redisStorage.Close(); closeErr != nil {
			log.Error("could not close redis storage", "error", closeErr)
		}
	}

	moveCache := repository.NewMoveCache(redisStorage, conf.Redis.TTL)

	return tictactoe.NewEngine(logger, policy, conf.Engine.Workers, moveCache), closeCache, nil
}
