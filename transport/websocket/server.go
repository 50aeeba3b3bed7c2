package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const (
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = pongWait * 9 / 10
	maxMessageSize  = 4096
	shutdownTimeout = 5 * time.Second
)

type gameManager interface {
	NewGame(settings entity.Settings) (*entity.Game, error)
	MakeTurn(ctx context.Context, game *entity.Game, cell int) (*entity.Game, error)
	MakeAITurn(ctx context.Context, game *entity.Game) (entity.SearchResult, error)
	Hint(ctx context.Context, game *entity.Game) (entity.SearchResult, error)
}

type handlerFunc func(ctx context.Context, sess *session, msg *Message) error

// Server runs one independent game session per websocket connection.
type Server struct {
	logger   *slog.Logger
	manager  gameManager
	settings entity.Settings
	aiDelay  time.Duration
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc
	sessions sync.WaitGroup
}

// New - settings are used for game:new requests that carry none, aiDelay is the pause before the computer moves.
func New(logger *slog.Logger, manager gameManager, settings entity.Settings, aiDelay time.Duration) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		manager:  manager,
		settings: settings,
		aiDelay:  aiDelay,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}

	server.handlers = map[string]handlerFunc{
		actionGameNew:   server.handleNewGame,
		actionGameTurn:  server.handleGameTurn,
		actionGameState: server.handleGameState,
		actionGameHint:  server.handleGameHint,
	}

	return server
}

func (that *Server) Router() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	router.Get("/ws", that.upgradeToWebSocket)

	return router
}

// Start - starts WebSocket server. Open sessions end when ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", port, err)
	}

	return that.Serve(ctx, listener)
}

// Serve - serves on listener until ctx is canceled and returns once every session has closed.
func (that *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:      that.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		shutdownErr <- srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	// srv.Serve returns as soon as Shutdown begins
	err := <-shutdownErr

	// Shutdown does not track hijacked connections
	that.sessions.Wait()

	if err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	that.sessions.Add(1)
	defer that.sessions.Done()

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	defer conn.Close()

	log.Info("WebSocket connection established", "remote", req.RemoteAddr)

	if err = that.handleMessages(req.Context(), newSession(conn)); err != nil {
		log.Error("error handling messages", "error", err)
	}

	log.Info("WebSocket connection closed", "remote", req.RemoteAddr)
}

// handleMessages - owns the session until the client leaves. Nothing else touches sess.
func (that *Server) handleMessages(ctx context.Context, sess *session) error {
	log := that.logger.With("method", "handleMessages")

	done := make(chan struct{})
	defer close(done)

	incoming, readErr := sess.readLoop(done)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	defer sess.stopAI()

	for {
		select {
		case <-ctx.Done():
			_ = sess.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), time.Now().Add(writeWait))
			return nil

		case err := <-readErr:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("failed to read message: %w", err)

		case data := <-incoming:
			if err := that.dispatch(ctx, sess, data); err != nil {
				log.Error("error processing message", "error", err)
			}

		case <-sess.aiReady():
			if err := that.playComputerTurn(ctx, sess); err != nil {
				log.Error("error playing computer turn", "error", err)
			}

		case <-ping.C:
			if err := sess.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return fmt.Errorf("failed to ping: %w", err)
			}
		}
	}
}
