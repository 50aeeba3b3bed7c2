package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// EvaluateRequest carries a board in text form, rows separated by "/" and "." for empty cells.
type EvaluateRequest struct {
	Board string `json:"board"`
}

type MoveRequest struct {
	Board string      `json:"board"`
	Mark  entity.Mark `json:"mark"`
}

type MoveResponse struct {
	Move    int            `json:"move"`
	Score   int            `json:"score"`
	Board   string         `json:"board"`
	Outcome entity.Outcome `json:"outcome"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// maxBodySize fits any board the engine accepts with room to spare.
const maxBodySize = 4 << 10

func (that *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := decodeRequest(w, r, &req); err != nil {
		that.writeError(w, err)
		return
	}

	board, err := that.parseBoard(req.Board)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, board.Evaluate())
}

// handleMove - searches the best move for the requested mark and returns the board after it.
func (that *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := decodeRequest(w, r, &req); err != nil {
		that.writeError(w, err)
		return
	}

	board, err := that.parseBoard(req.Board)
	if err != nil {
		that.writeError(w, err)
		return
	}

	result, err := that.engine.BestMove(r.Context(), board, req.Mark)
	if err != nil {
		that.writeError(w, err)
		return
	}

	if err = board.Place(result.Move, req.Mark); err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, MoveResponse{
		Move:    result.Move,
		Score:   result.Score,
		Board:   board.String(),
		Outcome: board.Evaluate(),
	})
}

func decodeRequest(w http.ResponseWriter, r *http.Request, req any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(req); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrInvalidBoard, err)
	}

	return nil
}

// parseBoard - parses raw and refuses boards larger than the engine searches.
func (that *Server) parseBoard(raw string) (*entity.Board, error) {
	board, err := entity.ParseBoard(raw)
	if err != nil {
		return nil, err
	}

	if maxSize := that.engine.MaxBoardSize(); board.Size() > maxSize {
		return nil, fmt.Errorf("%w: %dx%d board is larger than %dx%d",
			apperror.ErrInvalidSize, board.Size(), board.Size(), maxSize, maxSize)
	}

	return board, nil
}

func (that *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, apperror.ErrInvalidBoard),
		errors.Is(err, apperror.ErrInvalidMark),
		errors.Is(err, apperror.ErrInvalidSize):
		status = http.StatusBadRequest
	case errors.Is(err, apperror.ErrGameFinished):
		status = http.StatusConflict
	default:
		that.logger.With("method", "writeError").Error("request failed", "error", err)
	}

	that.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.With("method", "writeJSON").Error("failed to write response", "error", err)
	}
}
