package apperror

import "errors"

var (
	ErrInvalidSize      = errors.New("unsupported board size")
	ErrIndexOutOfBounds = errors.New("cell index is out of bounds")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrInvalidMark      = errors.New("invalid mark")
	ErrInvalidBoard     = errors.New("invalid board")

	ErrGameFinished    = errors.New("game is already finished")
	ErrNotYourTurn     = errors.New("it's not your turn")
	ErrNoLegalMove     = errors.New("no legal move")
	ErrInvalidSettings = errors.New("invalid game settings")
	ErrMoveNotCached   = errors.New("move is not cached")
)
