package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
)

const (
	ModeVsComputer = "pvc"
	ModeVsFriend   = "pvp"

	StarterPlayer   = "player"
	StarterComputer = "computer"
)

var ErrUnknownGameStatus = errors.New("unknown game status")

// Settings are chosen before a game starts. Changing any of them means starting a new game.
type Settings struct {
	Size     int    `json:"size"`
	Mode     string `json:"mode"`
	UserMark Mark   `json:"user_mark"`
	Starter  string `json:"starter"`
}

func DefaultSettings() Settings {
	return Settings{
		Size:     3,
		Mode:     ModeVsComputer,
		UserMark: PlayerX,
		Starter:  StarterPlayer,
	}
}

// Validate - checks every field; maxSize is the largest board the engine is configured to search.
func (that Settings) Validate(maxSize int) error {
	if that.Size < MinBoardSize || that.Size > maxSize {
		return fmt.Errorf("%w: %w: size %d must be between %d and %d",
			apperror.ErrInvalidSettings, apperror.ErrInvalidSize, that.Size, MinBoardSize, maxSize)
	}

	if that.Mode != ModeVsComputer && that.Mode != ModeVsFriend {
		return fmt.Errorf("%w: mode %q", apperror.ErrInvalidSettings, that.Mode)
	}

	if !that.UserMark.IsPlayer() {
		return fmt.Errorf("%w: user mark %q", apperror.ErrInvalidSettings, that.UserMark)
	}

	if that.Starter != StarterPlayer && that.Starter != StarterComputer {
		return fmt.Errorf("%w: starter %q", apperror.ErrInvalidSettings, that.Starter)
	}

	return nil
}

// Game is one session: the board plus whose turn it is and whether it is over.
type Game struct {
	Settings Settings `json:"settings"`
	Board    *Board   `json:"board"`
	Turn     Mark     `json:"turn,omitempty"`
	Status   string   `json:"status"`
	Outcome  Outcome  `json:"outcome"`
}

func NewGame(settings Settings, maxSize int) (*Game, error) {
	if err := settings.Validate(maxSize); err != nil {
		return nil, err
	}

	board, err := NewBoard(settings.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}

	game := &Game{
		Settings: settings,
		Board:    board,
		Status:   StatusOngoing,
		Outcome:  Outcome{Kind: OutcomeInProgress},
	}

	switch {
	case settings.Mode == ModeVsFriend:
		game.Turn = PlayerX
	case settings.Starter == StarterComputer:
		game.Turn = game.AIMark()
	default:
		game.Turn = settings.UserMark
	}

	return game, nil
}

// AIMark - returns the computer's mark, Empty when two humans play.
func (that *Game) AIMark() Mark {
	if that.Settings.Mode != ModeVsComputer {
		return Empty
	}

	return that.Settings.UserMark.Opponent()
}

func (that *Game) IsAITurn() bool {
	return !that.IsFinished() && that.AIMark() != Empty && that.Turn == that.AIMark()
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

// MakeTurn - places mark for the side to move, then finishes the game or passes the turn.
func (that *Game) MakeTurn(mark Mark, cell int) error {
	if err := that.ConfirmOngoingState(); err != nil {
		return err
	}

	if that.Turn != mark {
		return apperror.ErrNotYourTurn
	}

	if err := that.Board.Place(cell, mark); err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	that.UpdateGameState()

	if that.IsOngoing() {
		that.Turn = mark.Opponent()
	}

	return nil
}

func (that *Game) UpdateGameState() {
	that.Outcome = that.Board.Evaluate()

	if that.Outcome.IsOver() {
		that.Status = StatusFinished
		that.Turn = Empty
		return
	}

	that.Status = StatusOngoing
}
