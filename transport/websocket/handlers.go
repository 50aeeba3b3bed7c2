package websocket

import (
	"context"
	"errors"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

var (
	errNoGame      = errors.New("no game in progress, send game:new first")
	errCellMissing = errors.New("cell is required")
)

func (that *Server) handleNewGame(_ context.Context, sess *session, msg *Message) error {
	payload, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(sess, msg.Action, err)
	}

	settings := that.settings
	if payload.Settings != nil {
		settings = *payload.Settings
	}

	game, err := that.manager.NewGame(settings)
	if err != nil {
		return that.sendErrorResponse(sess, msg.Action, err)
	}

	sess.stopAI()
	sess.game = game

	if err = that.sendMessage(sess, msg.Action, ResponsePayload{Game: game}); err != nil {
		return err
	}

	return that.scheduleComputerTurn(sess)
}

func (that *Server) handleGameTurn(ctx context.Context, sess *session, msg *Message) error {
	if sess.game == nil {
		return that.sendErrorResponse(sess, msg.Action, errNoGame)
	}

	payload, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(sess, msg.Action, err)
	}

	if payload.Cell == nil {
		return that.sendErrorResponse(sess, msg.Action, errCellMissing)
	}

	game, err := that.manager.MakeTurn(ctx, sess.game, *payload.Cell)
	if err != nil {
		return that.sendErrorResponse(sess, msg.Action, err)
	}

	if err = that.sendMessage(sess, msg.Action, ResponsePayload{Game: game, Cell: payload.Cell}); err != nil {
		return err
	}

	return that.scheduleComputerTurn(sess)
}

func (that *Server) handleGameState(_ context.Context, sess *session, msg *Message) error {
	if sess.game == nil {
		return that.sendErrorResponse(sess, msg.Action, errNoGame)
	}

	return that.sendMessage(sess, msg.Action, ResponsePayload{Game: sess.game})
}

func (that *Server) handleGameHint(ctx context.Context, sess *session, msg *Message) error {
	if sess.game == nil {
		return that.sendErrorResponse(sess, msg.Action, errNoGame)
	}

	if sess.game.IsAITurn() {
		return that.sendErrorResponse(sess, msg.Action, apperror.ErrNotYourTurn)
	}

	hint, err := that.manager.Hint(ctx, sess.game)
	if err != nil {
		return that.sendErrorResponse(sess, msg.Action, err)
	}

	return that.sendMessage(sess, msg.Action, ResponsePayload{Game: sess.game, Hint: &hint})
}

// scheduleComputerTurn - tells the client the computer is thinking and arms the delayed move.
func (that *Server) scheduleComputerTurn(sess *session) error {
	if !sess.game.IsAITurn() {
		return nil
	}

	sess.scheduleAI(that.aiDelay)

	return that.sendMessage(sess, actionGameThinking, ResponsePayload{Game: sess.game})
}

func (that *Server) playComputerTurn(ctx context.Context, sess *session) error {
	sess.aiTimer = nil

	result, err := that.manager.MakeAITurn(ctx, sess.game)
	if err != nil {
		return that.sendErrorResponse(sess, actionGameTurn, err)
	}

	return that.sendMessage(sess, actionGameTurn, ResponsePayload{Game: sess.game, Cell: &result.Move})
}
