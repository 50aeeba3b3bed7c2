package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const (
	actionGameNew      = "game:new"
	actionGameTurn     = "game:turn"
	actionGameState    = "game:state"
	actionGameHint     = "game:hint"
	actionGameThinking = "game:thinking"
	actionError        = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RequestPayload struct {
	Settings *entity.Settings `json:"settings,omitempty"`
	Cell     *int             `json:"cell,omitempty"`
}

type ResponsePayload struct {
	Game  *entity.Game         `json:"game,omitempty"`
	Cell  *int                 `json:"cell,omitempty"`
	Hint  *entity.SearchResult `json:"hint,omitempty"`
	Error string               `json:"error,omitempty"`
}

func (that *Server) dispatch(ctx context.Context, sess *session, data []byte) error {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return that.sendErrorResponse(sess, actionError, fmt.Errorf("failed to unmarshal message: %w", err))
	}

	handler, ok := that.handlers[msg.Action]
	if !ok {
		return that.sendErrorResponse(sess, actionError, fmt.Errorf("unknown action %q", msg.Action))
	}

	return handler(ctx, sess, &msg)
}

func (that *Server) sendMessage(sess *session, action string, payload ResponsePayload) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err = sess.send(Message{Action: action, Payload: payloadJSON}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// sendErrorResponse - reports err to the client. The returned error is only about the write itself.
func (that *Server) sendErrorResponse(sess *session, action string, err error) error {
	that.logger.With("method", "sendErrorResponse").Warn("request rejected", "action", action, "error", err)

	return that.sendMessage(sess, action, ResponsePayload{Error: err.Error()})
}

func decodePayload(msg *Message) (RequestPayload, error) {
	var payload RequestPayload
	if len(msg.Payload) == 0 {
		return payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return payload, nil
}
