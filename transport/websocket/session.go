package websocket

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// session is owned by the goroutine running handleMessages.
type session struct {
	conn    *websocket.Conn
	game    *entity.Game
	aiTimer *time.Timer
}

func newSession(conn *websocket.Conn) *session {
	return &session{conn: conn}
}

// readLoop - forwards client messages until the connection fails or done is closed.
func (that *session) readLoop(done <-chan struct{}) (<-chan []byte, <-chan error) {
	incoming := make(chan []byte)
	readErr := make(chan error, 1)

	that.conn.SetReadLimit(maxMessageSize)
	_ = that.conn.SetReadDeadline(time.Now().Add(pongWait))
	that.conn.SetPongHandler(func(string) error {
		return that.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go func() {
		for {
			_, data, err := that.conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}

			select {
			case incoming <- data:
			case <-done:
				return
			}
		}
	}()

	return incoming, readErr
}

func (that *session) scheduleAI(delay time.Duration) {
	that.stopAI()
	that.aiTimer = time.NewTimer(delay)
}

func (that *session) stopAI() {
	if that.aiTimer != nil {
		that.aiTimer.Stop()
		that.aiTimer = nil
	}
}

// aiReady - nil channel when no computer move is pending, so select skips it.
func (that *session) aiReady() <-chan time.Time {
	if that.aiTimer == nil {
		return nil
	}

	return that.aiTimer.C
}

func (that *session) send(msg Message) error {
	if err := that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return that.conn.WriteJSON(msg)
}
