package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flashboard/bingo-server/internal/board"
	"github.com/flashboard/bingo-server/internal/types"
)

const (
	writeTimeout = 3 * time.Second
	outboxSize   = 16
)

// Handler upgrades the connection and runs the reader loop. Broadcasts flow
// through a per-client outbox drained by a writer goroutine; the board never
// waits on a socket.
func Handler(b *board.Board, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// Clients connect over the board's own access point; the
			// browser origin is whatever the captive page served.
			InsecureSkipVerify: true,
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID := uuid.NewString()
		outbox := make(chan []byte, outboxSize)

		b.Inbox() <- board.Connect{ClientID: clientID, Outbox: outbox}
		defer func() { b.Inbox() <- board.Disconnect{ClientID: clientID} }()

		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for payload := range outbox {
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("read failed", zap.String("clientId", clientID), zap.Error(err))
				}
				return
			}

			var msg types.ClientMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				writeError(r.Context(), conn, "bad json")
				continue
			}

			switch msg.Type {
			case "subscribe":
				b.Inbox() <- board.Subscribe{
					ClientID: clientID,
					Mode:     msg.Mode,
					CardID:   msg.CardID,
				}

			case "command":
				res := b.Do(types.Command{
					Action:  msg.Action,
					Token:   msg.Token,
					Payload: msg.Payload,
				})
				reply, err := json.Marshal(types.CommandResult{
					Type:      "command_result",
					RequestID: msg.RequestID,
					OK:        res.OK,
					Status:    res.Status,
					Data:      res.Data,
					Error:     res.Err,
				})
				if err != nil {
					log.Error("result marshal failed", zap.String("action", msg.Action), zap.Error(err))
					continue
				}
				ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
				_ = conn.Write(ctx, websocket.MessageText, reply)
				cancel()

			default:
				writeError(r.Context(), conn, "unknown type")
			}
		}
	}
}

func writeError(ctx context.Context, conn *websocket.Conn, msg string) {
	c, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(c, websocket.MessageText, []byte(`{"type":"error","error":"`+msg+`"}`))
}
