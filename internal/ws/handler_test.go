package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/flashboard/bingo-server/internal/auth"
	"github.com/flashboard/bingo-server/internal/board"
	"github.com/flashboard/bingo-server/internal/engine"
	"github.com/flashboard/bingo-server/internal/settings"
	"github.com/flashboard/bingo-server/internal/types"
)

const testPin = "8472"

func dialTestBoard(t *testing.T) *websocket.Conn {
	t.Helper()
	clock := clockwork.NewRealClock()
	b := board.New(t.Context(), board.Options{
		Game:           engine.NewGame(4, board.NewRand(1)),
		Guard:          auth.NewGuard(testPin, 10*time.Minute, clock),
		Clock:          clock,
		Log:            zaptest.NewLogger(t),
		Settings:       settings.Defaults(),
		MaxSubscribers: 8,
	})
	srv := httptest.NewServer(Handler(b, zaptest.NewLogger(t)))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(t.Context(), url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg any) {
	t.Helper()
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, conn.Write(t.Context(), websocket.MessageText, raw))
}

// readUntil skips interleaved broadcasts until a frame of the wanted type
// arrives; the writer goroutine and the command reply share one socket.
func readUntil(t *testing.T, conn *websocket.Conn, wantType string) json.RawMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		_, raw, err := conn.Read(ctx)
		require.NoError(t, err)
		var head struct {
			Type string `json:"type"`
		}
		require.NoError(t, json.Unmarshal(raw, &head))
		if head.Type == wantType {
			return raw
		}
	}
	t.Fatalf("no %q frame arrived", wantType)
	return nil
}

func TestHandler_SubscribeDeliversSnapshot(t *testing.T) {
	conn := dialTestBoard(t)

	send(t, conn, types.ClientMessage{Type: "subscribe", Mode: "board"})
	raw := readUntil(t, conn, "snapshot")

	var env struct {
		Seq  uint64           `json:"seq"`
		Seed string           `json:"seed"`
		Data types.BoardState `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.NotZero(t, env.Seq)
	assert.Equal(t, env.Seed, env.Data.BoardSeed)
	assert.Equal(t, 75, env.Data.Remaining)
}

func TestHandler_CommandRoundTrip(t *testing.T) {
	conn := dialTestBoard(t)

	send(t, conn, types.ClientMessage{Type: "command", RequestID: "r1", Action: "draw"})
	raw := readUntil(t, conn, "command_result")
	var res types.CommandResult
	require.NoError(t, json.Unmarshal(raw, &res))
	assert.Equal(t, "r1", res.RequestID)
	assert.False(t, res.OK)
	assert.Equal(t, 401, res.Status)
	assert.Equal(t, "board auth required", res.Error)

	unlockPayload, _ := json.Marshal(types.UnlockPayload{Pin: testPin})
	send(t, conn, types.ClientMessage{Type: "command", RequestID: "r2", Action: "unlock_board", Payload: unlockPayload})
	raw = readUntil(t, conn, "command_result")
	require.NoError(t, json.Unmarshal(raw, &res))
	require.True(t, res.OK, res.Error)
	token := res.Data.(map[string]any)["token"].(string)

	send(t, conn, types.ClientMessage{Type: "command", RequestID: "r3", Action: "draw", Token: token})
	raw = readUntil(t, conn, "command_result")
	res = types.CommandResult{}
	require.NoError(t, json.Unmarshal(raw, &res))
	assert.True(t, res.OK, res.Error)
	assert.Equal(t, "r3", res.RequestID)
}

func TestHandler_MalformedFrames(t *testing.T) {
	conn := dialTestBoard(t)

	require.NoError(t, conn.Write(t.Context(), websocket.MessageText, []byte("{not json")))
	raw := readUntil(t, conn, "error")
	assert.Contains(t, string(raw), "bad json")

	send(t, conn, types.ClientMessage{Type: "teleport"})
	raw = readUntil(t, conn, "error")
	assert.Contains(t, string(raw), "unknown type")
}

func TestHandler_BroadcastReachesSubscriber(t *testing.T) {
	conn := dialTestBoard(t)

	send(t, conn, types.ClientMessage{Type: "subscribe", Mode: "board"})
	readUntil(t, conn, "snapshot")

	// The broadcast and the direct reply race on the socket; take both in
	// whatever order they land.
	unlockPayload, _ := json.Marshal(types.UnlockPayload{Pin: testPin})
	send(t, conn, types.ClientMessage{Type: "command", Action: "unlock_board", Payload: unlockPayload})
	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()
	var token string
	sawAuthChanged := false
	for token == "" || !sawAuthChanged {
		_, raw, err := conn.Read(ctx)
		require.NoError(t, err)
		var head struct {
			Type string `json:"type"`
		}
		require.NoError(t, json.Unmarshal(raw, &head))
		switch head.Type {
		case "board_auth_changed":
			sawAuthChanged = true
		case "command_result":
			var res types.CommandResult
			require.NoError(t, json.Unmarshal(raw, &res))
			require.True(t, res.OK, res.Error)
			token = res.Data.(map[string]any)["token"].(string)
		}
	}

	send(t, conn, types.ClientMessage{Type: "command", Action: "draw", Token: token})
	raw := readUntil(t, conn, "number_called")
	var env struct {
		Data types.BoardState `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, 74, env.Data.Remaining)
	assert.NotZero(t, env.Data.Current)
}
