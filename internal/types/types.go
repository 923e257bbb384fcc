// Package types holds the wire shapes shared by the WebSocket channel and
// the HTTP mirror. One message type space in both directions:
//
// Client -> Server
//
//	subscribe: {type:"subscribe", mode:"board"|"none", cardId?: string}
//	command:   {type:"command", requestId, action, token?, payload?}
//
// Server -> Client
//
//	command_result: {type:"command_result", requestId, ok, status, data?, error?}
//	broadcast envelope: {type:<event>, seq, seed, ts, data}
//
// where <event> is one of snapshot, number_called, number_undone, game_reset,
// calling_style_changed, game_type_changed, winner_changed, card_joined,
// card_mark_changed, card_left, card_state, pattern_index_changed,
// board_auth_changed, led_test_changed, brightness_changed, theme_changed,
// color_changed, board_pin_changed.
package types

import "encoding/json"

// ClientMessage is any frame a client sends over the WebSocket.
type ClientMessage struct {
	Type      string          `json:"type"`
	Mode      string          `json:"mode,omitempty"`
	CardID    string          `json:"cardId,omitempty"`
	RequestID string          `json:"requestId,omitempty"`
	Action    string          `json:"action,omitempty"`
	Token     string          `json:"token,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Command is a dispatcher request, transport-agnostic: the WS handler fills
// it from a ClientMessage, the HTTP mirror from the request body and the
// X-Board-Token header.
type Command struct {
	Action  string
	Token   string
	Payload json.RawMessage
}

// Result is the dispatcher's synchronous reply. Status carries the HTTP
// status code the mirror responds with; the WS channel forwards it verbatim.
type Result struct {
	OK     bool
	Status int
	Data   any
	Err    string
}

// CommandResult is the WS framing of a Result.
type CommandResult struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId"`
	OK        bool   `json:"ok"`
	Status    int    `json:"status"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Envelope wraps every server broadcast. Seq is a strictly increasing
// per-process counter shared across all message types; clients use it to
// observe gaps or reordering. Seed is the current join code.
type Envelope struct {
	Type string `json:"type"`
	Seq  uint64 `json:"seq"`
	Seed string `json:"seed"`
	TS   int64  `json:"ts"`
	Data any    `json:"data"`
}

// Command payloads.

type SubscribePayload struct {
	Mode   string `json:"mode"`
	CardID string `json:"cardId,omitempty"`
}

type CallNumberPayload struct {
	Number int `json:"number"`
}

type CallingStylePayload struct {
	CallingStyle string `json:"callingStyle"`
}

type GameTypePayload struct {
	GameType string `json:"gameType"`
}

type JoinCardPayload struct {
	Pin     string `json:"pin"`
	Numbers []int  `json:"numbers"`
	CardID  string `json:"cardId,omitempty"`
}

type MarkCardPayload struct {
	CardID    string `json:"cardId"`
	CellIndex int    `json:"cellIndex"`
	Marked    bool   `json:"marked"`
}

type CardIDPayload struct {
	CardID string `json:"cardId"`
}

type BrightnessPayload struct {
	Value int `json:"value"`
}

type ThemePayload struct {
	Theme *int `json:"theme,omitempty"`
	ID    *int `json:"id,omitempty"`
}

type ColorPayload struct {
	Hex   string `json:"hex,omitempty"`
	Color string `json:"color,omitempty"`
}

type LedTestPayload struct {
	Enabled *bool `json:"enabled"`
}

type BoardPinPayload struct {
	CurrentPin string `json:"currentPin"`
	NextPin    string `json:"nextPin"`
}

type UnlockPayload struct {
	Pin string `json:"pin"`
}

// BoardState is the full board payload carried by snapshot and the other
// board-level events. Presentation fields (theme, brightness, colorMode,
// staticColor, patternIndex, ledTestMode) belong to the rendering
// collaborator and are passed through unchanged.
type BoardState struct {
	Current              int    `json:"current"`
	Remaining            int    `json:"remaining"`
	BoardSeed            string `json:"boardSeed"`
	GameType             string `json:"gameType"`
	CallingStyle         string `json:"callingStyle"`
	GameEstablished      bool   `json:"gameEstablished"`
	WinnerDeclared       bool   `json:"winnerDeclared"`
	ManualWinnerDeclared bool   `json:"manualWinnerDeclared"`
	WinnerEventID        uint64 `json:"winnerEventId"`
	WinnerCount          int    `json:"winnerCount"`
	CardCount            int    `json:"cardCount"`
	PlayerCount          int    `json:"playerCount"`
	LedTestMode          bool   `json:"ledTestMode"`
	BoardAccessRequired  bool   `json:"boardAccessRequired"`
	BoardAuthValid       bool   `json:"boardAuthValid"`
	Theme                int    `json:"theme"`
	Brightness           int    `json:"brightness"`
	ColorMode            string `json:"colorMode"`
	PatternIndex         int    `json:"patternIndex"`
	StaticColor          string `json:"staticColor"`
	Called               []int  `json:"called"`
}

// CardState is the per-card payload.
type CardState struct {
	CardID        string `json:"cardId"`
	Winner        bool   `json:"winner"`
	WinnerCount   int    `json:"winnerCount"`
	WinnerEventID uint64 `json:"winnerEventId"`
	Marks         []bool `json:"marks"`
}

// JoinResult is the direct reply to join_card and mark_card_cell.
type JoinResult struct {
	CardID        string `json:"cardId"`
	Winner        bool   `json:"winner"`
	WinnerCount   int    `json:"winnerCount"`
	WinnerEventID uint64 `json:"winnerEventId"`
}

// TokenResult is the reply to auth unlock/refresh.
type TokenResult struct {
	Token string `json:"token"`
	TTLMs int64  `json:"ttlMs"`
}
