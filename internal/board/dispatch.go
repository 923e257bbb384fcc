package board

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flashboard/bingo-server/internal/auth"
	"github.com/flashboard/bingo-server/internal/engine"
	"github.com/flashboard/bingo-server/internal/types"
)

func ok(data any) types.Result {
	return types.Result{OK: true, Status: http.StatusOK, Data: data}
}

func fail(status int, msg string) types.Result {
	return types.Result{OK: false, Status: status, Err: msg}
}

var empty = struct{}{}

// dispatch validates and executes one command. Board-mutating actions are
// token-gated before any other validation; failures leave state untouched.
func (b *Board) dispatch(cmd types.Command) types.Result {
	res := b.handleAction(cmd)
	if !res.OK {
		b.log.Debug("command rejected",
			zap.String("action", cmd.Action),
			zap.Int("status", res.Status),
			zap.String("error", res.Err))
	} else {
		b.log.Info("command applied", zap.String("action", cmd.Action))
	}
	return res
}

func (b *Board) handleAction(cmd types.Command) types.Result {
	switch cmd.Action {

	case "get_state":
		return ok(b.boardState())

	case "draw":
		if res, authorized := b.requireToken(cmd.Token); !authorized {
			return res
		}
		if _, err := b.game.Draw(); err != nil {
			return statusFor(err)
		}
		b.afterCall()
		return ok(b.boardState())

	case "undo":
		if res, authorized := b.requireToken(cmd.Token); !authorized {
			return res
		}
		if _, err := b.game.Undo(); err != nil {
			return statusFor(err)
		}
		b.broadcastState("number_undone")
		b.broadcastAllCards("card_state")
		b.render()
		return ok(b.boardState())

	case "reset":
		if res, authorized := b.requireToken(cmd.Token); !authorized {
			return res
		}
		b.game.Reset()
		b.disp.patternIdx = 0
		b.broadcastState("game_reset")
		b.broadcastAllCards("card_state")
		b.render()
		return ok(empty)

	case "set_calling_style":
		if res, authorized := b.requireToken(cmd.Token); !authorized {
			return res
		}
		var p types.CallingStylePayload
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			return fail(http.StatusBadRequest, "invalid")
		}
		cs, valid := engine.ParseCallingStyle(p.CallingStyle)
		if !valid {
			return fail(http.StatusBadRequest, "invalid")
		}
		if err := b.game.SetCallingStyle(cs); err != nil {
			return statusFor(err)
		}
		b.saveSettings()
		b.broadcastState("calling_style_changed")
		return ok(empty)

	case "call_number":
		if res, authorized := b.requireToken(cmd.Token); !authorized {
			return res
		}
		var p types.CallNumberPayload
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			return fail(http.StatusBadRequest, "invalid number")
		}
		if err := b.game.ManualCall(p.Number); err != nil {
			return statusFor(err)
		}
		b.afterCall()
		return ok(b.boardState())

	case "set_game_type":
		if res, authorized := b.requireToken(cmd.Token); !authorized {
			return res
		}
		var p types.GameTypePayload
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			return fail(http.StatusBadRequest, "invalid")
		}
		gt, valid := engine.ParseGameType(p.GameType)
		if !valid {
			return fail(http.StatusBadRequest, "invalid")
		}
		b.game.SetGameType(gt)
		b.disp.patternIdx = 0
		b.saveSettings()
		b.broadcastState("game_type_changed")
		b.broadcastAllCards("card_state")
		b.render()
		return ok(empty)

	case "declare_winner":
		if res, authorized := b.requireToken(cmd.Token); !authorized {
			return res
		}
		b.game.DeclareWinner()
		b.broadcastState("winner_changed")
		b.broadcastAllCards("card_state")
		b.render()
		return ok(empty)

	case "clear_winner":
		if res, authorized := b.requireToken(cmd.Token); !authorized {
			return res
		}
		b.game.ClearWinner()
		b.broadcastState("winner_changed")
		b.broadcastAllCards("card_state")
		b.render()
		return ok(empty)

	case "join_card":
		var p types.JoinCardPayload
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			return fail(http.StatusBadRequest, "numbers[25] required")
		}
		card, err := b.game.JoinCard(strings.TrimSpace(p.Pin), p.Numbers, p.CardID, newCardID)
		if err != nil {
			return statusFor(err)
		}
		b.broadcastState("card_joined")
		b.broadcastCard(card.ID, "card_state")
		return ok(b.joinResult(card))

	case "mark_card_cell":
		var p types.MarkCardPayload
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			return fail(http.StatusBadRequest, "invalid cell")
		}
		card, err := b.game.MarkCell(p.CardID, p.CellIndex, p.Marked)
		if err != nil {
			return statusFor(err)
		}
		b.broadcastState("card_mark_changed")
		b.broadcastCard(card.ID, "card_state")
		return ok(b.joinResult(card))

	case "leave_card":
		var p types.CardIDPayload
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			return fail(http.StatusBadRequest, "cardId required")
		}
		if err := b.game.LeaveCard(p.CardID); err != nil {
			return statusFor(err)
		}
		b.broadcastState("card_left")
		b.broadcastAllCards("card_state")
		return ok(empty)

	case "get_card_state":
		var p types.CardIDPayload
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			return fail(http.StatusBadRequest, "cardId required")
		}
		card := b.game.CardByID(p.CardID)
		if card == nil {
			return fail(http.StatusNotFound, "card not found")
		}
		return ok(b.cardState(card))

	case "set_brightness":
		if res, authorized := b.requireToken(cmd.Token); !authorized {
			return res
		}
		var p types.BrightnessPayload
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			return fail(http.StatusBadRequest, "invalid")
		}
		if p.Value < 0 || p.Value > 255 {
			return fail(http.StatusBadRequest, "invalid")
		}
		b.disp.brightness = p.Value
		b.saveSettings()
		b.broadcastState("brightness_changed")
		b.render()
		return ok(empty)

	case "set_theme":
		if res, authorized := b.requireToken(cmd.Token); !authorized {
			return res
		}
		var p types.ThemePayload
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			return fail(http.StatusBadRequest, "invalid")
		}
		id := p.Theme
		if id == nil {
			id = p.ID
		}
		if id == nil || *id < 0 {
			return fail(http.StatusBadRequest, "invalid")
		}
		b.disp.theme = *id
		b.disp.colorMode = "theme"
		b.saveSettings()
		b.broadcastState("theme_changed")
		b.render()
		return ok(empty)

	case "set_color":
		if res, authorized := b.requireToken(cmd.Token); !authorized {
			return res
		}
		var p types.ColorPayload
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			return fail(http.StatusBadRequest, "invalid")
		}
		hex := p.Hex
		if hex == "" {
			hex = p.Color
		}
		color, valid := parseHexColor(hex)
		if !valid {
			return fail(http.StatusBadRequest, "invalid")
		}
		b.disp.staticColor = color
		b.disp.colorMode = "solid"
		b.saveSettings()
		b.broadcastState("color_changed")
		b.render()
		return ok(empty)

	case "set_led_test":
		if res, authorized := b.requireToken(cmd.Token); !authorized {
			return res
		}
		var p types.LedTestPayload
		if err := json.Unmarshal(cmd.Payload, &p); err != nil || p.Enabled == nil {
			return fail(http.StatusBadRequest, "enabled required")
		}
		b.disp.ledTest = *p.Enabled
		b.broadcastState("led_test_changed")
		b.render()
		return ok(b.boardState())

	case "set_board_pin":
		if res, authorized := b.requireToken(cmd.Token); !authorized {
			return res
		}
		var p types.BoardPinPayload
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			return fail(http.StatusBadRequest, "current pin invalid")
		}
		if err := b.guard.SetPin(p.CurrentPin, p.NextPin); err != nil {
			// PIN rotation failures are plain input errors, unlike unlock.
			if errors.Is(err, auth.ErrInvalidPin) {
				return fail(http.StatusBadRequest, "current pin invalid")
			}
			return fail(http.StatusBadRequest, "next pin invalid")
		}
		b.saveSettings()
		b.broadcastState("board_pin_changed")
		return ok(empty)

	case "unlock_board":
		var p types.UnlockPayload
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			return fail(http.StatusUnauthorized, "invalid pin")
		}
		token, ttl, err := b.guard.Unlock(p.Pin)
		if err != nil {
			return statusFor(err)
		}
		b.broadcastState("board_auth_changed")
		return ok(types.TokenResult{Token: token, TTLMs: ttl.Milliseconds()})

	case "lock_board":
		b.guard.Lock()
		b.broadcastState("board_auth_changed")
		return ok(empty)

	case "refresh_board_auth":
		token, ttl, err := b.guard.Refresh(cmd.Token)
		if err != nil {
			return statusFor(err)
		}
		b.broadcastState("board_auth_changed")
		return ok(types.TokenResult{Token: token, TTLMs: ttl.Milliseconds()})

	default:
		return fail(http.StatusBadRequest, "unknown action")
	}
}

// afterCall is the shared tail of draw and call_number.
func (b *Board) afterCall() {
	b.broadcastState("number_called")
	b.broadcastAllCards("card_state")
	b.render()
}

func (b *Board) requireToken(token string) (types.Result, bool) {
	if err := b.guard.Require(token); err != nil {
		return fail(http.StatusUnauthorized, err.Error()), false
	}
	return types.Result{}, true
}

// statusFor maps the engine/auth error taxonomy onto HTTP-style statuses:
// 400 malformed input, 401 auth, 404 unknown card, 409 state conflict,
// 503 capacity.
func statusFor(err error) types.Result {
	status := http.StatusBadRequest
	msg := err.Error()
	switch {
	case errors.Is(err, engine.ErrManualMode):
		status, msg = http.StatusConflict, "manual mode"
	case errors.Is(err, engine.ErrNotManualMode):
		status, msg = http.StatusConflict, "not manual"
	case errors.Is(err, engine.ErrGameEstablished):
		status, msg = http.StatusConflict, "game established"
	case errors.Is(err, engine.ErrPoolExhausted):
		msg = "pool empty"
	case errors.Is(err, engine.ErrNothingToUndo):
		msg = "nothing to undo"
	case errors.Is(err, engine.ErrInvalidNumber):
		msg = "invalid number"
	case errors.Is(err, engine.ErrAlreadyCalled):
		msg = "already called"
	case errors.Is(err, engine.ErrInvalidCell):
		msg = "invalid cell"
	case errors.Is(err, engine.ErrInvalidCardNumbers):
		msg = "numbers[25] required"
	case errors.Is(err, engine.ErrInvalidJoinCode):
		status, msg = http.StatusUnauthorized, "invalid board seed"
	case errors.Is(err, engine.ErrCardNotFound):
		status, msg = http.StatusNotFound, "card not found"
	case errors.Is(err, engine.ErrCapacityExceeded):
		status, msg = http.StatusServiceUnavailable, "card capacity reached"
	case errors.Is(err, auth.ErrInvalidPin):
		status, msg = http.StatusUnauthorized, "invalid pin"
	case errors.Is(err, auth.ErrTokenExpired), errors.Is(err, auth.ErrTokenInvalid):
		status = http.StatusUnauthorized
	}
	return fail(status, msg)
}

func newCardID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

func parseHexColor(raw string) (string, bool) {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if len(s) != 6 {
		return "", false
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("#%06X", n), true
}
