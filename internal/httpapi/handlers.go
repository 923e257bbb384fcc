package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/flashboard/bingo-server/internal/board"
	"github.com/flashboard/bingo-server/internal/types"
)

const maxBodyBytes = 8 << 10

// tokenHeader carries the bearer token on the HTTP mirror; the WS channel
// carries it inline on each command instead.
const tokenHeader = "X-Board-Token"

// command adapts a dispatcher action to an HTTP handler. The request body,
// if any, is passed through as the command payload untouched, so both
// surfaces validate identically.
func command(b *board.Board, action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload json.RawMessage
		if r.Body != nil {
			raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
			if err != nil {
				writeError(w, http.StatusBadRequest, "bad body")
				return
			}
			if len(raw) > 0 {
				payload = raw
			}
		}
		res := b.Do(types.Command{
			Action:  action,
			Token:   r.Header.Get(tokenHeader),
			Payload: payload,
		})
		writeResult(w, res)
	}
}

// cardStateHandler serves GET /api/card-state?cardId=...
func cardStateHandler(b *board.Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cardID := r.URL.Query().Get("cardId")
		if cardID == "" {
			writeError(w, http.StatusBadRequest, "cardId required")
			return
		}
		payload, err := json.Marshal(types.CardIDPayload{CardID: cardID})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		res := b.Do(types.Command{Action: "get_card_state", Payload: payload})
		writeResult(w, res)
	}
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeResult(w http.ResponseWriter, res types.Result) {
	if !res.OK {
		writeError(w, res.Status, res.Err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.Status)
	_ = json.NewEncoder(w).Encode(res.Data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: msg})
}
