// Package httpapi is the synchronous mirror of the WebSocket command
// surface: every mutating command maps one-to-one onto a route with the same
// validation and status codes.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/flashboard/bingo-server/internal/board"
	"github.com/flashboard/bingo-server/internal/ws"
)

func SetupRoutes(b *board.Board, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", healthz)
	r.Get("/ws", ws.Handler(b, log))

	// Read-only
	r.Get("/api/state", command(b, "get_state"))
	r.Get("/api/card-state", cardStateHandler(b))

	// Board-mutating (token-gated by the dispatcher)
	r.Get("/draw", command(b, "draw")) // physical-remote compatibility
	r.Post("/draw", command(b, "draw"))
	r.Post("/undo", command(b, "undo"))
	r.Post("/reset", command(b, "reset"))
	r.Post("/call", command(b, "call_number"))
	r.Post("/calling-style", command(b, "set_calling_style"))
	r.Post("/game-type", command(b, "set_game_type"))
	r.Post("/declare-winner", command(b, "declare_winner"))
	r.Post("/clear-winner", command(b, "clear_winner"))

	// Display settings (token-gated)
	r.Post("/brightness", command(b, "set_brightness"))
	r.Post("/theme", command(b, "set_theme"))
	r.Post("/color", command(b, "set_color"))
	r.Post("/led-test", command(b, "set_led_test"))

	// Board auth
	r.Post("/auth/board/unlock", command(b, "unlock_board"))
	r.Post("/auth/board/lock", command(b, "lock_board"))
	r.Post("/auth/board/refresh", command(b, "refresh_board_auth"))
	r.Post("/board/pin", command(b, "set_board_pin"))

	// Card self-service
	r.Post("/card/join", command(b, "join_card"))
	r.Post("/card/mark", command(b, "mark_card_cell"))
	r.Post("/card/leave", command(b, "leave_card"))

	return r
}
