// Package auth gates board-mutating actions behind a short-lived bearer
// token, issued against the board PIN. Tokens are opaque, not cryptographic;
// expiry is enforced lazily by wall-clock comparison on every check.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

var (
	ErrInvalidPin   = errors.New("invalid pin")
	ErrTokenInvalid = errors.New("board token invalid")
	ErrTokenExpired = errors.New("board auth required")
	ErrPinTooShort  = errors.New("next pin invalid")
)

const minPinLen = 4

// Guard holds the board PIN and the currently issued token, if any. It is
// owned by the board actor; no internal locking.
type Guard struct {
	clock  clockwork.Clock
	ttl    time.Duration
	pin    string
	token  string
	expiry time.Time
}

func NewGuard(pin string, ttl time.Duration, clock clockwork.Clock) *Guard {
	return &Guard{clock: clock, ttl: ttl, pin: NormalizePin(pin)}
}

// NormalizePin trims surrounding whitespace; PINs are compared verbatim
// otherwise.
func NormalizePin(raw string) string {
	return strings.TrimSpace(raw)
}

// Unlock checks the PIN and issues a fresh token.
func (g *Guard) Unlock(pin string) (string, time.Duration, error) {
	if NormalizePin(pin) == "" || NormalizePin(pin) != g.pin {
		return "", 0, ErrInvalidPin
	}
	return g.issue(), g.ttl, nil
}

// Refresh re-issues the token. The caller must already hold a valid one.
func (g *Guard) Refresh(token string) (string, time.Duration, error) {
	if err := g.Require(token); err != nil {
		return "", 0, err
	}
	return g.issue(), g.ttl, nil
}

// Lock invalidates the current token immediately.
func (g *Guard) Lock() {
	g.token = ""
	g.expiry = time.Time{}
}

// Valid reports whether an unexpired token is outstanding.
func (g *Guard) Valid() bool {
	return g.token != "" && g.clock.Now().Before(g.expiry)
}

// Require validates a presented token against the outstanding one.
func (g *Guard) Require(token string) error {
	if !g.Valid() {
		return ErrTokenExpired
	}
	if token == "" || token != g.token {
		return ErrTokenInvalid
	}
	return nil
}

// SetPin rotates the board PIN. The current PIN must be presented alongside
// a new one of at least four characters.
func (g *Guard) SetPin(currentPin, nextPin string) error {
	if NormalizePin(currentPin) == "" || NormalizePin(currentPin) != g.pin {
		return ErrInvalidPin
	}
	next := NormalizePin(nextPin)
	if len(next) < minPinLen {
		return ErrPinTooShort
	}
	g.pin = next
	return nil
}

// Pin returns the active PIN, for the settings store.
func (g *Guard) Pin() string { return g.pin }

// TTL returns the configured token lifetime.
func (g *Guard) TTL() time.Duration { return g.ttl }

func (g *Guard) issue() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; treat as fatal
		// misconfiguration rather than handing out a guessable token.
		panic(err)
	}
	g.token = hex.EncodeToString(buf)
	g.expiry = g.clock.Now().Add(g.ttl)
	return g.token
}
