package board

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/flashboard/bingo-server/internal/types"
)

// subscription is one connected client's entitlement. cardID is a weak
// reference: it is re-resolved against the card registry at delivery time,
// so a card leaving turns the subscription inert rather than dangling.
type subscription struct {
	clientID  string
	boardMode bool
	cardID    string
	outbox    chan []byte
}

func (b *Board) connect(clientID string, outbox chan []byte) {
	if len(b.subs) >= b.maxSubs {
		// The board is the only sender on an outbox, so closing here is
		// safe and lets the connection's writer goroutine exit.
		close(outbox)
		b.log.Warn("subscriber capacity reached", zap.String("clientId", clientID))
		return
	}
	b.subs[clientID] = &subscription{clientID: clientID, outbox: outbox}
	b.log.Info("client connected", zap.String("clientId", clientID))
}

func (b *Board) disconnect(clientID string) {
	if sub, ok := b.subs[clientID]; ok {
		close(sub.outbox)
		delete(b.subs, clientID)
		b.log.Info("client disconnected", zap.String("clientId", clientID))
	}
}

// subscribe grants board mode, or binds to a card. A card binding only takes
// if that card is currently active. The new subscriber immediately receives
// a direct snapshot and the card states it is entitled to.
func (b *Board) subscribe(clientID, mode, cardID string) {
	sub, ok := b.subs[clientID]
	if !ok {
		return
	}
	sub.boardMode = mode == "board"
	sub.cardID = ""
	if !sub.boardMode && cardID != "" {
		if card := b.game.CardByID(cardID); card != nil {
			sub.cardID = card.ID
		}
	}
	b.log.Debug("subscription updated",
		zap.String("clientId", clientID),
		zap.Bool("boardMode", sub.boardMode),
		zap.String("cardId", sub.cardID))

	if sub.boardMode || sub.cardID != "" {
		b.send(sub, b.envelope("snapshot", b.boardState()))
	}
	if sub.boardMode {
		for _, card := range b.game.ActiveCards() {
			b.send(sub, b.envelope("card_state", b.cardState(card)))
		}
	} else if sub.cardID != "" {
		if card := b.game.CardByID(sub.cardID); card != nil {
			b.send(sub, b.envelope("card_state", b.cardState(card)))
		}
	}
}

// envelope wraps a payload with the shared sequence counter, the current
// join code and a timestamp. The counter only advances once the payload has
// marshalled, so a failure never shows clients a phantom gap.
func (b *Board) envelope(eventType string, data any) []byte {
	raw, err := json.Marshal(types.Envelope{
		Type: eventType,
		Seq:  b.seq + 1,
		Seed: b.game.JoinCode(),
		TS:   b.clock.Now().UnixMilli(),
		Data: data,
	})
	if err != nil {
		b.log.Error("envelope marshal failed", zap.String("type", eventType), zap.Error(err))
		return nil
	}
	b.seq++
	return raw
}

// broadcastState delivers a board-state event to every board-mode
// subscriber.
func (b *Board) broadcastState(eventType string) {
	payload := b.envelope(eventType, b.boardState())
	for _, sub := range b.subs {
		if !sub.boardMode {
			continue
		}
		b.send(sub, payload)
	}
}

// broadcastCard delivers one card's state to board-mode subscribers and to
// the subscriber bound to that card. The id is re-resolved here, at delivery
// time, so a card that just left broadcasts nothing.
func (b *Board) broadcastCard(cardID, eventType string) {
	c := b.game.CardByID(cardID)
	if c == nil {
		return
	}
	payload := b.envelope(eventType, b.cardState(c))
	for _, sub := range b.subs {
		if sub.boardMode || sub.cardID == c.ID {
			b.send(sub, payload)
		}
	}
}

func (b *Board) broadcastAllCards(eventType string) {
	for _, c := range b.game.ActiveCards() {
		b.broadcastCard(c.ID, eventType)
	}
}

// send is best-effort: a slow client's full outbox drops the message, never
// blocks the loop and never tears down the connection.
func (b *Board) send(sub *subscription, payload []byte) {
	if payload == nil {
		return
	}
	select {
	case sub.outbox <- payload:
	default:
		b.log.Warn("outbox full, dropping message", zap.String("clientId", sub.clientID))
	}
}
