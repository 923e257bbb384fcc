// Package board runs the authoritative game loop. A single goroutine owns
// the engine state, the auth guard, the subscription table and the display
// settings; every mutation runs to completion before the next message is
// taken, so nothing in this package locks.
package board

import (
	"context"
	"math/rand"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/flashboard/bingo-server/internal/auth"
	"github.com/flashboard/bingo-server/internal/engine"
	"github.com/flashboard/bingo-server/internal/settings"
	"github.com/flashboard/bingo-server/internal/types"
)

type Msg interface{ isBoardMsg() }

// Connect registers a client's outbox. A fresh client has no entitlement and
// receives nothing until it subscribes.
type Connect struct {
	ClientID string
	Outbox   chan []byte
}

type Disconnect struct{ ClientID string }

// Subscribe updates a client's entitlement: board mode, a card binding, or
// neither.
type Subscribe struct {
	ClientID string
	Mode     string
	CardID   string
}

// Request is a dispatcher command with a synchronous reply.
type Request struct {
	Cmd   types.Command
	Reply chan types.Result
}

// GetView reflects internal state for tests without data races.
type GetView struct{ Reply chan View }

type Shutdown struct{}

func (Connect) isBoardMsg()    {}
func (Disconnect) isBoardMsg() {}
func (Subscribe) isBoardMsg()  {}
func (Request) isBoardMsg()    {}
func (GetView) isBoardMsg()    {}
func (Shutdown) isBoardMsg()   {}

type View struct {
	State          types.BoardState
	Suppressed     bool
	NumSubscribers int
}

// Renderer is the LED pipeline collaborator. It receives the decision-layer
// state after every mutation and owns everything about color.
type Renderer interface {
	Update(RenderState)
}

// RenderState is what the renderer needs: the called set, current number,
// winner flag, rule selection and the pass-through display settings.
type RenderState struct {
	Called         []int
	Current        int
	WinnerDeclared bool
	GameType       engine.GameType
	PatternIndex   int
	LedTest        bool
	Brightness     int
	Theme          int
	ColorMode      string
	StaticColor    string
}

type noopRenderer struct{}

func (noopRenderer) Update(RenderState) {}

// display holds the presentation fields the board carries and persists but
// does not interpret.
type display struct {
	brightness  int
	theme       int
	colorMode   string
	staticColor string
	ledTest     bool
	patternIdx  int
}

type Options struct {
	Game           *engine.Game
	Guard          *auth.Guard
	Clock          clockwork.Clock
	Log            *zap.Logger
	Store          settings.Store
	Renderer       Renderer
	Settings       settings.Settings
	MaxSubscribers int
	PatternCycle   clockwork.Ticker
}

type Board struct {
	inbox chan Msg
	game  *engine.Game
	guard *auth.Guard
	clock clockwork.Clock
	log   *zap.Logger
	store settings.Store
	rend  Renderer

	subs    map[string]*subscription
	maxSubs int
	seq     uint64

	disp    display
	pattern clockwork.Ticker

	ctx    context.Context
	cancel context.CancelFunc
}

// New starts the board actor. The game's rule selection and calling style
// are primed from the loaded settings before the loop starts.
func New(parent context.Context, opts Options) *Board {
	ctx, cancel := context.WithCancel(parent)
	b := &Board{
		inbox:   make(chan Msg, 64),
		game:    opts.Game,
		guard:   opts.Guard,
		clock:   opts.Clock,
		log:     opts.Log,
		store:   opts.Store,
		rend:    opts.Renderer,
		subs:    make(map[string]*subscription),
		maxSubs: opts.MaxSubscribers,
		pattern: opts.PatternCycle,
		ctx:     ctx,
		cancel:  cancel,
	}
	if b.log == nil {
		b.log = zap.NewNop()
	}
	if b.rend == nil {
		b.rend = noopRenderer{}
	}
	if b.store == nil {
		b.store = settings.Noop{}
	}
	b.applySettings(opts.Settings)
	go b.loop()
	return b
}

func (b *Board) Inbox() chan<- Msg { return b.inbox }

// Do sends a command into the loop and waits for its result. Safe from any
// goroutine.
func (b *Board) Do(cmd types.Command) types.Result {
	reply := make(chan types.Result, 1)
	select {
	case b.inbox <- Request{Cmd: cmd, Reply: reply}:
	case <-b.ctx.Done():
		return types.Result{OK: false, Status: 503, Err: "board shutting down"}
	}
	select {
	case res := <-reply:
		return res
	case <-b.ctx.Done():
		return types.Result{OK: false, Status: 503, Err: "board shutting down"}
	}
}

func (b *Board) applySettings(s settings.Settings) {
	if gt, ok := engine.ParseGameType(s.GameType); ok {
		b.game.SetGameType(gt)
	}
	if cs, ok := engine.ParseCallingStyle(s.CallingStyle); ok {
		_ = b.game.SetCallingStyle(cs)
	}
	b.disp = display{
		brightness:  s.Brightness,
		theme:       s.Theme,
		colorMode:   s.ColorMode,
		staticColor: s.StaticColor,
	}
}

func (b *Board) saveSettings() {
	s := settings.Settings{
		Brightness:   b.disp.brightness,
		Theme:        b.disp.theme,
		ColorMode:    b.disp.colorMode,
		StaticColor:  b.disp.staticColor,
		GameType:     b.game.GameType().String(),
		CallingStyle: b.game.CallingStyle().String(),
		BoardPin:     b.guard.Pin(),
	}
	if err := b.store.Save(s); err != nil {
		b.log.Warn("settings save failed", zap.Error(err))
	}
}

func (b *Board) loop() {
	var patternC <-chan time.Time // nil when cycling is disabled
	if b.pattern != nil {
		patternC = b.pattern.Chan()
	}
	for {
		select {
		case <-b.ctx.Done():
			b.shutdown()
			return

		case <-patternC:
			b.cyclePattern()

		case m := <-b.inbox:
			switch msg := m.(type) {
			case Connect:
				b.connect(msg.ClientID, msg.Outbox)

			case Disconnect:
				b.disconnect(msg.ClientID)

			case Subscribe:
				b.subscribe(msg.ClientID, msg.Mode, msg.CardID)

			case Request:
				msg.Reply <- b.dispatch(msg.Cmd)

			case GetView:
				msg.Reply <- View{
					State:          b.boardState(),
					Suppressed:     b.game.WinnerSuppressed(),
					NumSubscribers: len(b.subs),
				}

			case Shutdown:
				b.shutdown()
				return
			}
		}
	}
}

// cyclePattern advances the highlighted orientation for game types that have
// more than one. Presentation only; claimed masks are untouched.
func (b *Board) cyclePattern() {
	n := engine.OrientationCount(b.game.GameType())
	if n <= 1 {
		return
	}
	b.disp.patternIdx = (b.disp.patternIdx + 1) % n
	b.broadcastState("pattern_index_changed")
	b.render()
}

func (b *Board) render() {
	b.rend.Update(RenderState{
		Called:         b.game.CalledNumbers(),
		Current:        b.game.Current(),
		WinnerDeclared: b.game.WinnerDeclared(),
		GameType:       b.game.GameType(),
		PatternIndex:   b.disp.patternIdx,
		LedTest:        b.disp.ledTest,
		Brightness:     b.disp.brightness,
		Theme:          b.disp.theme,
		ColorMode:      b.disp.colorMode,
		StaticColor:    b.disp.staticColor,
	})
}

func (b *Board) shutdown() {
	for id, sub := range b.subs {
		close(sub.outbox)
		delete(b.subs, id)
	}
	if b.pattern != nil {
		b.pattern.Stop()
	}
	b.cancel()
}

// NewRand is a convenience for main and tests.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
