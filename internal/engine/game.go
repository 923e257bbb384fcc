package engine

import (
	"errors"
	"math/rand"
	"slices"
	"strconv"
)

// MaxNumber is the highest callable bingo number.
const MaxNumber = 75

var (
	ErrPoolExhausted      = errors.New("number pool exhausted")
	ErrNothingToUndo      = errors.New("nothing to undo")
	ErrInvalidNumber      = errors.New("number out of range")
	ErrAlreadyCalled      = errors.New("number already called")
	ErrNotManualMode      = errors.New("calling style is not manual")
	ErrManualMode         = errors.New("calling style is manual")
	ErrGameEstablished    = errors.New("game already established")
	ErrInvalidJoinCode    = errors.New("join code does not match")
	ErrCardNotFound       = errors.New("card not found")
	ErrCapacityExceeded   = errors.New("card capacity reached")
	ErrInvalidCell        = errors.New("invalid cell index")
	ErrInvalidCardNumbers = errors.New("card requires 25 numbers")
)

// Game is the single source of truth for one board: the number pool, call
// history, rule selection, winner flags and every card session. It is owned
// by exactly one goroutine (the board actor); nothing here locks.
type Game struct {
	rng *rand.Rand

	called    [MaxNumber + 1]bool // index 0 unused
	pool      [MaxNumber + 1]bool // pool[n] = n still drawable
	poolCount int
	callOrder []int
	current   int // 0 = none

	gameType     GameType
	callingStyle CallingStyle
	established  bool
	joinCode     string

	winnerEventID uint64
	manualWinner  bool
	suppressed    bool
	winnerCount   int

	cards []Card // bounded arena, liveness via Card.active
}

// NewGame allocates a game with a full pool, a fresh join code and an empty
// card arena of the given capacity.
func NewGame(maxCards int, rng *rand.Rand) *Game {
	g := &Game{
		rng:   rng,
		cards: make([]Card, maxCards),
	}
	g.resetBoard()
	return g
}

// resetBoard restores the pool and call history and rolls a new join code.
// Shared by NewGame and Reset.
func (g *Game) resetBoard() {
	for n := 1; n <= MaxNumber; n++ {
		g.pool[n] = true
		g.called[n] = false
	}
	g.poolCount = MaxNumber
	g.callOrder = g.callOrder[:0]
	g.current = 0
	g.joinCode = strconv.Itoa(1000 + g.rng.Intn(9000))
	g.established = false
	g.manualWinner = false
	g.suppressed = false
}

// Draw selects uniformly at random among the numbers still in the pool and
// calls it. Unbiased over the current remaining set on every call, since
// manual calls can have removed arbitrary numbers in between.
func (g *Game) Draw() (int, error) {
	if g.callingStyle == StyleManual {
		return 0, ErrManualMode
	}
	g.established = true
	if g.poolCount <= 0 {
		return 0, ErrPoolExhausted
	}
	k := g.rng.Intn(g.poolCount)
	for n := 1; n <= MaxNumber; n++ {
		if !g.pool[n] {
			continue
		}
		if k == 0 {
			g.call(n)
			return n, nil
		}
		k--
	}
	return 0, ErrPoolExhausted // unreachable while poolCount is consistent
}

// ManualCall records an operator-chosen number. Only valid in manual style.
func (g *Game) ManualCall(n int) error {
	if g.callingStyle != StyleManual {
		return ErrNotManualMode
	}
	if n < 1 || n > MaxNumber {
		return ErrInvalidNumber
	}
	if g.called[n] {
		return ErrAlreadyCalled
	}
	g.established = true
	g.call(n)
	return nil
}

func (g *Game) call(n int) {
	g.pool[n] = false
	g.poolCount--
	g.called[n] = true
	g.current = n
	g.suppressed = false
	g.callOrder = append(g.callOrder, n)
	g.Recompute()
}

// Undo pops the most recent call back into the pool. The game stays
// established even when this empties the call history; that is what
// distinguishes a fully undone game from a freshly reset one.
func (g *Game) Undo() (int, error) {
	if len(g.callOrder) == 0 {
		return 0, ErrNothingToUndo
	}
	last := g.callOrder[len(g.callOrder)-1]
	g.callOrder = g.callOrder[:len(g.callOrder)-1]
	g.called[last] = false
	if !g.pool[last] {
		g.pool[last] = true
		g.poolCount++
	}
	g.current = 0
	if len(g.callOrder) > 0 {
		g.current = g.callOrder[len(g.callOrder)-1]
	}
	g.manualWinner = false
	g.suppressed = false
	g.established = true
	g.Recompute()
	return last, nil
}

// Reset starts a new game: full pool, new join code, cleared winner flags.
// Card sessions survive, but their marks and claimed patterns are wiped and
// the FREE cell re-marked. The winner event id moves forward so clients can
// tell the new game's events from the old one's.
func (g *Game) Reset() {
	g.resetBoard()
	for i := range g.cards {
		c := &g.cards[i]
		if !c.active {
			continue
		}
		for idx := range c.Marks {
			c.Marks[idx] = idx == FreeCell
		}
		c.Winner = false
		c.Claimed = [numGameTypes]uint16{}
	}
	g.winnerEventID++
	g.winnerCount = 0
}

// SetCallingStyle switches between automatic and manual calling. Immutable
// once the game is established, until the next reset.
func (g *Game) SetCallingStyle(cs CallingStyle) error {
	if g.established {
		return ErrGameEstablished
	}
	g.callingStyle = cs
	return nil
}

// SetGameType switches the active rule set and re-evaluates every card
// against that rule set's own claimed masks.
func (g *Game) SetGameType(gt GameType) {
	g.gameType = gt
	g.Recompute()
}

// CalledNumbers returns the called set in ascending order.
func (g *Game) CalledNumbers() []int {
	out := make([]int, 0, len(g.callOrder))
	for n := 1; n <= MaxNumber; n++ {
		if g.called[n] {
			out = append(out, n)
		}
	}
	return out
}

// CallOrder returns the call history, oldest first.
func (g *Game) CallOrder() []int {
	return slices.Clone(g.callOrder)
}

func (g *Game) Called(n int) bool {
	return n >= 1 && n <= MaxNumber && g.called[n]
}

func (g *Game) Current() int               { return g.current }
func (g *Game) Remaining() int             { return g.poolCount }
func (g *Game) JoinCode() string           { return g.joinCode }
func (g *Game) Established() bool          { return g.established }
func (g *Game) GameType() GameType         { return g.gameType }
func (g *Game) CallingStyle() CallingStyle { return g.callingStyle }
