package engine

// Card is one player's 5x5 card session. Sessions live in the Game's bounded
// arena; identity and claimed masks persist across game-type switches, marks
// and claims are wiped on reset.
type Card struct {
	active  bool
	ID      string
	Numbers [25]int  // face values, 0 = FREE/blank
	Marks   [25]bool // index FreeCell always treated as marked
	Winner  bool
	Claimed [numGameTypes]uint16 // orientations already rewarded, per game type
}

func (c *Card) clear() {
	*c = Card{}
}

// CardByID resolves an id to an active session. Callers holding a card id
// must re-resolve through this on every use; ids are weak references.
func (g *Game) CardByID(id string) *Card {
	if id == "" {
		return nil
	}
	for i := range g.cards {
		if g.cards[i].active && g.cards[i].ID == id {
			return &g.cards[i]
		}
	}
	return nil
}

func (g *Game) allocateCard() *Card {
	for i := range g.cards {
		if !g.cards[i].active {
			g.cards[i].clear()
			g.cards[i].active = true
			return &g.cards[i]
		}
	}
	return nil
}

// ActiveCards returns the live sessions in arena order.
func (g *Game) ActiveCards() []*Card {
	out := make([]*Card, 0, len(g.cards))
	for i := range g.cards {
		if g.cards[i].active {
			out = append(out, &g.cards[i])
		}
	}
	return out
}

func (g *Game) ActiveCardCount() int {
	n := 0
	for i := range g.cards {
		if g.cards[i].active {
			n++
		}
	}
	return n
}

// JoinCard admits a card into the game. The join code must match the board's
// current code. If existingID names an active session the join overwrites it
// (a client reconnecting keeps its identity); otherwise a free slot is
// allocated and newID consulted for a fresh identity, unique among active
// sessions. Marks reset with FREE pre-marked, claimed masks reset.
func (g *Game) JoinCard(joinCode string, numbers []int, existingID string, newID func() string) (*Card, error) {
	if joinCode == "" || joinCode != g.joinCode {
		return nil, ErrInvalidJoinCode
	}
	if len(numbers) != 25 {
		return nil, ErrInvalidCardNumbers
	}
	c := g.CardByID(existingID)
	if c == nil {
		c = g.allocateCard()
	}
	if c == nil {
		return nil, ErrCapacityExceeded
	}
	if c.ID == "" {
		id := newID()
		for g.CardByID(id) != nil {
			id = newID()
		}
		c.ID = id
	}
	for i, n := range numbers {
		c.Numbers[i] = n
		c.Marks[i] = i == FreeCell
	}
	c.Winner = false
	c.Claimed = [numGameTypes]uint16{}
	g.Recompute()
	return c, nil
}

// MarkCell flips a mark on a card. The FREE cell is immutable.
func (g *Game) MarkCell(cardID string, cell int, marked bool) (*Card, error) {
	c := g.CardByID(cardID)
	if c == nil {
		return nil, ErrCardNotFound
	}
	if cell < 0 || cell >= 25 || cell == FreeCell {
		return nil, ErrInvalidCell
	}
	c.Marks[cell] = marked
	g.Recompute()
	return c, nil
}

// LeaveCard frees a session's slot entirely, identity included.
func (g *Game) LeaveCard(cardID string) error {
	c := g.CardByID(cardID)
	if c == nil {
		return ErrCardNotFound
	}
	c.clear()
	g.Recompute()
	return nil
}
