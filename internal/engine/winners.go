package engine

// newlyWon reports whether the card satisfies any orientation of the active
// game type that has not already been claimed.
func (g *Game) newlyWon(c *Card) bool {
	satisfied := g.SatisfiedMask(c, g.gameType)
	return satisfied&^c.Claimed[g.gameType] != 0
}

// Recompute re-evaluates every active card against the active rule set. A
// transition from not-winner to winner on any card bumps the winner event id
// exactly once per pass. A new unclaimed win always lifts suppression, even
// one on a different card than the one just rewarded.
func (g *Game) Recompute() {
	g.winnerCount = 0
	newWinner := false
	for i := range g.cards {
		c := &g.cards[i]
		if !c.active {
			continue
		}
		was := c.Winner
		c.Winner = g.newlyWon(c)
		if c.Winner && !was {
			newWinner = true
		}
		if c.Winner {
			g.winnerCount++
		}
	}
	if g.suppressed && g.winnerCount > 0 {
		g.suppressed = false
	}
	if newWinner {
		g.winnerEventID++
	}
}

// WinnerDeclared is the board-wide winner flag: suppression off and either an
// operator declaration or at least one card with an unclaimed win.
func (g *Game) WinnerDeclared() bool {
	return !g.suppressed && (g.manualWinner || g.winnerCount > 0)
}

// DeclareWinner is the operator override. It lifts suppression and always
// produces a new winner event.
func (g *Game) DeclareWinner() {
	g.suppressed = false
	g.manualWinner = true
	g.winnerEventID++
}

// ClearWinner is "keep going": every orientation currently satisfied on any
// card is permanently claimed for the active game type, the manual flag is
// dropped and suppression raised. The recompute that follows may immediately
// lift suppression again if some still-unclaimed orientation is satisfied.
func (g *Game) ClearWinner() {
	g.manualWinner = false
	g.suppressed = true
	for i := range g.cards {
		c := &g.cards[i]
		if !c.active {
			continue
		}
		c.Claimed[g.gameType] |= g.SatisfiedMask(c, g.gameType)
	}
	g.Recompute()
}

func (g *Game) WinnerCount() int           { return g.winnerCount }
func (g *Game) WinnerEventID() uint64      { return g.winnerEventID }
func (g *Game) ManualWinnerDeclared() bool { return g.manualWinner }
func (g *Game) WinnerSuppressed() bool     { return g.suppressed }
