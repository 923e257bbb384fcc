package board

import (
	"github.com/flashboard/bingo-server/internal/engine"
	"github.com/flashboard/bingo-server/internal/types"
)

func (b *Board) boardState() types.BoardState {
	active := b.game.ActiveCardCount()
	return types.BoardState{
		Current:              b.game.Current(),
		Remaining:            b.game.Remaining(),
		BoardSeed:            b.game.JoinCode(),
		GameType:             b.game.GameType().String(),
		CallingStyle:         b.game.CallingStyle().String(),
		GameEstablished:      b.game.Established(),
		WinnerDeclared:       b.game.WinnerDeclared(),
		ManualWinnerDeclared: b.game.ManualWinnerDeclared(),
		WinnerEventID:        b.game.WinnerEventID(),
		WinnerCount:          b.game.WinnerCount(),
		CardCount:            active,
		PlayerCount:          active, // one active card per player/device
		LedTestMode:          b.disp.ledTest,
		BoardAccessRequired:  true,
		BoardAuthValid:       b.guard.Valid(),
		Theme:                b.disp.theme,
		Brightness:           b.disp.brightness,
		ColorMode:            b.disp.colorMode,
		PatternIndex:         b.disp.patternIdx,
		StaticColor:          b.disp.staticColor,
		Called:               b.game.CalledNumbers(),
	}
}

func (b *Board) cardState(c *engine.Card) types.CardState {
	marks := make([]bool, len(c.Marks))
	copy(marks, c.Marks[:])
	return types.CardState{
		CardID:        c.ID,
		Winner:        c.Winner,
		WinnerCount:   b.game.WinnerCount(),
		WinnerEventID: b.game.WinnerEventID(),
		Marks:         marks,
	}
}

func (b *Board) joinResult(c *engine.Card) types.JoinResult {
	return types.JoinResult{
		CardID:        c.ID,
		Winner:        c.Winner,
		WinnerCount:   b.game.WinnerCount(),
		WinnerEventID: b.game.WinnerEventID(),
	}
}
