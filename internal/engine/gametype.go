package engine

// GameType selects one of the eight winning-pattern rule sets.
type GameType int

const (
	GameTraditional GameType = iota
	GameFourCorners
	GamePostageStamp
	GameCoverAll
	GameX
	GameY
	GameFrameOutside
	GameFrameInside

	numGameTypes
)

var gameTypeNames = [numGameTypes]string{
	GameTraditional:  "traditional",
	GameFourCorners:  "four_corners",
	GamePostageStamp: "postage_stamp",
	GameCoverAll:     "cover_all",
	GameX:            "x",
	GameY:            "y",
	GameFrameOutside: "frame_outside",
	GameFrameInside:  "frame_inside",
}

func (g GameType) String() string {
	if g < 0 || g >= numGameTypes {
		return "traditional"
	}
	return gameTypeNames[g]
}

// ParseGameType maps a wire string to a GameType.
func ParseGameType(s string) (GameType, bool) {
	for g, name := range gameTypeNames {
		if s == name {
			return GameType(g), true
		}
	}
	return GameTraditional, false
}

// CallingStyle is how numbers get onto the board: drawn at random by the
// board, or entered one at a time by the operator.
type CallingStyle int

const (
	StyleAutomatic CallingStyle = iota
	StyleManual
)

func (c CallingStyle) String() string {
	if c == StyleManual {
		return "manual"
	}
	return "automatic"
}

func ParseCallingStyle(s string) (CallingStyle, bool) {
	switch s {
	case "automatic":
		return StyleAutomatic, true
	case "manual":
		return StyleManual, true
	default:
		return StyleAutomatic, false
	}
}
