package core

import "fmt"

// GameKind identifies one of the minigames.
type GameKind string

const (
	KindBlocks GameKind = "blocks"
	KindSnake  GameKind = "snake"
	KindDodge  GameKind = "dodge"
)

// Kinds lists every game kind in menu order.
var Kinds = []GameKind{KindBlocks, KindDodge, KindSnake}

// Number returns the numeric game id used on the wire.
func (k GameKind) Number() int {
	switch k {
	case KindBlocks:
		return 1
	case KindDodge:
		return 2
	case KindSnake:
		return 3
	default:
		return 0
	}
}

// Valid reports whether k is a known kind.
func (k GameKind) Valid() bool {
	return k.Number() != 0
}

// ParseKind validates a kind name.
func ParseKind(s string) (GameKind, error) {
	k := GameKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("core: unknown game kind %q", s)
	}
	return k, nil
}

// KindFromNumber maps a wire game id back to its kind.
func KindFromNumber(n int) (GameKind, error) {
	for _, k := range Kinds {
		if k.Number() == n {
			return k, nil
		}
	}
	return "", fmt.Errorf("core: unknown game id %d", n)
}
