package effects

import "fmt"

// NewTransition creates a transition based on the specified variant
func NewTransition(variant string) (Transition, error) {
	switch variant {
	case "dissolve", "fade", "":
		return CrossDissolve{}, nil
	default:
		return nil, fmt.Errorf("unknown transition variant: %s", variant)
	}
}
