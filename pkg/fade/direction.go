package fade

// Direction selects which bound a fade travels towards.
type Direction int32

const (
	// Down fades towards the low bound.
	Down Direction = iota
	// Up fades towards the high bound.
	Up
	// Toggle is only meaningful as a request: it flips the stored direction.
	Toggle
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Down:
		return "down"
	case Up:
		return "up"
	case Toggle:
		return "toggle"
	default:
		return "unknown"
	}
}

// Flip returns the opposite travel direction. Anything that is not Down
// flips to Down.
func (d Direction) Flip() Direction {
	if d == Down {
		return Up
	}
	return Down
}

// ParseDirection maps "down", "up" and "toggle" to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "down", "d":
		return Down, true
	case "up", "u":
		return Up, true
	case "toggle", "t":
		return Toggle, true
	}
	return Down, false
}
