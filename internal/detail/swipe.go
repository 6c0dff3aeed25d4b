package detail

// SwipeThreshold is the horizontal translation a drag must exceed to change task.
const SwipeThreshold = 100.0

// Direction is the outcome of a released swipe.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionPrevious
	DirectionNext
)

func (d Direction) String() string {
	switch d {
	case DirectionPrevious:
		return "previous"
	case DirectionNext:
		return "next"
	default:
		return "none"
	}
}

// SwipeState is either settled or dragging.
type SwipeState int

const (
	Settled SwipeState = iota
	Dragging
)

func (s SwipeState) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "settled"
}

// Resolve decides where a swipe released at translation lands in a cyclic
// sequence of n items. A rightward drag selects the previous item, a leftward
// drag the next one.
func Resolve(index, n int, translation float64) (int, Direction) {
	if n <= 0 {
		return index, DirectionNone
	}
	switch {
	case translation > SwipeThreshold:
		return (index - 1 + n) % n, DirectionPrevious
	case translation < -SwipeThreshold:
		return (index + 1) % n, DirectionNext
	default:
		return index, DirectionNone
	}
}
