package brackets

// Side of a match a propagated winner lands on.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// NextSlot returns the slot in the following round fed by the given slot.
// Adjacent slots (2k-1, 2k) always reduce to slot k.
func NextSlot(slot int) int {
	return ((slot - 1) / 2) + 1
}

// SiblingSlot returns the other slot in the same round whose winner feeds the
// same next-round match.
func SiblingSlot(slot int) int {
	if slot%2 == 1 {
		return slot + 1
	}
	return slot - 1
}

// SideForSlot maps a feeder slot to the side its winner occupies in the next
// round: odd slots become the home team, even slots the away team. The
// convention is fixed so partial updates from either sibling stay symmetric.
func SideForSlot(slot int) Side {
	if slot%2 == 1 {
		return SideHome
	}
	return SideAway
}
