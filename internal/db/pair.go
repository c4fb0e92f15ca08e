package db

// Pair is an unordered pair of user ids normalized to (smaller, larger).
// Match and Conversation rows are only ever stored and looked up through it.
type Pair struct {
	Lo uint64
	Hi uint64
}

// NewPair canonicalizes a and b.
func NewPair(a, b uint64) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{Lo: a, Hi: b}
}

// Contains reports whether id is one of the two participants.
func (p Pair) Contains(id uint64) bool {
	return id == p.Lo || id == p.Hi
}

// Other returns the participant that is not id.
func (p Pair) Other(id uint64) uint64 {
	if id == p.Lo {
		return p.Hi
	}
	return p.Lo
}
