package assemble

// IdentitySequence produces identity column values: the n-th value is
// start + n*increment, 1-based, matching what the engine would assign next.
type IdentitySequence struct {
	current   int64
	increment int64
}

func NewIdentitySequence(start, increment int64) *IdentitySequence {
	if increment == 0 {
		increment = 1
	}
	return &IdentitySequence{current: start, increment: increment}
}

func (s *IdentitySequence) Next() int64 {
	s.current += s.increment
	return s.current
}
