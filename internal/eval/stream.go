package eval

// ResultStream supplies deterministic measurement outcomes. Bits are given
// MSB-first and consumed back-to-front: the first measurement takes the last
// supplied bit. When the stream is exhausted, or a result is read before any
// measurement bound it, the most recently produced value is reused.
type ResultStream struct {
	bits []bool
	last bool
}

// NewResultStream returns a stream over the given bits.
func NewResultStream(bits []bool) *ResultStream {
	return &ResultStream{bits: append([]bool(nil), bits...)}
}

// Pop consumes the next outcome and caches it as the most recent value.
func (s *ResultStream) Pop() bool {
	if len(s.bits) > 0 {
		s.last = s.bits[len(s.bits)-1]
		s.bits = s.bits[:len(s.bits)-1]
	}
	return s.last
}

// Last reports the cached most-recent outcome without consuming the stream.
func (s *ResultStream) Last() bool {
	return s.last
}

// Remaining reports how many supplied bits are still unconsumed.
func (s *ResultStream) Remaining() int {
	return len(s.bits)
}

// ParseBits parses a string of '0' and '1' runes, MSB-first, into a bit
// slice. Any other rune is rejected by returning false.
func ParseBits(s string) ([]bool, bool) {
	bits := make([]bool, 0, len(s))
	for _, r := range s {
		switch r {
		case '0':
			bits = append(bits, false)
		case '1':
			bits = append(bits, true)
		default:
			return nil, false
		}
	}
	return bits, true
}
