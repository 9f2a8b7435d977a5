// Package history keeps the bounded recent window of metric values used
// for sparklines. Nothing here persists beyond process lifetime.
package history

// Ring holds the last N pushed values in arrival order.
type Ring struct {
	vals []float64
	cap  int
}

// NewRing returns a ring bounded to n entries; n < 1 falls back to 1.
func NewRing(n int) *Ring {
	if n < 1 {
		n = 1
	}
	return &Ring{cap: n}
}

func (r *Ring) Push(v float64) {
	r.vals = append(r.vals, v)
	if len(r.vals) > r.cap {
		r.vals = r.vals[len(r.vals)-r.cap:]
	}
}

// Values returns the retained window, oldest first.
func (r *Ring) Values() []float64 { return r.vals }

// Last returns the most recent value, 0 when empty.
func (r *Ring) Last() float64 {
	if len(r.vals) == 0 {
		return 0
	}
	return r.vals[len(r.vals)-1]
}

// Max returns the largest retained value, 0 when empty.
func (r *Ring) Max() float64 {
	var m float64
	for _, v := range r.vals {
		if v > m {
			m = v
		}
	}
	return m
}

func (r *Ring) Len() int { return len(r.vals) }
