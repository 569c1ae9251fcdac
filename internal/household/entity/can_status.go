package entity

import "time"

// CanStatus tracks which of a household's three water cans are full.
type CanStatus struct {
	UserID    int64
	Can1Full  bool
	Can2Full  bool
	Can3Full  bool
	UpdatedAt time.Time
}

// FullCount returns how many cans are full.
func (c CanStatus) FullCount() int {
	n := 0
	for _, full := range []bool{c.Can1Full, c.Can2Full, c.Can3Full} {
		if full {
			n++
		}
	}
	return n
}
