package inventory

import "sort"

// Selection is the set of ticket numbers chosen for the next bulk action.
// It is independent of the current filter and page.  Values held in a
// State are never modified in place; the reducer copies before changing.
type Selection map[string]struct{}

// NewSelection builds a selection holding numbers.
func NewSelection(numbers ...string) Selection {
	s := make(Selection, len(numbers))
	for _, n := range numbers {
		s[n] = struct{}{}
	}
	return s
}

// Has reports whether number is selected.
func (s Selection) Has(number string) bool {
	_, ok := s[number]
	return ok
}

// Len returns the number of selected tickets.
func (s Selection) Len() int { return len(s) }

// Numbers returns the selected numbers in ascending order.  Numbers of a
// raffle share one width, so string order is numeric order.
func (s Selection) Numbers() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// toggled returns a copy of s with number added or removed.
func (s Selection) toggled(number string) Selection {
	out := make(Selection, len(s)+1)
	for n := range s {
		out[n] = struct{}{}
	}
	if s.Has(number) {
		delete(out, number)
	} else {
		out[number] = struct{}{}
	}
	return out
}
