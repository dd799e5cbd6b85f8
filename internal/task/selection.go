package task

import "slices"

// Selection is the in-memory multi-select state behind bulk actions.
// The zero value is an inactive, empty selection.
type Selection struct {
	active bool
	ids    map[string]struct{}
}

// Enter turns selection mode on with exactly id selected.
func (s *Selection) Enter(id string) {
	s.active = true
	s.ids = map[string]struct{}{id: {}}
}

// Toggle adds id if absent, removes it otherwise. It leaves the mode alone.
func (s *Selection) Toggle(id string) {
	if s.ids == nil {
		s.ids = make(map[string]struct{})
	}
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

// Cancel clears the set and leaves selection mode.
func (s *Selection) Cancel() {
	s.active = false
	s.ids = nil
}

func (s *Selection) Active() bool {
	return s.active
}

func (s *Selection) IsEmpty() bool {
	return len(s.ids) == 0
}

func (s *Selection) Len() int {
	return len(s.ids)
}

func (s *Selection) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// IDs returns the selected identifiers in sorted order.
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
