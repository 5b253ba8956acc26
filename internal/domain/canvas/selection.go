package canvas

// SelectionSet is the ordered, duplicate-free set of selected window ids
type SelectionSet struct {
	ids []string
}

// NewSelectionSet returns an empty selection
func NewSelectionSet() *SelectionSet {
	return &SelectionSet{}
}

// Select replaces the selection with id, or toggles id when additive
func (s *SelectionSet) Select(id string, additive bool) {
	if !additive {
		s.ids = []string{id}
		return
	}
	if i := s.index(id); i >= 0 {
		s.ids = append(s.ids[:i:i], s.ids[i+1:]...)
		return
	}
	s.ids = append(s.ids, id)
}

// Clear empties the selection
func (s *SelectionSet) Clear() {
	s.ids = nil
}

// Remove drops id if present
func (s *SelectionSet) Remove(id string) {
	if i := s.index(id); i >= 0 {
		s.ids = append(s.ids[:i:i], s.ids[i+1:]...)
	}
}

// Contains reports whether id is selected
func (s *SelectionSet) Contains(id string) bool {
	return s.index(id) >= 0
}

// Len returns the number of selected windows
func (s *SelectionSet) Len() int { return len(s.ids) }

// Empty reports whether nothing is selected
func (s *SelectionSet) Empty() bool { return len(s.ids) == 0 }

// IDs returns a copy of the selection in selection order
func (s *SelectionSet) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s *SelectionSet) index(id string) int {
	for i, v := range s.ids {
		if v == id {
			return i
		}
	}
	return -1
}
