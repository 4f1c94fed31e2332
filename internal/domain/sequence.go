package domain

// IDSequence hands out record ids. It is owned by the component that creates
// records; ids are never reused.
type IDSequence struct {
	next int
}

// NewIDSequence starts counting at start. Values below 1 start at 1.
func NewIDSequence(start int) *IDSequence {
	if start < 1 {
		start = 1
	}
	return &IDSequence{next: start}
}

// ContinueAfter returns a sequence that starts after the highest id in records.
func ContinueAfter(records []Fish) *IDSequence {
	maxID := 0
	for _, r := range records {
		if r.ID > maxID {
			maxID = r.ID
		}
	}
	return NewIDSequence(maxID + 1)
}

// Next returns the next id.
func (s *IDSequence) Next() int {
	id := s.next
	s.next++
	return id
}

// Peek returns the id Next would hand out without consuming it.
func (s *IDSequence) Peek() int {
	return s.next
}
