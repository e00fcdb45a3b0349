package richtext

// SelectionState is a read-only view of the popup for the presentation
// layer. Selected is meaningless when the popup is closed.
type SelectionState struct {
	Kind       TriggerKind
	Candidates CandidateList
	Selected   int
	Span       TriggerSpan
}

// Open reports whether a popup should be shown.
func (s SelectionState) Open() bool {
	return s.Kind != KindNone && len(s.Candidates) > 0
}

// Current returns the selected candidate of an open popup.
func (s SelectionState) Current() (Candidate, bool) {
	if !s.Open() || s.Selected < 0 || s.Selected >= len(s.Candidates) {
		return nil, false
	}
	return s.Candidates[s.Selected], true
}

// Selection is the popup state machine. Only one trigger kind can be open
// at a time.
type Selection struct {
	kind       TriggerKind
	candidates CandidateList
	selected   int
	span       TriggerSpan
}

// Open shows candidates for span with the first entry selected. An inactive
// span or an empty list closes the popup instead.
func (s *Selection) Open(span TriggerSpan, candidates CandidateList) {
	if !span.Active() || len(candidates) == 0 {
		s.Close()
		return
	}
	s.kind = span.Kind
	s.candidates = candidates
	s.selected = 0
	s.span = span
}

func (s *Selection) Close() {
	s.kind = KindNone
	s.candidates = nil
	s.selected = 0
	s.span = TriggerSpan{}
}

func (s *Selection) IsOpen() bool {
	return s.kind != KindNone && len(s.candidates) > 0
}

// Next moves the selection down, stopping at the last candidate.
func (s *Selection) Next() {
	if !s.IsOpen() {
		return
	}
	s.selected = min(s.selected+1, len(s.candidates)-1)
}

// Previous moves the selection up, stopping at the first candidate.
func (s *Selection) Previous() {
	if !s.IsOpen() {
		return
	}
	s.selected = max(s.selected-1, 0)
}

// SelectAt moves the selection to index, for pointer hover. Out of range
// indices are ignored.
func (s *Selection) SelectAt(index int) bool {
	if !s.IsOpen() || index < 0 || index >= len(s.candidates) {
		return false
	}
	s.selected = index
	return true
}

func (s *Selection) Current() (Candidate, bool) {
	return s.Snapshot().Current()
}

// Commit closes the popup and returns the selected candidate together with
// the span it replaces.
func (s *Selection) Commit() (Candidate, TriggerSpan, bool) {
	candidate, ok := s.Current()
	span := s.span
	s.Close()
	if !ok {
		return nil, TriggerSpan{}, false
	}
	return candidate, span, true
}

// Escape closes the popup without emitting anything.
func (s *Selection) Escape() {
	s.Close()
}

func (s *Selection) Snapshot() SelectionState {
	return SelectionState{
		Kind:       s.kind,
		Candidates: s.candidates,
		Selected:   s.selected,
		Span:       s.span,
	}
}
