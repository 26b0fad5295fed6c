package imports

import stderrors "errors"

// ErrScopeUnderflow is raised (as a panic value) when a traversal pops more
// scopes than it pushed.
var ErrScopeUnderflow = stderrors.New("scope stack underflow")

type scope struct {
	// names introduced in this frame (module names, renames, self-imports)
	locals []string
	// inherited from the parent; set once at push time
	testOnly bool
}

// ScopeStack tracks the lexical frames of one traversal. The root frame is
// created by NewScopeStack and is never popped.
type ScopeStack struct {
	frames []scope
	// count of open frames that introduced each name
	shadowed map[string]int
}

// NewScopeStack returns a stack holding only the root frame.
func NewScopeStack() *ScopeStack {
	return &ScopeStack{
		frames:   []scope{{}},
		shadowed: make(map[string]int),
	}
}

// Push opens a frame. A frame is test-only when marked here or when its
// parent already is.
func (s *ScopeStack) Push(testMarker bool) {
	s.frames = append(s.frames, scope{
		testOnly: testMarker || s.top().testOnly,
	})
}

// Pop closes the top frame and un-shadows every name it introduced.
func (s *ScopeStack) Pop() {
	if len(s.frames) <= 1 {
		panic(ErrScopeUnderflow)
	}
	top := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	for _, name := range top.locals {
		if s.shadowed[name] <= 1 {
			delete(s.shadowed, name)
			continue
		}
		s.shadowed[name]--
	}
}

// Declare introduces name in the top frame. It reports false, and does
// nothing, when name is already visible from an open frame.
func (s *ScopeStack) Declare(name string) bool {
	if s.Shadowed(name) {
		return false
	}
	top := &s.frames[len(s.frames)-1]
	top.locals = append(top.locals, name)
	s.shadowed[name]++
	return true
}

// Shadowed reports whether name was declared by any open frame.
func (s *ScopeStack) Shadowed(name string) bool {
	return s.shadowed[name] > 0
}

// TestOnly reports whether the top frame is test-only.
func (s *ScopeStack) TestOnly() bool {
	return s.top().testOnly
}

// IsRoot reports whether only the root frame is open.
func (s *ScopeStack) IsRoot() bool {
	return len(s.frames) == 1
}

// Depth returns the number of open frames, root included.
func (s *ScopeStack) Depth() int {
	return len(s.frames)
}

func (s *ScopeStack) top() scope {
	return s.frames[len(s.frames)-1]
}
