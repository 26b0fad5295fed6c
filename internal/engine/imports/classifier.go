package imports

// Path keywords that refer to the current crate or module, never to a
// dependency.
var selfKeywords = map[string]bool{
	"crate": true,
	"self":  true,
	"super": true,
}

// Classifier buckets external references as normal or test-only according
// to the scope they are observed in.
type Classifier struct {
	scopes   *ScopeStack
	normal   map[string]struct{}
	testOnly map[string]struct{}
}

// NewClassifier returns an empty classifier reading scope state from scopes.
func NewClassifier(scopes *ScopeStack) *Classifier {
	return &Classifier{
		scopes:   scopes,
		normal:   make(map[string]struct{}),
		testOnly: make(map[string]struct{}),
	}
}

// Record classifies name as an external crate reference unless it is a
// self keyword or currently shadowed by a local declaration.
func (c *Classifier) Record(name string) {
	if name == "" || selfKeywords[name] {
		return
	}
	if c.scopes.Shadowed(name) {
		return
	}
	if c.scopes.TestOnly() {
		c.testOnly[name] = struct{}{}
		return
	}
	c.normal[name] = struct{}{}
}
