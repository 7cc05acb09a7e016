package parser

// Interner implements string interning for node names.
//
// Node names repeat throughout a diagram: every intermediate node appears
// once as a target and again as a source. Keeping one canonical string per
// name avoids an allocation per occurrence.
//
// An Interner belongs to a single parse and is not safe for concurrent use.
type Interner struct {
	pool map[string]string
}

// NewInterner creates a new string interner with the given initial capacity.
func NewInterner(capacity int) *Interner {
	return &Interner{
		pool: make(map[string]string, capacity),
	}
}

// Intern returns the canonical version of the string.
func (i *Interner) Intern(s string) string {
	if interned, ok := i.pool[s]; ok {
		return interned
	}
	i.pool[s] = s
	return s
}

// InternBytes converts a byte slice to a string and interns it.
func (i *Interner) InternBytes(b []byte) string {
	// The map lookup with string(b) does not allocate.
	if interned, ok := i.pool[string(b)]; ok {
		return interned
	}
	s := string(b)
	i.pool[s] = s
	return s
}

// Size returns the number of unique strings in the pool.
func (i *Interner) Size() int {
	return len(i.pool)
}
