package game

// InflightKind names a class of outstanding provider request
type InflightKind string

const (
	InflightBuild InflightKind = "build"
	InflightEvent InflightKind = "event"
	InflightChat  InflightKind = "chat"
)

type inflightKey struct {
	kind InflightKind
	key  string
}

// InflightSet is a set of named single-flight locks.
//
// It is owned by the session goroutine and is not safe for concurrent use.
// Build and event locks use the empty key; chat locks are keyed by station ID.
type InflightSet struct {
	held map[inflightKey]struct{}
}

// NewInflightSet creates an empty set
func NewInflightSet() *InflightSet {
	return &InflightSet{held: make(map[inflightKey]struct{})}
}

// TryAcquire takes the lock and reports false when it is already held
func (s *InflightSet) TryAcquire(kind InflightKind, key string) bool {
	k := inflightKey{kind: kind, key: key}
	if _, ok := s.held[k]; ok {
		return false
	}
	s.held[k] = struct{}{}
	return true
}

// Release frees the lock. Releasing a free lock is a no-op.
func (s *InflightSet) Release(kind InflightKind, key string) {
	delete(s.held, inflightKey{kind: kind, key: key})
}

// Held reports whether the lock is taken
func (s *InflightSet) Held(kind InflightKind, key string) bool {
	_, ok := s.held[inflightKey{kind: kind, key: key}]
	return ok
}

// Len returns the number of held locks
func (s *InflightSet) Len() int {
	return len(s.held)
}
