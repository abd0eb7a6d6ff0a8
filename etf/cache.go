package etf

import "fmt"

// Segment selects one of the 8 segments of the atom cache.
type Segment uint8

const (
	S0 Segment = iota
	S1
	S2
	S3
	S4
	S5
	S6
	S7
)

// AtomCacheKey addresses an entry of the atom cache.
type AtomCacheKey struct {
	Segment Segment
	Slot    uint8
}

func (k AtomCacheKey) String() string {
	return fmt.Sprintf("S%d:%d", k.Segment, k.Slot)
}

// AtomCache is the per-connection table of atoms declared by distribution
// headers. It lives as long as the connection and is only written by the
// header decoder of that connection, so it does no locking.
type AtomCache struct {
	entries map[AtomCacheKey]Atom
	inserts uint64
}

// NewAtomCache creates an empty cache.
func NewAtomCache() *AtomCache {
	return &AtomCache{
		entries: make(map[AtomCacheKey]Atom),
	}
}

// Insert stores atom under key, replacing a previous entry. It returns the
// replaced atom if there was one.
func (a *AtomCache) Insert(key AtomCacheKey, atom Atom) (Atom, bool) {
	prev, replaced := a.entries[key]
	a.entries[key] = atom
	a.inserts++
	return prev, replaced
}

// Get looks up the atom stored under key.
func (a *AtomCache) Get(key AtomCacheKey) (Atom, bool) {
	atom, ok := a.entries[key]
	return atom, ok
}

// Len returns the number of cached atoms.
func (a *AtomCache) Len() int {
	return len(a.entries)
}

// Inserts returns how many times Insert was called.
func (a *AtomCache) Inserts() uint64 {
	return a.inserts
}
