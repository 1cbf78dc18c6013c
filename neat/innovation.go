package neat

import "sync"

// innovationKind discriminates the structural-mutation signatures tracked
// within one generation.
type innovationKind uint8

const (
	innovationConnection innovationKind = iota
	innovationSplitIn
	innovationSplitOut
)

// innovationSignature identifies "the same" structural mutation performed
// independently by different genomes in one generation. For a new connection
// the signature is its (from, to) node pair. For a node split the signature
// is derived from the split connection's own marking, so the two genomes need
// not agree on the id of the freshly created hidden node.
type innovationSignature struct {
	kind innovationKind
	a, b int
}

// InnovationTracker assigns and deduplicates historical markings. It is owned
// by a Population and passed into mutator calls for one generation, then
// cleared — never a hidden global — so independent runs can execute
// concurrently without interference.
//
// All methods are safe for concurrent use: when mutation is parallelized the
// tracker is the single synchronization point, since deduplication
// correctness requires a global view of the generation's mutations.
type InnovationTracker struct {
	mu   sync.Mutex
	head int
	seen map[innovationSignature]int
}

// NewInnovationTracker creates a tracker whose next marking is head.
func NewInnovationTracker(head int) *InnovationTracker {
	return &InnovationTracker{
		head: head,
		seen: make(map[innovationSignature]int),
	}
}

func (t *InnovationTracker) assign(sig innovationSignature) int {
	if id, ok := t.seen[sig]; ok {
		return id
	}
	id := t.head
	t.head++
	t.seen[sig] = id
	return id
}

// ConnectionMarking returns the historical marking for a new connection
// between from and to, allocating a fresh id on first sight of the pair.
func (t *InnovationTracker) ConnectionMarking(from, to int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.assign(innovationSignature{innovationConnection, from, to})
}

// SplitMarkings returns the markings for the two connections created by
// splitting the connection with the given marking: first the in-side
// (source → new node), then the out-side (new node → target).
func (t *InnovationTracker) SplitMarkings(split int) (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	in := t.assign(innovationSignature{innovationSplitIn, split, 0})
	out := t.assign(innovationSignature{innovationSplitOut, split, 0})
	return in, out
}

// Head returns the next marking that would be assigned.
func (t *InnovationTracker) Head() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.head
}

// Reset clears the dedup map at a generation boundary. Markings themselves
// are never reused: the counter survives the reset.
func (t *InnovationTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seen = make(map[innovationSignature]int)
}
