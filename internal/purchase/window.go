// Package purchase implements the bounded recent-purchase window.
//
// A Window holds at most T purchases, ordered by (timestamp, insertion
// sequence). When full, inserting a more recent purchase evicts the
// earliest one; a purchase older than everything retained is discarded.
// Timestamps are opaque strings compared lexically, which for the feed's
// "YYYY-MM-DD hh:mm:ss" format is chronological order.
package purchase

import "container/heap"

// Sequencer issues strictly increasing insertion sequence numbers for one
// run. The sequence breaks ties between purchases with equal timestamps
// and makes every window key unique.
type Sequencer struct {
	n uint64
}

// Next returns the next sequence number.
func (s *Sequencer) Next() uint64 {
	s.n++
	return s.n
}

// Key totally orders purchases: by timestamp, then by insertion sequence.
type Key struct {
	Timestamp string
	Seq       uint64
}

// Less reports whether k orders before other (earlier purchase).
func (k Key) Less(other Key) bool {
	if k.Timestamp != other.Timestamp {
		return k.Timestamp < other.Timestamp
	}
	return k.Seq < other.Seq
}

// Entry is a single retained purchase.
type Entry struct {
	Key     Key
	Pennies int64
}

// entryHeap is a min-heap on Entry.Key, so the earliest retained purchase
// is always at the root.
type entryHeap []Entry

func (h entryHeap) Len() int           { return len(h) }
func (h entryHeap) Less(i, j int) bool { return h[i].Key.Less(h[j].Key) }
func (h entryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x any)        { *h = append(*h, x.(Entry)) }
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// Window is a bounded collection of the most recent purchases.
// Not safe for concurrent use; the run loop is the single writer.
type Window struct {
	capacity int
	seq      *Sequencer
	entries  entryHeap
}

// NewWindow creates an empty window with the given capacity. All windows
// of a run share one Sequencer so merged entries keep a total order.
func NewWindow(capacity int, seq *Sequencer) *Window {
	return &Window{
		capacity: capacity,
		seq:      seq,
		entries:  make(entryHeap, 0, capacity),
	}
}

// Add records a purchase. If the window is full and the purchase is older
// than every retained entry it is discarded; Add reports whether the
// purchase was retained.
func (w *Window) Add(timestamp string, pennies int64) bool {
	e := Entry{Key: Key{Timestamp: timestamp, Seq: w.seq.Next()}, Pennies: pennies}
	return w.insert(e)
}

// Merge inserts every entry of other into w, evicting the earliest entry
// whenever w exceeds capacity. Entries keep their original keys, so the
// result is the capacity-largest keys of the union regardless of merge
// order.
func (w *Window) Merge(other *Window) {
	for _, e := range other.entries {
		w.insert(e)
	}
}

func (w *Window) insert(e Entry) bool {
	if len(w.entries) < w.capacity {
		heap.Push(&w.entries, e)
		return true
	}
	if w.capacity == 0 || !w.entries[0].Key.Less(e.Key) {
		return false
	}
	// Replace the earliest entry at the root.
	w.entries[0] = e
	heap.Fix(&w.entries, 0)
	return true
}

// Len returns the number of retained purchases.
func (w *Window) Len() int {
	return len(w.entries)
}

// Capacity returns the window's threshold T.
func (w *Window) Capacity() int {
	return w.capacity
}

// Amounts returns the retained purchase amounts in pennies, in heap order.
// Order carries no meaning to callers; anomaly statistics are symmetric.
func (w *Window) Amounts() []int64 {
	out := make([]int64, len(w.entries))
	for i, e := range w.entries {
		out[i] = e.Pennies
	}
	return out
}

// Earliest returns the key of the earliest retained purchase, and false
// when the window is empty.
func (w *Window) Earliest() (Key, bool) {
	if len(w.entries) == 0 {
		return Key{}, false
	}
	return w.entries[0].Key, true
}
