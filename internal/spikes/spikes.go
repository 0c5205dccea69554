// Package spikes holds the time-sorted spike event sequence consumed by the
// playback controller.
package spikes

import "sort"

// Event is a single spike: neuron GID firing at Time.
type Event struct {
	Time float64
	GID  uint32
}

// Sequence is a multiset of events sorted ascending by time. Events with
// equal times keep their load order. A Sequence is immutable once published.
type Sequence []Event

// NewSequence copies and sorts events.
func NewSequence(events []Event) Sequence {
	s := make(Sequence, len(events))
	copy(s, events)
	sort.SliceStable(s, func(i, j int) bool { return s[i].Time < s[j].Time })
	return s
}

func (s Sequence) IsSorted() bool {
	return sort.SliceIsSorted(s, func(i, j int) bool { return s[i].Time < s[j].Time })
}

// LowerBound returns the index of the first event with Time >= t.
func (s Sequence) LowerBound(t float64) int {
	return sort.Search(len(s), func(i int) bool { return s[i].Time >= t })
}

// UpperBound returns the index of the first event with Time > t.
func (s Sequence) UpperBound(t float64) int {
	return sort.Search(len(s), func(i int) bool { return s[i].Time > t })
}

// EqualRange returns the index range of events at exactly t.
func (s Sequence) EqualRange(t float64) (int, int) {
	return s.LowerBound(t), s.UpperBound(t)
}

// Between returns the index range of events in [min(t0,t1), max(t0,t1)).
func (s Sequence) Between(t0, t1 float64) (int, int) {
	if t0 == t1 {
		i := s.LowerBound(t0)
		return i, i
	}
	if t1 < t0 {
		t0, t1 = t1, t0
	}
	return s.LowerBound(t0), s.LowerBound(t1)
}

// Window returns the events in [min(t0,t1), max(t0,t1)) as a subslice.
func (s Sequence) Window(t0, t1 float64) Sequence {
	lo, hi := s.Between(t0, t1)
	return s[lo:hi]
}

// Span returns the first and last event times, or zeros when empty.
func (s Sequence) Span() (float64, float64) {
	if len(s) == 0 {
		return 0, 0
	}
	return s[0].Time, s[len(s)-1].Time
}

// GIDs returns the distinct neuron ids in the sequence, ascending.
func (s Sequence) GIDs() []uint32 {
	seen := make(map[uint32]struct{})
	for _, e := range s {
		seen[e.GID] = struct{}{}
	}
	ids := make([]uint32, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
