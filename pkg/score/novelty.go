package score

// Tracker is a bounded FIFO of token-sets from recently scored headlines.
// Capacity-bounded ring: once full, pushing evicts the oldest entry.
//
// Lookups are a linear scan, O(batch x capacity). That is deliberate: the
// window is small and exact max-Jaccard semantics keep scoring
// reproducible.
type Tracker struct {
	entries []map[string]bool
	next    int
	full    bool
}

// NewTracker creates a tracker holding at most capacity token-sets.
func NewTracker(capacity int) *Tracker {
	if capacity <= 0 {
		capacity = 5000
	}
	return &Tracker{entries: make([]map[string]bool, capacity)}
}

// Len reports how many token-sets are currently held.
func (t *Tracker) Len() int {
	if t.full {
		return len(t.entries)
	}
	return t.next
}

// Push appends a token-set, evicting the oldest once capacity is exceeded.
func (t *Tracker) Push(tokens map[string]bool) {
	t.entries[t.next] = tokens
	t.next++
	if t.next == len(t.entries) {
		t.next = 0
		t.full = true
	}
}

// Novelty returns 1 minus the maximum Jaccard similarity of tokens against
// every held entry; 1 (fully novel) when the tracker is empty.
func (t *Tracker) Novelty(tokens map[string]bool) float64 {
	maxSim := 0.0
	n := t.Len()
	for i := 0; i < n; i++ {
		if sim := jaccard(tokens, t.entries[i]); sim > maxSim {
			maxSim = sim
		}
	}
	return 1 - maxSim
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for tok := range a {
		if b[tok] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
