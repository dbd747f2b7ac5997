package wikicorpus

import "sync"

// Counter event names, one per page outcome.  A page that never shows
// up in any tally was filtered for being outside the main namespace.
const (
	EventExtracted         = "extracted-examples"
	EventFilteredRedirects = "filtered-redirects"
	EventParserError       = "parser-error"
	EventCleaned           = "cleaned-examples"
	EventEmptyClean        = "empty-clean-examples"
)

// CounterKey names one tally: the language the pipeline was configured
// with plus the event being counted.
type CounterKey struct {
	Language string
	Event    string
}

// Counters holds additive tallies shared across extraction and worker
// goroutines.  Increments commute, so a single mutex is all the
// coordination needed.
type Counters struct {
	mu      sync.Mutex
	tallies map[CounterKey]int64
}

// NewCounters gets an empty counter set.
func NewCounters() *Counters {
	return &Counters{tallies: map[CounterKey]int64{}}
}

// Inc bumps one tally by one.
func (c *Counters) Inc(language, event string) {
	c.mu.Lock()
	c.tallies[CounterKey{language, event}]++
	c.mu.Unlock()
}

// Get reads one tally.
func (c *Counters) Get(language, event string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tallies[CounterKey{language, event}]
}

// Snapshot copies out every tally at a point in time.
func (c *Counters) Snapshot() map[CounterKey]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	rv := make(map[CounterKey]int64, len(c.tallies))
	for k, v := range c.tallies {
		rv[k] = v
	}
	return rv
}
