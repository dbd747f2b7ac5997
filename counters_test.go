package wikicorpus

import (
	"sync"
	"testing"
)

func TestCountersConcurrent(t *testing.T) {
	c := NewCounters()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Inc("en", EventExtracted)
			}
		}()
	}
	wg.Wait()
	if got := c.Get("en", EventExtracted); got != 800 {
		t.Fatalf("Expected 800, got %d", got)
	}
}

func TestCountersSnapshot(t *testing.T) {
	c := NewCounters()
	c.Inc("en", EventCleaned)
	c.Inc("de", EventCleaned)

	snap := c.Snapshot()
	c.Inc("en", EventCleaned)

	if got := snap[CounterKey{"en", EventCleaned}]; got != 1 {
		t.Errorf("Snapshot should be a copy, got %d", got)
	}
	if got := c.Get("en", EventCleaned); got != 2 {
		t.Errorf("Expected live tally 2, got %d", got)
	}
	if got := snap[CounterKey{"de", EventCleaned}]; got != 1 {
		t.Errorf("Expected de tally 1, got %d", got)
	}
}
