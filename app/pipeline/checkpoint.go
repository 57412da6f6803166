package pipeline

import "time"

// checkpoint is the set of post ids finished during the current run. The
// durable representation is the processed_at marker in the post store;
// completions accumulate here and are flushed to the store in batches.
type checkpoint struct {
	done    map[string]time.Time
	pending map[string]time.Time
}

func newCheckpoint() *checkpoint {
	return &checkpoint{
		done:    make(map[string]time.Time),
		pending: make(map[string]time.Time),
	}
}

func (c *checkpoint) add(id string, at time.Time) {
	c.done[id] = at
	c.pending[id] = at
}

func (c *checkpoint) has(id string) bool {
	_, ok := c.done[id]
	return ok
}

func (c *checkpoint) pendingCount() int {
	return len(c.pending)
}

func (c *checkpoint) size() int {
	return len(c.done)
}

// flush persists every pending completion. Ids that reached the store are
// dropped from pending even when a later one fails, so a retried flush never
// rewrites them.
func (c *checkpoint) flush(store PostStore) error {
	for id, at := range c.pending {
		if err := store.MarkProcessed(id, at); err != nil {
			return err
		}
		delete(c.pending, id)
	}
	return nil
}
