package transfer

import "sync"

// CancelSet holds the ids of jobs whose cancellation has been requested but
// not yet observed by the transfer loop.
type CancelSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewCancelSet() *CancelSet {
	return &CancelSet{ids: make(map[string]struct{})}
}

func (c *CancelSet) Add(id string) {
	c.mu.Lock()
	c.ids[id] = struct{}{}
	c.mu.Unlock()
}

func (c *CancelSet) Has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.ids[id]
	return ok
}

// Take removes the id and reports whether it was present.
func (c *CancelSet) Take(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.ids[id]
	delete(c.ids, id)
	return ok
}
