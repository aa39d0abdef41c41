// Package pagination implements the infinite-scroll list controller shared by
// every paged screen: a one-based page cursor, a single in-flight request,
// an exhaustion flag and a sliding window of the most recent items.
package pagination

import (
	"context"
	"sync"
)

const (
	// FirstPage is the cursor value of a fresh or reset controller.
	FirstPage = 1
	// MaxItems caps the accumulated window; older items are dropped first.
	MaxItems = 50
)

// Policy decides when the backend has no more pages.
type Policy int

const (
	// ByNextPointer trusts the backend's next-page pointer.
	ByNextPointer Policy = iota
	// ByEmptyPage stops on the first page that returns no items.
	ByEmptyPage
)

func (p Policy) String() string {
	if p == ByEmptyPage {
		return "empty-page"
	}
	return "next-pointer"
}

// Page is one fetched page. HasNext is only consulted under ByNextPointer.
type Page[T any] struct {
	Items   []T
	HasNext bool
}

// Fetcher loads page (one-based) for query q.
type Fetcher[T, Q any] func(ctx context.Context, page int, q Q) (Page[T], error)

// Options tunes a Controller.
type Options struct {
	Policy Policy
	// MaxItems overrides the window cap; zero means MaxItems.
	MaxItems int
}

// Controller accumulates pages from a Fetcher. It is safe for concurrent use.
type Controller[T, Q any] struct {
	fetch    Fetcher[T, Q]
	policy   Policy
	maxItems int

	mu       sync.Mutex
	query    Q
	items    []T
	page     int
	inFlight bool
	// reloadPending asks the running load to fetch the first page next.
	reloadPending bool
	exhausted     bool
	closed        bool
	generation    uint64
}

func New[T, Q any](fetch Fetcher[T, Q], query Q, opts Options) *Controller[T, Q] {
	limit := opts.MaxItems
	if limit <= 0 {
		limit = MaxItems
	}
	return &Controller[T, Q]{
		fetch:    fetch,
		policy:   opts.Policy,
		maxItems: limit,
		query:    query,
		page:     FirstPage,
	}
}

// LoadNext fetches the current page and appends it. It returns (false, nil)
// without issuing a request when a load is already running, the list is
// exhausted, or the controller is closed. On error nothing but the in-flight
// flag changes, so the next call retries the same page. A reset requested
// while this load runs is served by this call once its response settles.
func (c *Controller[T, Q]) LoadNext(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.inFlight || c.exhausted || c.closed {
		c.mu.Unlock()
		return false, nil
	}
	c.inFlight = true
	for {
		gen, page, q := c.generation, c.page, c.query
		c.mu.Unlock()

		res, err := c.fetch(ctx, page, q)

		c.mu.Lock()
		if gen == c.generation {
			return c.settle(res, err)
		}
		// Superseded. Close already released inFlight; a reset is reissued
		// here so requests never overlap.
		if c.closed {
			c.mu.Unlock()
			return false, nil
		}
		if !c.reloadPending {
			c.inFlight = false
			c.mu.Unlock()
			return false, nil
		}
		c.reloadPending = false
	}
}

// settle applies a current-generation response and unlocks c.mu.
func (c *Controller[T, Q]) settle(res Page[T], err error) (bool, error) {
	defer c.mu.Unlock()
	c.inFlight = false
	if err != nil {
		return false, err
	}

	c.items = append(c.items, res.Items...)
	if over := len(c.items) - c.maxItems; over > 0 {
		c.items = append([]T(nil), c.items[over:]...)
	}
	c.page++
	switch c.policy {
	case ByEmptyPage:
		c.exhausted = len(res.Items) == 0
	default:
		c.exhausted = !res.HasNext
	}
	return true, nil
}

// ResetAndReload drops accumulated state and loads the first page. When a
// load is already running its response is discarded and the running call
// fetches the first page next; ResetAndReload then returns (false, nil)
// and Loading reports true.
func (c *Controller[T, Q]) ResetAndReload(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false, nil
	}
	c.reset()
	if c.inFlight {
		c.reloadPending = true
		c.mu.Unlock()
		return false, nil
	}
	c.mu.Unlock()
	return c.LoadNext(ctx)
}

func (c *Controller[T, Q]) reset() {
	c.generation++
	c.items = nil
	c.page = FirstPage
	c.exhausted = false
}

// SetQuery replaces the query used by subsequent fetches. It does not fetch.
func (c *Controller[T, Q]) SetQuery(q Q) {
	c.mu.Lock()
	c.query = q
	c.mu.Unlock()
}

func (c *Controller[T, Q]) Query() Q {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Close detaches the controller; responses still in flight are discarded.
func (c *Controller[T, Q]) Close() {
	c.mu.Lock()
	c.closed = true
	c.generation++
	c.inFlight = false
	c.reloadPending = false
	c.mu.Unlock()
}

// Items returns a copy of the window, oldest first.
func (c *Controller[T, Q]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Page is the next page to be requested.
func (c *Controller[T, Q]) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

func (c *Controller[T, Q]) Exhausted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exhausted
}

func (c *Controller[T, Q]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

func (c *Controller[T, Q]) Policy() Policy { return c.policy }
