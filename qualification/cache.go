package qualification

import (
	"sync"
)

type entry struct {
	desc *Descriptor
	err  error
}

// Cache memoizes descriptor detection per qualification identity. Failures are memoized
// too, so a qualification is never parsed twice through the same cache.
//
// A Cache is safe for concurrent use. Callers normally create one per request and drop it
// with the request.
type Cache struct {
	detector    *Detector
	defaultRoot string

	mu      sync.Mutex
	entries map[*Qualification]entry
}

// NewCache creates a cache backed by detector. defaultRoot is returned by ResultRootPath
// when a descriptor supplies no root path.
func NewCache(detector *Detector, defaultRoot string) *Cache {
	if detector == nil {
		detector = NewDetector()
	}
	return &Cache{
		detector:    detector,
		defaultRoot: defaultRoot,
		entries:     make(map[*Qualification]entry),
	}
}

// Detector returns the detector backing the cache.
func (c *Cache) Detector() *Detector {
	return c.detector
}

// Descriptor returns the descriptor of q, detecting it on first use.
func (c *Cache) Descriptor(q *Qualification) (*Descriptor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[q]; ok {
		return e.desc, e.err
	}
	desc, err := c.detector.Detect(q.Raw())
	c.entries[q] = entry{desc: desc, err: err}
	return desc, err
}

// ResultRootPath returns where result records live in the backend response for q.
func (c *Cache) ResultRootPath(q *Qualification) (string, error) {
	desc, err := c.Descriptor(q)
	if err != nil {
		return "", err
	}
	if path, ok := desc.ResultRootPath(); ok {
		return path, nil
	}
	return c.defaultRoot, nil
}

// Forget drops the memoized descriptor of q.
func (c *Cache) Forget(q *Qualification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, q)
}

// Len returns the number of memoized qualifications.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
