package stepwise

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/YuminosukeSato/stepwise/core/dataset"
	"github.com/cespare/xxhash/v2"
)

// DefaultCacheSize is the capacity used by NewCache when size <= 0.
const DefaultCacheSize = 64

// Cache memoizes fitted models by input fingerprint. Stored and returned
// models are deep copies, so callers may modify what they get back.
// When full, the oldest entry is evicted.
type Cache struct {
	mu      sync.Mutex
	size    int
	entries map[uint64]*FittedModel
	order   []uint64
	hits    uint64
	misses  uint64
}

// NewCache creates a cache holding at most size models.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Cache{size: size, entries: make(map[uint64]*FittedModel, size)}
}

// Get returns a copy of the model stored under key.
func (c *Cache) Get(key uint64) (*FittedModel, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	return m.Clone(), true
}

// Put stores a copy of m under key.
func (c *Cache) Put(key uint64, m *FittedModel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		if len(c.order) >= c.size {
			delete(c.entries, c.order[0])
			c.order = c.order[1:]
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = m.Clone()
}

// Len returns the number of stored models.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns hit and miss counts.
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Fingerprint hashes every input that determines a search result: column
// names and values in order, response, forced terms, maxTerms, degree and the
// declared interaction terms with their constituents.
func Fingerprint(ds *dataset.Dataset, response string, forceIn []string, maxTerms, degree int, interactions ...Term) uint64 {
	h := xxhash.New()
	var buf [8]byte

	writeString := func(s string) {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
		_, _ = h.Write(buf[:])
		_, _ = h.WriteString(s)
	}
	writeUint := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = h.Write(buf[:])
	}

	writeUint(uint64(ds.NRows()))
	for _, name := range ds.Names() {
		writeString(name)
		values, _ := ds.Column(name)
		for _, v := range values {
			writeUint(math.Float64bits(v))
		}
	}
	writeString(response)
	writeUint(uint64(len(forceIn)))
	for _, name := range forceIn {
		writeString(name)
	}
	writeUint(uint64(maxTerms))
	writeUint(uint64(degree))
	writeUint(uint64(len(interactions)))
	for _, t := range interactions {
		writeString(t.Name)
		writeUint(uint64(len(t.Constituents)))
		for _, c := range t.Constituents {
			writeString(c)
		}
	}
	return h.Sum64()
}
