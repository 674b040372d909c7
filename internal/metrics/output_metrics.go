package metrics

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
)

// Kinds of measured text in an artifact.
const (
	KindPrompt   = "prompt"
	KindFile     = "file"
	KindArtifact = "artifact"
)

// Key identifies one measured piece of text.
type Key struct {
	Kind string
	Name string
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s", k.Kind, k.Name)
}

// Item holds the measurements of one key.
type Item struct {
	Bytes  int `json:"bytes"`
	Tokens int `json:"tokens"`
	Lines  int `json:"lines"`
}

func (m *Item) Add(bytes, tokens, lines int) {
	m.Bytes += bytes
	m.Tokens += tokens
	m.Lines += lines
}

type job struct {
	key  Key
	text string
}

// Collector measures texts on a pool of workers. Tokenizing is the slow part
// of assembling an artifact, so texts are queued with Add and the results
// are read after Wait.
type Collector struct {
	mu    sync.Mutex
	wg    sync.WaitGroup
	jobs  chan job
	items map[Key]Item
	ctr   Counter
}

// NewCollector starts workers goroutines measuring with counter.
func NewCollector(counter Counter, workers int) *Collector {
	workers = max(workers, 1)
	c := &Collector{
		jobs:  make(chan job, workers*2),
		items: make(map[Key]Item),
		ctr:   counter,
	}
	c.wg.Add(workers)
	for range workers {
		go c.worker()
	}
	return c
}

// FromItems builds a finished collector holding fixed measurements.
func FromItems(items map[Key]Item) *Collector {
	c := &Collector{items: items}
	if c.items == nil {
		c.items = make(map[Key]Item)
	}
	return c
}

func (c *Collector) worker() {
	defer c.wg.Done()
	for j := range c.jobs {
		bytes, tokens, lines := c.ctr.Count(j.text)
		c.mu.Lock()
		item := c.items[j.key]
		item.Add(bytes, tokens, lines)
		c.items[j.key] = item
		c.mu.Unlock()
	}
}

// Add queues text for measurement under key. It must not be called after
// Wait.
func (c *Collector) Add(kind, name, text string) {
	c.jobs <- job{key: Key{Kind: kind, Name: name}, text: text}
}

// Wait stops accepting work and blocks until every queued text is measured.
// It may be called more than once.
func (c *Collector) Wait() {
	c.mu.Lock()
	jobs := c.jobs
	c.jobs = nil
	c.mu.Unlock()
	if jobs != nil {
		close(jobs)
	}
	c.wg.Wait()
}

// Get returns the measurements of one key.
func (c *Collector) Get(kind, name string) (Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[Key{Kind: kind, Name: name}]
	return item, ok
}

// SumBy totals every item of a kind.
func (c *Collector) SumBy(kind string) Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	var sum Item
	for k, v := range c.items {
		if k.Kind == kind {
			sum.Add(v.Bytes, v.Tokens, v.Lines)
		}
	}
	return sum
}

// Entry is one key with its measurements.
type Entry struct {
	Key
	Item
}

// Entries returns all measurements ordered by kind, then name.
func (c *Collector) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, 0, len(c.items))
	for k, v := range c.items {
		out = append(out, Entry{Key: k, Item: v})
	}
	slices.SortFunc(out, func(a, b Entry) int {
		return cmp.Or(cmp.Compare(a.Kind, b.Kind), cmp.Compare(a.Name, b.Name))
	})
	return out
}

// MarshalJSON encodes the measurements keyed by "kind:name".
func (c *Collector) MarshalJSON() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]Item, len(c.items))
	for k, v := range c.items {
		out[k.String()] = v
	}
	return json.Marshal(out)
}
