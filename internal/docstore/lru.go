package docstore

import (
	"container/list"

	"studyassist/internal/vectordb"
)

// handleCache is a fixed-capacity LRU of open index handles. It is not safe
// for concurrent use; the Manager serializes access with its mutex.
type handleCache struct {
	capacity int
	ll       *list.List // front = most recently used
	items    map[string]*list.Element
}

type cacheEntry struct {
	docID string
	index *vectordb.Index
}

func newHandleCache(capacity int) *handleCache {
	return &handleCache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// get returns the handle for docID and marks it most recently used.
func (c *handleCache) get(docID string) (*vectordb.Index, bool) {
	el, ok := c.items[docID]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*cacheEntry).index, true
}

// put inserts or refreshes the handle for docID. If the insert pushed the
// cache past capacity, the least recently used entry is removed and returned
// so the caller can close it.
func (c *handleCache) put(docID string, ix *vectordb.Index) (evictedID string, evicted *vectordb.Index) {
	if el, ok := c.items[docID]; ok {
		el.Value.(*cacheEntry).index = ix
		c.ll.MoveToFront(el)
		return "", nil
	}

	c.items[docID] = c.ll.PushFront(&cacheEntry{docID: docID, index: ix})

	if c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		entry := oldest.Value.(*cacheEntry)
		c.ll.Remove(oldest)
		delete(c.items, entry.docID)
		return entry.docID, entry.index
	}
	return "", nil
}

// remove drops docID from the cache, returning the handle if it was present.
func (c *handleCache) remove(docID string) (*vectordb.Index, bool) {
	el, ok := c.items[docID]
	if !ok {
		return nil, false
	}
	entry := el.Value.(*cacheEntry)
	c.ll.Remove(el)
	delete(c.items, docID)
	return entry.index, true
}

func (c *handleCache) len() int {
	return c.ll.Len()
}
