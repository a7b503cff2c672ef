package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Cache is a thread-safe key-value store with optional TTL and tag-based
// invalidation. Catalog read paths cache per-merchant results under the tag
// "catalog:<id>"; a completed sync pass drops the whole tag.
type Cache struct {
	m sync.Map
	// tagIndex maps tag string to the set of keys carrying it
	tagIndex sync.Map // map[string]*sync.Map
}

var (
	once     sync.Once
	instance *Cache
)

// GetInstance returns the process-wide cache.
func GetInstance() *Cache {
	once.Do(func() {
		instance = NewCache()
	})
	return instance
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{}
}

// cacheItem holds a value and its expiration time.
type cacheItem struct {
	Value     interface{}
	ExpiresAt int64 // Unix nanoseconds; 0 means no expiration
}

// Set stores a value with an optional TTL (seconds; 0 = no expiry) and
// optional tags.
func (c *Cache) Set(key, value interface{}, ttl int64, tags []string) {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(time.Duration(ttl) * time.Second).UnixNano()
	}
	c.m.Store(key, cacheItem{Value: value, ExpiresAt: expiresAt})
	if len(tags) > 0 {
		c.TagKey(key, tags)
	}
}

// Get returns (value, true) if the key exists and has not expired.
func (c *Cache) Get(key interface{}) (interface{}, bool) {
	v, ok := c.m.Load(key)
	if !ok {
		return nil, false
	}
	item, isItem := v.(cacheItem)
	if !isItem {
		return v, true
	}
	if item.ExpiresAt > 0 && time.Now().UnixNano() > item.ExpiresAt {
		c.m.Delete(key)
		return nil, false
	}
	return item.Value, true
}

// GetOrDef returns the cached value or def when absent/expired.
func (c *Cache) GetOrDef(key, def interface{}) interface{} {
	if v, ok := c.Get(key); ok {
		return v
	}
	return def
}

// Delete removes a key.
func (c *Cache) Delete(key interface{}) {
	c.m.Delete(key)
}

func makeCompositeKey(keys ...interface{}) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%v", k)
	}
	return strings.Join(parts, "|")
}

// SetN stores a value under a composite key.
func (c *Cache) SetN(keys []interface{}, value interface{}, ttl int64, tags []string) {
	c.Set(makeCompositeKey(keys...), value, ttl, tags)
}

// GetN retrieves a value stored under a composite key.
func (c *Cache) GetN(keys ...interface{}) (interface{}, bool) {
	return c.Get(makeCompositeKey(keys...))
}

// DeleteN removes a composite key.
func (c *Cache) DeleteN(keys ...interface{}) {
	c.Delete(makeCompositeKey(keys...))
}

// TagKey assigns tags to an existing cache key.
func (c *Cache) TagKey(key interface{}, tags []string) {
	for _, tag := range tags {
		val, _ := c.tagIndex.LoadOrStore(tag, &sync.Map{})
		val.(*sync.Map).Store(key, struct{}{})
	}
}

// GetKeysByTag returns all keys carrying a tag.
func (c *Cache) GetKeysByTag(tag string) []interface{} {
	var keys []interface{}
	if val, ok := c.tagIndex.Load(tag); ok {
		val.(*sync.Map).Range(func(key, _ interface{}) bool {
			keys = append(keys, key)
			return true
		})
	}
	return keys
}

// DeleteByTag removes every entry carrying the tag and the tag itself.
func (c *Cache) DeleteByTag(tag string) {
	if val, ok := c.tagIndex.Load(tag); ok {
		km := val.(*sync.Map)
		km.Range(func(key, _ interface{}) bool {
			c.Delete(key)
			km.Delete(key)
			return true
		})
		c.tagIndex.Delete(tag)
	}
}
