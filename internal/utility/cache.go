package utility

import (
	"sync"
	"time"
)

// cacheItem là một entry trong cache kèm thời điểm hết hạn
type cacheItem struct {
	value     interface{}
	expiresAt time.Time
}

// Cache là cache in-memory có TTL theo từng entry, dùng cho token Firebase
// đã verify trong auth middleware để không phải gọi Firebase mỗi request.
type Cache struct {
	items    map[string]cacheItem
	mu       sync.RWMutex
	ttl      time.Duration
	cleanup  time.Duration
	stopChan chan struct{}
}

// NewCache tạo một Cache mới và chạy vòng dọn dẹp nền
func NewCache(ttl, cleanup time.Duration) *Cache {
	cache := &Cache{
		items:    make(map[string]cacheItem),
		ttl:      ttl,
		cleanup:  cleanup,
		stopChan: make(chan struct{}),
	}
	go cache.cleanupLoop()
	return cache
}

// Set lưu giá trị vào cache với TTL mặc định
func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = cacheItem{value: value, expiresAt: time.Now().Add(c.ttl)}
}

// Get lấy giá trị từ cache, entry hết hạn coi như không tồn tại
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, exists := c.items[key]
	if !exists || time.Now().After(item.expiresAt) {
		return nil, false
	}
	return item.value, true
}

// Delete xóa một entry khỏi cache (ví dụ khi user bị block)
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// DeleteFunc xóa mọi entry có giá trị thỏa điều kiện match.
// Dùng khi không biết trước key, ví dụ xóa mọi token đã cache của một user.
func (c *Cache) DeleteFunc(match func(key string, value interface{}) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, item := range c.items {
		if match(k, item.value) {
			delete(c.items, k)
		}
	}
}

// cleanupLoop định kỳ loại bỏ các entry đã hết hạn
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(c.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for k, item := range c.items {
				if now.After(item.expiresAt) {
					delete(c.items, k)
				}
			}
			c.mu.Unlock()
		case <-c.stopChan:
			return
		}
	}
}
