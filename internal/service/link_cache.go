// LinkCache — LRU-кэш статуса привязки Google Drive с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LinkCache кэширует факт привязки Google Drive по ID пользователя.
// Экземпляр процесса держит собственный in-memory кэш.
type LinkCache struct {
	cache *expirable.LRU[string, bool]
}

// NewLinkCache создаёт кэш с максимальным размером maxSize и временем жизни ttl.
func NewLinkCache(maxSize int, ttl time.Duration) *LinkCache {
	return &LinkCache{cache: expirable.NewLRU[string, bool](maxSize, nil, ttl)}
}

// Get возвращает (linked, true) при попадании или (false, false) при промахе.
func (c *LinkCache) Get(userID string) (linked bool, ok bool) {
	linked, ok = c.cache.Get(userID)
	if ok {
		linkCacheHitsTotal.Inc()
		return linked, true
	}
	linkCacheMissesTotal.Inc()
	return false, false
}

// Set запоминает статус привязки.
func (c *LinkCache) Set(userID string, linked bool) {
	c.cache.Add(userID, linked)
}

// Invalidate удаляет запись (после привязки или отвязки).
func (c *LinkCache) Invalidate(userID string) {
	c.cache.Remove(userID)
}
