package cache

import (
	"sync"
	"time"
)

// Cache guarda resultados em memória por um TTL fixo
type Cache[V any] struct {
	mu       sync.RWMutex
	items    map[string]cacheItem[V]
	ttl      time.Duration
	now      func() time.Time
	stopChan chan struct{}
	stopOnce sync.Once
}

type cacheItem[V any] struct {
	value      V
	expiration time.Time
}

// Option customiza o cache
type Option func(*options)

type options struct {
	now             func() time.Time
	cleanupInterval time.Duration
}

// WithClock troca o relógio (testes)
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithCleanupInterval define o intervalo da limpeza em background. 0 desliga.
func WithCleanupInterval(d time.Duration) Option {
	return func(o *options) { o.cleanupInterval = d }
}

// New cria um cache com o TTL padrão. ttl <= 0 desliga o cache (Get nunca acerta).
func New[V any](ttl time.Duration, opts ...Option) *Cache[V] {
	o := options{now: time.Now, cleanupInterval: time.Minute}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Cache[V]{
		items:    make(map[string]cacheItem[V]),
		ttl:      ttl,
		now:      o.now,
		stopChan: make(chan struct{}),
	}

	if o.cleanupInterval > 0 && ttl > 0 {
		go c.cleanup(o.cleanupInterval)
	}

	return c
}

// Get retorna o valor se existir e não tiver expirado
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero V
	item, exists := c.items[key]
	if !exists || !c.now().Before(item.expiration) {
		return zero, false
	}
	return item.value, true
}

// Set grava com o TTL padrão
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL grava com TTL específico
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = cacheItem[V]{
		value:      value,
		expiration: c.now().Add(ttl),
	}
}

// Delete remove uma chave
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Clear remove tudo
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]cacheItem[V])
}

// Size retorna o número de itens (incluindo expirados ainda não limpos)
func (c *Cache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stop encerra a limpeza em background
func (c *Cache[V]) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
}

func (c *Cache[V]) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.RemoveExpired()
		case <-c.stopChan:
			return
		}
	}
}

// RemoveExpired apaga os itens vencidos
func (c *Cache[V]) RemoveExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, item := range c.items {
		if !now.Before(item.expiration) {
			delete(c.items, key)
		}
	}
}
