package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New[string](5*time.Minute, WithClock(clock.Now), WithCleanupInterval(0))
	defer c.Stop()

	c.Set("k", "v")
	if v, ok := c.Get("k"); !ok || v != "v" {
		t.Fatalf("Get = %q, %v", v, ok)
	}

	clock.Advance(4*time.Minute + 59*time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("item expirou antes do TTL")
	}

	clock.Advance(time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("item deveria ter expirado")
	}

	c.RemoveExpired()
	if c.Size() != 0 {
		t.Errorf("Size = %d após RemoveExpired", c.Size())
	}
}

func TestCacheZeroTTLDisables(t *testing.T) {
	c := New[int](0)
	defer c.Stop()

	c.Set("k", 1)
	if _, ok := c.Get("k"); ok {
		t.Error("cache com TTL 0 não deveria guardar")
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	c := New[int](time.Minute, WithCleanupInterval(0))
	defer c.Stop()

	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("a deveria ter sido removido")
	}
	c.Clear()
	if c.Size() != 0 {
		t.Errorf("Size = %d após Clear", c.Size())
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New[int](5 * time.Minute)
	defer c.Stop()

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("key_%d_%d", g, i%10)
				c.Set(key, i)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()

	if c.Size() != 100 {
		t.Errorf("Size = %d, esperado 100", c.Size())
	}
	c.Stop()
	c.Stop()
}
