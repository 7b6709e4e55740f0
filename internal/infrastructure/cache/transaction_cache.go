package cache

import (
	"sync"
	"time"

	"github.com/damon-houk/transaction-manager/internal/domain/entity"
)

// CacheEntry represents a cached transaction with its insertion time
type CacheEntry struct {
	Transaction entity.Transaction
	Timestamp   time.Time
}

// TransactionCache provides a thread-safe in-memory cache for transactions.
// Stored transactions never change, so entries only leave by expiring.
type TransactionCache struct {
	cache      map[int]CacheEntry
	expiration time.Duration
	mutex      sync.Mutex
	now        func() time.Time
}

// NewTransactionCache creates a new transaction cache
func NewTransactionCache(expiration time.Duration) *TransactionCache {
	return &TransactionCache{
		cache:      make(map[int]CacheEntry),
		expiration: expiration,
		now:        time.Now,
	}
}

// Get retrieves a transaction from the cache if available and not expired.
// An expired entry is evicted on the way out.
func (c *TransactionCache) Get(id int) (entity.Transaction, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.cache[id]
	if !exists {
		return entity.Transaction{}, false
	}

	if c.expired(entry, c.now()) {
		delete(c.cache, id)
		return entity.Transaction{}, false
	}

	return entry.Transaction, true
}

// Put stores a transaction in the cache and sweeps out expired entries
func (c *TransactionCache) Put(tx entity.Transaction) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	c.removeExpired(now)

	c.cache[tx.ID()] = CacheEntry{
		Transaction: tx,
		Timestamp:   now,
	}
}

func (c *TransactionCache) expired(entry CacheEntry, now time.Time) bool {
	return now.Sub(entry.Timestamp) > c.expiration
}

// removeExpired deletes expired entries; callers hold the write lock
func (c *TransactionCache) removeExpired(now time.Time) {
	for key, entry := range c.cache {
		if c.expired(entry, now) {
			delete(c.cache, key)
		}
	}
}
