package oracle

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKey = "oracle:price:latest"

type cachedOracle struct {
	Authority string    `json:"authority"`
	Price     uint64    `json:"price"`
	Status    uint8     `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Cache keeps the latest oracle snapshot in Redis so read-heavy price
// endpoints avoid hitting Postgres. Lookups are best effort; a cache error
// is treated as a miss.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache builds a price cache with the given TTL.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Get returns the cached snapshot if present.
func (c *Cache) Get(ctx context.Context) (Oracle, bool) {
	if c == nil || c.client == nil {
		return Oracle{}, false
	}
	raw, err := c.client.Get(ctx, cacheKey).Bytes()
	if err != nil {
		return Oracle{}, false
	}
	var stored cachedOracle
	if err := json.Unmarshal(raw, &stored); err != nil {
		return Oracle{}, false
	}
	return Oracle{
		Authority: stored.Authority,
		Price:     stored.Price,
		Status:    Status(stored.Status),
		UpdatedAt: stored.UpdatedAt,
	}, true
}

// Set overwrites the cached snapshot, best effort.
func (c *Cache) Set(ctx context.Context, o Oracle) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(cachedOracle{
		Authority: o.Authority,
		Price:     o.Price,
		Status:    uint8(o.Status),
		UpdatedAt: o.UpdatedAt,
	})
	if err != nil {
		return
	}
	c.client.Set(ctx, cacheKey, raw, c.ttl)
}
