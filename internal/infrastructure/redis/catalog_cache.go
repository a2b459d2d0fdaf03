package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/ventas-pos/internal/application/catalog"
	"github.com/jhoicas/ventas-pos/internal/application/dto"
)

var _ catalog.CatalogCache = (*CatalogCache)(nil)

// CatalogCache guarda la foto del catálogo como JSON.
type CatalogCache struct {
	client *goredis.Client
}

func NewCatalogCache(client *goredis.Client) *CatalogCache {
	return &CatalogCache{client: client}
}

func (c *CatalogCache) Get(ctx context.Context, key string) (*dto.CatalogResponse, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var resp dto.CatalogResponse
	if err := json.Unmarshal(val, &resp); err != nil {
		return nil, false, err
	}
	return &resp, true, nil
}

func (c *CatalogCache) Set(ctx context.Context, key string, value *dto.CatalogResponse, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func (c *CatalogCache) Invalidate(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
