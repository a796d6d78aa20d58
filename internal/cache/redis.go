package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/bookshop/config"
	"github.com/Domenick1991/bookshop/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client     *redis.Client
	productTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, productTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		productTTL: productTTL,
	}
}

func (c *RedisCache) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	data, err := c.client.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var product domain.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *RedisCache) SetProduct(ctx context.Context, product *domain.Product) error {
	payload, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, productKey(product.ID), payload, c.productTTL).Err()
}

func (c *RedisCache) InvalidateProduct(ctx context.Context, id uuid.UUID) error {
	return c.client.Del(ctx, productKey(id)).Err()
}

func productKey(id uuid.UUID) string {
	return fmt.Sprintf("cache:product:%s", id)
}
