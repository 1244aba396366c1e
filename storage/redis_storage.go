package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quorumvault/custodian/config"
	"github.com/quorumvault/custodian/contexthelper"
	"github.com/quorumvault/custodian/internal/types"
)

type RedisStorage struct {
	cfg    config.Config
	client *redis.Client
}

func NewRedisStorage(cfg config.Config) (*RedisStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Username: cfg.Redis.User,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	status := client.Ping(context.Background())
	if status.Err() != nil {
		return nil, status.Err()
	}
	return &RedisStorage{
		cfg:    cfg,
		client: client,
	}, nil
}

func (r *RedisStorage) Set(ctx context.Context, key, value string, expiry time.Duration) error {
	if contexthelper.CheckCancellation(ctx) != nil {
		return ctx.Err()
	}
	return r.client.Set(ctx, key, value, expiry).Err()
}

func (r *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	if contexthelper.CheckCancellation(ctx) != nil {
		return "", ctx.Err()
	}
	return r.client.Get(ctx, key).Result()
}

func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	if contexthelper.CheckCancellation(ctx) != nil {
		return ctx.Err()
	}
	return r.client.Del(ctx, key).Err()
}

// SetWalletDetail caches a wallet's detail view.
func (r *RedisStorage) SetWalletDetail(ctx context.Context, detail types.WalletDetail, expiry time.Duration) error {
	if contexthelper.CheckCancellation(ctx) != nil {
		return ctx.Err()
	}
	buf, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("fail to serialize wallet detail to json, err: %w", err)
	}
	return r.client.Set(ctx, walletDetailKey(detail.Address.Hex()), string(buf), expiry).Err()
}

// GetWalletDetail returns a cached wallet detail view by address.
func (r *RedisStorage) GetWalletDetail(ctx context.Context, address string) (*types.WalletDetail, error) {
	if contexthelper.CheckCancellation(ctx) != nil {
		return nil, ctx.Err()
	}
	buf, err := r.client.Get(ctx, walletDetailKey(address)).Result()
	if err != nil {
		return nil, fmt.Errorf("fail to get wallet detail, err: %w", err)
	}
	var detail types.WalletDetail
	if err := json.Unmarshal([]byte(buf), &detail); err != nil {
		return nil, fmt.Errorf("fail to deserialize wallet detail, err: %w", err)
	}
	return &detail, nil
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}

func walletDetailKey(address string) string {
	return fmt.Sprintf("wallet_detail_%s", address)
}
