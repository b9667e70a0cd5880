// Package dedup keeps the processed-creator ledger in Redis so several
// workers sharing a dataset skip creators another worker completed.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "cloutcheck:processed"
	DefaultTTL = 7 * 24 * time.Hour
)

// Ledger records processed creators in Redis.
type Ledger struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewLedger connects to Redis at address. A non-positive ttl selects
// DefaultTTL.
func NewLedger(address, password string, db int, ttl time.Duration) *Ledger {
	rdb := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewLedgerWithClient(rdb, ttl)
}

// NewLedgerWithClient wraps an existing client.
func NewLedgerWithClient(rdb *redis.Client, ttl time.Duration) *Ledger {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Ledger{rdb: rdb, ttl: ttl}
}

func key(handle string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, handle)
}

// Ping checks the connection.
func (l *Ledger) Ping(ctx context.Context) error {
	if err := l.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	return nil
}

// Processed reports whether handle is in the ledger.
func (l *Ledger) Processed(ctx context.Context, handle string) (bool, error) {
	n, err := l.rdb.Exists(ctx, key(handle)).Result()
	if err != nil {
		return false, fmt.Errorf("checking ledger for %s: %w", handle, err)
	}
	return n > 0, nil
}

// MarkProcessed adds handle with the id of the run that completed it.
func (l *Ledger) MarkProcessed(ctx context.Context, handle, runID string) error {
	if err := l.rdb.Set(ctx, key(handle), runID, l.ttl).Err(); err != nil {
		return fmt.Errorf("marking %s processed: %w", handle, err)
	}
	return nil
}

// Forget removes handle from the ledger.
func (l *Ledger) Forget(ctx context.Context, handle string) error {
	if err := l.rdb.Del(ctx, key(handle)).Err(); err != nil {
		return fmt.Errorf("removing %s from ledger: %w", handle, err)
	}
	return nil
}

// Close closes the client.
func (l *Ledger) Close() error {
	return l.rdb.Close()
}
