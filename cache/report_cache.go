package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportCache stores computed reporting views per organization. A miss is not
// an error; callers recompute and Set.
//
// Every Invalidate bumps the organization's generation. Callers read the
// generation before computing and hand it to Set, which refuses to store a
// view computed against data that has since been invalidated.
type ReportCache interface {
	Generation(ctx context.Context, orgID primitive.ObjectID) (int64, error)
	Get(ctx context.Context, orgID primitive.ObjectID, key string, dst interface{}) (bool, error)
	// Set returns ErrStaleGeneration when gen is no longer current.
	Set(ctx context.Context, orgID primitive.ObjectID, gen int64, key string, value interface{}) error
	// Invalidate drops every cached view of the organization.
	Invalidate(ctx context.Context, orgID primitive.ObjectID) error
}

var ErrStaleGeneration = errors.New("report cache: generation changed")

const (
	keyPrefix = "kpix:reports:"
	genPrefix = "kpix:reports:gen:"
)

// RedisReportCache keeps one hash per organization so invalidation is a single DEL.
type RedisReportCache struct {
	client *redis.Client
	ttl    time.Duration
	cb     *gobreaker.CircuitBreaker
}

func NewRedisReportCache(client *redis.Client, ttl time.Duration) *RedisReportCache {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "report-cache",
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		// Misses and lost generation races are normal outcomes.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil) || errors.Is(err, ErrStaleGeneration)
		},
	})

	return &RedisReportCache{client: client, ttl: ttl, cb: cb}
}

func orgKey(orgID primitive.ObjectID) string {
	return keyPrefix + orgID.Hex()
}

// genKey has no TTL. It must outlive the views it guards.
func genKey(orgID primitive.ObjectID) string {
	return genPrefix + orgID.Hex()
}

func readGeneration(ctx context.Context, cmd redis.Cmdable, orgID primitive.ObjectID) (int64, error) {
	gen, err := cmd.Get(ctx, genKey(orgID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *RedisReportCache) Generation(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	gen, err := c.cb.Execute(func() (interface{}, error) {
		return readGeneration(ctx, c.client, orgID)
	})
	if err != nil {
		return 0, fmt.Errorf("report cache generation: %w", err)
	}
	return gen.(int64), nil
}

func (c *RedisReportCache) Get(ctx context.Context, orgID primitive.ObjectID, key string, dst interface{}) (bool, error) {
	raw, err := c.cb.Execute(func() (interface{}, error) {
		return c.client.HGet(ctx, orgKey(orgID), key).Bytes()
	})
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("report cache get: %w", err)
	}

	if err := json.Unmarshal(raw.([]byte), dst); err != nil {
		return false, fmt.Errorf("report cache decode: %w", err)
	}
	return true, nil
}

// Set watches the generation key so an Invalidate landing between the check
// and the write aborts the transaction.
func (c *RedisReportCache) Set(ctx context.Context, orgID primitive.ObjectID, gen int64, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("report cache encode: %w", err)
	}

	_, err = c.cb.Execute(func() (interface{}, error) {
		err := c.client.Watch(ctx, func(tx *redis.Tx) error {
			current, err := readGeneration(ctx, tx, orgID)
			if err != nil {
				return err
			}
			if current != gen {
				return ErrStaleGeneration
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.HSet(ctx, orgKey(orgID), key, payload)
				pipe.Expire(ctx, orgKey(orgID), c.ttl)
				return nil
			})
			return err
		}, genKey(orgID))
		if errors.Is(err, redis.TxFailedErr) {
			err = ErrStaleGeneration
		}
		return nil, err
	})
	if errors.Is(err, ErrStaleGeneration) {
		return ErrStaleGeneration
	}
	if err != nil {
		return fmt.Errorf("report cache set: %w", err)
	}
	return nil
}

func (c *RedisReportCache) Invalidate(ctx context.Context, orgID primitive.ObjectID) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		pipe := c.client.TxPipeline()
		pipe.Incr(ctx, genKey(orgID))
		pipe.Del(ctx, orgKey(orgID))
		_, err := pipe.Exec(ctx)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("report cache invalidate: %w", err)
	}
	return nil
}

// NopReportCache is used when Redis is disabled. Every Get misses.
type NopReportCache struct{}

func (NopReportCache) Generation(context.Context, primitive.ObjectID) (int64, error) { return 0, nil }

func (NopReportCache) Get(context.Context, primitive.ObjectID, string, interface{}) (bool, error) {
	return false, nil
}

func (NopReportCache) Set(context.Context, primitive.ObjectID, int64, string, interface{}) error {
	return nil
}

func (NopReportCache) Invalidate(context.Context, primitive.ObjectID) error { return nil }
