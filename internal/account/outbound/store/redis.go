package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/cybershield/internal/account/entity"
	"github.com/shandysiswandi/cybershield/internal/pkg/goerror"
	"github.com/shandysiswandi/cybershield/internal/pkg/instrument"
)

const (
	redisKeyPrefix = "cybershield:account:credential:"

	// DefaultRedisMaxRetries bounds optimistic transaction retries per Update.
	DefaultRedisMaxRetries uint64 = 10
)

// Redis stores each credential as a JSON string under its own key. Update
// runs WATCH/MULTI/EXEC and retries when another writer touched the key.
type Redis struct {
	client     *redis.Client
	ins        instrument.Instrumentation
	maxRetries uint64
}

func NewRedis(client *redis.Client, ins instrument.Instrumentation) *Redis {
	return &Redis{client: client, ins: ins, maxRetries: DefaultRedisMaxRetries}
}

func (r *Redis) key(id string) string {
	return redisKeyPrefix + id
}

func (r *Redis) Get(ctx context.Context, id string) (_ *entity.Credential, err error) {
	ctx, span := startSpan(ctx, r.ins, "Redis.Get")
	defer func() { endSpan(span, err) }()

	raw, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, goerror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return decodeRecord(raw)
}

func (r *Redis) Create(ctx context.Context, c entity.Credential) (err error) {
	ctx, span := startSpan(ctx, r.ins, "Redis.Create")
	defer func() { endSpan(span, err) }()

	data, err := json.Marshal(toRecord(&c))
	if err != nil {
		return err
	}

	ok, err := r.client.SetNX(ctx, r.key(c.Identifier), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return goerror.ErrConflict
	}

	return nil
}

func (r *Redis) Update(ctx context.Context, id string, fn func(c *entity.Credential) error) (err error) {
	ctx, span := startSpan(ctx, r.ins, "Redis.Update")
	defer func() { endSpan(span, err) }()

	key := r.key(id)
	b := retry.WithMaxRetries(r.maxRetries, retry.WithJitterPercent(20, retry.NewExponential(5*time.Millisecond)))

	err = retry.Do(ctx, b, func(ctx context.Context) error {
		txErr := r.client.Watch(ctx, func(tx *redis.Tx) error {
			raw, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return goerror.ErrNotFound
			}
			if err != nil {
				return err
			}

			c, err := decodeRecord(raw)
			if err != nil {
				return err
			}

			if err := fn(c); err != nil {
				return &mutateError{err: err}
			}
			c.Identifier = id

			data, err := json.Marshal(toRecord(c))
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, 0)
				return nil
			})
			return err
		}, key)

		if errors.Is(txErr, redis.TxFailedErr) {
			return retry.RetryableError(txErr)
		}
		return txErr
	})

	return unwrapMutate(err)
}

// Close implements io.Closer. The client is owned by the caller.
func (r *Redis) Close() error { return nil }

func decodeRecord(raw []byte) (*entity.Credential, error) {
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return rec.credential(), nil
}
