package session

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/cybershield/internal/account/entity"
	"github.com/shandysiswandi/cybershield/internal/pkg/clock"
	"github.com/shandysiswandi/cybershield/internal/pkg/goerror"
	"github.com/shandysiswandi/cybershield/internal/pkg/instrument"
)

const redisKeyPrefix = "cybershield:account:login_session:"

// Redis stores each session as JSON with a TTL matching its expiry.
type Redis struct {
	client *redis.Client
	clock  clock.Clocker
	ins    instrument.Instrumentation
}

func NewRedis(client *redis.Client, clk clock.Clocker, ins instrument.Instrumentation) *Redis {
	return &Redis{client: client, clock: clk, ins: ins}
}

func (r *Redis) key(id string) string {
	return redisKeyPrefix + id
}

func (r *Redis) Save(ctx context.Context, s entity.LoginSession) (err error) {
	ctx, span := startSpan(ctx, r.ins, "Redis.Save")
	defer func() { endSpan(span, err) }()

	ttl := s.ExpiresAt.Sub(r.clock.Now())
	if ttl <= 0 {
		err = r.client.Del(ctx, r.key(s.Identifier)).Err()
		return err
	}

	data, err := json.Marshal(s)
	if err != nil {
		return err
	}

	err = r.client.Set(ctx, r.key(s.Identifier), data, ttl).Err()
	return err
}

func (r *Redis) Get(ctx context.Context, id string) (_ *entity.LoginSession, err error) {
	ctx, span := startSpan(ctx, r.ins, "Redis.Get")
	defer func() { endSpan(span, err) }()

	raw, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, goerror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var s entity.LoginSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	if s.Expired(r.clock.Now()) {
		return nil, goerror.ErrNotFound
	}

	return &s, nil
}

func (r *Redis) Delete(ctx context.Context, id string) (err error) {
	ctx, span := startSpan(ctx, r.ins, "Redis.Delete")
	defer func() { endSpan(span, err) }()

	err = r.client.Del(ctx, r.key(id)).Err()
	return err
}

// Close implements io.Closer. The client is owned by the caller.
func (r *Redis) Close() error { return nil }
