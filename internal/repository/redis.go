package repository

import (
	"context"
	"errors"

	"github.com/fxamacker/cbor/v2"
	"github.com/redis/go-redis/v9"

	"github.com/erd-studio/engine/internal/diagram"
	appErr "github.com/erd-studio/engine/pkg/errors"
)

const (
	redisKeyPrefix = "erd:project:"
	redisIndexKey  = "erd:projects"

	// optimistic transaction attempts for UpdateIfNewer
	redisWatchRetries = 10
)

var redisEnc = func() cbor.EncMode {
	em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano, Sort: cbor.SortCanonical}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// RedisGateway stores each project as one CBOR value and keeps a sorted set
// of ids scored by updatedAt for the dashboard listing.
type RedisGateway struct {
	rdb *redis.Client
}

var _ Gateway = (*RedisGateway)(nil)
var _ Checker = (*RedisGateway)(nil)

func NewRedisGateway(rdb *redis.Client) *RedisGateway {
	return &RedisGateway{rdb: rdb}
}

func redisKey(id string) string { return redisKeyPrefix + id }

func (g *RedisGateway) GetAll(ctx context.Context) ([]*diagram.Project, error) {
	ids, err := g.rdb.ZRevRange(ctx, redisIndexKey, 0, -1).Result()
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeUnavailable, "list projects failed")
	}
	if len(ids) == 0 {
		return []*diagram.Project{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = redisKey(id)
	}
	vals, err := g.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeUnavailable, "read projects failed")
	}
	out := make([]*diagram.Project, 0, len(vals))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			// index entry without a value; deleted concurrently
			continue
		}
		p, err := decodeProject([]byte(s))
		if err != nil {
			return nil, appErr.Wrap(err, appErr.CodeInternal, "decode project failed").WithMeta("id", ids[i])
		}
		out = append(out, p)
	}
	return out, nil
}

func (g *RedisGateway) Get(ctx context.Context, id string) (*diagram.Project, error) {
	b, err := g.rdb.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, appErr.NotFound("project", id)
	}
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeUnavailable, "read project failed").WithMeta("id", id)
	}
	p, err := decodeProject(b)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "decode project failed").WithMeta("id", id)
	}
	return p, nil
}

func (g *RedisGateway) Put(ctx context.Context, p *diagram.Project) error {
	b, err := redisEnc.Marshal(p)
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInvalid, "encode project failed").WithMeta("id", p.ID)
	}
	_, err = g.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisKey(p.ID), b, 0)
		pipe.ZAdd(ctx, redisIndexKey, redis.Z{Score: float64(p.UpdatedAt.UnixMilli()), Member: p.ID})
		return nil
	})
	if err != nil {
		return appErr.Wrap(err, appErr.CodeUnavailable, "write project failed").WithMeta("id", p.ID)
	}
	return nil
}

// UpdateIfNewer compares and writes under WATCH on the project key; a
// concurrent writer aborts the transaction and the compare is retried.
func (g *RedisGateway) UpdateIfNewer(ctx context.Context, p *diagram.Project) (bool, error) {
	b, err := redisEnc.Marshal(p)
	if err != nil {
		return false, appErr.Wrap(err, appErr.CodeInvalid, "encode project failed").WithMeta("id", p.ID)
	}
	key := redisKey(p.ID)

	var applied bool
	txf := func(tx *redis.Tx) error {
		applied = false
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return appErr.NotFound("project", p.ID)
		}
		if err != nil {
			return err
		}
		stored, err := decodeProject(raw)
		if err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "decode project failed").WithMeta("id", p.ID)
		}
		if stored.UpdatedAt.After(p.UpdatedAt) {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, 0)
			pipe.ZAdd(ctx, redisIndexKey, redis.Z{Score: float64(p.UpdatedAt.UnixMilli()), Member: p.ID})
			return nil
		})
		if err == nil {
			applied = true
		}
		return err
	}

	for i := 0; i < redisWatchRetries; i++ {
		err = g.rdb.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	switch {
	case err == nil:
		return applied, nil
	case appErr.CodeOf(err) != appErr.CodeUnknown:
		return false, err
	default:
		return false, appErr.Wrap(err, appErr.CodeUnavailable, "write project failed").WithMeta("id", p.ID)
	}
}

func (g *RedisGateway) Delete(ctx context.Context, id string) error {
	_, err := g.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, redisKey(id))
		pipe.ZRem(ctx, redisIndexKey, id)
		return nil
	})
	if err != nil {
		return appErr.Wrap(err, appErr.CodeUnavailable, "delete project failed").WithMeta("id", id)
	}
	return nil
}

func (g *RedisGateway) Check(ctx context.Context) error {
	if err := g.rdb.Ping(ctx).Err(); err != nil {
		return appErr.Wrap(err, appErr.CodeUnavailable, "redis unreachable")
	}
	return nil
}

func decodeProject(b []byte) (*diagram.Project, error) {
	var p diagram.Project
	if err := cbor.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	if p.Nodes == nil {
		p.Nodes = []diagram.Node{}
	}
	if p.Edges == nil {
		p.Edges = []diagram.Edge{}
	}
	return &p, nil
}
