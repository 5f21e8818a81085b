package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bandhan/matrimony-api/internal/core/domain"
	"github.com/bandhan/matrimony-api/internal/core/ports"
)

const defaultPrivilegeTTL = 5 * time.Minute

// setIfGeneration writes the snapshot only while the generation counter
// still holds the value the caller read. A missing counter is generation 0.
//
// KEYS[1] snapshot key, KEYS[2] generation key
// ARGV[1] expected generation, ARGV[2] payload, ARGV[3] ttl in ms
var setIfGeneration = redis.NewScript(`
local gen = redis.call('GET', KEYS[2]) or '0'
if gen ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// PrivilegeCache stores (role, premium) snapshots as JSON next to a per
// account invalidation counter.
// Key format: privileges:<email>, privileges-gen:<email>
type PrivilegeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPrivilegeCache wraps client. A non-positive ttl selects the default.
func NewPrivilegeCache(client *redis.Client, ttl time.Duration) *PrivilegeCache {
	if ttl <= 0 {
		ttl = defaultPrivilegeTTL
	}
	return &PrivilegeCache{client: client, ttl: ttl}
}

func (c *PrivilegeCache) Get(ctx context.Context, email string) (ports.PrivilegeSnapshot, error) {
	vals, err := c.client.MGet(ctx, privilegeKey(email), generationKey(email)).Result()
	if err != nil {
		return ports.PrivilegeSnapshot{}, fmt.Errorf("privilege cache get: %w", err)
	}

	gen, err := parseGeneration(vals[1])
	if err != nil {
		return ports.PrivilegeSnapshot{}, fmt.Errorf("privilege cache generation: %w", err)
	}
	snap := ports.PrivilegeSnapshot{Generation: gen}

	raw, ok := vals[0].(string)
	if !ok {
		return snap, nil
	}
	if err := json.Unmarshal([]byte(raw), &snap.Privileges); err != nil {
		return ports.PrivilegeSnapshot{}, fmt.Errorf("privilege cache decode: %w", err)
	}
	snap.Hit = true
	return snap, nil
}

func (c *PrivilegeCache) Set(ctx context.Context, email string, p domain.Privileges, generation int64) (bool, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return false, fmt.Errorf("privilege cache encode: %w", err)
	}
	n, err := setIfGeneration.Run(ctx, c.client,
		[]string{privilegeKey(email), generationKey(email)},
		strconv.FormatInt(generation, 10), raw, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("privilege cache set: %w", err)
	}
	return n == 1, nil
}

// Invalidate bumps the generation and drops the snapshot in one transaction,
// so any resolver holding the previous generation can no longer write back.
func (c *PrivilegeCache) Invalidate(ctx context.Context, email string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(email))
		pipe.Del(ctx, privilegeKey(email))
		return nil
	})
	return err
}

func parseGeneration(v interface{}) (int64, error) {
	switch g := v.(type) {
	case nil:
		return 0, nil
	case string:
		return strconv.ParseInt(g, 10, 64)
	default:
		return 0, errors.New("unexpected generation value")
	}
}

func privilegeKey(email string) string {
	return "privileges:" + email
}

func generationKey(email string) string {
	return "privileges-gen:" + email
}
