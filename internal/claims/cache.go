package claims

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	snapshotCacheKey = "claimdesk:claims:snapshot"
	snapshotCacheTTL = 24 * time.Hour
)

// SnapshotCache keeps the last-known-good collection in redis so a restart
// with an unreachable primary can serve recent state instead of an empty or
// stale file. It sits between the primary store and the file fallback in
// the startup order.
type SnapshotCache struct {
	rdb *redis.Client
}

// NewSnapshotCache builds a cache over the given redis client.
func NewSnapshotCache(rdb *redis.Client) *SnapshotCache {
	if rdb == nil {
		panic("claims: redis client cannot be nil")
	}
	return &SnapshotCache{rdb: rdb}
}

// Save stores the collection snapshot.
func (c *SnapshotCache) Save(ctx context.Context, claims []Claim) error {
	recs := make([]claimRecord, 0, len(claims))
	for _, cl := range claims {
		recs = append(recs, toRecord(cl))
	}
	data, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("claims: failed to encode snapshot: %w", err)
	}
	if err := c.rdb.Set(ctx, snapshotCacheKey, data, snapshotCacheTTL).Err(); err != nil {
		return fmt.Errorf("claims: failed to cache snapshot: %w", err)
	}
	return nil
}

// Load returns the cached snapshot. A missing key is an error so callers
// fall through to the next fallback.
func (c *SnapshotCache) Load(ctx context.Context) ([]Claim, error) {
	data, err := c.rdb.Get(ctx, snapshotCacheKey).Bytes()
	if err != nil {
		return nil, fmt.Errorf("claims: failed to load cached snapshot: %w", err)
	}
	var recs []claimRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("claims: failed to decode cached snapshot: %w", err)
	}
	out := make([]Claim, 0, len(recs))
	for _, rec := range recs {
		cl, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, cl)
	}
	return out, nil
}
