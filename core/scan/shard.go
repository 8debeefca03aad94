package scan

import (
	"context"
	"encoding/binary"

	"github.com/zeebo/blake3"

	"github.com/swaptacular/swptlib/core/errors"
)

// ShardFilter wraps next so that, of shardCount scanner instances
// running the same filter against the same table, exactly one instance
// (the one whose shardIndex matches the hash of the row's key) handles
// each row. The key function must be deterministic and identical
// across instances.
//
// This only partitions the work; starting the instances and keeping
// shardCount consistent across them remains the caller's concern.
func ShardFilter(shardCount, shardIndex int, key func(Row) []byte, next ProcessFunc) (ProcessFunc, error) {
	if shardCount < 1 {
		return nil, errors.NewValidation("shardCount", "must be at least 1")
	}
	if shardIndex < 0 || shardIndex >= shardCount {
		return nil, errors.NewValidation("shardIndex", "must be in [0, shardCount)")
	}
	if key == nil {
		return nil, errors.NewValidation("key", "must not be nil")
	}
	if next == nil {
		return nil, errors.NewValidation("next", "must not be nil")
	}
	if shardCount == 1 {
		return next, nil
	}
	return func(ctx context.Context, rows []Row) error {
		filtered := make([]Row, 0, len(rows))
		for _, row := range rows {
			if rowShard(key(row), shardCount) == shardIndex {
				filtered = append(filtered, row)
			}
		}
		return next(ctx, filtered)
	}, nil
}

func rowShard(key []byte, shardCount int) int {
	sum := blake3.Sum256(key)
	return int(binary.BigEndian.Uint64(sum[:8]) % uint64(shardCount))
}
