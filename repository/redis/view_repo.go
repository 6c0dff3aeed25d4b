package redis

import (
	"context"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/taskproof/repository"
)

type viewRepository struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewViewRepository creates a Redis-backed view tracker. Each viewer owns one
// set of task ids that expires ttl after the last view.
func NewViewRepository(client *redislib.Client, ttl time.Duration) repository.ViewRepository {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &viewRepository{
		client: client,
		prefix: "viewed:",
		ttl:    ttl,
	}
}

func (r *viewRepository) MarkViewed(ctx context.Context, viewerID, taskID string) error {
	key := r.key(viewerID)
	pipe := r.client.TxPipeline()
	pipe.SAdd(ctx, key, taskID)
	pipe.Expire(ctx, key, r.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *viewRepository) Viewed(ctx context.Context, viewerID string, taskIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(taskIDs))
	if len(taskIDs) == 0 {
		return out, nil
	}
	members, err := r.client.SMembers(ctx, r.key(viewerID)).Result()
	if err != nil && err != redislib.Nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		seen[m] = struct{}{}
	}
	for _, id := range taskIDs {
		_, ok := seen[id]
		out[id] = ok
	}
	return out, nil
}

func (r *viewRepository) key(viewerID string) string {
	return fmt.Sprintf("%s%s", r.prefix, viewerID)
}
