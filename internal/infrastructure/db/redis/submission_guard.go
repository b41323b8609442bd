package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medlink/session-client/internal/core/domain"
)

const inflightTTL = 30 * time.Second

// SubmissionGuard admits one in-flight submission per flow across every
// shell sharing a device id. The marker expires after inflightTTL so a
// crashed holder cannot block the flow for good.
// Key format: medlink:inflight:<device_id>:<flow>
type SubmissionGuard struct {
	client   *redis.Client
	deviceID string
	ttl      time.Duration
}

// NewSubmissionGuard creates a SubmissionGuard. ttl <= 0 uses inflightTTL.
func NewSubmissionGuard(client *redis.Client, deviceID string, ttl time.Duration) *SubmissionGuard {
	if ttl <= 0 {
		ttl = inflightTTL
	}
	return &SubmissionGuard{client: client, deviceID: deviceID, ttl: ttl}
}

func (g *SubmissionGuard) Acquire(ctx context.Context, flow string) (func(), error) {
	key := g.key(flow)
	ok, err := g.client.SetNX(ctx, key, "1", g.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("inflight mark: %w", err)
	}
	if !ok {
		return nil, domain.ErrSubmissionInFlight
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// Released after the flow's own context may be done.
			_ = g.client.Del(context.Background(), key).Err()
		})
	}, nil
}

func (g *SubmissionGuard) key(flow string) string {
	return fmt.Sprintf("medlink:inflight:%s:%s", g.deviceID, flow)
}
