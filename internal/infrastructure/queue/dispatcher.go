package queue

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"
)

const defaultWorkers = 4

// FetchFunc loads the value for one key.
type FetchFunc[T any] func(ctx context.Context, key string) (T, error)

// Dispatcher fans lookups out to a fixed set of workers, sharding by key so
// repeated keys land on the same worker and are fetched once.
type Dispatcher[T any] struct {
	workers int
	fetch   FetchFunc[T]
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher[T any](numWorkers int, fetch FetchFunc[T], log zerolog.Logger) *Dispatcher[T] {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	return &Dispatcher[T]{workers: numWorkers, fetch: fetch, log: log}
}

// Collect fetches every distinct non-empty key and returns the values that
// loaded. Failed keys are logged and left out; the caller decides what a
// missing key means. Collect returns early with what it has when ctx ends.
func (d *Dispatcher[T]) Collect(ctx context.Context, keys []string) map[string]T {
	out := make(map[string]T, len(keys))
	if len(keys) == 0 {
		return out
	}

	shards := make([]chan string, d.workers)
	for i := range shards {
		shards[i] = make(chan string, len(keys))
	}

	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		shards[d.shardIndex(k)] <- k
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for i, ch := range shards {
		close(ch)
		wg.Add(1)
		go func(id int, ch <-chan string) {
			defer wg.Done()
			d.runWorker(ctx, id, ch, func(k string, v T) {
				mu.Lock()
				out[k] = v
				mu.Unlock()
			})
		}(i, ch)
	}
	wg.Wait()
	return out
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher[T]) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(d.workers))
}

func (d *Dispatcher[T]) runWorker(ctx context.Context, id int, ch <-chan string, store func(string, T)) {
	for key := range ch {
		if ctx.Err() != nil {
			return
		}
		v, err := d.fetch(ctx, key)
		if err != nil {
			d.log.Warn().Err(err).
				Str("key", key).
				Int("worker_id", id).
				Msg("lookup failed")
			continue
		}
		store(key, v)
	}
}
