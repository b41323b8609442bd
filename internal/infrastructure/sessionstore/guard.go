package sessionstore

import (
	"context"
	"sync"

	"github.com/medlink/session-client/internal/core/domain"
)

// LocalGuard admits one in-flight submission per flow within this process.
type LocalGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewLocalGuard() *LocalGuard {
	return &LocalGuard{inFlight: make(map[string]struct{})}
}

func (g *LocalGuard) Acquire(_ context.Context, flow string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inFlight[flow]; busy {
		return nil, domain.ErrSubmissionInFlight
	}
	g.inFlight[flow] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inFlight, flow)
			g.mu.Unlock()
		})
	}, nil
}
