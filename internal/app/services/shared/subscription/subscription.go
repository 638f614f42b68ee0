package subscription

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var ErrFeedClosed = errors.New("change feed closed")

// Loader reads the full current result set.
type Loader[T any] func(ctx context.Context) (T, error)

// Watcher opens a change feed, every receive means the result set may differ.
type Watcher func(ctx context.Context) (<-chan struct{}, error)

type Config struct {
	Name             string
	Log              *zap.Logger
	ReloadsPerSecond float64
	ReloadBurst      int
}

// Subscription delivers full snapshots, newest wins when the reader lags.
type Subscription[T any] struct {
	name      string
	log       *zap.Logger
	snapshots chan T
	done      chan struct{}
	cancel    context.CancelFunc
	limiter   *rate.Limiter
	closeOnce sync.Once

	mu  sync.Mutex
	err error
}

// Start opens the feed, loads the initial snapshot and keeps reloading on
// every change until ctx is done or Close is called. The initial snapshot is
// buffered before Start returns.
func Start[T any](ctx context.Context, cfg Config, load Loader[T], watch Watcher) (*Subscription[T], error) {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}

	limit := rate.Inf
	if cfg.ReloadsPerSecond > 0 {
		limit = rate.Limit(cfg.ReloadsPerSecond)
	}
	burst := cfg.ReloadBurst
	if burst <= 0 {
		burst = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription[T]{
		name:      cfg.Name,
		log:       log,
		snapshots: make(chan T, 1),
		done:      make(chan struct{}),
		cancel:    cancel,
		limiter:   rate.NewLimiter(limit, burst),
	}

	// the feed is opened first so nothing between the load and the watch is lost
	changes, err := watch(ctx)
	if err != nil {
		cancel()
		return nil, err
	}

	initial, err := load(ctx)
	if err != nil {
		cancel()
		return nil, err
	}
	s.snapshots <- initial

	go s.run(ctx, load, changes)
	return s, nil
}

func (s *Subscription[T]) Snapshots() <-chan T {
	return s.snapshots
}

// Done is closed once the subscription stopped delivering.
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}

// Err reports why delivery stopped, nil after Close or while running.
func (s *Subscription[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close is idempotent. Once it returns no snapshot is delivered any more.
func (s *Subscription[T]) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		<-s.done
		for range s.snapshots {
		}
		s.log.Debug("subscription closed", zap.String("subscription", s.name))
	})
}

func (s *Subscription[T]) run(ctx context.Context, load Loader[T], changes <-chan struct{}) {
	defer close(s.done)
	defer close(s.snapshots)

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				if ctx.Err() == nil {
					s.fail(ErrFeedClosed)
				}
				return
			}
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return
		}
		drain(changes)

		snapshot, err := load(ctx)
		if err != nil {
			if ctx.Err() == nil {
				s.fail(err)
			}
			return
		}
		s.deliver(snapshot)
	}
}

func (s *Subscription[T]) deliver(snapshot T) {
	select {
	case s.snapshots <- snapshot:
		return
	default:
	}
	// reader lags, replace the stale snapshot
	select {
	case <-s.snapshots:
	default:
	}
	s.snapshots <- snapshot
}

func (s *Subscription[T]) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.log.Warn("subscription stopped",
		zap.String("subscription", s.name),
		zap.Error(err),
	)
}

func drain(changes <-chan struct{}) {
	for {
		select {
		case _, ok := <-changes:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
