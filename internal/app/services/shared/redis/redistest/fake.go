// Package redistest provides an in-memory RedisRepository for tests.
package redistest

import (
	"context"
	"docbook-service/internal/app/contracts"
	"errors"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

var ErrInjected = errors.New("redistest: injected failure")

type entry struct {
	value     string
	expiresAt time.Time
}

// FakeRepository mirrors the JSON encoding of the real repository for Set
// and TrySetNX. Expiry is evaluated against Now.
type FakeRepository struct {
	mu      sync.Mutex
	values  map[string]entry
	counts  map[string]int
	lists   map[string][]string
	Now     func() time.Time
	FailAll bool
}

var _ contracts.RedisRepository = (*FakeRepository)(nil)

func NewFakeRepository() *FakeRepository {
	return &FakeRepository{
		values: make(map[string]entry),
		counts: make(map[string]int),
		lists:  make(map[string][]string),
		Now:    time.Now,
	}
}

func (f *FakeRepository) live(key string) (entry, bool) {
	e, ok := f.values[key]
	if !ok {
		return entry{}, false
	}
	if !e.expiresAt.IsZero() && !f.Now().Before(e.expiresAt) {
		delete(f.values, key)
		return entry{}, false
	}
	return e, true
}

func (f *FakeRepository) expiry(exp time.Duration) time.Time {
	if exp <= 0 {
		return time.Time{}
	}
	return f.Now().Add(exp)
}

func (f *FakeRepository) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailAll {
		return ErrInjected
	}
	delete(f.values, key)
	delete(f.lists, key)
	delete(f.counts, key)
	return nil
}

func (f *FakeRepository) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailAll {
		return ErrInjected
	}
	f.values[key] = entry{value: string(jsonValue), expiresAt: f.expiry(exp)}
	return nil
}

func (f *FakeRepository) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailAll {
		return "", ErrInjected
	}
	e, _ := f.live(key)
	return e.value, nil
}

func (f *FakeRepository) IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailAll {
		return 0, ErrInjected
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *FakeRepository) PushToList(ctx context.Context, key string, values ...interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailAll {
		return ErrInjected
	}
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			b, err := json.Marshal(v)
			if err != nil {
				return err
			}
			s = string(b)
		}
		f.lists[key] = append([]string{s}, f.lists[key]...)
	}
	return nil
}

func (f *FakeRepository) TrimList(ctx context.Context, key string, start, stop int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailAll {
		return ErrInjected
	}
	f.lists[key] = rangeOf(f.lists[key], start, stop)
	return nil
}

func (f *FakeRepository) GetList(ctx context.Context, key string, start, stop int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailAll {
		return nil, ErrInjected
	}
	return append([]string(nil), rangeOf(f.lists[key], start, stop)...), nil
}

func (f *FakeRepository) TrySetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error) {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailAll {
		return false, ErrInjected
	}
	if _, held := f.live(key); held {
		return false, nil
	}
	f.values[key] = entry{value: string(jsonValue), expiresAt: f.expiry(exp)}
	return true, nil
}

func (f *FakeRepository) CompareAndDelete(ctx context.Context, key string, value interface{}) (bool, error) {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailAll {
		return false, ErrInjected
	}
	e, ok := f.live(key)
	if !ok || e.value != string(jsonValue) {
		return false, nil
	}
	delete(f.values, key)
	return true, nil
}

// Has reports whether key currently holds a live value.
func (f *FakeRepository) Has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.live(key)
	return ok
}

// rangeOf follows LRANGE index rules, negative indexes count from the end.
func rangeOf(list []string, start, stop int64) []string {
	n := int64(len(list))
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if n == 0 || start > stop {
		return nil
	}
	return list[start : stop+1]
}
