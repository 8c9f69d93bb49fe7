// Package counter maintains named numeric counters that are cheap to bump on
// the hot path and periodically reconciled against ground truth.
package counter

import (
	"context"
	"log"
	"sync"

	"github.com/4seer/Twake/internal/repository"
)

// RecomputeFunc recomputes the true value of a counter from its source of
// truth (e.g. counting membership rows).
type RecomputeFunc func(ctx context.Context, key repository.CounterKey) (int64, error)

// Provider is the increase/get/revise contract over one counter store. The
// stored value is a cache: increments applied by callers may drift from the
// truth when multi-step writes fail halfway, and Revise corrects that.
type Provider struct {
	repo repository.CounterRepository

	mu        sync.RWMutex
	recompute RecomputeFunc
}

func NewProvider(repo repository.CounterRepository) *Provider {
	return &Provider{repo: repo}
}

// ReviseCounter registers the recompute function used by Revise and by Get
// when it detects an impossible (negative) cached value.
func (p *Provider) ReviseCounter(fn RecomputeFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.recompute = fn
}

// Increase bumps the counter by delta (delta may be negative).
func (p *Provider) Increase(ctx context.Context, key repository.CounterKey, delta int64) error {
	return p.repo.Add(ctx, key, delta)
}

// Get returns the cached value. A missing counter reads as zero. A negative
// cached value can only be drift, so it is revised inline when a recompute
// function is registered.
func (p *Provider) Get(ctx context.Context, key repository.CounterKey) (int64, error) {
	value, found, err := p.repo.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	if value < 0 {
		if revised, err := p.Revise(ctx, key); err == nil {
			return revised, nil
		}
		log.Printf("[Counter] Failed to revise negative counter %s/%s, returning 0", key.ID, key.CounterType)
		return 0, nil
	}
	return value, nil
}

// Revise recomputes the counter from ground truth and stores the result.
func (p *Provider) Revise(ctx context.Context, key repository.CounterKey) (int64, error) {
	p.mu.RLock()
	fn := p.recompute
	p.mu.RUnlock()
	if fn == nil {
		value, _, err := p.repo.Get(ctx, key)
		return value, err
	}

	value, err := fn(ctx, key)
	if err != nil {
		return 0, err
	}
	if err := p.repo.Set(ctx, key, value); err != nil {
		return 0, err
	}
	return value, nil
}
