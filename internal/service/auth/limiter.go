package auth

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sygemat/provider-portal/internal/config"
	"github.com/sygemat/provider-portal/internal/domain/models"
)

// Clock abstracts time so limiter behaviour is testable without sleeping.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// AttemptStore persists lockout state so a restart (or, for the browser, a
// reload) cannot bypass an active lockout.
type AttemptStore interface {
	Get(ctx context.Context, key string) (*models.LockoutState, error)
	Put(ctx context.Context, state *models.LockoutState) error
	Delete(ctx context.Context, key string) error
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// LimiterStatus is the limiter's verdict for one key.
type LimiterStatus struct {
	Attempts          int
	Blocked           bool
	RetryAfterSeconds int
}

// Limiter counts consecutive failed logins per client key and enforces a
// single-threshold, fixed-duration lockout. Transport failures must not be
// recorded; only credential rejections advance the counter.
type Limiter struct {
	store  AttemptStore
	clock  Clock
	cfg    config.LimiterConfig
	logger *zap.Logger
}

// NewLimiter wires a limiter over the given store.
func NewLimiter(store AttemptStore, clock Clock, cfg config.LimiterConfig, logger *zap.Logger) *Limiter {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Limiter{store: store, clock: clock, cfg: cfg, logger: logger}
}

// Check reports the current state for a key, clearing expired lockouts and
// stale counters as a side effect.
func (l *Limiter) Check(ctx context.Context, key string) (*LimiterStatus, error) {
	state, err := l.freshState(ctx, key)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return &LimiterStatus{}, nil
	}

	now := l.clock.Now()
	if state.Locked(now) {
		return &LimiterStatus{
			Attempts:          state.Attempts,
			Blocked:           true,
			RetryAfterSeconds: remainingSeconds(state.LockExpiry, now),
		}, nil
	}

	return &LimiterStatus{Attempts: state.Attempts}, nil
}

// RecordFailure advances the counter for a rejected credential attempt and
// locks the key once the threshold is hit.
func (l *Limiter) RecordFailure(ctx context.Context, key string) (*LimiterStatus, error) {
	state, err := l.freshState(ctx, key)
	if err != nil {
		return nil, err
	}

	now := l.clock.Now()
	if state == nil {
		state = &models.LockoutState{Key: key}
	}
	if state.Locked(now) {
		return &LimiterStatus{
			Attempts:          state.Attempts,
			Blocked:           true,
			RetryAfterSeconds: remainingSeconds(state.LockExpiry, now),
		}, nil
	}

	state.Attempts++
	state.LastAttempt = now

	status := &LimiterStatus{Attempts: state.Attempts}
	if state.Attempts >= l.cfg.MaxAttempts {
		state.LockExpiry = now.Add(l.cfg.LockDuration)
		status.Blocked = true
		status.RetryAfterSeconds = int(l.cfg.LockDuration / time.Second)
		l.logger.Warn("login key locked out",
			zap.String("key", key),
			zap.Int("attempts", state.Attempts))
	}

	if err := l.store.Put(ctx, state); err != nil {
		return nil, err
	}
	return status, nil
}

// Reset clears the counter after a successful login.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.store.Delete(ctx, key)
}

// PurgeExpired removes records whose lockout and reset windows have both
// elapsed. Run periodically by the scheduler.
func (l *Limiter) PurgeExpired(ctx context.Context) (int64, error) {
	return l.store.PurgeExpired(ctx, l.clock.Now().Add(-l.cfg.ResetAfter))
}

// freshState loads the record for a key and discards it when the lockout has
// expired or the counter is older than the reset window.
func (l *Limiter) freshState(ctx context.Context, key string) (*models.LockoutState, error) {
	state, err := l.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, nil
	}

	now := l.clock.Now()
	expiredLock := !state.LockExpiry.IsZero() && !state.LockExpiry.After(now)
	staleCounter := state.LockExpiry.IsZero() && now.Sub(state.LastAttempt) >= l.cfg.ResetAfter

	if expiredLock || staleCounter {
		if err := l.store.Delete(ctx, key); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return state, nil
}

func remainingSeconds(expiry, now time.Time) int {
	remaining := expiry.Sub(now)
	secs := int((remaining + time.Second - 1) / time.Second)
	if secs < 0 {
		return 0
	}
	return secs
}

// MemoryStore is the in-memory AttemptStore used for tests and deployments
// without MongoDB.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]models.LockoutState
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]models.LockoutState)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (*models.LockoutState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state, ok := m.states[key]; ok {
		copied := state
		return &copied, nil
	}
	return nil, nil
}

func (m *MemoryStore) Put(_ context.Context, state *models.LockoutState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state.Key] = *state
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, key)
	return nil
}

func (m *MemoryStore) PurgeExpired(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var purged int64
	for key, state := range m.states {
		if state.LastAttempt.Before(before) && !state.LockExpiry.After(before) {
			delete(m.states, key)
			purged++
		}
	}
	return purged, nil
}
