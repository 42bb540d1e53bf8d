package articles

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sygemat/provider-portal/internal/config"
	"github.com/sygemat/provider-portal/internal/domain/models"
)

// VendorClient is the slice of the Sygemat client this service needs.
type VendorClient interface {
	Articles(ctx context.Context, providerID int) (*models.ArticlesResult, error)
}

// FetchOptions control one catalog fetch.
type FetchOptions struct {
	// Refresh evicts the provider's cache entry before fetching and supersedes
	// any fetch already in flight for it.
	Refresh bool
	// Retry enables the bounded fixed-delay retry loop on retryable failures.
	Retry bool
}

// Service owns the article fetch lifecycle: per-provider cache, in-flight
// suppression, stale-response sequencing, bounded retry and timeout.
type Service struct {
	client VendorClient
	cfg    config.ArticlesConfig
	logger *zap.Logger

	mu       sync.Mutex
	cache    map[int]*models.ArticlesResult
	seq      map[int]uint64
	inflight map[int]*fetchCall
}

type fetchCall struct {
	done   chan struct{}
	result *models.ArticlesResult
	err    error
}

// NewService wires the catalog service.
func NewService(client VendorClient, cfg config.ArticlesConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:   client,
		cfg:      cfg,
		logger:   logger,
		cache:    make(map[int]*models.ArticlesResult),
		seq:      make(map[int]uint64),
		inflight: make(map[int]*fetchCall),
	}
}

// Fetch returns the provider's catalog, serving from cache unless Refresh is
// requested. Results are deduplicated by article id, first occurrence wins.
func (s *Service) Fetch(ctx context.Context, providerID int, opts FetchOptions) (*models.ArticlesResult, error) {
	s.mu.Lock()

	if opts.Refresh {
		delete(s.cache, providerID)
	} else if cached, ok := s.cache[providerID]; ok {
		s.mu.Unlock()
		return cached, nil
	}

	if call, ok := s.inflight[providerID]; ok && !opts.Refresh {
		// Another fetch for this provider is already loading; ride along
		// instead of issuing a duplicate request.
		s.mu.Unlock()
		return s.await(ctx, call)
	}

	// A refresh supersedes whatever is in flight: the old response will see a
	// newer sequence number on completion and be discarded.
	s.seq[providerID]++
	mySeq := s.seq[providerID]
	call := &fetchCall{done: make(chan struct{})}
	s.inflight[providerID] = call
	s.mu.Unlock()

	result, err := s.fetchWithRetry(ctx, providerID, opts.Retry)

	s.mu.Lock()
	if s.inflight[providerID] == call {
		delete(s.inflight, providerID)
	}
	if err == nil {
		result.Articles = Dedupe(result.Articles)
		result.Count = len(result.Articles)
		if s.seq[providerID] == mySeq {
			s.cache[providerID] = result
		} else {
			s.logger.Debug("discarding stale fetch result",
				zap.Int("provider", providerID),
				zap.Uint64("seq", mySeq),
				zap.Uint64("latest", s.seq[providerID]))
		}
	}
	s.mu.Unlock()

	call.result = result
	call.err = err
	close(call.done)

	if err != nil {
		s.logger.Warn("catalog fetch failed",
			zap.Int("provider", providerID),
			zap.String("kind", string(models.KindOf(err))),
			zap.Error(err))
		return nil, err
	}
	return result, nil
}

// Invalidate drops the cache entry for a provider.
func (s *Service) Invalidate(providerID int) {
	s.mu.Lock()
	delete(s.cache, providerID)
	s.mu.Unlock()
}

// Cached reports whether a provider currently has a cache entry.
func (s *Service) Cached(providerID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.cache[providerID]
	return ok
}

func (s *Service) await(ctx context.Context, call *fetchCall) (*models.ArticlesResult, error) {
	select {
	case <-call.done:
		return call.result, call.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Service) fetchWithRetry(ctx context.Context, providerID int, retry bool) (*models.ArticlesResult, error) {
	attempts := 1
	if retry {
		attempts += s.cfg.RetryAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if err := s.waitRetryDelay(ctx); err != nil {
				return nil, lastErr
			}
			s.logger.Info("retrying catalog fetch",
				zap.Int("provider", providerID),
				zap.Int("attempt", attempt))
		}

		fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
		result, err := s.client.Articles(fetchCtx, providerID)
		cancel()

		if err == nil {
			return result, nil
		}
		lastErr = err
		if !models.KindOf(err).Retryable() {
			break
		}
	}

	return nil, lastErr
}

// waitRetryDelay sleeps for the fixed backoff, bailing out early when the
// caller goes away so no retry timer outlives its request.
func (s *Service) waitRetryDelay(ctx context.Context) error {
	timer := time.NewTimer(s.cfg.RetryDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dedupe removes duplicate article ids, keeping the first occurrence and
// preserving input order.
func Dedupe(in []models.Article) []models.Article {
	seen := make(map[int]struct{}, len(in))
	out := make([]models.Article, 0, len(in))
	for _, a := range in {
		if _, ok := seen[a.ID]; ok {
			continue
		}
		seen[a.ID] = struct{}{}
		out = append(out, a)
	}
	return out
}
