package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/sampaiobrenner/bookstore/internal/core/domain"
	"github.com/sampaiobrenner/bookstore/internal/core/port"
)

var _ port.PresenceOperator = (*PresenceService)(nil)

const (
	presenceCountKey     = "presence:count"
	presenceMarkerPrefix = "presence:active:"
	presenceChannel      = "presence.count"
)

func presenceMarkerKey(customerID string) string {
	return presenceMarkerPrefix + customerID
}

// PresenceService keeps a live count of active customer sessions.
//
// Cleanup policy: the counter follows the live per-customer markers.
// A session's first touch increments the counter and plants a marker
// with a short TTL; every later touch renews the marker. Sessions
// that vanish without leaving simply stop renewing, and the periodic
// sweep reconciles the counter to the markers still alive. The count
// is therefore not strictly monotonic under concurrent sessions, it
// only converges.
type PresenceService struct {
	cache      port.CacheStore
	markerTTL  time.Duration
	sweepEvery time.Duration
}

func NewPresenceService(
	cache port.CacheStore, markerTTL, sweepEvery time.Duration,
) *PresenceService {
	return &PresenceService{cache, markerTTL, sweepEvery}
}

// Touch marks the customer active, incrementing the shared counter on
// the session's first touch only.
func (s *PresenceService) Touch(ctx context.Context, customerID string) error {
	const op = "PresenceService.Touch"

	marker := presenceMarkerKey(customerID)
	created, err := s.cache.SetNX(ctx, marker, []byte("1"), s.markerTTL)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStore, err)
	}

	if !created {
		// already counted, keep the marker alive
		if err := s.cache.Set(ctx, marker, []byte("1"), s.markerTTL); err != nil {
			return fmt.Errorf("%s: %w: %w", op, domain.ErrStore, err)
		}
		return nil
	}

	n, err := s.cache.IncrBy(ctx, presenceCountKey, 1)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStore, err)
	}
	s.publish(ctx, n)
	return nil
}

// Leave drops the customer's marker and reconciles immediately so
// subscribers see the departure without waiting for the sweep.
func (s *PresenceService) Leave(ctx context.Context, customerID string) error {
	const op = "PresenceService.Leave"

	existed, err := s.cache.Delete(ctx, presenceMarkerKey(customerID))
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStore, err)
	}
	if existed {
		s.reconcile(ctx)
	}
	return nil
}

func (s *PresenceService) Count(ctx context.Context) (int64, error) {
	const op = "PresenceService.Count"

	b, ok, err := s.cache.Get(ctx, presenceCountKey)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %w", op, domain.ErrStore, err)
	}
	if !ok {
		return 0, nil
	}

	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %w", op, domain.ErrStore, err)
	}
	return max(n, 0), nil
}

// Subscribe streams every published count until ctx is done.
func (s *PresenceService) Subscribe(
	ctx context.Context,
) (<-chan int64, error) {
	const op = "PresenceService.Subscribe"
	log := slog.With("op", op)

	payloads, err := s.cache.Subscribe(ctx, presenceChannel)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, domain.ErrStore, err)
	}

	counts := make(chan int64, 1)
	go func() {
		defer close(counts)
		for b := range payloads {
			n, err := strconv.ParseInt(string(b), 10, 64)
			if err != nil {
				log.Warn("dropping malformed count", "payload", string(b))
				continue
			}
			select {
			case counts <- n:
			case <-ctx.Done():
				return
			}
		}
	}()
	return counts, nil
}

// Run drives the reconciling sweep until ctx is done.
func (s *PresenceService) Run(ctx context.Context, wg *sync.WaitGroup) {
	const op = "PresenceService.Run"
	log := slog.With("op", op)

	defer wg.Done()

	ticker := time.NewTicker(s.sweepEvery)
	defer ticker.Stop()

	log.Info("presence sweep is running", "every", s.sweepEvery)
	for {
		select {
		case <-ctx.Done():
			log.Info("presence sweep stopped")
			return
		case <-ticker.C:
			s.reconcile(ctx)
		}
	}
}

// reconcile converges the counter to the number of live markers and
// publishes the value when it moved.
func (s *PresenceService) reconcile(ctx context.Context) {
	const op = "PresenceService.reconcile"
	log := slog.With("op", op)

	markers, err := s.cache.Keys(ctx, presenceMarkerPrefix+"*")
	if err != nil {
		log.Error("failed to list markers", "err", err)
		return
	}

	want := int64(len(markers))
	have, err := s.Count(ctx)
	if err != nil {
		log.Error("failed to read counter", "err", err)
		return
	}
	if want == have {
		return
	}

	n, err := s.cache.IncrBy(ctx, presenceCountKey, want-have)
	if err != nil {
		log.Error("failed to adjust counter", "err", err)
		return
	}
	s.publish(ctx, n)
}

func (s *PresenceService) publish(ctx context.Context, n int64) {
	const op = "PresenceService.publish"

	payload := strconv.AppendInt(nil, max(n, 0), 10)
	if err := s.cache.Publish(ctx, presenceChannel, payload); err != nil {
		slog.With("op", op).Error("failed to publish count", "err", err)
	}
}
