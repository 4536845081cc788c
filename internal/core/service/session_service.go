package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/mindhaven/counseling-system/internal/api/metrics"
	"github.com/mindhaven/counseling-system/internal/core/domain"
	"github.com/mindhaven/counseling-system/internal/core/ports"
)

const defaultSessionTTL = 5 * time.Minute

// SessionService is the cached current-user lookup. Concurrent callers for
// the same user share one in-flight repository fetch; results are cached
// under the user's session tag until invalidated.
type SessionService struct {
	repo  ports.UserRepository
	cache ports.SessionCache
	group singleflight.Group
	ttl   time.Duration
	log   zerolog.Logger
}

func NewSessionService(repo ports.UserRepository, cache ports.SessionCache, ttl time.Duration, log zerolog.Logger) *SessionService {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionService{repo: repo, cache: cache, ttl: ttl, log: log}
}

// CurrentUser returns the identity for userID, cache-first. A cache read
// failure degrades to a repository fetch; a repository failure surfaces to
// the caller untouched.
func (s *SessionService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	tag := domain.SessionTag(userID)

	if user, ok, err := s.cache.Get(ctx, tag); err != nil {
		s.log.Warn().Err(err).Str("tag", tag).Msg("session cache read failed")
	} else if ok {
		return user, nil
	}

	v, err, _ := s.group.Do(tag, func() (any, error) {
		user, err := s.repo.FindByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, tag, user, s.ttl); err != nil {
			s.log.Warn().Err(err).Str("tag", tag).Msg("session cache write failed")
		}
		return user, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.User), nil
}

// Invalidate drops the given cache tags. The next access refetches; nothing
// is fetched eagerly here.
func (s *SessionService) Invalidate(ctx context.Context, tags ...string) error {
	if err := s.cache.Invalidate(ctx, tags...); err != nil {
		return err
	}
	metrics.CacheInvalidationsTotal.Add(float64(len(tags)))
	return nil
}
