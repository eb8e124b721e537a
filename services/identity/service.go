package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	callerRepo "superbryn/database/repository/caller"
	sessionRepo "superbryn/database/repository/session"
	"superbryn/models"
	"superbryn/services/scheduling"
	"superbryn/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	contextCachePrefix = "caller:ctx:"
	contextCacheTTL    = 10 * time.Minute
)

// Service resolves phone handles to caller records and primes returning-caller
// context for the start of a voice session.
type Service interface {
	// Identify normalizes the raw contact number and returns the caller,
	// creating the record on first contact.
	Identify(ctx context.Context, rawContact, name string) (*models.Caller, error)
	// Context assembles the returning-caller briefing: upcoming appointments,
	// session count, last session summary.
	Context(ctx context.Context, contactNumber string) (*models.CallerContext, error)
	// InvalidateContext drops the cached briefing after a booking change.
	InvalidateContext(ctx context.Context, contactNumber string)
}

// DefaultIdentityService implements Service over the caller directory, the
// session history and the scheduling ledger, with a Redis read-through cache
// for the assembled context.
type DefaultIdentityService struct {
	Callers  callerRepo.CallerRepository
	Sessions sessionRepo.SessionRepository
	Ledger   scheduling.Ledger
	Cache    *redis.Client // optional; nil disables caching
}

func (s *DefaultIdentityService) Identify(ctx context.Context, rawContact, name string) (*models.Caller, error) {
	normalized, err := NormalizePhone(rawContact)
	if err != nil {
		return nil, err
	}
	caller, err := s.Callers.GetOrCreate(ctx, normalized, name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve caller: %w", err)
	}
	return caller, nil
}

func (s *DefaultIdentityService) Context(ctx context.Context, contactNumber string) (*models.CallerContext, error) {
	logger := utils.GetLogger()

	if s.Cache != nil {
		raw, err := s.Cache.Get(ctx, contextCachePrefix+contactNumber).Result()
		if err == nil {
			var cached models.CallerContext
			if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
				return &cached, nil
			}
		} else if err != redis.Nil {
			logger.Warn("context cache read failed", zap.Error(err))
		}
	}

	caller, err := s.Callers.GetByContact(ctx, contactNumber)
	if err != nil {
		if err == callerRepo.ErrNotFound {
			return &models.CallerContext{Returning: false}, nil
		}
		return nil, fmt.Errorf("failed to load caller: %w", err)
	}

	cc := &models.CallerContext{Caller: *caller, Returning: true}

	upcoming, err := s.Ledger.ListByCaller(ctx, contactNumber, models.NonTerminalStatuses)
	if err != nil {
		logger.Warn("failed to load upcoming appointments for context",
			zap.String("contact", contactNumber), zap.Error(err))
	} else {
		cc.Upcoming = upcoming
	}

	recent, err := s.Sessions.ListByContact(ctx, contactNumber, 5)
	if err != nil {
		logger.Warn("failed to load session history for context",
			zap.String("contact", contactNumber), zap.Error(err))
	} else if len(recent) > 0 {
		cc.TotalSessions = len(recent)
		last := recent[0]
		if !last.EndedAt.IsZero() {
			endedAt := last.EndedAt
			cc.LastSessionAt = &endedAt
		}
		cc.LastSummary = last.Summary
	}

	if s.Cache != nil {
		if blob, err := json.Marshal(cc); err == nil {
			if err := s.Cache.Set(ctx, contextCachePrefix+contactNumber, blob, contextCacheTTL).Err(); err != nil {
				logger.Warn("context cache write failed", zap.Error(err))
			}
		}
	}
	return cc, nil
}

func (s *DefaultIdentityService) InvalidateContext(ctx context.Context, contactNumber string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Del(ctx, contextCachePrefix+contactNumber).Err(); err != nil {
		utils.GetLogger().Warn("context cache invalidation failed",
			zap.String("contact", contactNumber), zap.Error(err))
	}
}
