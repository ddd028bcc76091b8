package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"contract-exchange/internal/domain"
	"contract-exchange/internal/repository"
)

type Stats struct {
	PendingListings       int64      `json:"pending_listings"`
	ActiveListings        int64      `json:"active_listings"`
	RejectedListings      int64      `json:"rejected_listings"`
	HiddenListings        int64      `json:"hidden_listings"`
	SoldListings          int64      `json:"sold_listings"`
	PendingChangeRequests int64      `json:"pending_change_requests"`
	LastActivityAt        *time.Time `json:"last_activity_at"`
}

type Service interface {
	GetStats(ctx context.Context, actor domain.Actor) (*Stats, error)
}

type service struct {
	listingRepo repository.ListingRepository
	crRepo      repository.ChangeRequestRepository
	redis       *redis.Client
}

func NewService(listingRepo repository.ListingRepository, crRepo repository.ChangeRequestRepository, redisClient *redis.Client) Service {
	return &service{
		listingRepo: listingRepo,
		crRepo:      crRepo,
		redis:       redisClient,
	}
}

func (s *service) GetStats(ctx context.Context, actor domain.Actor) (*Stats, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	cacheKey := "dashboard:stats"

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var stats Stats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return &stats, nil
			}
		}
	}

	stats := &Stats{}
	counts := []struct {
		status domain.ListingStatus
		dst    *int64
	}{
		{domain.ListingPending, &stats.PendingListings},
		{domain.ListingActive, &stats.ActiveListings},
		{domain.ListingRejected, &stats.RejectedListings},
		{domain.ListingHidden, &stats.HiddenListings},
		{domain.ListingSold, &stats.SoldListings},
	}
	for _, c := range counts {
		count, err := s.listingRepo.CountByStatus(ctx, c.status)
		if err != nil {
			return nil, err
		}
		*c.dst = count
	}

	pendingCRs, err := s.crRepo.CountPending(ctx)
	if err != nil {
		return nil, err
	}
	stats.PendingChangeRequests = pendingCRs

	stats.LastActivityAt, _ = s.listingRepo.GetLastActivityAt(ctx)

	if s.redis != nil {
		if statsJSON, err := json.Marshal(stats); err == nil {
			_ = s.redis.Set(ctx, cacheKey, statsJSON, 5*time.Minute).Err()
		}
	}

	return stats, nil
}
