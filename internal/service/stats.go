package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/smartsupport/backend/internal/conversation"
	"github.com/smartsupport/backend/internal/domain"
	"github.com/smartsupport/backend/internal/repository/redis"
)

// StatsService computes the aggregates behind the agent dashboard.
type StatsService struct {
	sessionRepo        domain.SessionRepository
	messageRepo        domain.MessageRepository
	classificationRepo domain.ClassificationRepository
	cache              *redis.StatsCache
}

// NewStatsService creates a new stats service. The cache is optional.
func NewStatsService(
	sessionRepo domain.SessionRepository,
	messageRepo domain.MessageRepository,
	classificationRepo domain.ClassificationRepository,
	cache *redis.StatsCache,
) *StatsService {
	return &StatsService{
		sessionRepo:        sessionRepo,
		messageRepo:        messageRepo,
		classificationRepo: classificationRepo,
		cache:              cache,
	}
}

// DashboardStats returns session/message counters plus classification
// frequency tables, served from the cache when fresh.
func (s *StatsService) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	totalSessions, err := s.sessionRepo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}
	activeSessions, err := s.sessionRepo.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count active sessions: %w", err)
	}
	totalMessages, err := s.messageRepo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}

	records, err := s.classificationRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list classifications: %w", err)
	}

	stats := &domain.DashboardStats{
		SessionStats: domain.SessionStats{
			TotalSessions:  totalSessions,
			ActiveSessions: activeSessions,
			TotalMessages:  totalMessages,
		},
		CategoryStats: categoryTable(records),
		UrgencyStats:  urgencyTable(records),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, stats); err != nil {
			log.Warn().Err(err).Msg("failed to cache dashboard stats")
		}
	}
	return stats, nil
}

// InvalidateCache drops the cached aggregates so the next dashboard
// read recounts. No-op when no cache is configured.
func (s *StatsService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate dashboard stats cache")
	}
}

func categoryTable(records []domain.ClassificationRecord) []domain.CategoryStat {
	counts := conversation.CountByCategory(records)
	stats := make([]domain.CategoryStat, 0, len(counts))
	for category, count := range counts {
		stats = append(stats, domain.CategoryStat{Category: category, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Category < stats[j].Category
	})
	return stats
}

func urgencyTable(records []domain.ClassificationRecord) []domain.UrgencyStat {
	counts := conversation.CountByUrgency(records)
	stats := make([]domain.UrgencyStat, 0, len(counts))
	for urgency, count := range counts {
		stats = append(stats, domain.UrgencyStat{Urgency: urgency, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Urgency < stats[j].Urgency
	})
	return stats
}
