package services

import (
	"context"
	"time"

	"github.com/axellelanca/urlalias/internal/models"
	"github.com/axellelanca/urlalias/internal/repository"
)

const (
	hourWindow = time.Hour
	dayWindow  = 24 * time.Hour
)

// StatsService reports click counts per alias over the last hour and day.
type StatsService struct {
	clicks repository.ClickRepository
	now    func() time.Time
}

// NewStatsService creates a StatsService.
func NewStatsService(clicks repository.ClickRepository) *StatsService {
	return &StatsService{clicks: clicks, now: utcNow}
}

// ComputeStats returns one row per alias, never-clicked aliases included, ordered
// by last-day clicks descending then by creation order. Both windows end at the
// same instant.
func (s *StatsService) ComputeStats(ctx context.Context) ([]models.AliasStats, error) {
	now := s.now()
	return s.clicks.AggregateWindows(ctx, now.Add(-hourWindow), now.Add(-dayWindow))
}
