package service

import "context"

// Stats aggregates platform usage for the admin dashboard.
type Stats struct {
	TodayQueries   int64 `json:"todayQueries"`
	WeekQueries    int64 `json:"weekQueries"`
	MonthQueries   int64 `json:"monthQueries"`
	TotalDocuments int64 `json:"totalDocuments"`
	TotalPages     int64 `json:"totalPages"`
}

// AnalyticsRepositoryInterface defines the repository interface for usage statistics
type AnalyticsRepositoryInterface interface {
	GetStats(ctx context.Context) (*Stats, error)
}

type AnalyticsService struct {
	repo AnalyticsRepositoryInterface
}

func NewAnalyticsService(repo AnalyticsRepositoryInterface) *AnalyticsService {
	return &AnalyticsService{repo: repo}
}

func (s *AnalyticsService) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.GetStats(ctx)
}
