package repository

import (
	"context"

	"github.com/flightdeck-ai/flightdeck/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AnalyticsRepository computes aggregate usage statistics.
type AnalyticsRepository struct {
	pool *pgxpool.Pool
}

func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

func (r *AnalyticsRepository) GetStats(ctx context.Context) (*service.Stats, error) {
	var stats service.Stats
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM messages WHERE DATE(created_at) = CURRENT_DATE) AS today_queries,
			(SELECT COUNT(*) FROM messages WHERE created_at >= CURRENT_DATE - INTERVAL '7 days') AS week_queries,
			(SELECT COUNT(*) FROM messages WHERE created_at >= CURRENT_DATE - INTERVAL '30 days') AS month_queries,
			(SELECT COUNT(*) FROM documents WHERE status = 'ready') AS total_documents,
			(SELECT COALESCE(SUM(page_count), 0) FROM documents WHERE status = 'ready') AS total_pages
	`).Scan(&stats.TodayQueries, &stats.WeekQueries, &stats.MonthQueries, &stats.TotalDocuments, &stats.TotalPages)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
