package service

import (
	"context"

	"github.com/staplewise/marketplace-backend/internal/model"
	"github.com/staplewise/marketplace-backend/internal/repository"
)

const recentActivityLimit = 5

type DashboardStats struct {
	TotalVisitors   int64
	TotalProducts   int64
	TotalQueries    int64
	TotalUsers      int64
	RecentQueries   []model.Query
	RecentOrders    []model.Order
	UsersByRole     map[string]int64
	QueriesByStatus map[string]int64
	OrdersByStatus  map[string]int64
}

type DashboardService interface {
	Stats(ctx context.Context) (*DashboardStats, error)
}

type dashboardService struct {
	stats   repository.StatsRepository
	queries repository.QueryRepository
	orders  repository.OrderRepository
}

func NewDashboardService(stats repository.StatsRepository, queries repository.QueryRepository, orders repository.OrderRepository) DashboardService {
	return &dashboardService{stats: stats, queries: queries, orders: orders}
}

func (s *dashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	counts, err := s.stats.Counts(ctx)
	if err != nil {
		return nil, err
	}
	out := &DashboardStats{
		TotalVisitors: counts.Buyers,
		TotalProducts: counts.Products,
		TotalQueries:  counts.Queries,
		TotalUsers:    counts.Users,
	}
	if out.RecentQueries, err = s.queries.List(ctx, repository.QueryFilter{Limit: recentActivityLimit}); err != nil {
		return nil, err
	}
	if out.RecentOrders, err = s.orders.List(ctx, repository.OrderFilter{Limit: recentActivityLimit}); err != nil {
		return nil, err
	}
	if out.UsersByRole, err = s.stats.UsersByRole(ctx); err != nil {
		return nil, err
	}
	if out.QueriesByStatus, err = s.stats.QueriesByStatus(ctx); err != nil {
		return nil, err
	}
	if out.OrdersByStatus, err = s.stats.OrdersByStatus(ctx); err != nil {
		return nil, err
	}
	return out, nil
}
