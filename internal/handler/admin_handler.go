package handler

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"github.com/staplewise/marketplace-backend/internal/service"
	"go.uber.org/zap"
)

type AdminHandler struct {
	svc service.DashboardService
	log *zap.Logger
}

func NewAdminHandler(svc service.DashboardService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, log: log}
}

type DashboardCounts struct {
	TotalVisitors int64 `json:"totalVisitors"`
	TotalProducts int64 `json:"totalProducts"`
	TotalQueries  int64 `json:"totalQueries"`
	TotalUsers    int64 `json:"totalUsers"`
}

type RecentActivity struct {
	Queries []QueryResponse `json:"queries"`
	Orders  []OrderResponse `json:"orders"`
}

type Bucket struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

type Distributions struct {
	Users   []Bucket `json:"users"`
	Queries []Bucket `json:"queries"`
	Orders  []Bucket `json:"orders"`
}

type DashboardResponse struct {
	Stats          DashboardCounts `json:"stats"`
	RecentActivity RecentActivity  `json:"recentActivity"`
	Distributions  Distributions   `json:"distributions"`
}

func (h *AdminHandler) DashboardStats(c echo.Context) error {
	s, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, DashboardResponse{
		Stats: DashboardCounts{
			TotalVisitors: s.TotalVisitors,
			TotalProducts: s.TotalProducts,
			TotalQueries:  s.TotalQueries,
			TotalUsers:    s.TotalUsers,
		},
		RecentActivity: RecentActivity{
			Queries: toQueryResponses(s.RecentQueries),
			Orders:  toOrderResponses(s.RecentOrders),
		},
		Distributions: Distributions{
			Users:   toBuckets(s.UsersByRole),
			Queries: toBuckets(s.QueriesByStatus),
			Orders:  toBuckets(s.OrdersByStatus),
		},
	})
}

func toBuckets(m map[string]int64) []Bucket {
	out := make([]Bucket, 0, len(m))
	for k, v := range m {
		out = append(out, Bucket{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
