package repository

import (
	"context"

	"github.com/staplewise/marketplace-backend/internal/model"
	"gorm.io/gorm"
)

type Counts struct {
	Buyers   int64
	Products int64
	Queries  int64
	Users    int64
}

type StatsRepository interface {
	Counts(ctx context.Context) (*Counts, error)
	UsersByRole(ctx context.Context) (map[string]int64, error)
	QueriesByStatus(ctx context.Context) (map[string]int64, error)
	OrdersByStatus(ctx context.Context) (map[string]int64, error)
}

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Counts(ctx context.Context) (*Counts, error) {
	db := conn(ctx, r.db)
	var c Counts
	if err := db.Model(&model.User{}).Where("role = ?", model.RoleBuyer).Count(&c.Buyers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Product{}).Count(&c.Products).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Query{}).Count(&c.Queries).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.User{}).Count(&c.Users).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *statsRepository) UsersByRole(ctx context.Context) (map[string]int64, error) {
	return r.groupCount(ctx, &model.User{}, "role")
}

func (r *statsRepository) QueriesByStatus(ctx context.Context) (map[string]int64, error) {
	return r.groupCount(ctx, &model.Query{}, "status")
}

func (r *statsRepository) OrdersByStatus(ctx context.Context) (map[string]int64, error) {
	return r.groupCount(ctx, &model.Order{}, "status")
}

func (r *statsRepository) groupCount(ctx context.Context, m interface{}, column string) (map[string]int64, error) {
	var rows []struct {
		Key   string
		Total int64
	}
	if err := conn(ctx, r.db).Model(m).
		Select(column + " AS `key`, COUNT(*) AS total").
		Group(column).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Total
	}
	return out, nil
}
