package repository

import (
	"context"

	"github.com/staplewise/marketplace-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QueryFilter struct {
	Status       model.QueryStatus
	Type         model.QueryType
	AssignedToID string
	Limit        int
}

type QueryRepository interface {
	Create(ctx context.Context, q *model.Query) error
	FindByID(ctx context.Context, id string) (*model.Query, error)
	Update(ctx context.Context, q *model.Query) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f QueryFilter) ([]model.Query, error)
}

type queryRepository struct {
	db *gorm.DB
}

func NewQueryRepository(db *gorm.DB) QueryRepository {
	return &queryRepository{db: db}
}

func (r *queryRepository) Create(ctx context.Context, q *model.Query) error {
	return conn(ctx, r.db).Omit(clause.Associations).Create(q).Error
}

func (r *queryRepository) FindByID(ctx context.Context, id string) (*model.Query, error) {
	var q model.Query
	if err := r.withRelations(conn(ctx, r.db)).Where("id = ?", id).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *queryRepository) Update(ctx context.Context, q *model.Query) error {
	return conn(ctx, r.db).Omit(clause.Associations).Save(q).Error
}

func (r *queryRepository) Delete(ctx context.Context, id string) error {
	res := conn(ctx, r.db).Where("id = ?", id).Delete(&model.Query{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *queryRepository) List(ctx context.Context, f QueryFilter) ([]model.Query, error) {
	q := r.withRelations(conn(ctx, r.db).Model(&model.Query{}))
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.AssignedToID != "" {
		q = q.Where("assigned_to_id = ?", f.AssignedToID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var list []model.Query
	if err := q.Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *queryRepository) withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Product", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "seller_id", "name", "category", "grade", "price_per_kg", "primary_image")
		}).
		Preload("AssignedTo", sellerSummary)
}
