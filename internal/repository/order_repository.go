package repository

import (
	"context"

	"github.com/staplewise/marketplace-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderFilter struct {
	BuyerID string
	Limit   int
}

type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, id string) (*model.Order, error)
	Update(ctx context.Context, o *model.Order) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f OrderFilter) ([]model.Order, error)
	ListBySeller(ctx context.Context, sellerID string) ([]model.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts the order together with its items.
func (r *orderRepository) Create(ctx context.Context, o *model.Order) error {
	return conn(ctx, r.db).Create(o).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	if err := r.withRelations(conn(ctx, r.db)).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// Update writes the order row and each of its items. Caller owns the transaction.
func (r *orderRepository) Update(ctx context.Context, o *model.Order) error {
	db := conn(ctx, r.db)
	if err := db.Omit(clause.Associations).Save(o).Error; err != nil {
		return err
	}
	for i := range o.Items {
		if err := db.Omit(clause.Associations).Save(&o.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *orderRepository) Delete(ctx context.Context, id string) error {
	db := conn(ctx, r.db)
	if err := db.Where("order_id = ?", id).Delete(&model.OrderItem{}).Error; err != nil {
		return err
	}
	res := db.Where("id = ?", id).Delete(&model.Order{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepository) List(ctx context.Context, f OrderFilter) ([]model.Order, error) {
	q := r.withRelations(conn(ctx, r.db).Model(&model.Order{}))
	if f.BuyerID != "" {
		q = q.Where("buyer_id = ?", f.BuyerID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var list []model.Order
	if err := q.Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepository) ListBySeller(ctx context.Context, sellerID string) ([]model.Order, error) {
	db := conn(ctx, r.db)
	sub := db.Session(&gorm.Session{NewDB: true}).Model(&model.OrderItem{}).
		Select("order_id").Where("seller_id = ?", sellerID)
	var list []model.Order
	if err := r.withRelations(db.Model(&model.Order{})).
		Where("id IN (?)", sub).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepository) withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Buyer", sellerSummary).
		Preload("Items").
		Preload("Items.Seller", sellerSummary)
}
