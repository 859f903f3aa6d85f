package repository

import (
	"context"
	"strings"

	"github.com/staplewise/marketplace-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductFilter struct {
	Category   model.Category
	Grade      string
	SellerID   string
	Search     string
	ActiveOnly bool
}

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	Update(ctx context.Context, p *model.Product) error
	SetActive(ctx context.Context, id string, active bool) error
	UpdateImages(ctx context.Context, id, primary string, additional []string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f ProductFilter) ([]model.Product, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	return conn(ctx, r.db).Omit(clause.Associations).Create(p).Error
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	if err := conn(ctx, r.db).
		Preload("Seller", sellerSummary).
		Where("id = ?", id).
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) Update(ctx context.Context, p *model.Product) error {
	return conn(ctx, r.db).Omit(clause.Associations).Save(p).Error
}

func (r *productRepository) SetActive(ctx context.Context, id string, active bool) error {
	res := conn(ctx, r.db).Model(&model.Product{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepository) UpdateImages(ctx context.Context, id, primary string, additional []string) error {
	p := model.Product{}
	p.SetImages(primary, additional)
	return conn(ctx, r.db).Model(&model.Product{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"primary_image":     p.PrimaryImage,
			"additional_images": p.AdditionalImages,
		}).Error
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	res := conn(ctx, r.db).Where("id = ?", id).Delete(&model.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepository) List(ctx context.Context, f ProductFilter) ([]model.Product, error) {
	q := conn(ctx, r.db).Model(&model.Product{}).Preload("Seller", sellerSummary)
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Grade != "" {
		q = q.Where("grade = ?", f.Grade)
	}
	if f.SellerID != "" {
		q = q.Where("seller_id = ?", f.SellerID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}
	var list []model.Product
	if err := q.Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
