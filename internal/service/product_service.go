package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/staplewise/marketplace-backend/internal/logging"
	"github.com/staplewise/marketplace-backend/internal/model"
	"github.com/staplewise/marketplace-backend/internal/repository"
	"github.com/staplewise/marketplace-backend/internal/storage"
	"go.uber.org/zap"
)

// ImageStore is the part of the storage gateway the catalog depends on.
type ImageStore interface {
	DeleteImages(ctx context.Context, urls []string) storage.CleanupReport
	RewriteURL(raw string) string
	RewriteURLs(urls []string) []string
}

type ProductInput struct {
	Name                   string
	Category               model.Category
	Grade                  string
	PricePerKg             decimal.Decimal
	MinimumOrderQuantity   int
	Unit                   string
	Description            string
	Specifications         string
	SpecificationsAndGrade string
	QualityAssurance       string
	PackagingAndDelivery   string
	DeliveryTime           string
	PackagingType          string
	PrimaryImage           string
	AdditionalImages       []string
	Location               string
	IsActive               *bool
}

type ProductFilter struct {
	Category model.Category
	Grade    string
	SellerID string
	Search   string
}

type ProductService interface {
	Create(ctx context.Context, actor Actor, in ProductInput) (*model.Product, error)
	Update(ctx context.Context, actor Actor, id string, in ProductInput) (*model.Product, storage.CleanupReport, error)
	SetActive(ctx context.Context, actor Actor, id string, active bool) (*model.Product, error)
	Delete(ctx context.Context, actor Actor, id string) (storage.CleanupReport, error)
	Get(ctx context.Context, id string) (*model.Product, error)
	GetOwned(ctx context.Context, actor Actor, id string) (*model.Product, error)
	List(ctx context.Context, f ProductFilter) ([]model.Product, error)
	ListBySeller(ctx context.Context, sellerID string) ([]model.Product, error)
}

type productService struct {
	products repository.ProductRepository
	users    repository.UserRepository
	images   ImageStore
	log      *zap.Logger
}

func NewProductService(products repository.ProductRepository, users repository.UserRepository, images ImageStore, log *zap.Logger) ProductService {
	return &productService{products: products, users: users, images: images, log: log}
}

func validateCategoryGrade(category model.Category, grade string) error {
	if !category.Valid() {
		return invalid("category", "is not a known category")
	}
	if !category.AllowsGrade(grade) {
		return invalid("grade", "is not a valid grade for "+string(category))
	}
	return nil
}

func (in *ProductInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Grade = strings.TrimSpace(in.Grade)
	in.PrimaryImage = strings.TrimSpace(in.PrimaryImage)
	if in.Name == "" {
		return invalid("name", "is required")
	}
	if err := validateCategoryGrade(in.Category, in.Grade); err != nil {
		return err
	}
	if in.PricePerKg.IsNegative() {
		return invalid("pricePerKg", "must not be negative")
	}
	if in.MinimumOrderQuantity == 0 {
		in.MinimumOrderQuantity = 1
	}
	if in.MinimumOrderQuantity < 1 {
		return invalid("minimumOrderQuantity", "must be at least 1")
	}
	if in.PrimaryImage == "" {
		return invalid("primaryImage", "is required")
	}
	if in.Unit == "" {
		in.Unit = model.DefaultUnit
	}
	return nil
}

func (in *ProductInput) apply(p *model.Product) {
	p.Name = in.Name
	p.Category = in.Category
	p.Grade = in.Grade
	p.PricePerKg = in.PricePerKg
	p.MinimumOrderQuantity = in.MinimumOrderQuantity
	p.Unit = in.Unit
	p.Description = in.Description
	p.Specifications = in.Specifications
	p.SpecificationsAndGrade = in.SpecificationsAndGrade
	p.QualityAssurance = in.QualityAssurance
	p.PackagingAndDelivery = in.PackagingAndDelivery
	p.DeliveryTime = in.DeliveryTime
	p.PackagingType = in.PackagingType
	if in.Location != "" {
		p.Location = in.Location
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	p.SetImages(in.PrimaryImage, in.AdditionalImages)
}

func (s *productService) Create(ctx context.Context, actor Actor, in ProductInput) (*model.Product, error) {
	if !actor.Can(model.PermManageOwnProducts) {
		return nil, ErrForbidden
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	seller, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, notFound(err, ErrSellerNotFound)
	}
	p := &model.Product{SellerID: seller.ID, IsActive: true, Location: locationOf(seller)}
	in.apply(p)
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	p.Seller = seller
	return p, nil
}

func locationOf(u *model.User) string {
	if u != nil && strings.TrimSpace(u.City) != "" {
		return u.City
	}
	return model.DefaultLocation
}

// owned loads product id and checks that actor is its seller.
func (s *productService) owned(ctx context.Context, actor Actor, id string) (*model.Product, error) {
	if !actor.Can(model.PermManageOwnProducts) {
		return nil, ErrForbidden
	}
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	if p.SellerID != actor.UserID {
		return nil, ErrForbidden
	}
	return p, nil
}

func (s *productService) Update(ctx context.Context, actor Actor, id string, in ProductInput) (*model.Product, storage.CleanupReport, error) {
	if err := in.normalize(); err != nil {
		return nil, storage.CleanupReport{}, err
	}
	p, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, storage.CleanupReport{}, err
	}
	// Compare in canonical form so a client echoing rewritten URLs does
	// not cause the still-referenced object to be deleted.
	before := s.images.RewriteURLs(p.Images())
	in.apply(p)
	after := s.images.RewriteURLs(p.Images())

	if err := s.products.Update(ctx, p); err != nil {
		return nil, storage.CleanupReport{}, err
	}
	report := s.images.DeleteImages(ctx, removedImages(before, after))
	if !report.OK() {
		logging.With(ctx, s.log).Warn("product updated with leftover images",
			zap.String("product_id", p.ID), zap.Strings("failed", report.Failed))
	}
	return s.present(p), report, nil
}

// removedImages returns the URLs in before that are absent from after.
func removedImages(before, after []string) []string {
	keep := make(map[string]bool, len(after))
	for _, u := range after {
		keep[u] = true
	}
	out := []string{}
	seen := map[string]bool{}
	for _, u := range before {
		if u == "" || keep[u] || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

func (s *productService) SetActive(ctx context.Context, actor Actor, id string, active bool) (*model.Product, error) {
	p, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.products.SetActive(ctx, p.ID, active); err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	p.IsActive = active
	return s.present(p), nil
}

// Delete removes the row, then tries to remove every image object. Storage
// failures are reported but never keep the row alive.
func (s *productService) Delete(ctx context.Context, actor Actor, id string) (storage.CleanupReport, error) {
	p, err := s.owned(ctx, actor, id)
	if err != nil {
		return storage.CleanupReport{}, err
	}
	if err := s.products.Delete(ctx, p.ID); err != nil {
		return storage.CleanupReport{}, notFound(err, ErrProductNotFound)
	}
	report := s.images.DeleteImages(ctx, s.images.RewriteURLs(p.Images()))
	if !report.OK() {
		logging.With(ctx, s.log).Warn("product deleted with leftover images",
			zap.String("product_id", p.ID), zap.Strings("failed", report.Failed))
	}
	return report, nil
}

func (s *productService) Get(ctx context.Context, id string) (*model.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	if !p.IsActive {
		return nil, ErrProductNotFound
	}
	return s.present(p), nil
}

func (s *productService) GetOwned(ctx context.Context, actor Actor, id string) (*model.Product, error) {
	p, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.present(p), nil
}

func (s *productService) List(ctx context.Context, f ProductFilter) ([]model.Product, error) {
	if f.Category != "" && !f.Category.Valid() {
		return nil, invalid("category", "is not a known category")
	}
	list, err := s.products.List(ctx, repository.ProductFilter{
		Category:   f.Category,
		Grade:      f.Grade,
		SellerID:   f.SellerID,
		Search:     f.Search,
		ActiveOnly: true,
	})
	if err != nil {
		return nil, err
	}
	for i := range list {
		s.present(&list[i])
	}
	return list, nil
}

func (s *productService) ListBySeller(ctx context.Context, sellerID string) ([]model.Product, error) {
	if sellerID == "" {
		return nil, errors.New("seller is required")
	}
	list, err := s.products.List(ctx, repository.ProductFilter{SellerID: sellerID})
	if err != nil {
		return nil, err
	}
	for i := range list {
		s.present(&list[i])
	}
	return list, nil
}

// present rewrites legacy image URLs for the response. p must not be saved afterwards.
func (s *productService) present(p *model.Product) *model.Product {
	primary := s.images.RewriteURL(p.PrimaryImage)
	p.SetImages(primary, s.images.RewriteURLs(p.AdditionalImages))
	return p
}
