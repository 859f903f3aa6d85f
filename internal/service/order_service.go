package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/staplewise/marketplace-backend/internal/logging"
	"github.com/staplewise/marketplace-backend/internal/model"
	"github.com/staplewise/marketplace-backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const orderNumberAttempts = 3

// PlaceOrderInput describes a single-line order. PricePerKg may be nil only
// when ProductID names an existing listing, whose price is then used.
type PlaceOrderInput struct {
	ProductID       string
	SellerID        string
	BuyerID         string
	ProductName     string
	Category        model.Category
	Grade           string
	Quantity        int
	PricePerKg      *decimal.Decimal
	DeliveryAddress string
	Notes           string
}

// UpdateOrderInput edits the order's single line item and header fields.
// Nil fields keep their current value.
type UpdateOrderInput struct {
	ProductName     *string
	Category        *model.Category
	Grade           *string
	Quantity        *int
	PricePerKg      *decimal.Decimal
	DeliveryAddress *string
	Notes           *string
	Status          *model.OrderStatus
	PaymentStatus   *model.PaymentStatus
}

type OrderService interface {
	Place(ctx context.Context, actor Actor, in PlaceOrderInput) (*model.Order, error)
	Get(ctx context.Context, actor Actor, id string) (*model.Order, error)
	List(ctx context.Context, actor Actor) ([]model.Order, error)
	ListBySeller(ctx context.Context, actor Actor, sellerID string) ([]model.Order, error)
	Update(ctx context.Context, actor Actor, id string, in UpdateOrderInput) (*model.Order, error)
	Delete(ctx context.Context, actor Actor, id string) error
}

type orderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	users    repository.UserRepository
	tx       repository.TxManager
	log      *zap.Logger
	now      func() time.Time
	number   func(time.Time) string
}

func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository, users repository.UserRepository, tx repository.TxManager, log *zap.Logger) OrderService {
	return &orderService{
		orders:   orders,
		products: products,
		users:    users,
		tx:       tx,
		log:      log,
		now:      time.Now,
		number:   model.NewOrderNumber,
	}
}

func (s *orderService) Place(ctx context.Context, actor Actor, in PlaceOrderInput) (*model.Order, error) {
	if !model.CanAny(actor.Role, model.PermPlaceOrders, model.PermCheckout) {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(in.SellerID) == "" {
		return nil, invalid("sellerId", "is required")
	}
	if in.Quantity < 1 {
		return nil, invalid("quantity", "must be at least 1")
	}
	if in.PricePerKg == nil && in.ProductID == "" {
		return nil, invalid("pricePerKg", "is required")
	}
	if in.PricePerKg != nil && !in.PricePerKg.IsPositive() {
		return nil, invalid("pricePerKg", "must be greater than 0")
	}

	seller, err := s.users.FindByID(ctx, in.SellerID)
	if err != nil {
		return nil, notFound(err, ErrSellerNotFound)
	}
	if seller.Role != model.RoleSeller {
		return nil, ErrSellerNotFound
	}

	buyerID, err := s.resolveBuyer(ctx, actor, in.BuyerID)
	if err != nil {
		return nil, err
	}

	var product *model.Product
	if in.ProductID != "" {
		product, err = s.products.FindByID(ctx, in.ProductID)
		if err != nil {
			return nil, notFound(err, ErrProductNotFound)
		}
		if product.SellerID != seller.ID {
			return nil, ErrProductNotFound
		}
		in.ProductName = product.Name
		in.Category = product.Category
		in.Grade = product.Grade
		if in.PricePerKg == nil {
			in.PricePerKg = &product.PricePerKg
		}
	} else {
		in.ProductName = strings.TrimSpace(in.ProductName)
		in.Grade = strings.TrimSpace(in.Grade)
		if in.ProductName == "" {
			return nil, invalid("productName", "is required")
		}
		if !in.Category.Valid() {
			return nil, invalid("category", "is not a known category")
		}
		if in.Grade != "" && !in.Category.AllowsGrade(in.Grade) {
			return nil, invalid("grade", "is not a valid grade for "+string(in.Category))
		}
		product = synthesizeProduct(seller, in)
	}

	order := &model.Order{
		BuyerID:         buyerID,
		Status:          model.OrderStatusPending,
		PaymentStatus:   model.PaymentStatusPending,
		ShippingAddress: strings.TrimSpace(in.DeliveryAddress),
		Notes:           strings.TrimSpace(in.Notes),
		Items: []model.OrderItem{{
			SellerID:    seller.ID,
			ProductName: in.ProductName,
			Category:    in.Category,
			Grade:       in.Grade,
			Quantity:    in.Quantity,
			PricePerKg:  *in.PricePerKg,
		}},
	}
	order.Recalculate()

	synthesized := in.ProductID == ""
	for attempt := 1; ; attempt++ {
		order.OrderNumber = s.number(s.now())
		err = s.tx.Do(ctx, func(ctx context.Context) error {
			if synthesized {
				if err := s.products.Create(ctx, product); err != nil {
					return fmt.Errorf("create product: %w", err)
				}
			}
			order.Items[0].ProductID = product.ID
			return s.orders.Create(ctx, order)
		})
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) || attempt == orderNumberAttempts {
			return nil, err
		}
		logging.With(ctx, s.log).Warn("order number collision, retrying",
			zap.String("order_number", order.OrderNumber), zap.Int("attempt", attempt))
		resetIDs(order, product, synthesized)
	}
	return s.reload(ctx, order.ID)
}

// resetIDs clears keys assigned by a rolled back insert.
func resetIDs(o *model.Order, p *model.Product, synthesized bool) {
	o.ID = ""
	for i := range o.Items {
		o.Items[i].ID = ""
		o.Items[i].OrderID = ""
	}
	if synthesized {
		p.ID = ""
	}
}

func (s *orderService) resolveBuyer(ctx context.Context, actor Actor, requested string) (string, error) {
	if actor.Role == model.RoleBuyer {
		return actor.UserID, nil
	}
	if requested == "" {
		return actor.UserID, nil
	}
	buyer, err := s.users.FindByID(ctx, requested)
	if err != nil {
		return "", notFound(err, ErrBuyerNotFound)
	}
	return buyer.ID, nil
}

func synthesizeProduct(seller *model.User, in PlaceOrderInput) *model.Product {
	p := &model.Product{
		SellerID:             seller.ID,
		Name:                 in.ProductName,
		Category:             in.Category,
		Grade:                in.Grade,
		PricePerKg:           *in.PricePerKg,
		MinimumOrderQuantity: in.Quantity,
		Unit:                 model.DefaultUnit,
		Specifications:       fmt.Sprintf("%s - %s", in.ProductName, in.Grade),
		Description:          fmt.Sprintf("%s - %s - %s", in.ProductName, in.Grade, in.Category),
		Location:             locationOf(seller),
		DeliveryTime:         model.DefaultDeliveryTime,
		IsActive:             true,
	}
	p.SetImages(model.DefaultProductImage, nil)
	return p
}

func (s *orderService) reload(ctx context.Context, id string) (*model.Order, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}
	return o, nil
}

func (s *orderService) Get(ctx context.Context, actor Actor, id string) (*model.Order, error) {
	o, err := s.reload(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, o) {
		return nil, ErrForbidden
	}
	return o, nil
}

func canView(actor Actor, o *model.Order) bool {
	if actor.Can(model.PermViewAllOrders) || o.BuyerID == actor.UserID {
		return true
	}
	if actor.Can(model.PermViewSellerOrders) {
		for _, it := range o.Items {
			if it.SellerID == actor.UserID {
				return true
			}
		}
	}
	return false
}

func (s *orderService) List(ctx context.Context, actor Actor) ([]model.Order, error) {
	switch {
	case actor.Can(model.PermViewAllOrders):
		return s.orders.List(ctx, repository.OrderFilter{})
	case actor.Can(model.PermCheckout):
		return s.orders.List(ctx, repository.OrderFilter{BuyerID: actor.UserID})
	case actor.Can(model.PermViewSellerOrders):
		return s.orders.ListBySeller(ctx, actor.UserID)
	}
	return nil, ErrForbidden
}

func (s *orderService) ListBySeller(ctx context.Context, actor Actor, sellerID string) ([]model.Order, error) {
	if !actor.Can(model.PermViewSellerOrders) {
		return nil, ErrForbidden
	}
	if !actor.Can(model.PermViewAllOrders) && sellerID != actor.UserID {
		return nil, ErrForbidden
	}
	seller, err := s.users.FindByID(ctx, sellerID)
	if err != nil {
		return nil, notFound(err, ErrSellerNotFound)
	}
	if seller.Role != model.RoleSeller {
		return nil, ErrSellerNotFound
	}
	return s.orders.ListBySeller(ctx, seller.ID)
}

// Update edits the order snapshot and recomputes totals. The catalog
// product the order was placed against is never modified.
func (s *orderService) Update(ctx context.Context, actor Actor, id string, in UpdateOrderInput) (*model.Order, error) {
	if !actor.Can(model.PermEditOrders) {
		return nil, ErrForbidden
	}
	o, err := s.reload(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(o.Items) == 0 {
		return nil, invalid("items", "order has no line items")
	}
	item := &o.Items[0]

	if in.ProductName != nil {
		name := strings.TrimSpace(*in.ProductName)
		if name == "" {
			return nil, invalid("productName", "must not be empty")
		}
		item.ProductName = name
	}
	if in.Category != nil {
		if !in.Category.Valid() {
			return nil, invalid("category", "is not a known category")
		}
		item.Category = *in.Category
	}
	if in.Grade != nil {
		item.Grade = strings.TrimSpace(*in.Grade)
	}
	if (in.Category != nil || in.Grade != nil) && item.Grade != "" && !item.Category.AllowsGrade(item.Grade) {
		return nil, invalid("grade", "is not a valid grade for "+string(item.Category))
	}
	if in.Quantity != nil {
		if *in.Quantity < 1 {
			return nil, invalid("quantity", "must be at least 1")
		}
		item.Quantity = *in.Quantity
	}
	if in.PricePerKg != nil {
		if in.PricePerKg.IsNegative() {
			return nil, invalid("pricePerKg", "must not be negative")
		}
		item.PricePerKg = *in.PricePerKg
	}
	if in.DeliveryAddress != nil {
		o.ShippingAddress = strings.TrimSpace(*in.DeliveryAddress)
	}
	if in.Notes != nil {
		o.Notes = strings.TrimSpace(*in.Notes)
	}
	if in.Status != nil && *in.Status != "" {
		if !in.Status.Valid() {
			return nil, invalid("status", "is not a known order status")
		}
		o.Status = *in.Status
	}
	if in.PaymentStatus != nil && *in.PaymentStatus != "" {
		if !in.PaymentStatus.Valid() {
			return nil, invalid("paymentStatus", "is not a known payment status")
		}
		o.PaymentStatus = *in.PaymentStatus
	}
	o.Recalculate()

	if err := s.tx.Do(ctx, func(ctx context.Context) error {
		return s.orders.Update(ctx, o)
	}); err != nil {
		return nil, err
	}
	return s.reload(ctx, o.ID)
}

func (s *orderService) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.Can(model.PermDeleteOrders) {
		return ErrForbidden
	}
	return s.tx.Do(ctx, func(ctx context.Context) error {
		return notFound(s.orders.Delete(ctx, id), ErrOrderNotFound)
	})
}
