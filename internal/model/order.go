package model

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

type Order struct {
	ID              string          `gorm:"primaryKey;size:36"`
	OrderNumber     string          `gorm:"column:order_number;size:64;uniqueIndex;not null"`
	BuyerID         string          `gorm:"column:buyer_id;size:36;index;not null"`
	Buyer           *User           `gorm:"foreignKey:BuyerID"`
	TotalAmount     decimal.Decimal `gorm:"column:total_amount;type:decimal(14,2);not null"`
	TotalQuantity   int             `gorm:"column:total_quantity;not null"`
	Status          OrderStatus     `gorm:"size:16;index;not null"`
	PaymentStatus   PaymentStatus   `gorm:"column:payment_status;size:16;not null"`
	ShippingAddress string          `gorm:"column:shipping_address;type:text"`
	Notes           string          `gorm:"type:text"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time       `gorm:"autoCreateTime;index"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// Recalculate derives the order totals from its line items.
func (o *Order) Recalculate() {
	amount := decimal.Zero
	qty := 0
	for i := range o.Items {
		it := &o.Items[i]
		it.TotalPrice = it.PricePerKg.Mul(decimal.NewFromInt(int64(it.Quantity)))
		amount = amount.Add(it.TotalPrice)
		qty += it.Quantity
	}
	o.TotalAmount = amount
	o.TotalQuantity = qty
}

// OrderItem keeps a snapshot of the product as it was ordered. ProductID is
// informational and may point at a row that no longer exists.
type OrderItem struct {
	ID          string          `gorm:"primaryKey;size:36"`
	OrderID     string          `gorm:"column:order_id;size:36;index;not null"`
	ProductID   string          `gorm:"column:product_id;size:36;index"`
	SellerID    string          `gorm:"column:seller_id;size:36;index;not null"`
	Seller      *User           `gorm:"foreignKey:SellerID"`
	ProductName string          `gorm:"column:product_name;size:255;not null"`
	Category    Category        `gorm:"size:32;not null"`
	Grade       string          `gorm:"size:64"`
	Quantity    int             `gorm:"not null"`
	PricePerKg  decimal.Decimal `gorm:"column:price_per_kg;type:decimal(14,2);not null"`
	TotalPrice  decimal.Decimal `gorm:"column:total_price;type:decimal(14,2);not null"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

func (it *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	return nil
}

// NewOrderNumber returns ORD-<epoch millis>-<0..999>.
func NewOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%d-%d", now.UnixMilli(), rand.IntN(1000))
}
