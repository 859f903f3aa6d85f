package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DefaultUnit         = "KG"
	DefaultDeliveryTime = "7-10 days"
	DefaultLocation     = "Location not specified"
	DefaultProductImage = "https://images.pexels.com/photos/1295572/pexels-photo-1295572.jpeg?auto=compress&cs=tinysrgb&w=800"
)

type Product struct {
	ID                     string                      `gorm:"primaryKey;size:36"`
	SellerID               string                      `gorm:"column:seller_id;size:36;index;not null"`
	Seller                 *User                       `gorm:"foreignKey:SellerID"`
	Name                   string                      `gorm:"size:255;not null"`
	Category               Category                    `gorm:"size:32;index;not null"`
	Grade                  string                      `gorm:"size:64;index;not null"`
	PricePerKg             decimal.Decimal             `gorm:"column:price_per_kg;type:decimal(14,2);not null"`
	MinimumOrderQuantity   int                         `gorm:"column:minimum_order_quantity;not null;default:1"`
	Unit                   string                      `gorm:"size:16;not null;default:KG"`
	Description            string                      `gorm:"type:text"`
	Specifications         string                      `gorm:"type:text"`
	SpecificationsAndGrade string                      `gorm:"column:specifications_and_grade;type:text"`
	QualityAssurance       string                      `gorm:"column:quality_assurance;type:text"`
	PackagingAndDelivery   string                      `gorm:"column:packaging_and_delivery;type:text"`
	DeliveryTime           string                      `gorm:"column:delivery_time;size:64"`
	PackagingType          string                      `gorm:"column:packaging_type;size:128"`
	PrimaryImage           string                      `gorm:"column:primary_image;size:1024;not null"`
	AdditionalImages       datatypes.JSONSlice[string] `gorm:"column:additional_images"`
	Location               string                      `gorm:"size:255"`
	IsActive               bool                        `gorm:"column:is_active;not null;default:true;index"`
	IsVerified             bool                        `gorm:"column:is_verified;not null;default:false"`
	CreatedAt              time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt              time.Time                   `gorm:"autoUpdateTime"`
}

func (Product) TableName() string {
	return "products"
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// SetImages stores primary and the additional images, dropping blanks,
// duplicates and any copy of the primary from the additional list.
func (p *Product) SetImages(primary string, additional []string) {
	p.PrimaryImage = primary
	seen := map[string]bool{primary: true}
	out := make([]string, 0, len(additional))
	for _, u := range additional {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	p.AdditionalImages = datatypes.NewJSONSlice(out)
}

// Images returns every image URL the product references, primary first.
func (p *Product) Images() []string {
	out := make([]string, 0, len(p.AdditionalImages)+1)
	if p.PrimaryImage != "" {
		out = append(out, p.PrimaryImage)
	}
	for _, u := range p.AdditionalImages {
		if u != "" && u != p.PrimaryImage {
			out = append(out, u)
		}
	}
	return out
}
