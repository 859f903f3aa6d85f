package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleSales  Role = "SALES"
	RoleBuyer  Role = "BUYER"
	RoleSeller Role = "SELLER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSales, RoleBuyer, RoleSeller:
		return true
	}
	return false
}

// SelfService reports whether the role may be chosen at public registration.
func (r Role) SelfService() bool {
	return r == RoleBuyer || r == RoleSeller
}

type User struct {
	ID              string    `gorm:"primaryKey;size:36"`
	Email           string    `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash    string    `gorm:"column:password_hash;size:255;not null"`
	Name            string    `gorm:"size:255;not null"`
	Phone           string    `gorm:"size:32;not null"`
	Role            Role      `gorm:"size:16;index;not null"`
	CompanyName     string    `gorm:"column:company_name;size:255"`
	GSTIN           string    `gorm:"column:gstin;size:32"`
	City            string    `gorm:"size:128"`
	Street1         string    `gorm:"column:street1;size:255"`
	Street2         string    `gorm:"column:street2;size:255"`
	Pincode         string    `gorm:"size:16"`
	State           string    `gorm:"size:128"`
	RegistrarName   string    `gorm:"column:registrar_name;size:255"`
	YearEstablished int       `gorm:"column:year_established"`
	IsActive        bool      `gorm:"column:is_active;not null;default:true"`
	IsVerified      bool      `gorm:"column:is_verified;not null;default:false"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
