package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QueryType string

const (
	QueryTypeBuy       QueryType = "BUY"
	QueryTypeSell      QueryType = "SELL"
	QueryTypeBulkOrder QueryType = "BULK_ORDER"
)

func (t QueryType) Valid() bool {
	switch t {
	case QueryTypeBuy, QueryTypeSell, QueryTypeBulkOrder:
		return true
	}
	return false
}

type QueryStatus string

const (
	QueryStatusPending    QueryStatus = "PENDING"
	QueryStatusAssigned   QueryStatus = "ASSIGNED"
	QueryStatusInProgress QueryStatus = "IN_PROGRESS"
	QueryStatusCompleted  QueryStatus = "COMPLETED"
	QueryStatusRejected   QueryStatus = "REJECTED"
	QueryStatusCancelled  QueryStatus = "CANCELLED"
)

func (s QueryStatus) Valid() bool {
	switch s {
	case QueryStatusPending, QueryStatusAssigned, QueryStatusInProgress,
		QueryStatusCompleted, QueryStatusRejected, QueryStatusCancelled:
		return true
	}
	return false
}

type QueryPriority string

const (
	QueryPriorityLow    QueryPriority = "LOW"
	QueryPriorityMedium QueryPriority = "MEDIUM"
	QueryPriorityHigh   QueryPriority = "HIGH"
)

func (p QueryPriority) Valid() bool {
	return p == QueryPriorityLow || p == QueryPriorityMedium || p == QueryPriorityHigh
}

type Query struct {
	ID           string        `gorm:"primaryKey;size:36"`
	Type         QueryType     `gorm:"size:16;index;not null"`
	Quantity     int           `gorm:"not null"`
	CompanyName  string        `gorm:"column:company_name;size:255;not null"`
	ContactName  string        `gorm:"column:contact_name;size:255;not null"`
	Email        string        `gorm:"size:255;not null"`
	Phone        string        `gorm:"size:32;not null"`
	Pincode      string        `gorm:"size:16;not null"`
	GST          string        `gorm:"column:gst;size:32"`
	ProductID    string        `gorm:"column:product_id;size:36;index;not null"`
	Product      *Product      `gorm:"foreignKey:ProductID"`
	UserID       *string       `gorm:"column:user_id;size:36;index"`
	Status       QueryStatus   `gorm:"size:16;index;not null"`
	Priority     QueryPriority `gorm:"size:8;not null;default:MEDIUM"`
	AssignedToID *string       `gorm:"column:assigned_to_id;size:36;index"`
	AssignedTo   *User         `gorm:"foreignKey:AssignedToID"`
	AssignedAt   *time.Time    `gorm:"column:assigned_at"`
	Message      string        `gorm:"type:text"`
	CreatedAt    time.Time     `gorm:"autoCreateTime"`
	UpdatedAt    time.Time     `gorm:"autoUpdateTime"`
}

func (Query) TableName() string {
	return "queries"
}

func (q *Query) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}
