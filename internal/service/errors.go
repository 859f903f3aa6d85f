package service

import (
	"errors"
	"fmt"

	"github.com/staplewise/marketplace-backend/internal/model"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrProductNotFound       = errors.New("product not found")
	ErrQueryNotFound         = errors.New("query not found")
	ErrOrderNotFound         = errors.New("order not found")
	ErrSellerNotFound        = errors.New("seller not found")
	ErrBuyerNotFound         = errors.New("buyer not found")
	ErrDuplicateEmail        = errors.New("user already exists with this email")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired reset token")
	ErrForbidden             = errors.New("forbidden")
	ErrInvalidAssignee       = errors.New("assignee must be a sales user")
)

// ValidationError reports a request field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// notFound maps gorm's record-not-found onto the given domain error.
func notFound(err, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return err
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID string
	Role   model.Role
}

func (a Actor) Can(p model.Permission) bool {
	return model.Can(a.Role, p)
}
