package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/staplewise/marketplace-backend/internal/auth"
	"github.com/staplewise/marketplace-backend/internal/model"
	"github.com/staplewise/marketplace-backend/internal/repository"
	"gorm.io/gorm"
)

type CompanyDetailsInput struct {
	Name            string
	City            string
	Street1         string
	Street2         string
	Pincode         string
	State           string
	RegistrarName   string
	GSTIN           string
	YearEstablished int
	Phone           string
	Email           string
}

type CreateUserInput struct {
	Email       string
	Password    string
	Name        string
	Phone       string
	Role        model.Role
	CompanyName string
}

type UserService interface {
	Get(ctx context.Context, id string) (*model.User, error)
	SaveCompanyDetails(ctx context.Context, userID string, in CompanyDetailsInput) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	ListSellers(ctx context.Context) ([]model.User, error)
	// CreateUser lets an admin create an account of any role, including SALES.
	CreateUser(ctx context.Context, in CreateUserInput) (*model.User, error)
	Delete(ctx context.Context, actor Actor, userID string) error
}

type userService struct {
	users  repository.UserRepository
	hasher *auth.Hasher
	now    func() time.Time
}

func NewUserService(users repository.UserRepository, hasher *auth.Hasher) UserService {
	return &userService{users: users, hasher: hasher, now: time.Now}
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return u, nil
}

func (s *userService) SaveCompanyDetails(ctx context.Context, userID string, in CompanyDetailsInput) (*model.User, error) {
	in.Email = normalizeEmail(in.Email)
	required := [][2]string{
		{"name", in.Name}, {"city", in.City}, {"address.street1", in.Street1}, {"address.pincode", in.Pincode},
		{"address.state", in.State}, {"registrarName", in.RegistrarName}, {"gstin", in.GSTIN},
		{"phone", in.Phone}, {"email", in.Email},
	}
	for _, f := range required {
		if strings.TrimSpace(f[1]) == "" {
			return nil, invalid(f[0], "is required")
		}
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if in.YearEstablished < 1800 || in.YearEstablished > s.now().Year() {
		return nil, invalid("yearEstablished", "is out of range")
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	if in.Email != u.Email {
		if other, err := s.users.FindByEmail(ctx, in.Email); err == nil && other.ID != u.ID {
			return nil, ErrDuplicateEmail
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	u.CompanyName = strings.TrimSpace(in.Name)
	u.City = strings.TrimSpace(in.City)
	u.Street1 = strings.TrimSpace(in.Street1)
	u.Street2 = strings.TrimSpace(in.Street2)
	u.Pincode = strings.TrimSpace(in.Pincode)
	u.State = strings.TrimSpace(in.State)
	u.RegistrarName = strings.TrimSpace(in.RegistrarName)
	u.GSTIN = strings.TrimSpace(in.GSTIN)
	u.YearEstablished = in.YearEstablished
	u.Phone = strings.TrimSpace(in.Phone)
	u.Email = in.Email
	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return u, nil
}

func (s *userService) List(ctx context.Context) ([]model.User, error) {
	return s.users.ListAll(ctx)
}

func (s *userService) ListSellers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx, repository.UserFilter{Role: model.RoleSeller, ActiveOnly: true})
}

func (s *userService) CreateUser(ctx context.Context, in CreateUserInput) (*model.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if in.Email == "" || in.Password == "" || in.Name == "" || strings.TrimSpace(in.Phone) == "" {
		return nil, invalid("", "all required fields must be provided")
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if !in.Role.Valid() {
		return nil, invalid("role", "is not a known role")
	}
	if len(in.Password) < minPasswordLength {
		return nil, invalid("password", "is too short")
	}
	return createUser(ctx, s.users, s.hasher, &model.User{
		Email:       in.Email,
		Name:        in.Name,
		Phone:       strings.TrimSpace(in.Phone),
		Role:        in.Role,
		CompanyName: strings.TrimSpace(in.CompanyName),
		IsActive:    true,
		IsVerified:  true,
	}, in.Password)
}

// Delete removes the user row only; their products and orders stay.
func (s *userService) Delete(ctx context.Context, actor Actor, userID string) error {
	if actor.UserID == userID {
		return invalid("userId", "admins cannot delete their own account")
	}
	return notFound(s.users.Delete(ctx, userID), ErrUserNotFound)
}
