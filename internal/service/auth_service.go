package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/staplewise/marketplace-backend/internal/auth"
	"github.com/staplewise/marketplace-backend/internal/logging"
	"github.com/staplewise/marketplace-backend/internal/model"
	"github.com/staplewise/marketplace-backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minPasswordLength = 6

type RegisterInput struct {
	Email       string
	Password    string
	Name        string
	Phone       string
	Role        model.Role
	CompanyName string
	GST         string
}

type AuthResult struct {
	User  *model.User
	Token string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	// Authenticate resolves a session token to an active user.
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

type authService struct {
	users  repository.UserRepository
	hasher *auth.Hasher
	tokens *auth.Issuer
	notify NotificationService
	log    *zap.Logger
}

func NewAuthService(users repository.UserRepository, hasher *auth.Hasher, tokens *auth.Issuer, notify NotificationService, log *zap.Logger) AuthService {
	return &authService{users: users, hasher: hasher, tokens: tokens, notify: notify, log: log}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return invalid("email", "is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return invalid("email", "is not a valid address")
	}
	return nil
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Email == "" || in.Password == "" || in.Name == "" || in.Phone == "" || in.Role == "" {
		return nil, invalid("", "all required fields must be provided")
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if !in.Role.SelfService() {
		return nil, invalid("role", "must be BUYER or SELLER")
	}
	if len(in.Password) < minPasswordLength {
		return nil, invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}

	u, err := createUser(ctx, s.users, s.hasher, &model.User{
		Email:       in.Email,
		Name:        in.Name,
		Phone:       in.Phone,
		Role:        in.Role,
		CompanyName: strings.TrimSpace(in.CompanyName),
		GSTIN:       strings.TrimSpace(in.GST),
		IsActive:    true,
	}, in.Password)
	if err != nil {
		return nil, err
	}
	return s.session(u)
}

// createUser hashes password onto u and inserts it, enforcing unique email.
func createUser(ctx context.Context, users repository.UserRepository, hasher *auth.Hasher, u *model.User, password string) (*model.User, error) {
	if _, err := users.FindByEmail(ctx, u.Email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash
	if err := users.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return u, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, invalid("", "email and password are required")
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}
	return s.session(u)
}

func (s *authService) session(u *model.User) (*AuthResult, error) {
	tok, err := s.tokens.IssueSession(u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Token: tok}, nil
}

func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return invalid("email", "is required")
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return notFound(err, ErrUserNotFound)
	}
	tok, err := s.tokens.IssueReset(u.ID, u.Email, u.PasswordHash)
	if err != nil {
		return err
	}
	if err := s.notify.SendPasswordReset(ctx, u, tok); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	logging.With(ctx, s.log).Info("password reset email sent", zap.String("user_id", u.ID))
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return invalid("", "reset token and new password are required")
	}
	if len(newPassword) < minPasswordLength {
		return invalid("newPassword", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	claims, err := s.tokens.ParseReset(token)
	if err != nil {
		return ErrInvalidOrExpiredToken
	}
	u, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return err
	}
	if u.Email != claims.Email || auth.Fingerprint(u.PasswordHash) != claims.Fingerprint {
		return ErrInvalidOrExpiredToken
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, u.ID, hash)
}

func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.ParseSession(token)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	u, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, notFound(err, ErrInvalidCredentials)
	}
	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
