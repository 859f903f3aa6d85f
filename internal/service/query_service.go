package service

import (
	"context"
	"strings"
	"time"

	"github.com/staplewise/marketplace-backend/internal/model"
	"github.com/staplewise/marketplace-backend/internal/repository"
)

type CreateQueryInput struct {
	Type        model.QueryType
	Quantity    int
	CompanyName string
	ContactName string
	Email       string
	Phone       string
	Pincode     string
	GST         string
	ProductID   string
	Message     string
	Priority    model.QueryPriority
}

type QueryFilter struct {
	Status       model.QueryStatus
	Type         model.QueryType
	AssignedToID string
}

type QueryService interface {
	// Create records an enquiry. callerID is the verified user, or empty for
	// anonymous visitors.
	Create(ctx context.Context, callerID string, in CreateQueryInput) (*model.Query, error)
	List(ctx context.Context, f QueryFilter) ([]model.Query, error)
	ListAssigned(ctx context.Context, salesID string) ([]model.Query, error)
	Assign(ctx context.Context, id, assignedToID string, status model.QueryStatus) (*model.Query, error)
	UpdateStatus(ctx context.Context, id string, status model.QueryStatus) (*model.Query, error)
	Delete(ctx context.Context, id string) error
}

type queryService struct {
	queries  repository.QueryRepository
	products repository.ProductRepository
	users    repository.UserRepository
	now      func() time.Time
}

func NewQueryService(queries repository.QueryRepository, products repository.ProductRepository, users repository.UserRepository) QueryService {
	return &queryService{queries: queries, products: products, users: users, now: time.Now}
}

func (s *queryService) Create(ctx context.Context, callerID string, in CreateQueryInput) (*model.Query, error) {
	required := [][2]string{
		{"companyName", in.CompanyName}, {"contactName", in.ContactName}, {"email", in.Email},
		{"phone", in.Phone}, {"pincode", in.Pincode}, {"productId", in.ProductID},
	}
	for _, f := range required {
		if strings.TrimSpace(f[1]) == "" {
			return nil, invalid(f[0], "is required")
		}
	}
	if !in.Type.Valid() {
		return nil, invalid("type", "must be BUY, SELL or BULK_ORDER")
	}
	if in.Quantity < 1 {
		return nil, invalid("quantity", "must be at least 1")
	}
	if in.Priority == "" {
		in.Priority = model.QueryPriorityMedium
	}
	if !in.Priority.Valid() {
		return nil, invalid("priority", "must be LOW, MEDIUM or HIGH")
	}
	if _, err := s.products.FindByID(ctx, in.ProductID); err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}

	q := &model.Query{
		Type:        in.Type,
		Quantity:    in.Quantity,
		CompanyName: strings.TrimSpace(in.CompanyName),
		ContactName: strings.TrimSpace(in.ContactName),
		Email:       normalizeEmail(in.Email),
		Phone:       strings.TrimSpace(in.Phone),
		Pincode:     strings.TrimSpace(in.Pincode),
		GST:         strings.TrimSpace(in.GST),
		ProductID:   in.ProductID,
		Status:      model.QueryStatusPending,
		Priority:    in.Priority,
		Message:     strings.TrimSpace(in.Message),
	}
	if callerID != "" {
		q.UserID = &callerID
	}
	if err := s.queries.Create(ctx, q); err != nil {
		return nil, err
	}
	return s.reload(ctx, q.ID)
}

func (s *queryService) reload(ctx context.Context, id string) (*model.Query, error) {
	q, err := s.queries.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrQueryNotFound)
	}
	return q, nil
}

func (s *queryService) List(ctx context.Context, f QueryFilter) ([]model.Query, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, invalid("status", "is not a known status")
	}
	if f.Type != "" && !f.Type.Valid() {
		return nil, invalid("type", "is not a known type")
	}
	return s.queries.List(ctx, repository.QueryFilter{Status: f.Status, Type: f.Type, AssignedToID: f.AssignedToID})
}

func (s *queryService) ListAssigned(ctx context.Context, salesID string) ([]model.Query, error) {
	return s.queries.List(ctx, repository.QueryFilter{AssignedToID: salesID})
}

// Assign hands a query to a SALES user. Any other assignee leaves the row untouched.
func (s *queryService) Assign(ctx context.Context, id, assignedToID string, status model.QueryStatus) (*model.Query, error) {
	if status != "" && !status.Valid() {
		return nil, invalid("status", "is not a known status")
	}
	q, err := s.queries.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrQueryNotFound)
	}
	if strings.TrimSpace(assignedToID) == "" {
		return nil, ErrInvalidAssignee
	}
	assignee, err := s.users.FindByID(ctx, assignedToID)
	if err != nil {
		return nil, notFound(err, ErrInvalidAssignee)
	}
	if assignee.Role != model.RoleSales {
		return nil, ErrInvalidAssignee
	}

	if status == "" {
		status = model.QueryStatusAssigned
	}
	now := s.now()
	q.AssignedToID = &assignee.ID
	q.AssignedAt = &now
	q.Status = status
	if err := s.queries.Update(ctx, q); err != nil {
		return nil, err
	}
	return s.reload(ctx, q.ID)
}

func (s *queryService) UpdateStatus(ctx context.Context, id string, status model.QueryStatus) (*model.Query, error) {
	if !status.Valid() {
		return nil, invalid("status", "is not a known status")
	}
	q, err := s.queries.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrQueryNotFound)
	}
	q.Status = status
	if err := s.queries.Update(ctx, q); err != nil {
		return nil, err
	}
	return s.reload(ctx, q.ID)
}

func (s *queryService) Delete(ctx context.Context, id string) error {
	return notFound(s.queries.Delete(ctx, id), ErrQueryNotFound)
}
