package service

import (
	"context"
	"errors"
	"testing"

	"github.com/staplewise/marketplace-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queryInput(productID string) CreateQueryInput {
	return CreateQueryInput{
		Type: model.QueryTypeBuy, Quantity: 500, CompanyName: "Acme Traders", ContactName: "Ravi",
		Email: "Ravi@Acme.example", Phone: "9000000001", Pincode: "691001", ProductID: productID,
	}
}

func TestCreateQuery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.user(t, "seller@example.com", model.RoleSeller)
	buyer := f.user(t, "buyer@example.com", model.RoleBuyer)
	p := f.product(t, seller, f.imageURL("a.jpg"))

	anon, err := f.querySvc.Create(ctx, "", queryInput(p.ID))
	require.NoError(t, err)
	assert.Nil(t, anon.UserID)
	assert.Equal(t, model.QueryStatusPending, anon.Status)
	assert.Equal(t, model.QueryPriorityMedium, anon.Priority)
	assert.Equal(t, "ravi@acme.example", anon.Email)
	require.NotNil(t, anon.Product)
	assert.Equal(t, p.Name, anon.Product.Name)

	owned, err := f.querySvc.Create(ctx, buyer.ID, queryInput(p.ID))
	require.NoError(t, err)
	require.NotNil(t, owned.UserID)
	assert.Equal(t, buyer.ID, *owned.UserID)
}

func TestCreateQueryValidation(t *testing.T) {
	f := newFixture(t)
	seller := f.user(t, "seller@example.com", model.RoleSeller)
	p := f.product(t, seller, f.imageURL("a.jpg"))

	tests := []struct {
		name   string
		mutate func(in *CreateQueryInput)
		field  string
	}{
		{"missing company", func(in *CreateQueryInput) { in.CompanyName = "" }, "companyName"},
		{"missing pincode", func(in *CreateQueryInput) { in.Pincode = "  " }, "pincode"},
		{"bad type", func(in *CreateQueryInput) { in.Type = "RENT" }, "type"},
		{"zero quantity", func(in *CreateQueryInput) { in.Quantity = 0 }, "quantity"},
		{"bad priority", func(in *CreateQueryInput) { in.Priority = "URGENT" }, "priority"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := queryInput(p.ID)
			tt.mutate(&in)
			_, err := f.querySvc.Create(context.Background(), "", in)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	_, err := f.querySvc.Create(context.Background(), "", queryInput("missing"))
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestAssignQuery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.user(t, "seller@example.com", model.RoleSeller)
	sales := f.user(t, "sales@example.com", model.RoleSales)
	buyer := f.user(t, "buyer@example.com", model.RoleBuyer)
	p := f.product(t, seller, f.imageURL("a.jpg"))
	q, err := f.querySvc.Create(ctx, "", queryInput(p.ID))
	require.NoError(t, err)

	for _, assignee := range []string{buyer.ID, "", "missing"} {
		_, err := f.querySvc.Assign(ctx, q.ID, assignee, "")
		assert.ErrorIs(t, err, ErrInvalidAssignee, "assignee %q", assignee)
	}
	unchanged, err := f.queries.FindByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Nil(t, unchanged.AssignedToID)
	assert.Equal(t, model.QueryStatusPending, unchanged.Status)

	assigned, err := f.querySvc.Assign(ctx, q.ID, sales.ID, "")
	require.NoError(t, err)
	assert.Equal(t, model.QueryStatusAssigned, assigned.Status)
	require.NotNil(t, assigned.AssignedTo)
	assert.Equal(t, sales.ID, assigned.AssignedTo.ID)
	assert.NotNil(t, assigned.AssignedAt)

	again, err := f.querySvc.Assign(ctx, q.ID, sales.ID, model.QueryStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, model.QueryStatusInProgress, again.Status)

	mine, err := f.querySvc.ListAssigned(ctx, sales.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = f.querySvc.Assign(ctx, "missing", sales.ID, "")
	assert.ErrorIs(t, err, ErrQueryNotFound)
}

func TestUpdateQueryStatusAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.user(t, "seller@example.com", model.RoleSeller)
	p := f.product(t, seller, f.imageURL("a.jpg"))
	q, err := f.querySvc.Create(ctx, "", queryInput(p.ID))
	require.NoError(t, err)

	_, err = f.querySvc.UpdateStatus(ctx, q.ID, "DONE")
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))

	updated, err := f.querySvc.UpdateStatus(ctx, q.ID, model.QueryStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.QueryStatusCompleted, updated.Status)

	done, err := f.querySvc.List(ctx, QueryFilter{Status: model.QueryStatusCompleted})
	require.NoError(t, err)
	assert.Len(t, done, 1)
	pending, err := f.querySvc.List(ctx, QueryFilter{Status: model.QueryStatusPending})
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, f.querySvc.Delete(ctx, q.ID))
	assert.ErrorIs(t, f.querySvc.Delete(ctx, q.ID), ErrQueryNotFound)
	_, err = f.querySvc.UpdateStatus(ctx, q.ID, model.QueryStatusRejected)
	assert.ErrorIs(t, err, ErrQueryNotFound)
}
