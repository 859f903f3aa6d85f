package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/staplewise/marketplace-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func orderInput(sellerID string) PlaceOrderInput {
	price := decimal.RequireFromString("910.25")
	return PlaceOrderInput{
		SellerID: sellerID, ProductName: "Cashew W240", Category: model.CategoryCashews, Grade: "W240",
		Quantity: 200, PricePerKg: &price, DeliveryAddress: "Warehouse 4, Kochi",
	}
}

func TestPlaceOrderSynthesizesProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.user(t, "seller@example.com", model.RoleSeller)
	admin := f.user(t, "admin@example.com", model.RoleAdmin)
	buyer := f.user(t, "buyer@example.com", model.RoleBuyer)

	in := orderInput(seller.ID)
	in.BuyerID = buyer.ID
	o, err := f.orderSvc.Place(ctx, actorOf(admin), in)
	require.NoError(t, err)
	assert.Regexp(t, `^ORD-\d+-\d{1,3}$`, o.OrderNumber)
	assert.Equal(t, buyer.ID, o.BuyerID)
	assert.Equal(t, model.OrderStatusPending, o.Status)
	assert.Equal(t, model.PaymentStatusPending, o.PaymentStatus)
	assert.Equal(t, 200, o.TotalQuantity)
	assert.True(t, o.TotalAmount.Equal(decimal.RequireFromString("182050")), o.TotalAmount.String())
	require.Len(t, o.Items, 1)

	p, err := f.products.FindByID(ctx, o.Items[0].ProductID)
	require.NoError(t, err)
	assert.Equal(t, seller.ID, p.SellerID)
	assert.Equal(t, "Cashew W240", p.Name)
	assert.Equal(t, 200, p.MinimumOrderQuantity)
	assert.Equal(t, model.DefaultProductImage, p.PrimaryImage)
	assert.Equal(t, "Kollam", p.Location)
}

func TestPlaceOrderAgainstExistingProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.user(t, "seller@example.com", model.RoleSeller)
	buyer := f.user(t, "buyer@example.com", model.RoleBuyer)
	p := f.product(t, seller, f.imageURL("a.jpg"))

	o, err := f.orderSvc.Place(ctx, actorOf(buyer), PlaceOrderInput{SellerID: seller.ID, ProductID: p.ID, Quantity: 100})
	require.NoError(t, err)
	assert.Equal(t, p.ID, o.Items[0].ProductID)
	assert.Equal(t, p.Name, o.Items[0].ProductName)
	assert.True(t, o.TotalAmount.Equal(decimal.RequireFromString("85050")), o.TotalAmount.String())
	assert.Equal(t, int64(1), countRows(t, f.db, &model.Product{}))

	other := f.user(t, "other@example.com", model.RoleSeller)
	_, err = f.orderSvc.Place(ctx, actorOf(buyer), PlaceOrderInput{SellerID: other.ID, ProductID: p.ID, Quantity: 100})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestPlaceOrderResolvesParties(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.user(t, "seller@example.com", model.RoleSeller)
	admin := f.user(t, "admin@example.com", model.RoleAdmin)
	buyer := f.user(t, "buyer@example.com", model.RoleBuyer)
	other := f.user(t, "other@example.com", model.RoleBuyer)

	_, err := f.orderSvc.Place(ctx, actorOf(admin), orderInput("missing"))
	assert.ErrorIs(t, err, ErrSellerNotFound)
	_, err = f.orderSvc.Place(ctx, actorOf(admin), orderInput(buyer.ID))
	assert.ErrorIs(t, err, ErrSellerNotFound)

	in := orderInput(seller.ID)
	in.BuyerID = "missing"
	_, err = f.orderSvc.Place(ctx, actorOf(admin), in)
	assert.ErrorIs(t, err, ErrBuyerNotFound)

	// A buyer always orders for themselves.
	in.BuyerID = other.ID
	o, err := f.orderSvc.Place(ctx, actorOf(buyer), in)
	require.NoError(t, err)
	assert.Equal(t, buyer.ID, o.BuyerID)

	_, err = f.orderSvc.Place(ctx, actorOf(seller), orderInput(seller.ID))
	assert.ErrorIs(t, err, ErrForbidden)

	bad := orderInput(seller.ID)
	bad.Grade = "Byadgi"
	_, err = f.orderSvc.Place(ctx, actorOf(buyer), bad)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "grade", verr.Field)
}

func TestPlaceOrderRequiredFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.user(t, "seller@example.com", model.RoleSeller)
	admin := f.user(t, "admin@example.com", model.RoleAdmin)

	zero := decimal.Zero
	negative := decimal.NewFromInt(-5)
	tests := []struct {
		name   string
		mutate func(in *PlaceOrderInput)
		field  string
	}{
		{"missing seller", func(in *PlaceOrderInput) { in.SellerID = " " }, "sellerId"},
		{"missing product name", func(in *PlaceOrderInput) { in.ProductName = "" }, "productName"},
		{"zero quantity", func(in *PlaceOrderInput) { in.Quantity = 0 }, "quantity"},
		{"missing price", func(in *PlaceOrderInput) { in.PricePerKg = nil }, "pricePerKg"},
		{"zero price", func(in *PlaceOrderInput) { in.PricePerKg = &zero }, "pricePerKg"},
		{"negative price", func(in *PlaceOrderInput) { in.PricePerKg = &negative }, "pricePerKg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := orderInput(seller.ID)
			tt.mutate(&in)
			_, err := f.orderSvc.Place(ctx, actorOf(admin), in)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
			assert.Zero(t, countRows(t, f.db, &model.Product{}))
			assert.Zero(t, countRows(t, f.db, &model.Order{}))
		})
	}
}

func TestPlaceOrderExistingProductKeepsListedPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.user(t, "seller@example.com", model.RoleSeller)
	buyer := f.user(t, "buyer@example.com", model.RoleBuyer)
	p := f.product(t, seller, f.imageURL("a.jpg"))

	price := decimal.NewFromInt(800)
	o, err := f.orderSvc.Place(ctx, actorOf(buyer), PlaceOrderInput{SellerID: seller.ID, ProductID: p.ID, Quantity: 10, PricePerKg: &price})
	require.NoError(t, err)
	assert.True(t, o.Items[0].PricePerKg.Equal(price))
	assert.True(t, o.TotalAmount.Equal(decimal.NewFromInt(8000)), o.TotalAmount.String())
}

func TestPlaceOrderRetriesOrderNumberCollision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.user(t, "seller@example.com", model.RoleSeller)
	buyer := f.user(t, "buyer@example.com", model.RoleBuyer)

	numbers := []string{"ORD-1-1", "ORD-1-1", "ORD-1-2"}
	svc := f.orderSvc.(*orderService)
	svc.number = func(time.Time) string {
		n := numbers[0]
		numbers = numbers[1:]
		return n
	}

	first, err := f.orderSvc.Place(ctx, actorOf(buyer), orderInput(seller.ID))
	require.NoError(t, err)
	second, err := f.orderSvc.Place(ctx, actorOf(buyer), orderInput(seller.ID))
	require.NoError(t, err)
	assert.Equal(t, "ORD-1-1", first.OrderNumber)
	assert.Equal(t, "ORD-1-2", second.OrderNumber)
	assert.Equal(t, int64(2), countRows(t, f.db, &model.Product{}))
	assert.Equal(t, int64(2), countRows(t, f.db, &model.OrderItem{}))
}

func TestPlaceOrderRollsBackProductWhenOrderFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.user(t, "seller@example.com", model.RoleSeller)
	buyer := f.user(t, "buyer@example.com", model.RoleBuyer)

	svc := f.orderSvc.(*orderService)
	svc.number = func(time.Time) string { return "ORD-FIXED" }

	_, err := f.orderSvc.Place(ctx, actorOf(buyer), orderInput(seller.ID))
	require.NoError(t, err)
	_, err = f.orderSvc.Place(ctx, actorOf(buyer), orderInput(seller.ID))
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	assert.Equal(t, int64(1), countRows(t, f.db, &model.Product{}))
	assert.Equal(t, int64(1), countRows(t, f.db, &model.Order{}))
}

func TestUpdateOrderRecomputesTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.user(t, "seller@example.com", model.RoleSeller)
	admin := f.user(t, "admin@example.com", model.RoleAdmin)
	buyer := f.user(t, "buyer@example.com", model.RoleBuyer)
	o, err := f.orderSvc.Place(ctx, actorOf(buyer), orderInput(seller.ID))
	require.NoError(t, err)
	productID := o.Items[0].ProductID

	qty := 50
	price := decimal.RequireFromString("1000")
	name := "Cashew W240 Export"
	paid := model.PaymentStatusPaid
	updated, err := f.orderSvc.Update(ctx, actorOf(admin), o.ID, UpdateOrderInput{
		ProductName: &name, Quantity: &qty, PricePerKg: &price, PaymentStatus: &paid,
	})
	require.NoError(t, err)
	assert.Equal(t, 50, updated.TotalQuantity)
	assert.True(t, updated.TotalAmount.Equal(decimal.NewFromInt(50000)), updated.TotalAmount.String())
	assert.True(t, updated.Items[0].TotalPrice.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, name, updated.Items[0].ProductName)
	assert.Equal(t, model.OrderStatusPending, updated.Status)
	assert.Equal(t, model.PaymentStatusPaid, updated.PaymentStatus)

	p, err := f.products.FindByID(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, "Cashew W240", p.Name)
	assert.True(t, p.PricePerKg.Equal(decimal.RequireFromString("910.25")))

	bogus := model.OrderStatus("LOST")
	_, err = f.orderSvc.Update(ctx, actorOf(admin), o.ID, UpdateOrderInput{Status: &bogus})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = f.orderSvc.Update(ctx, actorOf(buyer), o.ID, UpdateOrderInput{Quantity: &qty})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.orderSvc.Update(ctx, actorOf(admin), "missing", UpdateOrderInput{})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestDeleteOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.user(t, "seller@example.com", model.RoleSeller)
	admin := f.user(t, "admin@example.com", model.RoleAdmin)
	buyer := f.user(t, "buyer@example.com", model.RoleBuyer)
	o, err := f.orderSvc.Place(ctx, actorOf(buyer), orderInput(seller.ID))
	require.NoError(t, err)

	assert.ErrorIs(t, f.orderSvc.Delete(ctx, actorOf(buyer), o.ID), ErrForbidden)
	require.NoError(t, f.orderSvc.Delete(ctx, actorOf(admin), o.ID))
	assert.Equal(t, int64(0), countRows(t, f.db, &model.OrderItem{}))
	assert.ErrorIs(t, f.orderSvc.Delete(ctx, actorOf(admin), o.ID), ErrOrderNotFound)
	// The synthesized catalog product outlives the order.
	assert.Equal(t, int64(1), countRows(t, f.db, &model.Product{}))
}

func TestOrderVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.user(t, "seller@example.com", model.RoleSeller)
	rival := f.user(t, "rival@example.com", model.RoleSeller)
	admin := f.user(t, "admin@example.com", model.RoleAdmin)
	buyer := f.user(t, "buyer@example.com", model.RoleBuyer)
	stranger := f.user(t, "stranger@example.com", model.RoleBuyer)
	sales := f.user(t, "sales@example.com", model.RoleSales)

	o, err := f.orderSvc.Place(ctx, actorOf(buyer), orderInput(seller.ID))
	require.NoError(t, err)
	_, err = f.orderSvc.Place(ctx, actorOf(stranger), orderInput(rival.ID))
	require.NoError(t, err)

	for _, u := range []*model.User{admin, buyer, seller} {
		_, err := f.orderSvc.Get(ctx, actorOf(u), o.ID)
		assert.NoError(t, err, u.Email)
	}
	for _, u := range []*model.User{stranger, rival, sales} {
		_, err := f.orderSvc.Get(ctx, actorOf(u), o.ID)
		assert.ErrorIs(t, err, ErrForbidden, u.Email)
	}

	all, err := f.orderSvc.List(ctx, actorOf(admin))
	require.NoError(t, err)
	assert.Len(t, all, 2)
	mine, err := f.orderSvc.List(ctx, actorOf(buyer))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, o.ID, mine[0].ID)
	_, err = f.orderSvc.List(ctx, actorOf(sales))
	assert.ErrorIs(t, err, ErrForbidden)

	sold, err := f.orderSvc.ListBySeller(ctx, actorOf(seller), seller.ID)
	require.NoError(t, err)
	assert.Len(t, sold, 1)
	_, err = f.orderSvc.ListBySeller(ctx, actorOf(seller), rival.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.orderSvc.ListBySeller(ctx, actorOf(admin), buyer.ID)
	assert.ErrorIs(t, err, ErrSellerNotFound)
	viaAdmin, err := f.orderSvc.ListBySeller(ctx, actorOf(admin), rival.ID)
	require.NoError(t, err)
	assert.Len(t, viaAdmin, 1)
}
