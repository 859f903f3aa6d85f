package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/staplewise/marketplace-backend/internal/auth"
	"github.com/staplewise/marketplace-backend/internal/config"
	"github.com/staplewise/marketplace-backend/internal/db"
	"github.com/staplewise/marketplace-backend/internal/mailer"
	"github.com/staplewise/marketplace-backend/internal/model"
	"github.com/staplewise/marketplace-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const jwtSecret = "server-test-secret"

type testServer struct {
	t   *testing.T
	srv *Server
	db  *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	conn, err := db.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(conn) })

	cfg := &config.Config{
		GitSHA: "test",
		Auth: config.AuthConfig{
			JWTSecret: jwtSecret, SessionTTL: time.Hour, ResetTTL: time.Hour, BcryptCost: bcrypt.MinCost,
		},
		Storage: config.StorageConfig{
			ImagesBucket: "staplewise-images", DocumentsBucket: "staplewise-documents",
			PublicBaseURL: "https://storage.staplewise.com",
		},
	}
	log := zap.NewNop()
	gw := storage.NewGateway(storage.NewMemoryStore(), cfg.Storage, log)
	require.NoError(t, gw.EnsureBuckets(context.Background()))

	srv := New(Deps{Config: cfg, DB: conn, Gateway: gw, Mailer: mailer.New(cfg.Mail, log), Log: log})
	return &testServer{t: t, srv: srv, db: conn}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

type authBody struct {
	User struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
	Token string `json:"token"`
}

func (s *testServer) register(email, role string) authBody {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": email, "password": "pw123456", "name": "User " + email, "phone": "9000000000",
		"role": role, "companyName": "Company " + email,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	var out authBody
	decode(s.t, rec, &out)
	return out
}

// staff inserts an account that cannot self-register and logs it in.
func (s *testServer) staff(email string, role model.Role) authBody {
	s.t.Helper()
	hash, err := auth.NewHasher(bcrypt.MinCost).Hash("pw123456")
	require.NoError(s.t, err)
	u := &model.User{Email: email, PasswordHash: hash, Name: string(role), Phone: "9000000000", Role: role, IsActive: true}
	require.NoError(s.t, s.db.Create(u).Error)

	rec := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": "pw123456"})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	var out authBody
	decode(s.t, rec, &out)
	return out
}

func (s *testServer) count(m interface{}) int64 {
	s.t.Helper()
	var n int64
	require.NoError(s.t, s.db.Model(m).Count(&n).Error)
	return n
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "OK", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	s := newTestServer(t)
	s.register("b@x.com", "BUYER")

	rec := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "b@x.com", "password": "pw123456"})
	require.Equal(t, http.StatusOK, rec.Code)
	var out authBody
	decode(t, rec, &out)

	claims, err := auth.NewIssuer(jwtSecret, time.Hour, time.Hour).ParseSession(out.Token)
	require.NoError(t, err)
	assert.Equal(t, "BUYER", claims.Role)
	assert.Equal(t, out.User.ID, claims.UserID)

	rec = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "b@x.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "b@x.com", "password": "pw123456", "name": "Again", "phone": "1", "role": "BUYER",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "duplicate_email")

	rec = s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "boss@x.com", "password": "pw123456", "name": "Boss", "phone": "1", "role": "ADMIN",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminOrderSynthesizesNewProduct(t *testing.T) {
	s := newTestServer(t)
	seller := s.register("seller@x.com", "SELLER")
	admin := s.staff("admin@x.com", model.RoleAdmin)

	rec := s.do(http.MethodPost, "/api/seller/products", seller.Token, map[string]interface{}{
		"name": "W240", "category": "CASHEWS", "grade": "W240", "pricePerKg": 850,
		"minimumOrderQuantity": 100, "primaryImage": "https://storage.staplewise.com/staplewise-images/w240.jpg",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var listing struct {
		ID         string          `json:"id"`
		PricePerKg decimal.Decimal `json:"pricePerKg"`
	}
	decode(t, rec, &listing)
	assert.True(t, listing.PricePerKg.Equal(decimal.NewFromInt(850)))

	rec = s.do(http.MethodPost, "/api/admin/orders", admin.Token, map[string]interface{}{
		"sellerId": seller.User.ID, "productName": "W240", "category": "CASHEWS", "grade": "W240",
		"quantity": 50, "pricePerKg": 900,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var order struct {
		TotalAmount   decimal.Decimal `json:"totalAmount"`
		TotalQuantity int             `json:"totalQuantity"`
		Items         []struct {
			ProductID string `json:"productId"`
		} `json:"items"`
	}
	decode(t, rec, &order)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(45000)), order.TotalAmount.String())
	assert.Equal(t, 50, order.TotalQuantity)
	require.Len(t, order.Items, 1)
	assert.NotEqual(t, listing.ID, order.Items[0].ProductID)
	assert.Equal(t, int64(2), s.count(&model.Product{}))

	// The seller listing is untouched.
	rec = s.do(http.MethodGet, "/api/products/"+listing.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &listing)
	assert.True(t, listing.PricePerKg.Equal(decimal.NewFromInt(850)))
}

func TestAdminOrderWithoutPriceRejected(t *testing.T) {
	s := newTestServer(t)
	seller := s.register("seller@x.com", "SELLER")
	admin := s.staff("admin@x.com", model.RoleAdmin)

	rec := s.do(http.MethodPost, "/api/admin/orders", admin.Token, map[string]interface{}{
		"sellerId": seller.User.ID, "productName": "W240", "category": "CASHEWS", "grade": "W240",
		"quantity": 200,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "validation_error")
	assert.Contains(t, rec.Body.String(), "pricePerKg")
	assert.Zero(t, s.count(&model.Product{}))
	assert.Zero(t, s.count(&model.Order{}))
}

func TestQueryAssignmentFlow(t *testing.T) {
	s := newTestServer(t)
	seller := s.register("seller@x.com", "SELLER")
	admin := s.staff("admin@x.com", model.RoleAdmin)
	sales := s.staff("sales@x.com", model.RoleSales)

	rec := s.do(http.MethodPost, "/api/seller/products", seller.Token, map[string]interface{}{
		"name": "Pepper", "category": "PEPPER", "grade": "Premium", "pricePerKg": 600,
		"primaryImage": "https://storage.staplewise.com/staplewise-images/pepper.jpg",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var product struct {
		ID string `json:"id"`
	}
	decode(t, rec, &product)

	rec = s.do(http.MethodPost, "/api/queries", "", map[string]interface{}{
		"type": "BUY", "quantity": 10, "companyName": "Acme", "contactName": "Ravi", "email": "ravi@acme.in",
		"phone": "9000000001", "pincode": "691001", "productId": product.ID, "userId": seller.User.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	type queryBody struct {
		Query struct {
			ID           string  `json:"id"`
			Status       string  `json:"status"`
			UserID       *string `json:"userId"`
			AssignedToID *string `json:"assignedToId"`
		} `json:"query"`
	}
	var created queryBody
	decode(t, rec, &created)
	assert.Nil(t, created.Query.UserID)
	id := created.Query.ID

	rec = s.do(http.MethodPost, "/api/admin/queries/"+id+"/assign", admin.Token, map[string]string{"assignedToId": seller.User.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/admin/queries/"+id+"/assign", admin.Token, map[string]string{"assignedToId": sales.User.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var assigned queryBody
	decode(t, rec, &assigned)
	assert.Equal(t, "ASSIGNED", assigned.Query.Status)
	require.NotNil(t, assigned.Query.AssignedToID)
	assert.Equal(t, sales.User.ID, *assigned.Query.AssignedToID)

	rec = s.do(http.MethodPut, "/api/admin/queries/"+id+"/status", admin.Token, map[string]string{"status": "COMPLETED"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var completed queryBody
	decode(t, rec, &completed)
	assert.Equal(t, "COMPLETED", completed.Query.Status)
	require.NotNil(t, completed.Query.AssignedToID)
	assert.Equal(t, sales.User.ID, *completed.Query.AssignedToID)

	rec = s.do(http.MethodGet, "/api/sales/queries", sales.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []map[string]interface{}
	decode(t, rec, &mine)
	assert.Len(t, mine, 1)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/admin/queries", sales.Token, nil).Code)
}

func TestDeletingSellerKeepsProducts(t *testing.T) {
	s := newTestServer(t)
	seller := s.register("seller@x.com", "SELLER")
	admin := s.staff("admin@x.com", model.RoleAdmin)
	for _, name := range []string{"W320", "W400"} {
		rec := s.do(http.MethodPost, "/api/seller/products", seller.Token, map[string]interface{}{
			"name": name, "category": "CASHEWS", "grade": name, "pricePerKg": 700,
			"primaryImage": "https://storage.staplewise.com/staplewise-images/" + name + ".jpg",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := s.do(http.MethodDelete, "/api/admin/users/"+seller.User.ID, admin.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(2), s.count(&model.Product{}))

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/admin/users/"+seller.User.ID, admin.Token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodDelete, "/api/admin/users/"+admin.User.ID, admin.Token, nil).Code)
	// The deleted seller's token no longer authenticates.
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/seller/products", seller.Token, nil).Code)
}

func TestIdentityComesFromTokenOnly(t *testing.T) {
	s := newTestServer(t)
	seller := s.register("seller@x.com", "SELLER")
	buyer := s.register("buyer@x.com", "BUYER")

	req := httptest.NewRequest(http.MethodGet, "/api/seller/products", nil)
	req.Header.Set("user-id", seller.User.ID)
	rec := httptest.NewRecorder()
	s.srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/seller/products", buyer.Token, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/admin/dashboard-stats", buyer.Token, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/auth/me", buyer.Token, nil).Code)
}

func TestCORSAllowsLocalhost(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	s.srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAllowOrigin(t *testing.T) {
	allow := allowOrigin([]string{"https://staplewise.com"})
	for origin, want := range map[string]bool{
		"https://staplewise.com":   true,
		"http://127.0.0.1:3000":    true,
		"https://evil.example.com": false,
		"ftp://staplewise.com":     false,
	} {
		got, err := allow(origin)
		require.NoError(t, err)
		assert.Equal(t, want, got, origin)
	}
}
