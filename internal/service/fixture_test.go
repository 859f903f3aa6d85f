package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/staplewise/marketplace-backend/internal/auth"
	"github.com/staplewise/marketplace-backend/internal/config"
	"github.com/staplewise/marketplace-backend/internal/db"
	"github.com/staplewise/marketplace-backend/internal/mailer"
	"github.com/staplewise/marketplace-backend/internal/model"
	"github.com/staplewise/marketplace-backend/internal/repository"
	"github.com/staplewise/marketplace-backend/internal/storage"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "password123"

// recordingStore remembers every removal and can be told to fail some.
type recordingStore struct {
	*storage.MemoryStore
	mu      sync.Mutex
	removed []string
	failAll bool
	fail    map[string]bool
}

func newRecordingStore() *recordingStore {
	return &recordingStore{MemoryStore: storage.NewMemoryStore(), fail: map[string]bool{}}
}

func (s *recordingStore) Remove(ctx context.Context, bucket, name string) error {
	s.mu.Lock()
	s.removed = append(s.removed, name)
	fail := s.failAll || s.fail[name]
	s.mu.Unlock()
	if fail {
		return errors.New("storage unavailable")
	}
	_ = s.MemoryStore.Remove(ctx, bucket, name)
	return nil
}

func (s *recordingStore) Removed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.removed...)
}

type captureMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *captureMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *captureMailer) last() mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

type fixture struct {
	db       *gorm.DB
	users    repository.UserRepository
	products repository.ProductRepository
	queries  repository.QueryRepository
	orders   repository.OrderRepository
	store    *recordingStore
	gateway  *storage.Gateway
	hasher   *auth.Hasher
	tokens   *auth.Issuer
	mail     *captureMailer

	authSvc      AuthService
	userSvc      UserService
	productSvc   ProductService
	querySvc     QueryService
	orderSvc     OrderService
	dashboardSvc DashboardService
}

func storageConfig() config.StorageConfig {
	return config.StorageConfig{
		ImagesBucket:    "staplewise-images",
		DocumentsBucket: "staplewise-documents",
		PublicBaseURL:   "https://storage.staplewise.com",
		LegacyBaseURL:   "http://10.0.0.5:9000",
		LegacyHost:      "10.0.0.5",
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn, err := db.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(conn) })

	log := zap.NewNop()
	f := &fixture{
		db:       conn,
		users:    repository.NewUserRepository(conn),
		products: repository.NewProductRepository(conn),
		queries:  repository.NewQueryRepository(conn),
		orders:   repository.NewOrderRepository(conn),
		store:    newRecordingStore(),
		hasher:   auth.NewHasher(bcrypt.MinCost),
		tokens:   auth.NewIssuer("test-secret", time.Hour, time.Hour),
		mail:     &captureMailer{},
	}
	f.gateway = storage.NewGateway(f.store, storageConfig(), log)
	tx := repository.NewTxManager(conn)

	notify := NewNotificationService(f.mail, "https://staplewise.com/reset-password", time.Hour)
	f.authSvc = NewAuthService(f.users, f.hasher, f.tokens, notify, log)
	f.userSvc = NewUserService(f.users, f.hasher)
	f.productSvc = NewProductService(f.products, f.users, f.gateway, log)
	f.querySvc = NewQueryService(f.queries, f.products, f.users)
	f.orderSvc = NewOrderService(f.orders, f.products, f.users, tx, log)
	f.dashboardSvc = NewDashboardService(repository.NewStatsRepository(conn), f.queries, f.orders)
	return f
}

func (f *fixture) user(t *testing.T, email string, role model.Role) *model.User {
	t.Helper()
	hash, err := f.hasher.Hash(testPassword)
	require.NoError(t, err)
	u := &model.User{
		Email: email, PasswordHash: hash, Name: "User " + email, Phone: "9876543210",
		Role: role, CompanyName: "Company " + email, City: "Kollam", IsActive: true,
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) product(t *testing.T, seller *model.User, primary string, additional ...string) *model.Product {
	t.Helper()
	p := &model.Product{
		SellerID: seller.ID, Name: "Premium Cashew", Category: model.CategoryCashews, Grade: "W320",
		PricePerKg: decimal.RequireFromString("850.50"), MinimumOrderQuantity: 100, Unit: "KG", IsActive: true,
	}
	p.SetImages(primary, additional)
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func (f *fixture) imageURL(name string) string {
	return f.gateway.PublicURL("staplewise-images", name)
}

func actorOf(u *model.User) Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}

func countRows(t *testing.T, conn *gorm.DB, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(m).Count(&n).Error)
	return n
}
