package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/staplewise/marketplace-backend/internal/auth"
	"github.com/staplewise/marketplace-backend/internal/config"
	"github.com/staplewise/marketplace-backend/internal/handler"
	"github.com/staplewise/marketplace-backend/internal/mailer"
	appmw "github.com/staplewise/marketplace-backend/internal/middleware"
	"github.com/staplewise/marketplace-backend/internal/model"
	"github.com/staplewise/marketplace-backend/internal/repository"
	"github.com/staplewise/marketplace-backend/internal/service"
	"github.com/staplewise/marketplace-backend/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	Gateway *storage.Gateway
	Mailer  mailer.Mailer
	Redis   *redis.Client // optional, enables auth rate limiting
	Log     *zap.Logger
}

type Server struct {
	e *echo.Echo
}

func allowOrigin(allowed []string) func(string) (bool, error) {
	return func(origin string) (bool, error) {
		low := strings.ToLower(origin)
		if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
			strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
			return true, nil
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false, nil
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return false, nil
		}
		for _, a := range allowed {
			if strings.EqualFold(strings.TrimRight(a, "/"), origin) {
				return true, nil
			}
		}
		return false, nil
	}
}

func New(d Deps) *Server {
	cfg := d.Config
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(appmw.RequestID())
	e.Use(appmw.RequestLogger(log))
	e.Use(middleware.BodyLimit("10M"))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc:  allowOrigin(cfg.CORSAllowedOrigins),
	}))

	userRepo := repository.NewUserRepository(d.DB)
	productRepo := repository.NewProductRepository(d.DB)
	queryRepo := repository.NewQueryRepository(d.DB)
	orderRepo := repository.NewOrderRepository(d.DB)
	statsRepo := repository.NewStatsRepository(d.DB)
	tx := repository.NewTxManager(d.DB)

	hasher := auth.NewHasher(cfg.Auth.BcryptCost)
	tokens := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL, cfg.Auth.ResetTTL)
	notify := service.NewNotificationService(d.Mailer, cfg.Mail.ResetURLBase, cfg.Auth.ResetTTL)

	authSvc := service.NewAuthService(userRepo, hasher, tokens, notify, log)
	userSvc := service.NewUserService(userRepo, hasher)
	productSvc := service.NewProductService(productRepo, userRepo, d.Gateway, log)
	uploadSvc := service.NewUploadService(d.Gateway)
	querySvc := service.NewQueryService(queryRepo, productRepo, userRepo)
	orderSvc := service.NewOrderService(orderRepo, productRepo, userRepo, tx, log)
	dashboardSvc := service.NewDashboardService(statsRepo, queryRepo, orderRepo)

	authHandler := handler.NewAuthHandler(authSvc, userSvc, log)
	userHandler := handler.NewUserHandler(userSvc, log)
	productHandler := handler.NewProductHandler(productSvc, log)
	uploadHandler := handler.NewUploadHandler(uploadSvc, log)
	queryHandler := handler.NewQueryHandler(querySvc, log)
	orderHandler := handler.NewOrderHandler(orderSvc, log)
	adminHandler := handler.NewAdminHandler(dashboardSvc, log)
	healthHandler := handler.NewHealthHandler(cfg.GitSHA, cfg.BuildTime)

	authMw := appmw.NewAuthMiddleware(authSvc)
	limit := appmw.RateLimit(d.Redis, cfg.Auth.RateLimit, cfg.Auth.RateWindow, log)
	can := appmw.RequirePermission

	api := e.Group("/api")
	api.GET("/health", healthHandler.Health)

	api.POST("/auth/register", authHandler.Register, limit)
	api.POST("/auth/login", authHandler.Login, limit)
	api.POST("/auth/forgot-password", authHandler.ForgotPassword, limit)
	api.POST("/auth/reset-password", authHandler.ResetPassword)
	api.GET("/auth/me", authHandler.Me, authMw.RequireAuth)

	api.GET("/company-details", userHandler.GetCompanyDetails, authMw.RequireAuth, can(model.PermEditOwnCompany))
	api.POST("/company-details", userHandler.SaveCompanyDetails, authMw.RequireAuth, can(model.PermEditOwnCompany))

	api.GET("/products", productHandler.List)
	api.GET("/products/:id", productHandler.Get)

	seller := api.Group("/seller", authMw.RequireAuth, can(model.PermManageOwnProducts))
	seller.GET("/products", productHandler.ListMine)
	seller.POST("/products", productHandler.Create)
	seller.GET("/products/:id", productHandler.GetMine)
	seller.PUT("/products/:id", productHandler.Update)
	seller.PATCH("/products/:id/status", productHandler.SetStatus)
	seller.DELETE("/products/:id", productHandler.Delete)

	api.POST("/upload", uploadHandler.Upload, authMw.RequireAuth, can(model.PermUploadFiles))

	api.POST("/queries", queryHandler.Create, authMw.OptionalAuth)
	api.GET("/sales/queries", queryHandler.ListAssigned, authMw.RequireAuth, can(model.PermViewAssignedQueries))

	orders := api.Group("/orders", authMw.RequireAuth)
	orders.GET("", orderHandler.List)
	orders.POST("", orderHandler.Place, can(model.PermPlaceOrders, model.PermCheckout))
	orders.GET("/seller/:sellerId", orderHandler.ListBySeller, can(model.PermViewSellerOrders))
	orders.GET("/:orderId", orderHandler.Get)
	orders.PUT("/:orderId", orderHandler.Update, can(model.PermEditOrders))
	orders.DELETE("/:orderId", orderHandler.Delete, can(model.PermDeleteOrders))

	admin := api.Group("/admin", authMw.RequireAuth)
	admin.GET("/queries", queryHandler.List, can(model.PermManageQueries))
	admin.POST("/queries/:queryId/assign", queryHandler.Assign, can(model.PermManageQueries))
	admin.PUT("/queries/:queryId/status", queryHandler.UpdateStatus, can(model.PermManageQueries))
	admin.DELETE("/queries/:queryId", queryHandler.Delete, can(model.PermManageQueries))
	admin.GET("/orders", orderHandler.List, can(model.PermViewAllOrders))
	admin.POST("/orders", orderHandler.Place, can(model.PermPlaceOrders))
	admin.GET("/users", userHandler.List, can(model.PermManageUsers))
	admin.POST("/users", userHandler.Create, can(model.PermManageUsers))
	admin.DELETE("/users/:userId", userHandler.Delete, can(model.PermManageUsers))
	admin.GET("/sellers", userHandler.ListSellers, can(model.PermManageUsers))
	admin.GET("/dashboard-stats", adminHandler.DashboardStats, can(model.PermViewDashboard))

	return &Server{e: e}
}

func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
