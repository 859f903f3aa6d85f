package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/staplewise/marketplace-backend/internal/auth"
	"github.com/staplewise/marketplace-backend/internal/config"
	"github.com/staplewise/marketplace-backend/internal/db"
	"github.com/staplewise/marketplace-backend/internal/model"
	"github.com/staplewise/marketplace-backend/internal/repository"
	"gorm.io/gorm"
)

type seedUser struct {
	Key         string
	Email       string
	Password    string
	Name        string
	Phone       string
	Role        model.Role
	CompanyName string
	GSTIN       string
	City        string
}

type seedProduct struct {
	Key        string
	Seller     string
	Name       string
	Category   model.Category
	Grade      string
	Price      string
	MOQ        int
	Location   string
	Delivery   string
	Packaging  string
	ImageID    int
	Descriptor string
}

type seedQuery struct {
	Type        model.QueryType
	Quantity    int
	CompanyName string
	ContactName string
	Email       string
	Phone       string
	Pincode     string
	GST         string
	Product     string
	User        string
	Status      model.QueryStatus
	AssignedTo  string
	Message     string
}

type seedOrder struct {
	Number  string
	Buyer   string
	Product string
	Qty     int
	Status  model.OrderStatus
	Address string
}

var users = []seedUser{
	{"admin", "admin@staplewise.com", "admin123", "Admin User", "+919876543210", model.RoleAdmin, "StapleWise", "", "Bengaluru"},
	{"sales1", "sales1@staplewise.com", "sales123", "John Sales", "+919876543211", model.RoleSales, "StapleWise", "", "Bengaluru"},
	{"sales2", "sales2@staplewise.com", "sales123", "Sarah Sales", "+919876543212", model.RoleSales, "StapleWise", "", "Bengaluru"},
	{"seller1", "premium@cashews.com", "seller123", "Arjun Nair", "+919876543213", model.RoleSeller, "Premium Cashews Ltd", "GST456789123", "Mangalore, Karnataka"},
	{"seller2", "golden@kernel.com", "seller123", "Priya Sharma", "+919876543214", model.RoleSeller, "Golden Kernel Exports", "GST789123456", "Kochi, Kerala"},
	{"seller3", "coastal@cashew.com", "seller123", "Kavitha Reddy", "+919876543215", model.RoleSeller, "Coastal Cashew Co", "GST321654987", "Goa"},
	{"buyer1", "abc@foods.com", "buyer123", "Rajesh Kumar", "+919876543216", model.RoleBuyer, "ABC Foods Ltd", "GST987654321", "Mumbai"},
	{"buyer2", "food@corp.com", "buyer123", "Meera Patel", "+919876543217", model.RoleBuyer, "Food Corp Ltd", "GST654321987", "Hyderabad"},
	{"buyer3", "spice@traders.com", "buyer123", "Vikram Singh", "+919876543218", model.RoleBuyer, "Spice Traders Inc", "GST123789456", "Kolkata"},
}

var products = []seedProduct{
	{"w240", "seller1", "Premium W-240 Cashew Kernels", model.CategoryCashews, "W240", "850", 100, "Mangalore, Karnataka", "7-10 days", "Vacuum Packed", 4198019, "Natural white color with excellent taste and texture."},
	{"w320", "seller1", "Organic W-320 Cashew Kernels", model.CategoryCashews, "W320", "920", 50, "Mangalore, Karnataka", "5-7 days", "Organic Packing", 1630588, "Certified organic with superior quality."},
	{"w180", "seller1", "Premium W-180 Cashew Kernels", model.CategoryCashews, "W180", "980", 200, "Mangalore, Karnataka", "7-10 days", "Premium Packing", 4110256, "Largest commercial size with excellent presentation."},
	{"lwp", "seller1", "LWP Cashew Kernels", model.CategoryCashews, "LWP", "750", 500, "Mangalore, Karnataka", "5-7 days", "Industrial Packing", 4198020, "Broken pieces of premium quality, perfect for processing."},
	{"swp", "seller1", "SWP Cashew Kernels", model.CategoryCashews, "SWP", "680", 1000, "Mangalore, Karnataka", "3-5 days", "Food Grade Packing", 4110257, "Ideal for bakery and food processing."},
	{"golden", "seller2", "Golden W-180 Cashew Kernels", model.CategoryCashews, "W180", "950", 200, "Kochi, Kerala", "10-15 days", "Premium Packing", 4110258, "Premium golden color with excellent taste."},
	{"pepper", "seller3", "Black Pepper", model.CategoryPepper, "Premium", "450", 500, "Goa", "3-5 days", "Jute Bags", 4198021, "4mm size, low moisture content and 99% purity."},
}

var queries = []seedQuery{
	{model.QueryTypeBuy, 500, "ABC Foods Ltd", "Rajesh Kumar", "rajesh@abc.com", "+919876543219", "400001", "GST987654321", "w240", "buyer1", model.QueryStatusPending, "", "Looking for bulk order of premium cashews"},
	{model.QueryTypeBuy, 1000, "Food Corp Ltd", "Meera Patel", "meera@foodcorp.com", "+919876543220", "500001", "GST654321987", "w320", "buyer2", model.QueryStatusAssigned, "sales1", "Need organic cashews for export"},
	{model.QueryTypeSell, 2000, "Spice Traders Inc", "Vikram Singh", "vikram@spice.com", "+919876543221", "600001", "GST123789456", "golden", "buyer3", model.QueryStatusCompleted, "", "Selling premium cashews"},
	{model.QueryTypeBuy, 300, "Restaurant Chain", "Amit Shah", "amit@restaurant.com", "+919876543222", "700001", "", "pepper", "", model.QueryStatusPending, "", "Looking for black pepper for restaurant use"},
	{model.QueryTypeBulkOrder, 1500, "Export Company", "Neha Gupta", "neha@export.com", "+919876543223", "800001", "GST456123789", "w240", "", model.QueryStatusInProgress, "sales2", "Bulk order for international export"},
}

var orders = []seedOrder{
	{"ORD-2024-001", "buyer1", "w240", 500, model.OrderStatusConfirmed, "ABC Foods Ltd, Mumbai, Maharashtra - 400001"},
	{"ORD-2024-002", "buyer2", "w320", 500, model.OrderStatusProcessing, "Food Corp Ltd, Hyderabad, Telangana - 500001"},
	{"ORD-2024-003", "buyer3", "pepper", 500, model.OrderStatusDelivered, "Spice Traders Inc, Kolkata, West Bengal - 600001"},
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	conn, err := db.Connect(cfg.DB)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() { _ = db.Close(conn) }()
	if err := db.Migrate(conn); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	canSeed, err := shouldSeed(conn)
	if err != nil {
		return err
	}
	if !canSeed {
		log.Printf("users already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	hasher := auth.NewHasher(cfg.Auth.BcryptCost)
	err = conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return seed(ctx, tx, hasher)
	})
	if err != nil {
		return err
	}
	log.Printf("seeded %d users, %d products, %d queries, %d orders", len(users), len(products), len(queries), len(orders))
	return nil
}

func seed(ctx context.Context, tx *gorm.DB, hasher *auth.Hasher) error {
	for _, m := range []interface{}{&model.OrderItem{}, &model.Order{}, &model.Query{}, &model.Product{}, &model.User{}} {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
			return fmt.Errorf("clear %T: %w", m, err)
		}
	}

	userRepo := repository.NewUserRepository(tx)
	productRepo := repository.NewProductRepository(tx)
	queryRepo := repository.NewQueryRepository(tx)
	orderRepo := repository.NewOrderRepository(tx)

	userIDs := map[string]string{}
	for _, su := range users {
		hash, err := hasher.Hash(su.Password)
		if err != nil {
			return err
		}
		u := &model.User{
			Email: su.Email, PasswordHash: hash, Name: su.Name, Phone: su.Phone, Role: su.Role,
			CompanyName: su.CompanyName, GSTIN: su.GSTIN, City: su.City, IsActive: true, IsVerified: true,
		}
		if err := userRepo.Create(ctx, u); err != nil {
			return fmt.Errorf("create user %s: %w", su.Email, err)
		}
		userIDs[su.Key] = u.ID
	}

	catalog := map[string]*model.Product{}
	for _, sp := range products {
		p := &model.Product{
			SellerID:               userIDs[sp.Seller],
			Name:                   sp.Name,
			Category:               sp.Category,
			Grade:                  sp.Grade,
			PricePerKg:             decimal.RequireFromString(sp.Price),
			MinimumOrderQuantity:   sp.MOQ,
			Unit:                   model.DefaultUnit,
			Description:            strings.TrimSuffix(sp.Descriptor, "."),
			Specifications:         fmt.Sprintf("Grade: %s", sp.Grade),
			SpecificationsAndGrade: fmt.Sprintf("%s grade %s. %s", sp.Grade, strings.ToLower(string(sp.Category)), sp.Descriptor),
			QualityAssurance:       "1. ISO 22000 Certified\n2. HACCP Compliant\n3. Regular Quality Checks",
			PackagingAndDelivery:   "1. Bulk Packaging Options\n2. Express Delivery Available\n3. Insurance Coverage",
			DeliveryTime:           sp.Delivery,
			PackagingType:          sp.Packaging,
			Location:               sp.Location,
			IsActive:               true,
			IsVerified:             true,
		}
		p.SetImages(pexelsURL(sp.ImageID), nil)
		if err := productRepo.Create(ctx, p); err != nil {
			return fmt.Errorf("create product %s: %w", sp.Name, err)
		}
		catalog[sp.Key] = p
	}

	for _, sq := range queries {
		q := &model.Query{
			Type: sq.Type, Quantity: sq.Quantity, CompanyName: sq.CompanyName, ContactName: sq.ContactName,
			Email: sq.Email, Phone: sq.Phone, Pincode: sq.Pincode, GST: sq.GST, ProductID: catalog[sq.Product].ID,
			Status: sq.Status, Priority: model.QueryPriorityMedium, Message: sq.Message,
		}
		if sq.User != "" {
			id := userIDs[sq.User]
			q.UserID = &id
		}
		if sq.AssignedTo != "" {
			id := userIDs[sq.AssignedTo]
			q.AssignedToID = &id
		}
		if err := queryRepo.Create(ctx, q); err != nil {
			return fmt.Errorf("create query for %s: %w", sq.CompanyName, err)
		}
	}

	for _, so := range orders {
		p := catalog[so.Product]
		o := &model.Order{
			OrderNumber:     so.Number,
			BuyerID:         userIDs[so.Buyer],
			Status:          so.Status,
			PaymentStatus:   model.PaymentStatusPaid,
			ShippingAddress: so.Address,
			Items: []model.OrderItem{{
				ProductID: p.ID, SellerID: p.SellerID, ProductName: p.Name, Category: p.Category,
				Grade: p.Grade, Quantity: so.Qty, PricePerKg: p.PricePerKg,
			}},
		}
		o.Recalculate()
		if err := orderRepo.Create(ctx, o); err != nil {
			return fmt.Errorf("create order %s: %w", so.Number, err)
		}
	}
	return nil
}

func shouldSeed(conn *gorm.DB) (bool, error) {
	var cnt int64
	if err := conn.Model(&model.User{}).Count(&cnt).Error; err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if cnt == 0 {
		return true, nil
	}
	return strings.EqualFold(os.Getenv("FORCE_SEED"), "true"), nil
}

func pexelsURL(id int) string {
	return fmt.Sprintf("https://images.pexels.com/photos/%d/pexels-photo-%d.jpeg?auto=compress&cs=tinysrgb&w=400", id, id)
}
