package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/staplewise/marketplace-backend/internal/model"
	"github.com/staplewise/marketplace-backend/internal/service"
	"github.com/staplewise/marketplace-backend/internal/storage"
	"go.uber.org/zap"
)

type ProductHandler struct {
	svc service.ProductService
	log *zap.Logger
}

func NewProductHandler(svc service.ProductService, log *zap.Logger) *ProductHandler {
	return &ProductHandler{svc: svc, log: log}
}

type SellerSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CompanyName string `json:"companyName"`
}

type ProductResponse struct {
	ID                     string                 `json:"id"`
	SellerID               string                 `json:"sellerId"`
	Seller                 *SellerSummary         `json:"seller,omitempty"`
	Name                   string                 `json:"name"`
	Category               string                 `json:"category"`
	Grade                  string                 `json:"grade"`
	PricePerKg             decimal.Decimal        `json:"pricePerKg"`
	MinimumOrderQuantity   int                    `json:"minimumOrderQuantity"`
	Unit                   string                 `json:"unit"`
	Description            string                 `json:"description"`
	Specifications         string                 `json:"specifications"`
	SpecificationsAndGrade string                 `json:"specificationsAndGrade"`
	QualityAssurance       string                 `json:"qualityAssurance"`
	PackagingAndDelivery   string                 `json:"packagingAndDelivery"`
	DeliveryTime           string                 `json:"deliveryTime"`
	PackagingType          string                 `json:"packagingType"`
	PrimaryImage           string                 `json:"primaryImage"`
	AdditionalImages       []string               `json:"additionalImages"`
	Location               string                 `json:"location"`
	IsActive               bool                   `json:"isActive"`
	IsVerified             bool                   `json:"isVerified"`
	CreatedAt              string                 `json:"createdAt"`
	UpdatedAt              string                 `json:"updatedAt"`
	ImageCleanup           *storage.CleanupReport `json:"imageCleanup,omitempty"`
}

type ProductRequest struct {
	Name                   string          `json:"name"`
	Category               string          `json:"category"`
	Grade                  string          `json:"grade"`
	PricePerKg             decimal.Decimal `json:"pricePerKg"`
	MinimumOrderQuantity   int             `json:"minimumOrderQuantity"`
	Unit                   string          `json:"unit"`
	Description            string          `json:"description"`
	Specifications         string          `json:"specifications"`
	SpecificationsAndGrade string          `json:"specificationsAndGrade"`
	QualityAssurance       string          `json:"qualityAssurance"`
	PackagingAndDelivery   string          `json:"packagingAndDelivery"`
	DeliveryTime           string          `json:"deliveryTime"`
	PackagingType          string          `json:"packagingType"`
	PrimaryImage           string          `json:"primaryImage"`
	AdditionalImages       []string        `json:"additionalImages"`
	Location               string          `json:"location"`
	IsActive               *bool           `json:"isActive"`
}

type ProductStatusRequest struct {
	IsActive *bool `json:"isActive"`
}

type DeleteProductResponse struct {
	Success      bool                  `json:"success"`
	Message      string                `json:"message"`
	ImageCleanup storage.CleanupReport `json:"imageCleanup"`
}

func (r ProductRequest) input() service.ProductInput {
	return service.ProductInput{
		Name:                   r.Name,
		Category:               model.Category(r.Category),
		Grade:                  r.Grade,
		PricePerKg:             r.PricePerKg,
		MinimumOrderQuantity:   r.MinimumOrderQuantity,
		Unit:                   r.Unit,
		Description:            r.Description,
		Specifications:         r.Specifications,
		SpecificationsAndGrade: r.SpecificationsAndGrade,
		QualityAssurance:       r.QualityAssurance,
		PackagingAndDelivery:   r.PackagingAndDelivery,
		DeliveryTime:           r.DeliveryTime,
		PackagingType:          r.PackagingType,
		PrimaryImage:           r.PrimaryImage,
		AdditionalImages:       r.AdditionalImages,
		Location:               r.Location,
		IsActive:               r.IsActive,
	}
}

func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.svc.List(c.Request().Context(), service.ProductFilter{
		Category: model.Category(c.QueryParam("category")),
		Grade:    c.QueryParam("grade"),
		SellerID: c.QueryParam("sellerId"),
		Search:   c.QueryParam("search"),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toProductResponses(products))
}

func (h *ProductHandler) Get(c echo.Context) error {
	p, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

func (h *ProductHandler) ListMine(c echo.Context) error {
	products, err := h.svc.ListBySeller(c.Request().Context(), actorFrom(c).UserID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toProductResponses(products))
}

func (h *ProductHandler) GetMine(c echo.Context) error {
	p, err := h.svc.GetOwned(c.Request().Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

func (h *ProductHandler) Create(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	p, err := h.svc.Create(c.Request().Context(), actorFrom(c), req.input())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, toProductResponse(p))
}

func (h *ProductHandler) Update(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	p, report, err := h.svc.Update(c.Request().Context(), actorFrom(c), c.Param("id"), req.input())
	if err != nil {
		return writeError(c, h.log, err)
	}
	resp := toProductResponse(p)
	resp.ImageCleanup = &report
	return c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) SetStatus(c echo.Context) error {
	var req ProductStatusRequest
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	if req.IsActive == nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("validation_error", "isActive: is required"))
	}
	p, err := h.svc.SetActive(c.Request().Context(), actorFrom(c), c.Param("id"), *req.IsActive)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

func (h *ProductHandler) Delete(c echo.Context) error {
	report, err := h.svc.Delete(c.Request().Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	msg := "Product and associated images deleted successfully"
	if !report.OK() {
		msg = "Product deleted; some images could not be removed"
	}
	return c.JSON(http.StatusOK, DeleteProductResponse{Success: true, Message: msg, ImageCleanup: report})
}

func toSellerSummary(u *model.User) *SellerSummary {
	if u == nil {
		return nil
	}
	return &SellerSummary{ID: u.ID, Name: u.Name, CompanyName: u.CompanyName}
}

func toProductResponses(products []model.Product) []ProductResponse {
	resp := make([]ProductResponse, 0, len(products))
	for i := range products {
		resp = append(resp, toProductResponse(&products[i]))
	}
	return resp
}

func toProductResponse(p *model.Product) ProductResponse {
	additional := []string(p.AdditionalImages)
	if additional == nil {
		additional = []string{}
	}
	return ProductResponse{
		ID:                     p.ID,
		SellerID:               p.SellerID,
		Seller:                 toSellerSummary(p.Seller),
		Name:                   p.Name,
		Category:               string(p.Category),
		Grade:                  p.Grade,
		PricePerKg:             p.PricePerKg,
		MinimumOrderQuantity:   p.MinimumOrderQuantity,
		Unit:                   p.Unit,
		Description:            p.Description,
		Specifications:         p.Specifications,
		SpecificationsAndGrade: p.SpecificationsAndGrade,
		QualityAssurance:       p.QualityAssurance,
		PackagingAndDelivery:   p.PackagingAndDelivery,
		DeliveryTime:           p.DeliveryTime,
		PackagingType:          p.PackagingType,
		PrimaryImage:           p.PrimaryImage,
		AdditionalImages:       additional,
		Location:               p.Location,
		IsActive:               p.IsActive,
		IsVerified:             p.IsVerified,
		CreatedAt:              formatTime(p.CreatedAt),
		UpdatedAt:              formatTime(p.UpdatedAt),
	}
}
