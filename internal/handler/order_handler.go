package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/staplewise/marketplace-backend/internal/model"
	"github.com/staplewise/marketplace-backend/internal/service"
	"go.uber.org/zap"
)

type OrderHandler struct {
	svc service.OrderService
	log *zap.Logger
}

func NewOrderHandler(svc service.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, log: log}
}

type OrderItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	SellerID    string          `json:"sellerId"`
	Seller      *SellerSummary  `json:"seller,omitempty"`
	ProductName string          `json:"productName"`
	Category    string          `json:"category"`
	Grade       string          `json:"grade"`
	Quantity    int             `json:"quantity"`
	PricePerKg  decimal.Decimal `json:"pricePerKg"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

type OrderResponse struct {
	ID              string              `json:"id"`
	OrderNumber     string              `json:"orderNumber"`
	BuyerID         string              `json:"buyerId"`
	Buyer           *SellerSummary      `json:"buyer,omitempty"`
	TotalAmount     decimal.Decimal     `json:"totalAmount"`
	TotalQuantity   int                 `json:"totalQuantity"`
	Status          string              `json:"status"`
	PaymentStatus   string              `json:"paymentStatus"`
	ShippingAddress string              `json:"shippingAddress"`
	Notes           *string             `json:"notes"`
	Items           []OrderItemResponse `json:"items"`
	CreatedAt       string              `json:"createdAt"`
	UpdatedAt       string              `json:"updatedAt"`
}

type PlaceOrderRequest struct {
	ProductID       string           `json:"productId"`
	SellerID        string           `json:"sellerId"`
	BuyerID         string           `json:"buyerId"`
	ProductName     string           `json:"productName"`
	Category        string           `json:"category"`
	Grade           string           `json:"grade"`
	Quantity        int              `json:"quantity"`
	PricePerKg      *decimal.Decimal `json:"pricePerKg"`
	DeliveryAddress string           `json:"deliveryAddress"`
	Notes           string           `json:"notes"`
}

type UpdateOrderRequest struct {
	ProductName     *string          `json:"productName"`
	Category        *string          `json:"category"`
	Grade           *string          `json:"grade"`
	Quantity        *int             `json:"quantity"`
	PricePerKg      *decimal.Decimal `json:"pricePerKg"`
	DeliveryAddress *string          `json:"deliveryAddress"`
	Notes           *string          `json:"notes"`
	Status          *string          `json:"status"`
	PaymentStatus   *string          `json:"paymentStatus"`
}

func (r UpdateOrderRequest) input() service.UpdateOrderInput {
	in := service.UpdateOrderInput{
		ProductName:     r.ProductName,
		Grade:           r.Grade,
		Quantity:        r.Quantity,
		PricePerKg:      r.PricePerKg,
		DeliveryAddress: r.DeliveryAddress,
		Notes:           r.Notes,
	}
	if r.Category != nil {
		cat := model.Category(*r.Category)
		in.Category = &cat
	}
	if r.Status != nil {
		st := model.OrderStatus(*r.Status)
		in.Status = &st
	}
	if r.PaymentStatus != nil {
		ps := model.PaymentStatus(*r.PaymentStatus)
		in.PaymentStatus = &ps
	}
	return in
}

func (h *OrderHandler) Place(c echo.Context) error {
	var req PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	o, err := h.svc.Place(c.Request().Context(), actorFrom(c), service.PlaceOrderInput{
		ProductID:       req.ProductID,
		SellerID:        req.SellerID,
		BuyerID:         req.BuyerID,
		ProductName:     req.ProductName,
		Category:        model.Category(req.Category),
		Grade:           req.Grade,
		Quantity:        req.Quantity,
		PricePerKg:      req.PricePerKg,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, toOrderResponse(o))
}

func (h *OrderHandler) List(c echo.Context) error {
	list, err := h.svc.List(c.Request().Context(), actorFrom(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toOrderResponses(list))
}

func (h *OrderHandler) Get(c echo.Context) error {
	o, err := h.svc.Get(c.Request().Context(), actorFrom(c), c.Param("orderId"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) ListBySeller(c echo.Context) error {
	list, err := h.svc.ListBySeller(c.Request().Context(), actorFrom(c), c.Param("sellerId"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toOrderResponses(list))
}

func (h *OrderHandler) Update(c echo.Context) error {
	var req UpdateOrderRequest
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	o, err := h.svc.Update(c.Request().Context(), actorFrom(c), c.Param("orderId"), req.input())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), actorFrom(c), c.Param("orderId")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Order deleted successfully"})
}

func toOrderResponses(list []model.Order) []OrderResponse {
	resp := make([]OrderResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toOrderResponse(&list[i]))
	}
	return resp
}

func toOrderResponse(o *model.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			SellerID:    it.SellerID,
			Seller:      toSellerSummary(it.Seller),
			ProductName: it.ProductName,
			Category:    string(it.Category),
			Grade:       it.Grade,
			Quantity:    it.Quantity,
			PricePerKg:  it.PricePerKg,
			TotalPrice:  it.TotalPrice,
		})
	}
	return OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		BuyerID:         o.BuyerID,
		Buyer:           toSellerSummary(o.Buyer),
		TotalAmount:     o.TotalAmount,
		TotalQuantity:   o.TotalQuantity,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		ShippingAddress: o.ShippingAddress,
		Notes:           strPtrOrNil(o.Notes),
		Items:           items,
		CreatedAt:       formatTime(o.CreatedAt),
		UpdatedAt:       formatTime(o.UpdatedAt),
	}
}
