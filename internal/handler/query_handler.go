package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/staplewise/marketplace-backend/internal/model"
	"github.com/staplewise/marketplace-backend/internal/service"
	"go.uber.org/zap"
)

type QueryHandler struct {
	svc service.QueryService
	log *zap.Logger
}

func NewQueryHandler(svc service.QueryService, log *zap.Logger) *QueryHandler {
	return &QueryHandler{svc: svc, log: log}
}

type QueryProduct struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Grade    string `json:"grade"`
}

type QueryResponse struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	Quantity     int            `json:"quantity"`
	CompanyName  string         `json:"companyName"`
	ContactName  string         `json:"contactName"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone"`
	Pincode      string         `json:"pincode"`
	GST          *string        `json:"gst"`
	ProductID    string         `json:"productId"`
	Product      *QueryProduct  `json:"product,omitempty"`
	UserID       *string        `json:"userId"`
	Status       string         `json:"status"`
	Priority     string         `json:"priority"`
	AssignedToID *string        `json:"assignedToId"`
	AssignedTo   *SellerSummary `json:"assignedTo,omitempty"`
	AssignedAt   *string        `json:"assignedAt"`
	Message      *string        `json:"message"`
	CreatedAt    string         `json:"createdAt"`
	UpdatedAt    string         `json:"updatedAt"`
}

type QueryEnvelope struct {
	Success bool          `json:"success"`
	Query   QueryResponse `json:"query"`
}

type CreateQueryRequest struct {
	Type        string `json:"type"`
	Quantity    int    `json:"quantity"`
	CompanyName string `json:"companyName"`
	ContactName string `json:"contactName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Pincode     string `json:"pincode"`
	GST         string `json:"gst"`
	ProductID   string `json:"productId"`
	Message     string `json:"message"`
	Priority    string `json:"priority"`
}

type AssignQueryRequest struct {
	AssignedToID string `json:"assignedToId"`
	Status       string `json:"status"`
}

type QueryStatusRequest struct {
	Status string `json:"status"`
}

// Create never reads the submitter from the body; only a verified token
// attaches a user.
func (h *QueryHandler) Create(c echo.Context) error {
	var req CreateQueryRequest
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	q, err := h.svc.Create(c.Request().Context(), actorFrom(c).UserID, service.CreateQueryInput{
		Type:        model.QueryType(req.Type),
		Quantity:    req.Quantity,
		CompanyName: req.CompanyName,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Pincode:     req.Pincode,
		GST:         req.GST,
		ProductID:   req.ProductID,
		Message:     req.Message,
		Priority:    model.QueryPriority(req.Priority),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, QueryEnvelope{Success: true, Query: toQueryResponse(q)})
}

func (h *QueryHandler) List(c echo.Context) error {
	list, err := h.svc.List(c.Request().Context(), service.QueryFilter{
		Status:       model.QueryStatus(c.QueryParam("status")),
		Type:         model.QueryType(c.QueryParam("type")),
		AssignedToID: c.QueryParam("assignedToId"),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toQueryResponses(list))
}

func (h *QueryHandler) ListAssigned(c echo.Context) error {
	list, err := h.svc.ListAssigned(c.Request().Context(), actorFrom(c).UserID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toQueryResponses(list))
}

func (h *QueryHandler) Assign(c echo.Context) error {
	var req AssignQueryRequest
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	q, err := h.svc.Assign(c.Request().Context(), c.Param("queryId"), req.AssignedToID, model.QueryStatus(req.Status))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, QueryEnvelope{Success: true, Query: toQueryResponse(q)})
}

func (h *QueryHandler) UpdateStatus(c echo.Context) error {
	var req QueryStatusRequest
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	q, err := h.svc.UpdateStatus(c.Request().Context(), c.Param("queryId"), model.QueryStatus(req.Status))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, QueryEnvelope{Success: true, Query: toQueryResponse(q)})
}

func (h *QueryHandler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("queryId")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Query deleted successfully"})
}

func toQueryResponses(list []model.Query) []QueryResponse {
	resp := make([]QueryResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toQueryResponse(&list[i]))
	}
	return resp
}

func toQueryResponse(q *model.Query) QueryResponse {
	resp := QueryResponse{
		ID:           q.ID,
		Type:         string(q.Type),
		Quantity:     q.Quantity,
		CompanyName:  q.CompanyName,
		ContactName:  q.ContactName,
		Email:        q.Email,
		Phone:        q.Phone,
		Pincode:      q.Pincode,
		GST:          strPtrOrNil(q.GST),
		ProductID:    q.ProductID,
		UserID:       q.UserID,
		Status:       string(q.Status),
		Priority:     string(q.Priority),
		AssignedToID: q.AssignedToID,
		AssignedTo:   toSellerSummary(q.AssignedTo),
		AssignedAt:   formatTimePtr(q.AssignedAt),
		Message:      strPtrOrNil(q.Message),
		CreatedAt:    formatTime(q.CreatedAt),
		UpdatedAt:    formatTime(q.UpdatedAt),
	}
	if q.Product != nil {
		resp.Product = &QueryProduct{ID: q.Product.ID, Name: q.Product.Name, Category: string(q.Product.Category), Grade: q.Product.Grade}
	}
	return resp
}
