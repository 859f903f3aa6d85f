package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/staplewise/marketplace-backend/internal/model"
	"github.com/staplewise/marketplace-backend/internal/service"
	"go.uber.org/zap"
)

type UserHandler struct {
	svc service.UserService
	log *zap.Logger
}

func NewUserHandler(svc service.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: log}
}

type AddressPayload struct {
	Street1 string `json:"street1"`
	Street2 string `json:"street2"`
	Pincode string `json:"pincode"`
	State   string `json:"state"`
}

type CompanyDetails struct {
	ID              string         `json:"id,omitempty"`
	Name            string         `json:"name"`
	City            string         `json:"city"`
	Address         AddressPayload `json:"address"`
	RegistrarName   string         `json:"registrarName"`
	GSTIN           string         `json:"gstin"`
	YearEstablished int            `json:"yearEstablished"`
	Phone           string         `json:"phone"`
	Email           string         `json:"email"`
}

type CompanyDetailsResponse struct {
	Success        bool           `json:"success"`
	CompanyDetails CompanyDetails `json:"companyDetails"`
}

type CreateUserRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Role        string `json:"role"`
	CompanyName string `json:"companyName"`
}

type SellerResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CompanyName string `json:"companyName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	City        string `json:"city"`
}

func (h *UserHandler) GetCompanyDetails(c echo.Context) error {
	u, err := h.svc.Get(c.Request().Context(), actorFrom(c).UserID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, CompanyDetailsResponse{Success: true, CompanyDetails: toCompanyDetails(u)})
}

func (h *UserHandler) SaveCompanyDetails(c echo.Context) error {
	var req CompanyDetails
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	u, err := h.svc.SaveCompanyDetails(c.Request().Context(), actorFrom(c).UserID, service.CompanyDetailsInput{
		Name:            req.Name,
		City:            req.City,
		Street1:         req.Address.Street1,
		Street2:         req.Address.Street2,
		Pincode:         req.Address.Pincode,
		State:           req.Address.State,
		RegistrarName:   req.RegistrarName,
		GSTIN:           req.GSTIN,
		YearEstablished: req.YearEstablished,
		Phone:           req.Phone,
		Email:           req.Email,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, CompanyDetailsResponse{Success: true, CompanyDetails: toCompanyDetails(u)})
}

func (h *UserHandler) List(c echo.Context) error {
	users, err := h.svc.List(c.Request().Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	resp := make([]UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResponse(&users[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) ListSellers(c echo.Context) error {
	sellers, err := h.svc.ListSellers(c.Request().Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	resp := make([]SellerResponse, 0, len(sellers))
	for _, s := range sellers {
		resp = append(resp, SellerResponse{ID: s.ID, Name: s.Name, CompanyName: s.CompanyName, Email: s.Email, Phone: s.Phone, City: s.City})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) Create(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	u, err := h.svc.CreateUser(c.Request().Context(), service.CreateUserInput{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		Phone:       req.Phone,
		Role:        model.Role(req.Role),
		CompanyName: req.CompanyName,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, toUserResponse(u))
}

func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), actorFrom(c), c.Param("userId")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "User deleted successfully"})
}

func toCompanyDetails(u *model.User) CompanyDetails {
	return CompanyDetails{
		ID:   u.ID,
		Name: u.CompanyName,
		City: u.City,
		Address: AddressPayload{
			Street1: u.Street1,
			Street2: u.Street2,
			Pincode: u.Pincode,
			State:   u.State,
		},
		RegistrarName:   u.RegistrarName,
		GSTIN:           u.GSTIN,
		YearEstablished: u.YearEstablished,
		Phone:           u.Phone,
		Email:           u.Email,
	}
}
