package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/staplewise/marketplace-backend/internal/model"
	"github.com/staplewise/marketplace-backend/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	svc   service.AuthService
	users service.UserService
	log   *zap.Logger
}

func NewAuthHandler(svc service.AuthService, users service.UserService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, users: users, log: log}
}

type UserResponse struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	Phone       string  `json:"phone"`
	Role        string  `json:"role"`
	CompanyName *string `json:"companyName"`
	GST         *string `json:"gst"`
	City        *string `json:"city,omitempty"`
	IsActive    bool    `json:"isActive"`
	IsVerified  bool    `json:"isVerified"`
	CreatedAt   string  `json:"createdAt"`
}

type AuthResponse struct {
	Success bool         `json:"success"`
	User    UserResponse `json:"user"`
	Token   string       `json:"token"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Role        string `json:"role"`
	CompanyName string `json:"companyName"`
	GST         string `json:"gst"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	ResetToken  string `json:"resetToken"`
	NewPassword string `json:"newPassword"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	res, err := h.svc.Register(c.Request().Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		Phone:       req.Phone,
		Role:        model.Role(req.Role),
		CompanyName: req.CompanyName,
		GST:         req.GST,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, AuthResponse{Success: true, User: toUserResponse(res.User), Token: res.Token})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	res, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, AuthResponse{Success: true, User: toUserResponse(res.User), Token: res.Token})
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	if err := h.svc.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Password reset email sent successfully"})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	if err := h.svc.ResetPassword(c.Request().Context(), req.ResetToken, req.NewPassword); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Password reset successfully"})
}

func (h *AuthHandler) Me(c echo.Context) error {
	u, err := h.users.Get(c.Request().Context(), actorFrom(c).UserID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}

func toUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Phone:       u.Phone,
		Role:        string(u.Role),
		CompanyName: strPtrOrNil(u.CompanyName),
		GST:         strPtrOrNil(u.GSTIN),
		City:        strPtrOrNil(u.City),
		IsActive:    u.IsActive,
		IsVerified:  u.IsVerified,
		CreatedAt:   formatTime(u.CreatedAt),
	}
}
