package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type HealthHandler struct {
	sha   string
	build string
	now   func() time.Time
}

func NewHealthHandler(sha, buildTime string) *HealthHandler {
	return &HealthHandler{sha: sha, build: buildTime, now: time.Now}
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	GitSHA    string `json:"gitSha,omitempty"`
	BuildTime string `json:"buildTime,omitempty"`
}

func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:    "OK",
		Timestamp: h.now().UTC().Format(time.RFC3339),
		GitSHA:    h.sha,
		BuildTime: h.build,
	})
}
