package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/staplewise/marketplace-backend/internal/service"
	"go.uber.org/zap"
)

type UploadHandler struct {
	svc service.UploadService
	log *zap.Logger
}

func NewUploadHandler(svc service.UploadService, log *zap.Logger) *UploadHandler {
	return &UploadHandler{svc: svc, log: log}
}

type UploadResponse struct {
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
	Bucket   string `json:"bucket"`
}

// Upload accepts a multipart "file" and an optional "bucket" field.
func (h *UploadHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("validation_error", "file: no file uploaded"))
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, h.log, err)
	}
	defer f.Close()

	up, err := h.svc.Upload(c.Request().Context(), actorFrom(c), c.FormValue("bucket"),
		fh.Filename, f, fh.Size, fh.Header.Get("Content-Type"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, UploadResponse{FileURL: up.URL, FileName: up.Name, Bucket: up.Bucket})
}
