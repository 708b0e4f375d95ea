package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/SergeiKhy/qrlink/internal/models"
	"github.com/SergeiKhy/qrlink/internal/payload"
	"github.com/SergeiKhy/qrlink/internal/repository"
	"github.com/SergeiKhy/qrlink/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LinkHandler struct {
	service service.LinkService
	logger  *zap.Logger
}

func NewLinkHandler(service service.LinkService, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{
		service: service,
		logger:  logger,
	}
}

type CreateLinkResponse struct {
	Code     string          `json:"code"`
	ShortURL string          `json:"shortUrl"`
	Type     models.LinkType `json:"type"`
	QRCode   string          `json:"qrCode"`
}

type LinkResponse struct {
	Code       string          `json:"code"`
	ShortURL   string          `json:"shortUrl"`
	Type       models.LinkType `json:"type"`
	Payload    string          `json:"payload"`
	IOSURL     string          `json:"iosUrl,omitempty"`
	AndroidURL string          `json:"androidUrl,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// CreateLink POST /api/v1/links
func (h *LinkHandler) CreateLink(c *gin.Context) {
	var input models.CreateLinkInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("Invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	created, err := h.service.CreateLink(c.Request.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, payload.ErrInvalidLinkType):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_type",
				Message: "type must be one of URL, PDF, VCARD, MESSAGE, APP_DOWNLOAD",
			})
		case errors.Is(err, payload.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_input",
				Message: err.Error(),
			})
		default:
			h.logger.Error("Failed to create link", zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to create link",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, CreateLinkResponse{
		Code:     created.Link.Code,
		ShortURL: created.ShortURL,
		Type:     created.Link.Type,
		QRCode:   created.QRCode,
	})
}

// GetLink GET /api/v1/links/:code
func (h *LinkHandler) GetLink(c *gin.Context) {
	code := c.Param("code")

	link, err := h.service.GetLink(c.Request.Context(), code)
	if err != nil {
		h.notFoundOrInternal(c, code, err)
		return
	}

	c.JSON(http.StatusOK, LinkResponse{
		Code:       link.Code,
		ShortURL:   h.service.ShortURL(link.Code),
		Type:       link.Type,
		Payload:    link.Payload,
		IOSURL:     link.IOSURL,
		AndroidURL: link.AndroidURL,
		CreatedAt:  link.CreatedAt,
	})
}

// DeleteLink DELETE /api/v1/links/:code
func (h *LinkHandler) DeleteLink(c *gin.Context) {
	code := c.Param("code")

	if err := h.service.DeleteLink(c.Request.Context(), code); err != nil {
		h.notFoundOrInternal(c, code, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Link deleted successfully"})
}

func (h *LinkHandler) notFoundOrInternal(c *gin.Context, code string, err error) {
	if errors.Is(err, repository.ErrLinkNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Link not found",
		})
		return
	}

	h.logger.Error("Link operation failed", zap.String("code", code), zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "Internal server error",
	})
}
