package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/SergeiKhy/qrlink/internal/payload"
	"github.com/SergeiKhy/qrlink/internal/repository"
	"github.com/SergeiKhy/qrlink/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RedirectHandler публичная точка сканирования QR-кода
type RedirectHandler struct {
	dispatcher service.Dispatcher
	logger     *zap.Logger
}

func NewRedirectHandler(dispatcher service.Dispatcher, logger *zap.Logger) *RedirectHandler {
	return &RedirectHandler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Resolve GET /r/:code
func (h *RedirectHandler) Resolve(c *gin.Context) {
	req := service.ResolveRequest{
		Code:      c.Param("code"),
		ClientIP:  forwardedIP(c.Request),
		UserAgent: c.Request.UserAgent(),
	}

	resp, err := h.dispatcher.Resolve(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrLinkNotFound):
			c.Data(http.StatusNotFound, payload.ContentTypeHTML, payload.NotFoundPage())
		case errors.Is(err, payload.ErrInvalidLinkType):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid link type"})
		default:
			h.logger.Error("Ошибка обработки скана", zap.String("code", req.Code), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	if resp.IsRedirect() {
		c.Redirect(resp.Status, resp.Location)
		return
	}

	if resp.Filename != "" {
		c.Header("Content-Disposition", `attachment; filename="`+resp.Filename+`"`)
	}
	c.Data(resp.Status, resp.ContentType, resp.Body)
}

// forwardedIP сырое значение прокси-заголовков; пустая строка, если их нет
func forwardedIP(r *http.Request) string {
	if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
		return xff
	}
	return strings.TrimSpace(r.Header.Get("X-Real-IP"))
}
