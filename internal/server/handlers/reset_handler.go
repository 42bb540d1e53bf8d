package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sygemat/provider-portal/internal/domain/models"
	"github.com/sygemat/provider-portal/internal/service/reset"
)

// ResetHandler exposes both password-reset steps.
type ResetHandler struct {
	svc    *reset.Service
	logger *zap.Logger
}

// NewResetHandler constructs the HTTP handler adapter.
func NewResetHandler(svc *reset.Service, logger *zap.Logger) *ResetHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResetHandler{svc: svc, logger: logger}
}

// Request triggers the reset email.
func (h *ResetHandler) Request(c *gin.Context) {
	var req models.ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid reset payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email es requerido"})
		return
	}

	result, err := h.svc.Request(c.Request.Context(), req.Mail)
	if err != nil {
		var validationErr *reset.ValidationError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
		case models.KindOf(err) == models.KindTimeout:
			c.JSON(http.StatusRequestTimeout, gin.H{
				"error": "Timeout al enviar el email. Por favor, intente nuevamente.",
			})
		default:
			h.logger.Error("reset request failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Error al enviar el email de recuperación. Por favor, intente más tarde.",
			})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// Confirm completes the reset with the emailed token.
func (h *ResetHandler) Confirm(c *gin.Context) {
	var req models.ResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid reset confirm payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Email, token y nueva contraseña son requeridos",
		})
		return
	}

	result, err := h.svc.Confirm(c.Request.Context(), req)
	if err != nil {
		var validationErr *reset.ValidationError
		switch {
		case errors.Is(err, reset.ErrTokenRejected):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Token inválido o expirado",
			})
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   validationErr.Message,
			})
		default:
			h.logger.Error("reset confirmation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Error interno del servidor al restablecer la contraseña",
			})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
