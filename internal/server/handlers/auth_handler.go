package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sygemat/provider-portal/internal/domain/models"
	"github.com/sygemat/provider-portal/internal/service/auth"
)

// AuthHandler exposes the login flow and its CAPTCHA gate.
type AuthHandler struct {
	svc    *auth.Service
	logger *zap.Logger
}

// NewAuthHandler constructs the HTTP handler adapter.
func NewAuthHandler(svc *auth.Service, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{svc: svc, logger: logger}
}

// Login proxies credentials to the vendor. Whatever goes wrong, the caller
// gets a deserializable JSON envelope; vendor error detail never leaves the
// logs.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email y contraseña son requeridos"})
		return
	}

	result, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeLoginError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *AuthHandler) writeLoginError(c *gin.Context, err error) {
	var validationErr *auth.ValidationError
	var lockedErr *auth.LockedError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.As(err, &lockedErr):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":               "Demasiados intentos fallidos. Por favor, espere antes de intentar nuevamente.",
			"retry_after_seconds": lockedErr.RetryAfterSeconds,
		})
	case errors.Is(err, auth.ErrCaptchaRequired):
		c.JSON(http.StatusForbidden, gin.H{
			"error":            "Por favor, complete la verificación de seguridad.",
			"captcha_required": true,
		})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Credenciales incorrectas. Por favor, verifique su correo electrónico y contraseña.",
		})
	default:
		h.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Error interno del servidor",
			"proveedor":  0,
			"nombre":     "",
			"Authentico": 0,
		})
	}
}

// NewCaptcha issues a challenge for the key passed in the query string.
func (h *AuthHandler) NewCaptcha(c *gin.Context) {
	key := auth.ClientKey(c.Query("key"))
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key es requerido"})
		return
	}

	challenge, err := h.svc.NewCaptcha(c.Request.Context(), key)
	if err != nil {
		h.logger.Error("failed issuing captcha", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno del servidor"})
		return
	}

	c.JSON(http.StatusOK, challenge)
}

// VerifyCaptcha grades an answer.
func (h *AuthHandler) VerifyCaptcha(c *gin.Context) {
	var answer models.CaptchaAnswer
	if err := c.ShouldBindJSON(&answer); err != nil {
		h.logger.Warn("invalid captcha payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Solicitud inválida"})
		return
	}
	answer.Key = auth.ClientKey(answer.Key)

	verified, err := h.svc.VerifyCaptcha(c.Request.Context(), answer)
	if err != nil {
		if errors.Is(err, auth.ErrChallengeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Desafío no encontrado o expirado", "verified": false})
			return
		}
		h.logger.Error("captcha verification failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno del servidor", "verified": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"verified": verified})
}
