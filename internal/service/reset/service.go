package reset

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/sygemat/provider-portal/internal/config"
	"github.com/sygemat/provider-portal/internal/domain/models"
)

const (
	tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	tokenLength   = 32
)

// ValidationError reports a malformed reset request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ErrTokenRejected means the vendor refused the token as invalid or expired.
var ErrTokenRejected = errors.New("reset token invalid or expired")

// VendorClient is the slice of the Sygemat client the reset flow needs.
type VendorClient interface {
	ConfirmPasswordReset(ctx context.Context, email, token, newPassword string) (*models.ResetResult, error)
}

// Mailer dispatches the reset email.
type Mailer interface {
	SendResetEmail(ctx context.Context, mail, resetURL string) error
}

// Service implements the two-step password-reset flow: email a tokenized
// landing URL, then forward the token plus the new password to the vendor.
type Service struct {
	vendor VendorClient
	mailer Mailer
	cfg    config.ResetConfig
	logger *zap.Logger
}

// NewService wires the reset service.
func NewService(vendor VendorClient, mailer Mailer, cfg config.ResetConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{vendor: vendor, mailer: mailer, cfg: cfg, logger: logger}
}

// Request generates a reset token and mails the landing URL carrying it. The
// landing page reads token and email from the query string.
func (s *Service) Request(ctx context.Context, mail string) (*models.ResetResult, error) {
	if mail == "" {
		return nil, &ValidationError{Message: "Email es requerido"}
	}
	if !models.ValidEmail(mail) {
		return nil, &ValidationError{Message: "Formato de email inválido"}
	}

	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s&email=%s",
		strings.TrimSuffix(s.cfg.PortalBaseURL, "/"),
		url.QueryEscape(token),
		url.QueryEscape(mail))

	if err := s.mailer.SendResetEmail(ctx, mail, resetURL); err != nil {
		s.logger.Error("reset email dispatch failed",
			zap.String("kind", string(models.KindOf(err))),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("reset email sent", zap.String("token_prefix", token[:8]))

	return &models.ResetResult{
		Success: true,
		Message: "Email de recuperación enviado exitosamente",
	}, nil
}

// Confirm validates the new password locally, then lets the vendor judge the
// token.
func (s *Service) Confirm(ctx context.Context, req models.ResetConfirmRequest) (*models.ResetResult, error) {
	if req.Email == "" || req.Token == "" || req.NewPassword == "" {
		return nil, &ValidationError{Message: "Email, token y nueva contraseña son requeridos"}
	}
	if !models.ValidEmail(req.Email) {
		return nil, &ValidationError{Message: "Formato de email inválido"}
	}
	if errs := ValidatePassword(req.NewPassword); len(errs) > 0 {
		return nil, &ValidationError{Message: strings.Join(errs, ". ")}
	}

	result, err := s.vendor.ConfirmPasswordReset(ctx, req.Email, req.Token, req.NewPassword)
	if err != nil {
		var ue *models.UpstreamError
		if errors.As(err, &ue) && ue.Status == http.StatusBadRequest {
			return nil, ErrTokenRejected
		}
		s.logger.Error("reset confirmation upstream failure",
			zap.String("kind", string(models.KindOf(err))),
			zap.Error(err))
		return nil, err
	}

	if !result.Success {
		message := result.Message
		if message == "" {
			message = "Error al restablecer la contraseña"
		}
		return nil, &ValidationError{Message: message}
	}

	return &models.ResetResult{
		Success: true,
		Message: "Contraseña restablecida exitosamente",
	}, nil
}

func generateToken() (string, error) {
	buf := make([]byte, tokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	token := make([]byte, tokenLength)
	for i, b := range buf {
		token[i] = tokenAlphabet[int(b)%len(tokenAlphabet)]
	}
	return string(token), nil
}
