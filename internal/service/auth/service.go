package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sygemat/provider-portal/internal/domain/models"
)

// ErrCaptchaRequired means the key has prior failed attempts and must pass a
// challenge before the next submission is accepted.
var ErrCaptchaRequired = errors.New("captcha verification required")

// ErrInvalidCredentials is the only credential error ever surfaced to the
// caller; vendor detail stays in the logs.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ValidationError reports a malformed login request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// LockedError rejects a submission during an active lockout.
type LockedError struct {
	RetryAfterSeconds int
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("too many failed attempts, retry in %ds", e.RetryAfterSeconds)
}

// VendorClient is the slice of the Sygemat client the auth flow needs.
type VendorClient interface {
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
}

// Service runs the login flow: rate-limit check, CAPTCHA gate, vendor call,
// error masking.
type Service struct {
	vendor  VendorClient
	limiter *Limiter
	captcha *CaptchaManager
	logger  *zap.Logger
}

// NewService wires the auth service.
func NewService(vendor VendorClient, limiter *Limiter, captcha *CaptchaManager, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{vendor: vendor, limiter: limiter, captcha: captcha, logger: logger}
}

// ClientKey normalizes an email into the limiter/CAPTCHA key.
func ClientKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login authenticates against the vendor. Credential rejections advance the
// rate limiter; transport failures never do.
func (s *Service) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	key := ClientKey(email)

	status, err := s.limiter.Check(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("limiter check: %w", err)
	}
	if status.Blocked {
		return nil, &LockedError{RetryAfterSeconds: status.RetryAfterSeconds}
	}

	if email == "" || password == "" {
		return nil, &ValidationError{Message: "Email y contraseña son requeridos"}
	}
	if !models.ValidEmail(email) {
		return nil, &ValidationError{Message: "Formato de email inválido"}
	}

	// After the first failed attempt every submission must carry a freshly
	// passed challenge. The flag is one-shot.
	if status.Attempts > 0 && !s.captcha.ConsumeVerified(key) {
		return nil, ErrCaptchaRequired
	}

	result, err := s.vendor.Login(ctx, email, password)
	if err != nil {
		// Connectivity problems are not the user's fault and do not count as
		// failed attempts.
		s.logger.Warn("login upstream failure",
			zap.String("kind", string(models.KindOf(err))),
			zap.Error(err))
		s.captcha.ClearVerified(key)
		return nil, err
	}

	if result.Error != "" || !result.Authenticated() {
		s.logger.Info("credentials rejected",
			zap.String("key", key),
			zap.String("vendor_error", result.Error))
		s.captcha.ClearVerified(key)

		failStatus, rerr := s.limiter.RecordFailure(ctx, key)
		if rerr != nil {
			return nil, fmt.Errorf("record failed attempt: %w", rerr)
		}
		if failStatus.Blocked {
			return nil, &LockedError{RetryAfterSeconds: failStatus.RetryAfterSeconds}
		}
		return nil, ErrInvalidCredentials
	}

	if err := s.limiter.Reset(ctx, key); err != nil {
		s.logger.Error("failed resetting attempt counter", zap.String("key", key), zap.Error(err))
	}

	return result, nil
}

// NewCaptcha issues a challenge for a client key.
func (s *Service) NewCaptcha(ctx context.Context, key string) (*models.CaptchaChallenge, error) {
	return s.captcha.NewChallenge(ctx, key)
}

// VerifyCaptcha grades an answer and, on success, arms the one-shot verified
// flag for the next login submission.
func (s *Service) VerifyCaptcha(ctx context.Context, answer models.CaptchaAnswer) (bool, error) {
	return s.captcha.Verify(ctx, answer)
}
