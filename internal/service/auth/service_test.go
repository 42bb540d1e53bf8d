package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sygemat/provider-portal/internal/domain/models"
)

type fakeLoginVendor struct {
	calls  int
	result *models.LoginResult
	err    error
}

func (f *fakeLoginVendor) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func rejectedResult() *models.LoginResult {
	return &models.LoginResult{Authentico: 0}
}

func acceptedResult() *models.LoginResult {
	return &models.LoginResult{Proveedor: 42, Nombre: "Ferretería Central", Authentico: 1}
}

func newTestService(vendor VendorClient) (*Service, *CaptchaManager, *fakeClock) {
	limiter, clock := newTestLimiter()
	captcha := NewCaptchaManager(clock)
	return NewService(vendor, limiter, captcha, nil), captcha, clock
}

// passCaptcha solves a fresh challenge for the key so the next login attempt
// carries the one-shot verified flag.
func passCaptcha(t *testing.T, captcha *CaptchaManager, key string) {
	t.Helper()

	ch, err := captcha.NewChallenge(context.Background(), key)
	require.NoError(t, err)
	ok, err := captcha.Verify(context.Background(), models.CaptchaAnswer{
		Key:         key,
		ChallengeID: ch.ID,
		Selections:  targetSelections(t, ch),
	})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestLoginSuccess(t *testing.T) {
	vendor := &fakeLoginVendor{result: acceptedResult()}
	svc, _, _ := newTestService(vendor)

	result, err := svc.Login(context.Background(), "test@x.com", "secret")

	require.NoError(t, err)
	assert.Equal(t, 42, result.Proveedor)
	assert.Equal(t, "Ferretería Central", result.Nombre)
}

func TestLoginValidatesInput(t *testing.T) {
	vendor := &fakeLoginVendor{result: acceptedResult()}
	svc, _, _ := newTestService(vendor)

	var validationErr *ValidationError

	_, err := svc.Login(context.Background(), "", "secret")
	require.ErrorAs(t, err, &validationErr)

	_, err = svc.Login(context.Background(), "not-an-email", "secret")
	require.ErrorAs(t, err, &validationErr)

	assert.Zero(t, vendor.calls, "validation failures never reach the vendor")
}

func TestLoginRequiresCaptchaAfterFirstFailure(t *testing.T) {
	vendor := &fakeLoginVendor{result: rejectedResult()}
	svc, captcha, _ := newTestService(vendor)
	ctx := context.Background()

	_, err := svc.Login(ctx, "test@x.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// Second attempt without a solved challenge is rejected locally.
	_, err = svc.Login(ctx, "test@x.com", "wrong")
	require.ErrorIs(t, err, ErrCaptchaRequired)
	assert.Equal(t, 1, vendor.calls)

	passCaptcha(t, captcha, "test@x.com")
	_, err = svc.Login(ctx, "test@x.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 2, vendor.calls)
}

func TestLoginVerifiedFlagIsOneShot(t *testing.T) {
	vendor := &fakeLoginVendor{result: rejectedResult()}
	svc, captcha, _ := newTestService(vendor)
	ctx := context.Background()

	_, err := svc.Login(ctx, "test@x.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	passCaptcha(t, captcha, "test@x.com")
	_, err = svc.Login(ctx, "test@x.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// The flag was consumed and cleared by the failure; a third submission
	// needs a fresh challenge.
	_, err = svc.Login(ctx, "test@x.com", "wrong")
	require.ErrorIs(t, err, ErrCaptchaRequired)
}

func TestLoginLocksOutAfterFiveRejections(t *testing.T) {
	vendor := &fakeLoginVendor{result: rejectedResult()}
	svc, captcha, _ := newTestService(vendor)
	ctx := context.Background()

	_, err := svc.Login(ctx, "test@x.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	for i := 2; i <= 4; i++ {
		passCaptcha(t, captcha, "test@x.com")
		_, err = svc.Login(ctx, "test@x.com", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials, "attempt %d", i)
	}

	passCaptcha(t, captcha, "test@x.com")
	_, err = svc.Login(ctx, "test@x.com", "wrong")

	var lockedErr *LockedError
	require.ErrorAs(t, err, &lockedErr)
	assert.Equal(t, 60, lockedErr.RetryAfterSeconds)
	assert.Equal(t, 5, vendor.calls)

	// While locked, submissions are rejected locally without a vendor call.
	_, err = svc.Login(ctx, "test@x.com", "wrong")
	require.ErrorAs(t, err, &lockedErr)
	assert.Equal(t, 5, vendor.calls)
}

func TestLoginLockoutExpires(t *testing.T) {
	vendor := &fakeLoginVendor{result: rejectedResult()}
	svc, captcha, clock := newTestService(vendor)
	ctx := context.Background()

	_, err := svc.Login(ctx, "test@x.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	for i := 0; i < 4; i++ {
		passCaptcha(t, captcha, "test@x.com")
		_, _ = svc.Login(ctx, "test@x.com", "wrong")
	}

	clock.advance(61 * time.Second) // just past the lock duration

	vendor.result = acceptedResult()
	passCaptcha(t, captcha, "test@x.com")
	result, err := svc.Login(ctx, "test@x.com", "right")
	require.NoError(t, err)
	assert.Equal(t, 42, result.Proveedor)
}

func TestTransportFailureDoesNotAdvanceLimiter(t *testing.T) {
	vendor := &fakeLoginVendor{err: &models.UpstreamError{Kind: models.KindNetwork, Op: "sygemat login"}}
	svc, _, _ := newTestService(vendor)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := svc.Login(ctx, "test@x.com", "secret")
		require.Error(t, err)
		assert.Equal(t, models.KindNetwork, models.KindOf(err))
		assert.False(t, errors.Is(err, ErrInvalidCredentials))
	}

	// No attempts were recorded, so no CAPTCHA gate and no lockout.
	vendor.err = nil
	vendor.result = acceptedResult()
	result, err := svc.Login(ctx, "test@x.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, 42, result.Proveedor)
}

func TestLoginSuccessResetsCounter(t *testing.T) {
	vendor := &fakeLoginVendor{result: rejectedResult()}
	svc, captcha, _ := newTestService(vendor)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if i > 0 {
			passCaptcha(t, captcha, "test@x.com")
		}
		_, err := svc.Login(ctx, "test@x.com", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}

	vendor.result = acceptedResult()
	passCaptcha(t, captcha, "test@x.com")
	_, err := svc.Login(ctx, "test@x.com", "right")
	require.NoError(t, err)

	// A later rejection starts the counter over; no CAPTCHA needed for the
	// first attempt after a reset.
	vendor.result = rejectedResult()
	_, err = svc.Login(ctx, "test@x.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginMasksVendorErrorDetail(t *testing.T) {
	vendor := &fakeLoginVendor{result: &models.LoginResult{Error: "ORA-00942 table not found", Authentico: 0}}
	svc, _, _ := newTestService(vendor)

	_, err := svc.Login(context.Background(), "test@x.com", "secret")

	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NotContains(t, err.Error(), "ORA-00942")
}

func TestClientKeyNormalizes(t *testing.T) {
	assert.Equal(t, "user@x.com", ClientKey("  User@X.Com "))
}
