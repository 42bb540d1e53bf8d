package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sygemat/provider-portal/internal/config"
	"github.com/sygemat/provider-portal/internal/domain/models"
	"github.com/sygemat/provider-portal/internal/server/handlers"
	"github.com/sygemat/provider-portal/internal/service/articles"
	"github.com/sygemat/provider-portal/internal/service/auth"
	"github.com/sygemat/provider-portal/internal/service/reset"
)

type fakeVendor struct {
	loginResult    *models.LoginResult
	loginErr       error
	articlesResult *models.ArticlesResult
	articlesErr    error
	confirmResult  *models.ResetResult
	confirmErr     error
}

func (f *fakeVendor) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginResult, nil
}

func (f *fakeVendor) Articles(ctx context.Context, providerID int) (*models.ArticlesResult, error) {
	if f.articlesErr != nil {
		return nil, f.articlesErr
	}
	return f.articlesResult, nil
}

func (f *fakeVendor) ConfirmPasswordReset(ctx context.Context, email, token, newPassword string) (*models.ResetResult, error) {
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	return f.confirmResult, nil
}

type fakeMailer struct {
	lastURL string
	err     error
}

func (f *fakeMailer) SendResetEmail(ctx context.Context, mail, resetURL string) error {
	f.lastURL = resetURL
	return f.err
}

const adminProviderID = 9999999

func newTestRouter(vendor *fakeVendor, mailer *fakeMailer) http.Handler {
	limiter := auth.NewLimiter(auth.NewMemoryStore(), nil, config.LimiterConfig{
		MaxAttempts:  5,
		LockDuration: 60 * time.Second,
		ResetAfter:   5 * time.Minute,
	}, nil)
	captcha := auth.NewCaptchaManager(nil)

	articlesCfg := config.ArticlesConfig{
		FetchTimeout:    5 * time.Second,
		AdminProviderID: adminProviderID,
	}
	resetCfg := config.ResetConfig{PortalBaseURL: "https://portal.example.com"}

	authSvc := auth.NewService(vendor, limiter, captcha, nil)
	articlesSvc := articles.NewService(vendor, articlesCfg, nil)
	resetSvc := reset.NewService(vendor, mailer, resetCfg, nil)

	return New(
		handlers.NewAuthHandler(authSvc, nil),
		handlers.NewArticlesHandler(articlesSvc, articlesCfg, nil),
		handlers.NewResetHandler(resetSvc, nil),
		nil,
	)
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestPreflightShortCircuits(t *testing.T) {
	r := newTestRouter(&fakeVendor{}, &fakeMailer{})

	req := httptest.NewRequest(http.MethodOptions, "/api/articles", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "OPTIONS")
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(&fakeVendor{}, &fakeMailer{})

	w := doJSON(t, r, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginEndpointSuccess(t *testing.T) {
	vendor := &fakeVendor{loginResult: &models.LoginResult{Proveedor: 42, Nombre: "Ferretería Central", Authentico: 1}}
	r := newTestRouter(vendor, &fakeMailer{})

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", models.LoginRequest{Email: "user@x.com", Password: "secret"})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(42), body["proveedor"])
	assert.Equal(t, "Ferretería Central", body["nombre"])
	assert.Equal(t, float64(1), body["Authentico"])
}

func TestLoginEndpointRejection(t *testing.T) {
	vendor := &fakeVendor{loginResult: &models.LoginResult{Authentico: 0}}
	r := newTestRouter(vendor, &fakeMailer{})

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", models.LoginRequest{Email: "user@x.com", Password: "wrong"})

	require.Equal(t, http.StatusUnauthorized, w.Code)
	body := decode(t, w)
	assert.NotEmpty(t, body["error"])
}

func TestLoginEndpointRequiresCaptchaOnSecondAttempt(t *testing.T) {
	vendor := &fakeVendor{loginResult: &models.LoginResult{Authentico: 0}}
	r := newTestRouter(vendor, &fakeMailer{})

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", models.LoginRequest{Email: "user@x.com", Password: "wrong"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", models.LoginRequest{Email: "user@x.com", Password: "wrong"})
	require.Equal(t, http.StatusForbidden, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["captcha_required"])
}

func TestLoginEndpointMalformedBody(t *testing.T) {
	r := newTestRouter(&fakeVendor{}, &fakeMailer{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString("{nope"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCaptchaEndpointFlow(t *testing.T) {
	r := newTestRouter(&fakeVendor{}, &fakeMailer{})

	w := doJSON(t, r, http.MethodGet, "/api/auth/captcha?key=user@x.com", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var challenge models.CaptchaChallenge
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &challenge))
	assert.NotEmpty(t, challenge.ID)
	assert.Len(t, challenge.Images, 9)

	// Wrong selections still grade; the challenge is just consumed.
	w = doJSON(t, r, http.MethodPost, "/api/auth/captcha", models.CaptchaAnswer{
		Key:         "user@x.com",
		ChallengeID: challenge.ID,
		Selections:  []int{0},
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Replays of a consumed challenge are a 404.
	w = doJSON(t, r, http.MethodPost, "/api/auth/captcha", models.CaptchaAnswer{
		Key:         "user@x.com",
		ChallengeID: challenge.ID,
		Selections:  []int{0},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCaptchaEndpointRequiresKey(t *testing.T) {
	r := newTestRouter(&fakeVendor{}, &fakeMailer{})

	w := doJSON(t, r, http.MethodGet, "/api/auth/captcha", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestArticlesEndpointFiltersAndSorts(t *testing.T) {
	vendor := &fakeVendor{articlesResult: &models.ArticlesResult{
		TotalCount: 3,
		Articles: []models.Article{
			{ID: 1, Name: "Taladro", StkCon: 3, Prv: 42},
			{ID: 2, Name: "Martillo", StkCon: 0, Prv: 42},
			{ID: 3, Name: "Tornillo", StkCon: 12, Prv: 42},
		},
	}}
	r := newTestRouter(vendor, &fakeMailer{})

	w := doJSON(t, r, http.MethodPost, "/api/articles", map[string]any{
		"proveedor": 42,
		"stock":     "inStock",
	})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(2), body["count"])
	assert.Equal(t, float64(3), body["total_count"])
	assert.NotContains(t, body, "providers", "provider list is admin only")
}

func TestArticlesEndpointAdminSeesProviders(t *testing.T) {
	vendor := &fakeVendor{articlesResult: &models.ArticlesResult{
		TotalCount: 2,
		Articles: []models.Article{
			{ID: 1, Name: "Taladro", Prv: 42},
			{ID: 2, Name: "Sierra", Prv: 7},
		},
	}}
	r := newTestRouter(vendor, &fakeMailer{})

	w := doJSON(t, r, http.MethodPost, "/api/articles", map[string]any{
		"proveedor":       adminProviderID,
		"provider_filter": 7,
	})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(1), body["count"])
	require.Contains(t, body, "providers")
	assert.Len(t, body["providers"], 2)
}

func TestArticlesEndpointMissingProvider(t *testing.T) {
	r := newTestRouter(&fakeVendor{}, &fakeMailer{})

	w := doJSON(t, r, http.MethodPost, "/api/articles", map[string]any{"search": "taladro"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.NotEmpty(t, body["error"])
	assert.Equal(t, float64(0), body["count"])
	assert.Equal(t, float64(0), body["total_count"])
	assert.Equal(t, []any{}, body["art_prv_web_dis"], "error envelope keeps the list field")
}

func TestArticlesEndpointUpstreamFailureKeepsEnvelope(t *testing.T) {
	vendor := &fakeVendor{articlesErr: &models.UpstreamError{Kind: models.KindServer, Op: "sygemat articles", Status: 500}}
	r := newTestRouter(vendor, &fakeMailer{})

	w := doJSON(t, r, http.MethodPost, "/api/articles", map[string]any{"proveedor": 42})

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.NotEmpty(t, body["error"])
	assert.Equal(t, []any{}, body["art_prv_web_dis"])
}

func TestResetEndpointSendsEmail(t *testing.T) {
	mailer := &fakeMailer{}
	r := newTestRouter(&fakeVendor{}, mailer)

	w := doJSON(t, r, http.MethodPost, "/api/password-reset", models.ResetRequest{Mail: "user@x.com"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, mailer.lastURL, "token=")
	assert.Contains(t, mailer.lastURL, "email=user%40x.com")
}

func TestResetEndpointTimeoutMapsTo408(t *testing.T) {
	mailer := &fakeMailer{err: &models.UpstreamError{Kind: models.KindTimeout, Op: "reset webhook"}}
	r := newTestRouter(&fakeVendor{}, mailer)

	w := doJSON(t, r, http.MethodPost, "/api/password-reset", models.ResetRequest{Mail: "user@x.com"})

	assert.Equal(t, http.StatusRequestTimeout, w.Code)
}

func TestResetConfirmEndpointTokenRejected(t *testing.T) {
	vendor := &fakeVendor{confirmErr: &models.UpstreamError{Kind: models.KindServer, Op: "sygemat reset confirm", Status: 400}}
	r := newTestRouter(vendor, &fakeMailer{})

	w := doJSON(t, r, http.MethodPost, "/api/password-reset/confirm", models.ResetConfirmRequest{
		Email:       "user@x.com",
		Token:       "expirado",
		NewPassword: "Segura2024!",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Token inválido o expirado", body["error"])
}

func TestResetConfirmEndpointSuccess(t *testing.T) {
	vendor := &fakeVendor{confirmResult: &models.ResetResult{Success: true}}
	r := newTestRouter(vendor, &fakeMailer{})

	w := doJSON(t, r, http.MethodPost, "/api/password-reset/confirm", models.ResetConfirmRequest{
		Email:       "user@x.com",
		Token:       "tok",
		NewPassword: "Segura2024!",
	})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
}
