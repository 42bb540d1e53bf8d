package sygemat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/sygemat/provider-portal/internal/config"
	"github.com/sygemat/provider-portal/internal/domain/models"
)

const (
	loginProcess        = "/_process/INI_URS_VRF_3P_DAT"
	articlesProcess     = "/_process/JSON_PRV"
	resetConfirmProcess = "/_process/RST_PWD_CNF"
)

// Client exposes the Sygemat ERP operations used by the portal.
type Client interface {
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
	Articles(ctx context.Context, providerID int) (*models.ArticlesResult, error)
	ConfirmPasswordReset(ctx context.Context, email, token, newPassword string) (*models.ResetResult, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a Sygemat API client using the provided configuration
// values. The api_key travels as a query parameter on every call, the way the
// vendor's _process endpoints expect it.
func NewClient(cfg config.SygematConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetQueryParam("api_key", cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	return &APIClient{httpClient: restyClient}
}

// Login verifies supplier credentials. A rejected credential pair still
// resolves without error; the caller inspects Authentico.
func (c *APIClient) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	const op = "sygemat login"

	result := new(models.LoginResult)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(result).
		Post(loginProcess)
	if err != nil {
		return nil, classify(op, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, serverError(op, resp.StatusCode())
	}

	return result, nil
}

// Articles fetches the catalog visible to the given provider.
func (c *APIClient) Articles(ctx context.Context, providerID int) (*models.ArticlesResult, error) {
	const op = "sygemat articles"

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]int{"proveedor": providerID}).
		Post(articlesProcess)
	if err != nil {
		return nil, classify(op, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, serverError(op, resp.StatusCode())
	}

	// Decode by hand so a 2xx body missing the article array is surfaced as an
	// invalid-response, not as an empty catalog.
	var probe struct {
		Count      int             `json:"count"`
		TotalCount int             `json:"total_count"`
		Articles   json.RawMessage `json:"art_prv_web_dis"`
	}
	if err := json.Unmarshal(resp.Body(), &probe); err != nil {
		return nil, invalidResponse(op, err)
	}
	if len(probe.Articles) == 0 || string(probe.Articles) == "null" {
		return nil, invalidResponse(op, fmt.Errorf("payload has no art_prv_web_dis array"))
	}

	var articles []models.Article
	if err := json.Unmarshal(probe.Articles, &articles); err != nil {
		return nil, invalidResponse(op, err)
	}

	return &models.ArticlesResult{
		Count:      probe.Count,
		TotalCount: probe.TotalCount,
		Articles:   articles,
	}, nil
}

// ConfirmPasswordReset forwards the emailed token and the new password to the
// vendor. Token validity is entirely the vendor's call; a 400 from it means
// the token was rejected.
func (c *APIClient) ConfirmPasswordReset(ctx context.Context, email, token, newPassword string) (*models.ResetResult, error) {
	const op = "sygemat reset confirm"

	result := new(models.ResetResult)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"email":       email,
			"token":       token,
			"newPassword": newPassword,
		}).
		SetResult(result).
		Post(resetConfirmProcess)
	if err != nil {
		return nil, classify(op, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, serverError(op, resp.StatusCode())
	}

	return result, nil
}
