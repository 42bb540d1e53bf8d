package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/sygemat/provider-portal/internal/config"
	"github.com/sygemat/provider-portal/internal/domain/models"
)

// Mailer dispatches password-reset emails through the configured webhook
// provider. The provider owns templating and delivery; we only post the
// recipient and the reset URL.
type Mailer interface {
	SendResetEmail(ctx context.Context, mail, resetURL string) error
}

// APIClient is a resty-backed implementation of Mailer.
type APIClient struct {
	httpClient *resty.Client
	webhookURL string
}

// NewClient builds the webhook mailer from configuration.
func NewClient(cfg config.ResetConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.WebhookTimeout)

	return &APIClient{
		httpClient: restyClient,
		webhookURL: cfg.WebhookURL,
	}
}

// SendResetEmail posts {mail, url} to the webhook. A timeout is reported with
// its own kind so the HTTP layer can answer 408 instead of a generic failure.
func (c *APIClient) SendResetEmail(ctx context.Context, mail, resetURL string) error {
	const op = "reset webhook"

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]string{"mail": mail, "url": resetURL}).
		Post(c.webhookURL)
	if err != nil {
		kind := models.KindNetwork
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			kind = models.KindTimeout
		}
		return &models.UpstreamError{Kind: kind, Op: op, Err: err}
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return &models.UpstreamError{
			Kind:   models.KindServer,
			Op:     op,
			Status: resp.StatusCode(),
			Err:    fmt.Errorf("webhook replied %s", resp.Status()),
		}
	}

	return nil
}

func isTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	var t timeout
	return errors.As(err, &t) && t.Timeout()
}
