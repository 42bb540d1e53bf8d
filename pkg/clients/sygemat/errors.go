package sygemat

import (
	"context"
	"errors"
	"net"
	"net/url"

	"github.com/sygemat/provider-portal/internal/domain/models"
)

// classify maps a transport-level failure to a typed error kind so callers
// never have to inspect error message text.
func classify(op string, err error) *models.UpstreamError {
	kind := models.KindUnknown

	var dnsErr *net.DNSError
	var netErr net.Error
	var opErr *net.OpError
	var urlErr *url.Error

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = models.KindTimeout
	case errors.As(err, &dnsErr):
		// Name resolution failing is the closest server-side signal to having
		// no connectivity at all.
		kind = models.KindOffline
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = models.KindTimeout
	case errors.As(err, &opErr), errors.As(err, &urlErr):
		kind = models.KindNetwork
	}

	return &models.UpstreamError{Kind: kind, Op: op, Err: err}
}

func serverError(op string, status int) *models.UpstreamError {
	return &models.UpstreamError{Kind: models.KindServer, Op: op, Status: status}
}

func invalidResponse(op string, err error) *models.UpstreamError {
	return &models.UpstreamError{Kind: models.KindInvalidResponse, Op: op, Err: err}
}
