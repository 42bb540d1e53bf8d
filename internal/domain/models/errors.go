package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed upstream call. The transport layer assigns the
// kind directly instead of callers sniffing error message text.
type ErrorKind string

const (
	KindOffline         ErrorKind = "offline"
	KindTimeout         ErrorKind = "timeout"
	KindNetwork         ErrorKind = "network"
	KindServer          ErrorKind = "server"
	KindInvalidResponse ErrorKind = "invalid-response"
	KindUnknown         ErrorKind = "unknown"
)

// Retryable reports whether a retry can plausibly succeed. Shape errors and
// unknown failures are not retried automatically.
func (k ErrorKind) Retryable() bool {
	switch k {
	case KindTimeout, KindNetwork, KindServer:
		return true
	}
	return false
}

// UpstreamError wraps a failed vendor or webhook call with its classification.
type UpstreamError struct {
	Kind   ErrorKind
	Op     string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Kind, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// KindOf extracts the classification from an error chain, defaulting to
// unknown.
func KindOf(err error) ErrorKind {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return KindUnknown
}
