package models

import (
	"regexp"
	"time"
)

// LoginRequest carries the credentials forwarded to the vendor login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult mirrors the Sygemat INI_URS_VRF_3P_DAT response. Authentico is 1
// on accepted credentials and 0 on rejection; rejection is a normal outcome,
// not a transport error.
type LoginResult struct {
	Proveedor  int    `json:"proveedor"`
	Nombre     string `json:"nombre"`
	Authentico int    `json:"Authentico"`
	Error      string `json:"error,omitempty"`
}

// Authenticated reports whether the vendor accepted the credentials and
// returned a usable identity.
func (r *LoginResult) Authenticated() bool {
	return r != nil && r.Authentico == 1 && r.Proveedor != 0 && r.Nombre != ""
}

// LockoutState is the persisted rate-limiter record for one client key.
type LockoutState struct {
	Key         string    `json:"key" bson:"_id"`
	Attempts    int       `json:"attempts" bson:"attempts"`
	LastAttempt time.Time `json:"last_attempt" bson:"last_attempt"`
	LockExpiry  time.Time `json:"lock_expiry,omitempty" bson:"lock_expiry,omitempty"`
}

// Locked reports whether the key is locked out as of now.
func (s *LockoutState) Locked(now time.Time) bool {
	return s != nil && s.LockExpiry.After(now)
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail applies the same lenient format check the portal has always used.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
