package models

// ResetRequest asks for a password-reset email. The field is named mail on the
// wire for compatibility with the vendor's webhook contract.
type ResetRequest struct {
	Mail string `json:"mail"`
}

// ResetConfirmRequest completes a reset using the emailed token.
type ResetConfirmRequest struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// ResetResult is the uniform success/message envelope for both reset steps.
type ResetResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
