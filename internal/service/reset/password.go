package reset

import "strings"

const (
	minPasswordLength = 8
	specialCharacters = `!@#$%^&*(),.?":{}|<>`
)

// ValidatePassword returns every unmet policy requirement, in the order the
// portal displays them. An empty slice means the password is acceptable.
func ValidatePassword(password string) []string {
	var errs []string

	if len(password) < minPasswordLength {
		errs = append(errs, "Debe tener al menos 8 caracteres")
	}
	if !strings.ContainsFunc(password, func(r rune) bool { return r >= 'A' && r <= 'Z' }) {
		errs = append(errs, "Debe contener al menos una letra mayúscula")
	}
	if !strings.ContainsFunc(password, func(r rune) bool { return r >= 'a' && r <= 'z' }) {
		errs = append(errs, "Debe contener al menos una letra minúscula")
	}
	if !strings.ContainsFunc(password, func(r rune) bool { return r >= '0' && r <= '9' }) {
		errs = append(errs, "Debe contener al menos un número")
	}
	if !strings.ContainsAny(password, specialCharacters) {
		errs = append(errs, "Debe contener al menos un carácter especial")
	}

	return errs
}
