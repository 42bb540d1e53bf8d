package reset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErrs int
	}{
		{"valid", "Abcdef1!", 0},
		{"valid long", `Segura2024?Clave`, 0},
		{"too short", "Ab1!", 1},
		{"missing uppercase", "abcdef1!", 1},
		{"missing lowercase", "ABCDEF1!", 1},
		{"missing digit", "Abcdefg!", 1},
		{"missing special", "Abcdefg1", 1},
		{"empty", "", 5},
		{"only lowercase", "abcdefgh", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidatePassword(tt.password)
			assert.Len(t, errs, tt.wantErrs)
		})
	}
}

func TestValidatePasswordAcceptsAllSpecialCharacters(t *testing.T) {
	for _, c := range specialCharacters {
		password := "Abcdef1" + string(c)
		assert.Empty(t, ValidatePassword(password), "special char %q", c)
	}
}
