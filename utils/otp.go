package utils

import (
	"strings"

	"github.com/pquerna/otp/totp"
)

// ValidateOTP checks a 6-digit TOTP code against the user's base32 secret.
// Users without a secret have no second factor and always pass.
func ValidateOTP(secret, code string) bool {
	if secret == "" {
		return true
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return false
	}
	return totp.Validate(code, secret)
}
