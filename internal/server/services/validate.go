package services

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// normalizeEmail lowercases and trims an address so lookups and the unique
// index agree on one spelling.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	return validate.Var(email, "required,email,max=254") == nil
}
