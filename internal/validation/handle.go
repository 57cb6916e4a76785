package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var handleRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,30}$`)

// Handles that collide with route segments or read as official accounts.
var reservedHandles = map[string]struct{}{
	"admin":   {},
	"api":     {},
	"auth":    {},
	"enums":   {},
	"feed":    {},
	"health":  {},
	"login":   {},
	"logout":  {},
	"me":      {},
	"media":   {},
	"meals":   {},
	"metrics": {},
	"nourish": {},
	"posts":   {},
	"profile": {},
	"signup":  {},
	"support": {},
	"swagger": {},
	"tiers":   {},
	"users":   {},
}

// ValidateHandle checks a public handle's format and reserved names.
func ValidateHandle(handle string) error {
	if !handleRegex.MatchString(handle) {
		return fmt.Errorf("handle must be 3-30 characters and contain only letters, numbers, underscores, and hyphens")
	}

	if strings.HasPrefix(handle, "-") || strings.HasPrefix(handle, "_") ||
		strings.HasSuffix(handle, "-") || strings.HasSuffix(handle, "_") {
		return fmt.Errorf("handle cannot start or end with underscore or hyphen")
	}

	if _, exists := reservedHandles[strings.ToLower(handle)]; exists {
		return fmt.Errorf("handle is reserved")
	}

	return nil
}
