package utils

import (
	"fmt"
	"strings"
	"time"
)

// DeriveUsername builds a unique username from the email local part plus a
// timestamp suffix, matching what account promotion expects. Uniqueness is
// still guarded by the database constraint.
func DeriveUsername(email string, now time.Time) string {
	local := email
	if idx := strings.Index(email, "@"); idx >= 0 {
		local = email[:idx]
	}
	return fmt.Sprintf("%s_%d", local, now.UnixMilli())
}

// NormalizeEmail lowercases and trims an email address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
