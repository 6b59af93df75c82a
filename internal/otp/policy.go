// Package otp implements the one-time-code policy: generation, resend
// cooldown, rolling attempt window and expiry. All functions are pure; callers
// pass the current time and persist any counter changes themselves.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	// MaxAttempts is the number of OTP attempts allowed per window.
	MaxAttempts = 3
	// AttemptWindow is the rolling window the attempt counter applies to.
	AttemptWindow = 15 * time.Minute
	// ResendCooldown is the minimum gap between two OTP sends.
	ResendCooldown = 5 * time.Minute
	// CodeExpiry is how long a sent code stays valid.
	CodeExpiry = 10 * time.Minute
	// CodeDigits is the length of a generated code.
	CodeDigits = 6
)

// GenerateCode returns a uniformly random 6-digit decimal code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// CanSend reports whether the resend cooldown has elapsed since the last send.
// A nil lastSentAt means no code was ever sent.
func CanSend(lastSentAt *time.Time, now time.Time) bool {
	if lastSentAt == nil {
		return true
	}
	return now.Sub(*lastSentAt) >= ResendCooldown
}

// CooldownEndsAt returns when the resend cooldown expires.
func CooldownEndsAt(lastSentAt time.Time) time.Time {
	return lastSentAt.Add(ResendCooldown)
}

// LimitResult is the outcome of a rate-limit check. ResetAt is set only when
// blocked.
type LimitResult struct {
	Allowed bool
	ResetAt time.Time
}

// CheckLimit applies the attempt limit against the rolling window. When the
// counter is at the limit but the window has elapsed (or never started), the
// attempt is allowed and the caller is expected to reset the counters before
// recording the next send.
func CheckLimit(attempts int, firstAttemptAt *time.Time, now time.Time) LimitResult {
	if attempts < MaxAttempts {
		return LimitResult{Allowed: true}
	}
	if firstAttemptAt == nil {
		return LimitResult{Allowed: true}
	}
	if now.Sub(*firstAttemptAt) >= AttemptWindow {
		return LimitResult{Allowed: true}
	}
	return LimitResult{Allowed: false, ResetAt: firstAttemptAt.Add(AttemptWindow)}
}

// WindowElapsed reports whether an open attempt window has already passed.
func WindowElapsed(firstAttemptAt *time.Time, now time.Time) bool {
	return firstAttemptAt != nil && now.Sub(*firstAttemptAt) >= AttemptWindow
}

// Expired reports whether a code sent at sentAt is past its validity window.
// A nil sentAt is treated as not expired; the equality check already failed
// closed in that case.
func Expired(sentAt *time.Time, now time.Time) bool {
	if sentAt == nil {
		return false
	}
	return now.Sub(*sentAt) > CodeExpiry
}

// MinutesLeft returns the whole minutes remaining until t, rounded up. Used
// for user-facing throttle messages.
func MinutesLeft(until time.Time, now time.Time) int {
	d := until.Sub(now)
	if d <= 0 {
		return 0
	}
	return int((d + time.Minute - 1) / time.Minute)
}
