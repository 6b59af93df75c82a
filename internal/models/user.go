package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the account role assigned at signup and carried in session tokens.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleCreator Role = "Creator"
	RoleClient  Role = "Client"
	RoleEscort  Role = "Escort"
)

// ValidRole reports whether s is one of the four account roles.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleAdmin, RoleCreator, RoleClient, RoleEscort:
		return true
	}
	return false
}

// Status is the moderation state of an account.
type Status string

const (
	StatusApproved Status = "Approved"
	StatusPending  Status = "Pending"
	StatusBlock    Status = "Block"
	StatusSuspend  Status = "Suspend"
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// PassStatus marks whether the account password was ever changed after signup.
type PassStatus string

const (
	PassStatusDefault PassStatus = "Default"
	PassStatusChanged PassStatus = "Changed"
)

// User is a verified account. The login and password-reset OTP field sets are
// independent sub-flows and never interfere with each other.
type User struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string `json:"name"`
	ProfileName string `json:"profile_name"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"-"`
	City        string `json:"city,omitempty"`

	Role       Role       `json:"role"`
	Status     Status     `json:"status"`
	IsVerified bool       `json:"is_verified"`
	PassStatus PassStatus `json:"-"`

	// Password-reset OTP sub-flow.
	ResetOTP               *string    `json:"-"`
	ResetOTPSentAt         *time.Time `json:"-"`
	ResetOTPAttempts       int        `json:"-"`
	ResetOTPFirstAttemptAt *time.Time `json:"-"`

	// Login OTP sub-flow.
	LoginOTP               *string    `json:"-"`
	LoginOTPSentAt         *time.Time `json:"-"`
	LoginOTPAttempts       int        `json:"-"`
	LoginOTPFirstAttemptAt *time.Time `json:"-"`

	// Soft-delete tombstone. Deleted accounts are never returned by lookups.
	DeletedAt *time.Time `json:"-"`
}

// PublicUser is the profile subset embedded in chat payloads.
type PublicUser struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Username    string    `json:"username"`
	ProfileName string    `json:"profile_name"`
}

// Public returns the embeddable profile view of u.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Name:        u.Name,
		Username:    u.Username,
		ProfileName: u.ProfileName,
	}
}

// TempUser is a pending signup awaiting OTP verification. One row per
// unverified email; destroyed on promotion or superseded by a fresh signup.
type TempUser struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Email       string `json:"email"`
	AccountType Role   `json:"account_type"`
	DisplayName string `json:"display_name"`
	City        string `json:"city"`
	Password    string `json:"-"`
	AdultPolicy bool   `json:"adult_policy"`

	CurrentOTP        *string    `json:"-"`
	IsVerified        bool       `json:"is_verified"`
	OTPAttempts       int        `json:"-"`
	LastOTPSentAt     *time.Time `json:"-"`
	FirstOTPAttemptAt *time.Time `json:"-"`
}
