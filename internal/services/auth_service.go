package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/seekershq/seekers-backend/internal/models"
	"github.com/seekershq/seekers-backend/internal/otp"
	"github.com/seekershq/seekers-backend/pkg/apperr"
	"github.com/seekershq/seekers-backend/pkg/utils"
)

// UserStore is the account persistence surface the auth service depends on.
type UserStore interface {
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Save(ctx context.Context, u *models.User) error
	Promote(ctx context.Context, temp *models.TempUser, u *models.User) error
}

// TempUserStore persists pending signups.
type TempUserStore interface {
	ByEmail(ctx context.Context, email string) (*models.TempUser, error)
	Create(ctx context.Context, t *models.TempUser) error
	Save(ctx context.Context, t *models.TempUser) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// EmailTemplates holds the template ids for the three OTP mails.
type EmailTemplates struct {
	SignupOTP string
	LoginOTP  string
	ResetOTP  string
}

// AuthService drives the account lifecycle: signup -> pending signup -> OTP
// verify -> account; login -> login OTP -> session; password reset/change.
type AuthService struct {
	users  UserStore
	temps  TempUserStore
	mailer EmailSender
	tokens *TokenService
	tmpl   EmailTemplates

	// now is swappable for tests.
	now func() time.Time
}

func NewAuthService(users UserStore, temps TempUserStore, mailer EmailSender, tokens *TokenService, tmpl EmailTemplates) *AuthService {
	return &AuthService{
		users:  users,
		temps:  temps,
		mailer: mailer,
		tokens: tokens,
		tmpl:   tmpl,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type SignupInput struct {
	AccountType string
	DisplayName string
	Email       string
	City        string
	Password    string
	AdultPolicy *bool
}

// Signup creates or refreshes the pending signup for the email and sends a
// verification OTP. The pending row is persisted before the email send is
// attempted, so a send failure leaves the row in place on purpose.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (string, error) {
	email := utils.NormalizeEmail(in.Email)
	now := s.now()

	existing, err := s.users.ByEmail(ctx, email)
	if err != nil {
		return "", apperr.Internal("failed to look up account", err)
	}
	if existing != nil {
		return "", apperr.Conflict(MsgEmailAlreadyRegistered)
	}

	temp, err := s.temps.ByEmail(ctx, email)
	if err != nil {
		return "", apperr.Internal("failed to look up pending signup", err)
	}

	hashed, err := utils.HashPassword(in.Password)
	if err != nil {
		return "", apperr.Internal("failed to hash password", err)
	}

	adultPolicy := true
	if in.AdultPolicy != nil {
		adultPolicy = *in.AdultPolicy
	}

	if temp != nil {
		if err := s.checkSendPolicy(temp.LastOTPSentAt, temp.OTPAttempts, temp.FirstOTPAttemptAt, now); err != nil {
			return "", err
		}
		resetWindowIfElapsed(&temp.OTPAttempts, &temp.FirstOTPAttemptAt, now)

		code, err := otp.GenerateCode()
		if err != nil {
			return "", apperr.Internal("failed to generate OTP", err)
		}
		temp.AccountType = models.Role(in.AccountType)
		temp.DisplayName = in.DisplayName
		temp.City = in.City
		temp.Password = hashed
		temp.AdultPolicy = adultPolicy
		temp.CurrentOTP = &code
		temp.OTPAttempts++
		temp.LastOTPSentAt = &now
		if temp.FirstOTPAttemptAt == nil {
			temp.FirstOTPAttemptAt = &now
		}
		if err := s.temps.Save(ctx, temp); err != nil {
			return "", apperr.Internal("failed to update pending signup", err)
		}
	} else {
		code, err := otp.GenerateCode()
		if err != nil {
			return "", apperr.Internal("failed to generate OTP", err)
		}
		temp = &models.TempUser{
			Email:             email,
			AccountType:       models.Role(in.AccountType),
			DisplayName:       in.DisplayName,
			City:              in.City,
			Password:          hashed,
			AdultPolicy:       adultPolicy,
			CurrentOTP:        &code,
			OTPAttempts:       1,
			LastOTPSentAt:     &now,
			FirstOTPAttemptAt: &now,
		}
		if err := s.temps.Create(ctx, temp); err != nil {
			return "", apperr.Internal("failed to create pending signup", err)
		}
	}

	if err := s.sendOTPEmail(ctx, email, "Welcome! Verify Your Email", s.tmpl.SignupOTP, temp.DisplayName, *temp.CurrentOTP); err != nil {
		return "", err
	}

	return email, nil
}

// ResendOtp regenerates and resends the signup OTP under the same cooldown and
// limit policy as Signup's update path.
func (s *AuthService) ResendOtp(ctx context.Context, email string) (string, error) {
	email = utils.NormalizeEmail(email)
	now := s.now()

	existing, err := s.users.ByEmail(ctx, email)
	if err != nil {
		return "", apperr.Internal("failed to look up account", err)
	}
	if existing != nil {
		return "", apperr.Conflict(MsgEmailAlreadyRegistered)
	}

	temp, err := s.temps.ByEmail(ctx, email)
	if err != nil {
		return "", apperr.Internal("failed to look up pending signup", err)
	}
	if temp == nil {
		return "", apperr.NotFound(MsgNoSignupFound)
	}
	if temp.IsVerified {
		return "", apperr.Conflict(MsgEmailAlreadyVerified)
	}

	if err := s.checkSendPolicy(temp.LastOTPSentAt, temp.OTPAttempts, temp.FirstOTPAttemptAt, now); err != nil {
		return "", err
	}
	resetWindowIfElapsed(&temp.OTPAttempts, &temp.FirstOTPAttemptAt, now)

	code, err := otp.GenerateCode()
	if err != nil {
		return "", apperr.Internal("failed to generate OTP", err)
	}
	temp.CurrentOTP = &code
	temp.OTPAttempts++
	temp.LastOTPSentAt = &now
	if temp.FirstOTPAttemptAt == nil {
		temp.FirstOTPAttemptAt = &now
	}
	if err := s.temps.Save(ctx, temp); err != nil {
		return "", apperr.Internal("failed to update pending signup", err)
	}

	if err := s.sendOTPEmail(ctx, email, "Welcome! Verify Your Email", s.tmpl.SignupOTP, temp.DisplayName, code); err != nil {
		return "", err
	}

	return email, nil
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// VerifyOtp checks the signup code and, on success, promotes the pending
// signup into a verified account and issues a session token.
//
// A wrong code increments the attempt counter even when the limit window has
// already elapsed; counters reset only on the next send. A correct but expired
// code does not increment (expiry is checked after equality).
func (s *AuthService) VerifyOtp(ctx context.Context, email, code string) (*AuthResult, error) {
	email = utils.NormalizeEmail(email)
	now := s.now()

	temp, err := s.temps.ByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal("failed to look up pending signup", err)
	}
	if temp == nil {
		return nil, apperr.NotFound(MsgInvalidEmailOrOTP)
	}
	if temp.IsVerified {
		return nil, apperr.Conflict(MsgEmailAlreadyVerified)
	}

	if temp.CurrentOTP == nil || *temp.CurrentOTP != code {
		temp.OTPAttempts++
		limit := otp.CheckLimit(temp.OTPAttempts, temp.FirstOTPAttemptAt, now)
		if err := s.temps.Save(ctx, temp); err != nil {
			return nil, apperr.Internal("failed to record OTP attempt", err)
		}
		if !limit.Allowed {
			return nil, apperr.Throttled(MsgOTPMaxAttemptsReached, otp.MinutesLeft(limit.ResetAt, now))
		}
		return nil, apperr.Validation(MsgInvalidOTP)
	}

	if otp.Expired(temp.LastOTPSentAt, now) {
		return nil, apperr.Expired(MsgOTPExpired)
	}

	// Re-check for a racing registration before promoting.
	existing, err := s.users.ByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal("failed to look up account", err)
	}
	if existing != nil {
		if err := s.temps.Delete(ctx, temp.ID); err != nil {
			log.Printf("failed to clean up pending signup for %s: %v", email, err)
		}
		return nil, apperr.Conflict(MsgEmailAlreadyRegistered)
	}

	user := &models.User{
		ID:          uuid.New(),
		CreatedAt:   now,
		UpdatedAt:   now,
		Name:        temp.DisplayName,
		ProfileName: temp.DisplayName,
		Username:    utils.DeriveUsername(temp.Email, now),
		Email:       temp.Email,
		Password:    temp.Password,
		City:        temp.City,
		Role:        temp.AccountType,
		Status:      models.StatusPending,
		IsVerified:  true,
		PassStatus:  models.PassStatusDefault,
	}

	if err := s.users.Promote(ctx, temp, user); err != nil {
		return nil, apperr.Internal("failed to create account", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, apperr.Internal("failed to issue session token", err)
	}

	return &AuthResult{Token: token, User: user}, nil
}

// Login verifies credentials and account state, then sends a login OTP. No
// session is issued until VerifyLoginOtp succeeds.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = utils.NormalizeEmail(email)
	now := s.now()

	user, err := s.users.ByEmail(ctx, email)
	if err != nil {
		return "", apperr.Internal("failed to look up account", err)
	}
	// Same error for unknown email and wrong password so accounts cannot be
	// enumerated.
	if user == nil || user.Password == "" || !utils.VerifyPassword(password, user.Password) {
		return "", apperr.Unauthorized(MsgInvalidEmailOrPassword)
	}

	if err := checkAccountUsable(user); err != nil {
		return "", err
	}

	if !otp.CanSend(user.LoginOTPSentAt, now) {
		minutes := otp.MinutesLeft(otp.CooldownEndsAt(*user.LoginOTPSentAt), now)
		return "", apperr.Throttled(MsgOTPCooldownWait, minutes)
	}

	code, err := otp.GenerateCode()
	if err != nil {
		return "", apperr.Internal("failed to generate OTP", err)
	}
	user.LoginOTP = &code
	user.LoginOTPSentAt = &now

	// Sending is permitted while the counter sits at the limit only because
	// the window elapsed; clear the stale counters now.
	limit := otp.CheckLimit(user.LoginOTPAttempts, user.LoginOTPFirstAttemptAt, now)
	if limit.Allowed && user.LoginOTPAttempts >= otp.MaxAttempts {
		user.LoginOTPAttempts = 0
		user.LoginOTPFirstAttemptAt = nil
	}

	if err := s.users.Save(ctx, user); err != nil {
		return "", apperr.Internal("failed to persist login OTP", err)
	}

	if err := s.sendOTPEmail(ctx, user.Email, "Login Verification", s.tmpl.LoginOTP, displayName(user), code); err != nil {
		return "", err
	}

	return MsgLoginOTPSent, nil
}

// VerifyLoginOtp checks the login code and issues the session token. All four
// login-OTP fields are cleared on success.
func (s *AuthService) VerifyLoginOtp(ctx context.Context, email, code string) (*AuthResult, error) {
	email = utils.NormalizeEmail(email)
	now := s.now()

	user, err := s.users.ByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal("failed to look up account", err)
	}
	if user == nil {
		return nil, apperr.NotFound(MsgEmailNotFound)
	}
	if user.LoginOTP == nil {
		return nil, apperr.NotFound(MsgOTPNotFound)
	}

	if *user.LoginOTP != code {
		if user.LoginOTPFirstAttemptAt == nil {
			user.LoginOTPFirstAttemptAt = &now
		}
		user.LoginOTPAttempts++
		limit := otp.CheckLimit(user.LoginOTPAttempts, user.LoginOTPFirstAttemptAt, now)
		if err := s.users.Save(ctx, user); err != nil {
			return nil, apperr.Internal("failed to record OTP attempt", err)
		}
		if !limit.Allowed {
			return nil, apperr.Throttled(MsgOTPMaxAttemptsReached, otp.MinutesLeft(limit.ResetAt, now))
		}
		return nil, apperr.Validation(MsgInvalidOTP)
	}

	if otp.Expired(user.LoginOTPSentAt, now) {
		return nil, apperr.Expired(MsgOTPExpired)
	}

	user.LoginOTP = nil
	user.LoginOTPSentAt = nil
	user.LoginOTPAttempts = 0
	user.LoginOTPFirstAttemptAt = nil
	if err := s.users.Save(ctx, user); err != nil {
		return nil, apperr.Internal("failed to clear login OTP", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, apperr.Internal("failed to issue session token", err)
	}

	return &AuthResult{Token: token, User: user}, nil
}

// ResendLoginOtp resends the login OTP under the same account-state, cooldown
// and limit preconditions as Login.
func (s *AuthService) ResendLoginOtp(ctx context.Context, email string) (string, error) {
	email = utils.NormalizeEmail(email)
	now := s.now()

	user, err := s.users.ByEmail(ctx, email)
	if err != nil {
		return "", apperr.Internal("failed to look up account", err)
	}
	if user == nil {
		return "", apperr.NotFound(MsgEmailNotFound)
	}

	if err := checkAccountUsable(user); err != nil {
		return "", err
	}

	if !otp.CanSend(user.LoginOTPSentAt, now) {
		minutes := otp.MinutesLeft(otp.CooldownEndsAt(*user.LoginOTPSentAt), now)
		return "", apperr.Throttled(MsgOTPCooldownWait, minutes)
	}

	limit := otp.CheckLimit(user.LoginOTPAttempts, user.LoginOTPFirstAttemptAt, now)
	if !limit.Allowed {
		return "", apperr.Throttled(MsgOTPMaxAttemptsReached, otp.MinutesLeft(limit.ResetAt, now))
	}
	resetWindowIfElapsed(&user.LoginOTPAttempts, &user.LoginOTPFirstAttemptAt, now)

	code, err := otp.GenerateCode()
	if err != nil {
		return "", apperr.Internal("failed to generate OTP", err)
	}
	user.LoginOTP = &code
	user.LoginOTPAttempts++
	user.LoginOTPSentAt = &now
	if user.LoginOTPFirstAttemptAt == nil {
		user.LoginOTPFirstAttemptAt = &now
	}
	if err := s.users.Save(ctx, user); err != nil {
		return "", apperr.Internal("failed to persist login OTP", err)
	}

	if err := s.sendOTPEmail(ctx, user.Email, "Login Verification", s.tmpl.LoginOTP, displayName(user), code); err != nil {
		return "", err
	}

	return email, nil
}

// ForgotPassword sends a password-reset OTP, throttled against the reset-OTP
// field set only.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = utils.NormalizeEmail(email)
	now := s.now()

	user, err := s.users.ByEmail(ctx, email)
	if err != nil {
		return "", apperr.Internal("failed to look up account", err)
	}
	if user == nil {
		return "", apperr.NotFound(MsgEmailNotFound)
	}

	if err := s.checkSendPolicy(user.ResetOTPSentAt, user.ResetOTPAttempts, user.ResetOTPFirstAttemptAt, now); err != nil {
		return "", err
	}
	resetWindowIfElapsed(&user.ResetOTPAttempts, &user.ResetOTPFirstAttemptAt, now)

	code, err := otp.GenerateCode()
	if err != nil {
		return "", apperr.Internal("failed to generate OTP", err)
	}
	user.ResetOTP = &code
	user.ResetOTPAttempts++
	user.ResetOTPSentAt = &now
	if user.ResetOTPFirstAttemptAt == nil {
		user.ResetOTPFirstAttemptAt = &now
	}
	if err := s.users.Save(ctx, user); err != nil {
		return "", apperr.Internal("failed to persist reset OTP", err)
	}

	if err := s.sendOTPEmail(ctx, user.Email, "Reset Your Password", s.tmpl.ResetOTP, displayName(user), code); err != nil {
		return "", err
	}

	return email, nil
}

type ResetPasswordInput struct {
	Email       string
	OTP         string // forgot-password flow
	NewPassword string
	OldPassword string // change-password flow, skips OTP
}

// ResetPassword handles the two mutually exclusive flows: OTP-validated reset
// (forgot password) or old-password-validated change. Reset-OTP fields are
// cleared only in the OTP flow.
func (s *AuthService) ResetPassword(ctx context.Context, in ResetPasswordInput) (string, error) {
	email := utils.NormalizeEmail(in.Email)
	now := s.now()

	user, err := s.users.ByEmail(ctx, email)
	if err != nil {
		return "", apperr.Internal("failed to look up account", err)
	}
	if user == nil {
		return "", apperr.NotFound(MsgEmailNotFound)
	}

	changeFlow := in.OldPassword != ""
	if changeFlow {
		if in.OldPassword == in.NewPassword {
			return "", apperr.Validation(MsgOldNewPasswordSame)
		}
		if user.Password == "" || !utils.VerifyPassword(in.OldPassword, user.Password) {
			return "", apperr.Unauthorized(MsgInvalidOldPassword)
		}
	} else {
		if in.OTP == "" {
			return "", apperr.Validation("OTP is required for password reset")
		}
		if user.ResetOTP == nil || *user.ResetOTP != in.OTP {
			user.ResetOTPAttempts++
			limit := otp.CheckLimit(user.ResetOTPAttempts, user.ResetOTPFirstAttemptAt, now)
			if err := s.users.Save(ctx, user); err != nil {
				return "", apperr.Internal("failed to record OTP attempt", err)
			}
			if !limit.Allowed {
				return "", apperr.Throttled(MsgOTPMaxAttemptsReached, otp.MinutesLeft(limit.ResetAt, now))
			}
			return "", apperr.Validation(MsgInvalidOTP)
		}
		if otp.Expired(user.ResetOTPSentAt, now) {
			return "", apperr.Expired(MsgOTPExpired)
		}
	}

	hashed, err := utils.HashPassword(in.NewPassword)
	if err != nil {
		return "", apperr.Internal("failed to hash password", err)
	}
	user.Password = hashed
	user.PassStatus = models.PassStatusChanged

	if !changeFlow {
		user.ResetOTP = nil
		user.ResetOTPSentAt = nil
		user.ResetOTPAttempts = 0
		user.ResetOTPFirstAttemptAt = nil
	}

	if err := s.users.Save(ctx, user); err != nil {
		return "", apperr.Internal("failed to persist new password", err)
	}

	if changeFlow {
		return MsgPasswordChangeSuccess, nil
	}
	return MsgPasswordResetSuccess, nil
}

// Logout is stateless: the token is client-discarded and there is no server
// session to revoke. The endpoint exists for symmetry and cookie clearing.
func (s *AuthService) Logout() string {
	return MsgLogoutSuccess
}

// Me returns the account for an authenticated user id.
func (s *AuthService) Me(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.ByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("failed to look up account", err)
	}
	if user == nil {
		return nil, apperr.NotFound("User not found.")
	}
	return user, nil
}

// checkSendPolicy applies the cooldown then the attempt limit before a send.
func (s *AuthService) checkSendPolicy(lastSentAt *time.Time, attempts int, firstAttemptAt *time.Time, now time.Time) error {
	if !otp.CanSend(lastSentAt, now) {
		minutes := otp.MinutesLeft(otp.CooldownEndsAt(*lastSentAt), now)
		return apperr.Throttled(MsgOTPCooldownWait, minutes)
	}
	limit := otp.CheckLimit(attempts, firstAttemptAt, now)
	if !limit.Allowed {
		return apperr.Throttled(MsgOTPLimitReached, otp.MinutesLeft(limit.ResetAt, now))
	}
	return nil
}

func (s *AuthService) sendOTPEmail(ctx context.Context, to, subject, templateID, name, code string) error {
	err := s.mailer.Send(ctx, to, subject, templateID, map[string]string{
		"name": name,
		"otp":  code,
	})
	if err != nil {
		log.Printf("error sending OTP email to %s: %v", to, err)
		return apperr.Upstream(MsgEmailSendFailed, err)
	}
	return nil
}

// resetWindowIfElapsed zeroes the attempt counters when the limit window has
// passed. Called only on the send path; failed verifies never reset.
func resetWindowIfElapsed(attempts *int, firstAttemptAt **time.Time, now time.Time) {
	if otp.WindowElapsed(*firstAttemptAt, now) {
		*attempts = 0
		*firstAttemptAt = nil
	}
}

func checkAccountUsable(user *models.User) error {
	if !user.IsVerified {
		return apperr.Forbidden(MsgAccountNotVerified)
	}
	switch user.Status {
	case models.StatusBlock:
		return apperr.Forbidden(MsgAccountBlocked)
	case models.StatusSuspend:
		return apperr.Forbidden(MsgAccountSuspended)
	case models.StatusInactive:
		return apperr.Forbidden(MsgAccountInactive)
	}
	return nil
}

func displayName(u *models.User) string {
	if u.Name != "" {
		return u.Name
	}
	if u.ProfileName != "" {
		return u.ProfileName
	}
	return u.Email
}
