package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seekershq/seekers-backend/internal/models"
	"github.com/seekershq/seekers-backend/pkg/apperr"
	"github.com/seekershq/seekers-backend/pkg/utils"
)

type fakeUserStore struct {
	users map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*models.User)}
}

func (f *fakeUserStore) ByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) ByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) Save(_ context.Context, u *models.User) error {
	cp := *u
	f.users[u.Email] = &cp
	return nil
}

func (f *fakeUserStore) Promote(_ context.Context, temp *models.TempUser, u *models.User) error {
	cp := *u
	f.users[u.Email] = &cp
	return nil
}

type fakeTempStore struct {
	temps   map[string]*models.TempUser
	deleted []uuid.UUID
}

func newFakeTempStore() *fakeTempStore {
	return &fakeTempStore{temps: make(map[string]*models.TempUser)}
}

func (f *fakeTempStore) ByEmail(_ context.Context, email string) (*models.TempUser, error) {
	t, ok := f.temps[email]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTempStore) Create(_ context.Context, t *models.TempUser) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	cp := *t
	f.temps[t.Email] = &cp
	return nil
}

func (f *fakeTempStore) Save(_ context.Context, t *models.TempUser) error {
	cp := *t
	f.temps[t.Email] = &cp
	return nil
}

func (f *fakeTempStore) Delete(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	for email, t := range f.temps {
		if t.ID == id {
			delete(f.temps, email)
		}
	}
	return nil
}

type sentMail struct {
	To         string
	Subject    string
	TemplateID string
	Variables  map[string]string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, templateID string, variables map[string]string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, TemplateID: templateID, Variables: variables})
	return nil
}

type authFixture struct {
	svc    *AuthService
	users  *fakeUserStore
	temps  *fakeTempStore
	mailer *fakeMailer
	now    time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	fx := &authFixture{
		users:  newFakeUserStore(),
		temps:  newFakeTempStore(),
		mailer: &fakeMailer{},
		now:    time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	tokens := NewTokenService("test-secret", time.Hour)
	fx.svc = NewAuthService(fx.users, fx.temps, fx.mailer, tokens, EmailTemplates{
		SignupOTP: "tmpl-signup",
		LoginOTP:  "tmpl-login",
		ResetOTP:  "tmpl-reset",
	})
	fx.svc.now = func() time.Time { return fx.now }
	return fx
}

func (fx *authFixture) advance(d time.Duration) {
	fx.now = fx.now.Add(d)
}

func signupInput() SignupInput {
	return SignupInput{
		AccountType: "Client",
		DisplayName: "Alice",
		Email:       "Alice@Example.com",
		City:        "Berlin",
		Password:    "hunter2secret",
	}
}

func TestSignupCreatesPendingAndSendsOTP(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	email, err := fx.svc.Signup(ctx, signupInput())
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)

	temp := fx.temps.temps["alice@example.com"]
	require.NotNil(t, temp)
	require.NotNil(t, temp.CurrentOTP)
	assert.Len(t, *temp.CurrentOTP, 6)
	assert.Equal(t, 1, temp.OTPAttempts)
	assert.Equal(t, fx.now, *temp.LastOTPSentAt)
	assert.Equal(t, fx.now, *temp.FirstOTPAttemptAt)
	assert.True(t, temp.AdultPolicy)
	assert.NotEqual(t, "hunter2secret", temp.Password)

	require.Len(t, fx.mailer.sent, 1)
	assert.Equal(t, "alice@example.com", fx.mailer.sent[0].To)
	assert.Equal(t, "tmpl-signup", fx.mailer.sent[0].TemplateID)
	assert.Equal(t, *temp.CurrentOTP, fx.mailer.sent[0].Variables["otp"])
}

func TestSignupExistingEmailConflict(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()
	fx.users.users["alice@example.com"] = &models.User{ID: uuid.New(), Email: "alice@example.com"}

	_, err := fx.svc.Signup(ctx, signupInput())
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, MsgEmailAlreadyRegistered, err.Error())
	assert.Empty(t, fx.mailer.sent)
}

func TestSignupCooldownBlocksEarlyResend(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	_, err := fx.svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	fx.advance(1 * time.Minute)
	_, err = fx.svc.Signup(ctx, signupInput())
	require.Error(t, err)
	assert.Equal(t, apperr.KindThrottled, apperr.KindOf(err))
	assert.Equal(t, "Please wait 4 minute(s) before requesting another OTP.", err.Error())

	// At exactly the cooldown boundary the send goes through.
	fx.advance(4 * time.Minute)
	_, err = fx.svc.Signup(ctx, signupInput())
	require.NoError(t, err)
	assert.Equal(t, 2, fx.temps.temps["alice@example.com"].OTPAttempts)
}

func TestSignupLimitAndWindowReset(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := fx.svc.Signup(ctx, signupInput())
		require.NoError(t, err)
		fx.advance(5 * time.Minute)
	}
	// 15 minutes after the first send the window has elapsed, so the counter
	// resets instead of blocking.
	_, err := fx.svc.Signup(ctx, signupInput())
	require.NoError(t, err)
	temp := fx.temps.temps["alice@example.com"]
	assert.Equal(t, 1, temp.OTPAttempts)
	assert.Equal(t, fx.now, *temp.FirstOTPAttemptAt)
}

func TestSignupLimitBlocksInsideWindow(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	_, err := fx.svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	// Two wrong verifies push the counter to the limit without touching the
	// send cooldown.
	for i := 0; i < 2; i++ {
		_, err = fx.svc.VerifyOtp(ctx, "alice@example.com", "000000")
		require.Error(t, err)
	}

	// Cooldown has elapsed but the attempt window has not.
	fx.advance(5 * time.Minute)
	_, err = fx.svc.Signup(ctx, signupInput())
	require.Error(t, err)
	assert.Equal(t, apperr.KindThrottled, apperr.KindOf(err))
	assert.Equal(t, "OTP limit reached. Please try again in 10 minute(s).", err.Error())
}

func TestSignupEmailFailureKeepsPendingRow(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()
	fx.mailer.err = errors.New("smtp down")

	_, err := fx.svc.Signup(ctx, signupInput())
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	assert.Equal(t, MsgEmailSendFailed, err.Error())

	// The pending row and its counters survive the failed send.
	temp := fx.temps.temps["alice@example.com"]
	require.NotNil(t, temp)
	assert.Equal(t, 1, temp.OTPAttempts)
}

func TestResendOtpRequiresPendingSignup(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	_, err := fx.svc.ResendOtp(ctx, "nobody@example.com")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, MsgNoSignupFound, err.Error())
}

func TestVerifyOtpWrongCodeCountsAttempts(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	_, err := fx.svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	// The send already consumed attempt 1, so one wrong guess is tolerated.
	_, err = fx.svc.VerifyOtp(ctx, "alice@example.com", "000000")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, MsgInvalidOTP, err.Error())
	assert.Equal(t, 2, fx.temps.temps["alice@example.com"].OTPAttempts)

	// The next wrong guess crosses the limit and reports the reset time.
	_, err = fx.svc.VerifyOtp(ctx, "alice@example.com", "000000")
	require.Error(t, err)
	assert.Equal(t, apperr.KindThrottled, apperr.KindOf(err))
	assert.Equal(t, "Invalid OTP. Maximum attempts reached. Please try again in 15 minute(s).", err.Error())
	assert.Equal(t, 3, fx.temps.temps["alice@example.com"].OTPAttempts)
}

func TestVerifyOtpExpiredAfterEqualityCheck(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	_, err := fx.svc.Signup(ctx, signupInput())
	require.NoError(t, err)
	code := *fx.temps.temps["alice@example.com"].CurrentOTP

	fx.advance(11 * time.Minute)
	_, err = fx.svc.VerifyOtp(ctx, "alice@example.com", code)
	require.Error(t, err)
	assert.Equal(t, apperr.KindExpired, apperr.KindOf(err))

	// A correct but expired code does not burn an attempt.
	assert.Equal(t, 1, fx.temps.temps["alice@example.com"].OTPAttempts)
}

func TestVerifyOtpPromotesAndIssuesToken(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	_, err := fx.svc.Signup(ctx, signupInput())
	require.NoError(t, err)
	code := *fx.temps.temps["alice@example.com"].CurrentOTP

	res, err := fx.svc.VerifyOtp(ctx, "alice@example.com", code)
	require.NoError(t, err)
	require.NotNil(t, res.User)
	assert.NotEmpty(t, res.Token)

	u := res.User
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, models.RoleClient, u.Role)
	assert.Equal(t, models.StatusPending, u.Status)
	assert.True(t, u.IsVerified)
	assert.Equal(t, "Alice", u.Name)
	assert.Contains(t, u.Username, "alice_")

	claims, err := fx.svc.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "Client", claims.Role)
}

func TestVerifyOtpRacingRegistration(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	_, err := fx.svc.Signup(ctx, signupInput())
	require.NoError(t, err)
	code := *fx.temps.temps["alice@example.com"].CurrentOTP

	// The email registers through another path before the code is entered.
	fx.users.users["alice@example.com"] = &models.User{ID: uuid.New(), Email: "alice@example.com"}

	_, err = fx.svc.VerifyOtp(ctx, "alice@example.com", code)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, MsgEmailAlreadyRegistered, err.Error())
	assert.Empty(t, fx.temps.temps)
}

func verifiedUser(t *testing.T, fx *authFixture, email, password string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	u := &models.User{
		ID:         uuid.New(),
		Email:      email,
		Name:       "Alice",
		Password:   hash,
		Role:       models.RoleClient,
		Status:     models.StatusApproved,
		IsVerified: true,
	}
	fx.users.users[email] = u
	return u
}

func TestLoginRejectsBadCredentialsUniformly(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()
	verifiedUser(t, fx, "alice@example.com", "hunter2secret")

	_, errUnknown := fx.svc.Login(ctx, "ghost@example.com", "whatever")
	_, errWrongPass := fx.svc.Login(ctx, "alice@example.com", "not-the-password")

	require.Error(t, errUnknown)
	require.Error(t, errWrongPass)
	assert.Equal(t, errUnknown.Error(), errWrongPass.Error())
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(errUnknown))
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(errWrongPass))
}

func TestLoginBlockedByAccountStatus(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	cases := []struct {
		status models.Status
		msg    string
	}{
		{models.StatusBlock, MsgAccountBlocked},
		{models.StatusSuspend, MsgAccountSuspended},
		{models.StatusInactive, MsgAccountInactive},
	}
	for _, tc := range cases {
		u := verifiedUser(t, fx, "alice@example.com", "hunter2secret")
		u.Status = tc.status
		fx.users.users[u.Email] = u

		_, err := fx.svc.Login(ctx, "alice@example.com", "hunter2secret")
		require.Error(t, err)
		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
		assert.Equal(t, tc.msg, err.Error())
	}
}

func TestLoginUnverifiedAccount(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()
	u := verifiedUser(t, fx, "alice@example.com", "hunter2secret")
	u.IsVerified = false
	fx.users.users[u.Email] = u

	_, err := fx.svc.Login(ctx, "alice@example.com", "hunter2secret")
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	assert.Equal(t, MsgAccountNotVerified, err.Error())
}

func TestLoginSendsOTPWithoutIssuingSession(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()
	verifiedUser(t, fx, "alice@example.com", "hunter2secret")

	msg, err := fx.svc.Login(ctx, "alice@example.com", "hunter2secret")
	require.NoError(t, err)
	assert.Equal(t, MsgLoginOTPSent, msg)

	u := fx.users.users["alice@example.com"]
	require.NotNil(t, u.LoginOTP)
	assert.Equal(t, fx.now, *u.LoginOTPSentAt)
	require.Len(t, fx.mailer.sent, 1)
	assert.Equal(t, "tmpl-login", fx.mailer.sent[0].TemplateID)
}

func TestLoginEmailFailureAfterPersist(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()
	verifiedUser(t, fx, "alice@example.com", "hunter2secret")
	fx.mailer.err = errors.New("smtp down")

	_, err := fx.svc.Login(ctx, "alice@example.com", "hunter2secret")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))

	// The OTP was persisted before the send, so the cooldown applies even
	// though delivery failed.
	assert.NotNil(t, fx.users.users["alice@example.com"].LoginOTP)
}

func TestVerifyLoginOtpSuccess(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()
	verifiedUser(t, fx, "alice@example.com", "hunter2secret")

	_, err := fx.svc.Login(ctx, "alice@example.com", "hunter2secret")
	require.NoError(t, err)
	code := *fx.users.users["alice@example.com"].LoginOTP

	res, err := fx.svc.VerifyLoginOtp(ctx, "alice@example.com", code)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	u := fx.users.users["alice@example.com"]
	assert.Nil(t, u.LoginOTP)
	assert.Nil(t, u.LoginOTPSentAt)
	assert.Zero(t, u.LoginOTPAttempts)
	assert.Nil(t, u.LoginOTPFirstAttemptAt)
}

func TestVerifyLoginOtpWrongCodeThenLimit(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()
	verifiedUser(t, fx, "alice@example.com", "hunter2secret")

	_, err := fx.svc.Login(ctx, "alice@example.com", "hunter2secret")
	require.NoError(t, err)

	// Login sends do not consume attempts; three failed verifies do.
	for i := 0; i < 2; i++ {
		_, err = fx.svc.VerifyLoginOtp(ctx, "alice@example.com", "000000")
		require.Error(t, err)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	}
	_, err = fx.svc.VerifyLoginOtp(ctx, "alice@example.com", "000000")
	require.Error(t, err)
	assert.Equal(t, apperr.KindThrottled, apperr.KindOf(err))
	assert.Equal(t, 3, fx.users.users["alice@example.com"].LoginOTPAttempts)
}

func TestVerifyLoginOtpWithoutPendingOTP(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()
	verifiedUser(t, fx, "alice@example.com", "hunter2secret")

	_, err := fx.svc.VerifyLoginOtp(ctx, "alice@example.com", "123456")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, MsgOTPNotFound, err.Error())
}

func TestForgotPasswordThenResetWithOTP(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()
	verifiedUser(t, fx, "alice@example.com", "hunter2secret")

	_, err := fx.svc.ForgotPassword(ctx, "alice@example.com")
	require.NoError(t, err)
	u := fx.users.users["alice@example.com"]
	require.NotNil(t, u.ResetOTP)
	code := *u.ResetOTP
	require.Len(t, fx.mailer.sent, 1)
	assert.Equal(t, "tmpl-reset", fx.mailer.sent[0].TemplateID)

	msg, err := fx.svc.ResetPassword(ctx, ResetPasswordInput{
		Email:       "alice@example.com",
		OTP:         code,
		NewPassword: "brand-new-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, MsgPasswordResetSuccess, msg)

	u = fx.users.users["alice@example.com"]
	assert.True(t, utils.VerifyPassword("brand-new-pass", u.Password))
	assert.Equal(t, models.PassStatusChanged, u.PassStatus)
	assert.Nil(t, u.ResetOTP)
	assert.Nil(t, u.ResetOTPSentAt)
	assert.Zero(t, u.ResetOTPAttempts)
}

func TestResetPasswordWithOldPassword(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()
	verifiedUser(t, fx, "alice@example.com", "hunter2secret")

	msg, err := fx.svc.ResetPassword(ctx, ResetPasswordInput{
		Email:       "alice@example.com",
		OldPassword: "hunter2secret",
		NewPassword: "brand-new-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, MsgPasswordChangeSuccess, msg)
	assert.True(t, utils.VerifyPassword("brand-new-pass", fx.users.users["alice@example.com"].Password))
}

func TestResetPasswordRejectsSameOldAndNew(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()
	verifiedUser(t, fx, "alice@example.com", "hunter2secret")

	_, err := fx.svc.ResetPassword(ctx, ResetPasswordInput{
		Email:       "alice@example.com",
		OldPassword: "hunter2secret",
		NewPassword: "hunter2secret",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, MsgOldNewPasswordSame, err.Error())
}

func TestResetPasswordWrongOldPassword(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()
	verifiedUser(t, fx, "alice@example.com", "hunter2secret")

	_, err := fx.svc.ResetPassword(ctx, ResetPasswordInput{
		Email:       "alice@example.com",
		OldPassword: "wrong-old-pass",
		NewPassword: "brand-new-pass",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	assert.Equal(t, MsgInvalidOldPassword, err.Error())
}

func TestResetPasswordRequiresOTPWhenNoOldPassword(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()
	verifiedUser(t, fx, "alice@example.com", "hunter2secret")

	_, err := fx.svc.ResetPassword(ctx, ResetPasswordInput{
		Email:       "alice@example.com",
		NewPassword: "brand-new-pass",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestResetAndLoginOTPFlowsAreIndependent(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()
	verifiedUser(t, fx, "alice@example.com", "hunter2secret")

	_, err := fx.svc.Login(ctx, "alice@example.com", "hunter2secret")
	require.NoError(t, err)
	_, err = fx.svc.ForgotPassword(ctx, "alice@example.com")
	require.NoError(t, err)

	u := fx.users.users["alice@example.com"]
	require.NotNil(t, u.LoginOTP)
	require.NotNil(t, u.ResetOTP)

	// Verifying the login OTP leaves the reset flow untouched.
	res, err := fx.svc.VerifyLoginOtp(ctx, "alice@example.com", *u.LoginOTP)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	u = fx.users.users["alice@example.com"]
	assert.Nil(t, u.LoginOTP)
	assert.NotNil(t, u.ResetOTP)
}
