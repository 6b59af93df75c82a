// Package store holds the PostgreSQL persistence layer. Query methods return
// (nil, nil) when the row is absent so services can branch without sentinel
// errors.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/seekershq/seekers-backend/internal/models"
)

const userColumns = `id, created_at, updated_at, name, profile_name, username, email, password, city,
	role, status, is_verified, pass_status,
	reset_password_otp, reset_password_otp_sent_at, reset_password_otp_attempts, reset_password_otp_first_attempt_at,
	login_otp, login_otp_sent_at, login_otp_attempts, login_otp_first_attempt_at, deleted_at`

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) ByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 AND deleted_at IS NULL`, email)
	return scanUser(row)
}

func (s *UserStore) ByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 AND deleted_at IS NULL`, id)
	return scanUser(row)
}

// Save persists every mutable field of u. OTP counters for the two sub-flows
// are written together; services only ever touch one set at a time.
func (s *UserStore) Save(ctx context.Context, u *models.User) error {
	u.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			updated_at = $2, name = $3, profile_name = $4, city = $5,
			password = $6, status = $7, is_verified = $8, pass_status = $9,
			reset_password_otp = $10, reset_password_otp_sent_at = $11,
			reset_password_otp_attempts = $12, reset_password_otp_first_attempt_at = $13,
			login_otp = $14, login_otp_sent_at = $15,
			login_otp_attempts = $16, login_otp_first_attempt_at = $17
		WHERE id = $1
	`, u.ID, u.UpdatedAt, u.Name, u.ProfileName, u.City,
		u.Password, u.Status, u.IsVerified, u.PassStatus,
		u.ResetOTP, u.ResetOTPSentAt, u.ResetOTPAttempts, u.ResetOTPFirstAttemptAt,
		u.LoginOTP, u.LoginOTPSentAt, u.LoginOTPAttempts, u.LoginOTPFirstAttemptAt)
	return err
}

// Promote atomically creates the verified account and destroys the pending
// signup it came from.
func (s *UserStore) Promote(ctx context.Context, temp *models.TempUser, u *models.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, created_at, updated_at, name, profile_name, username, email, password, city,
			role, status, is_verified, pass_status)
		VALUES ($1, $2, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, u.ID, u.CreatedAt, u.Name, u.ProfileName, u.Username, u.Email, u.Password, u.City,
		u.Role, u.Status, u.IsVerified, u.PassStatus)
	if err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM temp_users WHERE id = $1`, temp.ID); err != nil {
		return err
	}

	return tx.Commit()
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var profileName, city sql.NullString
	var resetOTP, loginOTP sql.NullString
	var resetSentAt, resetFirstAt, loginSentAt, loginFirstAt, deletedAt sql.NullTime

	err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.Name, &profileName, &u.Username,
		&u.Email, &u.Password, &city, &u.Role, &u.Status, &u.IsVerified, &u.PassStatus,
		&resetOTP, &resetSentAt, &u.ResetOTPAttempts, &resetFirstAt,
		&loginOTP, &loginSentAt, &u.LoginOTPAttempts, &loginFirstAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	u.ProfileName = profileName.String
	u.City = city.String
	u.ResetOTP = nullStr(resetOTP)
	u.ResetOTPSentAt = nullTime(resetSentAt)
	u.ResetOTPFirstAttemptAt = nullTime(resetFirstAt)
	u.LoginOTP = nullStr(loginOTP)
	u.LoginOTPSentAt = nullTime(loginSentAt)
	u.LoginOTPFirstAttemptAt = nullTime(loginFirstAt)
	u.DeletedAt = nullTime(deletedAt)
	return &u, nil
}

type TempUserStore struct {
	db *sql.DB
}

func NewTempUserStore(db *sql.DB) *TempUserStore {
	return &TempUserStore{db: db}
}

const tempUserColumns = `id, created_at, updated_at, email, account_type, display_name, city, password,
	adult_policy, current_otp, is_verified, otp_attempts, last_otp_sent_at, first_otp_attempt_at`

func (s *TempUserStore) ByEmail(ctx context.Context, email string) (*models.TempUser, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tempUserColumns+` FROM temp_users WHERE email = $1`, email)

	var t models.TempUser
	var city sql.NullString
	var currentOTP sql.NullString
	var lastSentAt, firstAttemptAt sql.NullTime

	err := row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt, &t.Email, &t.AccountType, &t.DisplayName,
		&city, &t.Password, &t.AdultPolicy, &currentOTP, &t.IsVerified, &t.OTPAttempts,
		&lastSentAt, &firstAttemptAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	t.City = city.String
	t.CurrentOTP = nullStr(currentOTP)
	t.LastOTPSentAt = nullTime(lastSentAt)
	t.FirstOTPAttemptAt = nullTime(firstAttemptAt)
	return &t, nil
}

func (s *TempUserStore) Create(ctx context.Context, t *models.TempUser) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO temp_users (id, created_at, updated_at, email, account_type, display_name, city,
			password, adult_policy, current_otp, is_verified, otp_attempts, last_otp_sent_at, first_otp_attempt_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, t.ID, t.CreatedAt, t.UpdatedAt, t.Email, t.AccountType, t.DisplayName, t.City,
		t.Password, t.AdultPolicy, t.CurrentOTP, t.IsVerified, t.OTPAttempts,
		t.LastOTPSentAt, t.FirstOTPAttemptAt)
	return err
}

func (s *TempUserStore) Save(ctx context.Context, t *models.TempUser) error {
	t.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		UPDATE temp_users SET
			updated_at = $2, account_type = $3, display_name = $4, city = $5, password = $6,
			adult_policy = $7, current_otp = $8, is_verified = $9, otp_attempts = $10,
			last_otp_sent_at = $11, first_otp_attempt_at = $12
		WHERE id = $1
	`, t.ID, t.UpdatedAt, t.AccountType, t.DisplayName, t.City, t.Password,
		t.AdultPolicy, t.CurrentOTP, t.IsVerified, t.OTPAttempts,
		t.LastOTPSentAt, t.FirstOTPAttemptAt)
	return err
}

func (s *TempUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM temp_users WHERE id = $1`, id)
	return err
}

func nullStr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
