package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"databank/internal/authz"
	"databank/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)

	// confirmation code, all conditional on the state the caller read
	StartConfirmEmail(ctx context.Context, email string, info *models.ConfirmEmailInfo, now time.Time) (bool, error)
	IncrementConfirmAttempts(ctx context.Context, email string, expected *models.ConfirmEmailInfo) (int, bool, error)
	ConsumeConfirmEmail(ctx context.Context, email string, expected *models.ConfirmEmailInfo, maxAttempts int, confirmedAt time.Time) (*time.Time, bool, error)

	// verification
	SetVerified(ctx context.Context, id string, at time.Time) (*time.Time, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `
	id, first_name, last_name, email, hashed_password, role, created_at,
	confirmed_at, verified_at,
	confirm_code, confirm_expiry, confirm_attempts`

const insertUserQuery = `
	INSERT INTO users (
		id, first_name, last_name, email, hashed_password, role,
		created_at, confirmed_at, verified_at
	)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`

func insertUser(ctx context.Context, db dbtx, user *models.User) error {
	_, err := db.ExecContext(ctx, insertUserQuery,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.HashedPassword,
		string(user.Role),
		user.CreatedAt,
		user.ConfirmedAt,
		user.VerifiedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("user create: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var (
		role        string
		confirmedAt sql.NullTime
		verifiedAt  sql.NullTime
		code        sql.NullInt64
		expiry      sql.NullTime
		attempts    sql.NullInt64
	)
	if err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.HashedPassword, &role, &u.CreatedAt,
		&confirmedAt, &verifiedAt,
		&code, &expiry, &attempts,
	); err != nil {
		return nil, err
	}
	u.Role = authz.Role(role)
	if !u.Role.Valid() {
		return nil, fmt.Errorf("user %s has unknown role %q", u.ID, role)
	}
	if confirmedAt.Valid {
		t := confirmedAt.Time
		u.ConfirmedAt = &t
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		u.VerifiedAt = &t
	}
	if code.Valid && expiry.Valid {
		u.ConfirmEmailInfo = &models.ConfirmEmailInfo{
			Code:         int(code.Int64),
			Expiry:       expiry.Time,
			AttemptsMade: int(attempts.Int64),
		}
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return insertUser(ctx, r.DB, user)
}

func (r *userRepository) getOne(ctx context.Context, where string, arg any) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	u, err := scanUser(r.DB.QueryRowContext(ctx, q, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("user get: %w", err)
	}
	return u, nil
}

// GetByID returns nil, nil when no user matches.
func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, `id = $1`, id)
}

// GetByEmail returns nil, nil when no user matches.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `email = $1`, email)
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, email LIMIT $1 OFFSET $2`
	rows, err := r.DB.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("user list: %w", err)
	}
	defer rows.Close()

	var res []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("user list scan: %w", err)
		}
		res = append(res, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("user list: %w", err)
	}
	return res, nil
}

// StartConfirmEmail stores a freshly minted code unless the user already
// holds one that is still active at now. It reports whether the code was stored.
func (r *userRepository) StartConfirmEmail(ctx context.Context, email string, info *models.ConfirmEmailInfo, now time.Time) (bool, error) {
	const q = `
		UPDATE users
		SET confirm_code = $2, confirm_expiry = $3, confirm_attempts = $4
		WHERE email = $1
		  AND (confirm_code IS NULL OR confirm_expiry <= $5)
	`
	res, err := r.DB.ExecContext(ctx, q, email, info.Code, info.Expiry, info.AttemptsMade, now)
	if err != nil {
		return false, fmt.Errorf("confirm email start: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("confirm email start: %w", err)
	}
	return n == 1, nil
}

// IncrementConfirmAttempts adds one attempt to the code identified by
// expected. It reports false when that code is no longer the stored one.
func (r *userRepository) IncrementConfirmAttempts(ctx context.Context, email string, expected *models.ConfirmEmailInfo) (int, bool, error) {
	const q = `
		UPDATE users
		SET confirm_attempts = confirm_attempts + 1
		WHERE email = $1 AND confirm_code = $2 AND confirm_expiry = $3
		RETURNING confirm_attempts
	`
	var attempts int
	err := r.DB.QueryRowContext(ctx, q, email, expected.Code, expected.Expiry).Scan(&attempts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("confirm email increment attempts: %w", err)
	}
	return attempts, true, nil
}

// ConsumeConfirmEmail clears the code identified by expected and records the
// confirmation time, keeping an earlier one if present. The attempt bound is
// rechecked here so concurrent wrong guesses cannot slip past it.
func (r *userRepository) ConsumeConfirmEmail(ctx context.Context, email string, expected *models.ConfirmEmailInfo, maxAttempts int, confirmedAt time.Time) (*time.Time, bool, error) {
	const q = `
		UPDATE users
		SET confirm_code = NULL, confirm_expiry = NULL, confirm_attempts = NULL,
		    confirmed_at = COALESCE(confirmed_at, $5)
		WHERE email = $1 AND confirm_code = $2 AND confirm_expiry = $3
		  AND confirm_attempts <= $4
		RETURNING confirmed_at
	`
	var at time.Time
	err := r.DB.QueryRowContext(ctx, q, email, expected.Code, expected.Expiry, maxAttempts, confirmedAt).Scan(&at)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("confirm email consume: %w", err)
	}
	return &at, true, nil
}

// SetVerified marks the user verified once; later calls keep the first time.
// It returns nil, nil when the user does not exist.
func (r *userRepository) SetVerified(ctx context.Context, id string, at time.Time) (*time.Time, error) {
	const q = `
		UPDATE users
		SET verified_at = COALESCE(verified_at, $2)
		WHERE id = $1
		RETURNING verified_at
	`
	var verifiedAt time.Time
	if err := r.DB.QueryRowContext(ctx, q, id, at).Scan(&verifiedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("user set verified: %w", err)
	}
	return &verifiedAt, nil
}
