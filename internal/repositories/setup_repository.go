package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"databank/internal/models"
)

type SetupRepository interface {
	// GetVerificationInfo returns nil, nil before setup has run.
	GetVerificationInfo(ctx context.Context) (*models.VerificationInfo, error)
	// UpdateVerificationInfo returns ErrNotInitialized before setup has run.
	UpdateVerificationInfo(ctx context.Context, info models.VerificationInfo) error
	// Initialize stores the policy and creates the first administrator in one transaction.
	Initialize(ctx context.Context, admin *models.User, info models.VerificationInfo) error
}

type setupRepository struct {
	DB *sql.DB
}

func NewSetupRepository(db *sql.DB) SetupRepository {
	return &setupRepository{DB: db}
}

func (r *setupRepository) GetVerificationInfo(ctx context.Context) (*models.VerificationInfo, error) {
	const q = `SELECT verification_kind, verification_regex FROM setup_config WHERE id = 1`
	var (
		info  models.VerificationInfo
		regex sql.NullString
	)
	if err := r.DB.QueryRowContext(ctx, q).Scan(&info.Kind, &regex); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("setup get: %w", err)
	}
	info.Regex = regex.String
	return &info, nil
}

func (r *setupRepository) UpdateVerificationInfo(ctx context.Context, info models.VerificationInfo) error {
	const q = `
		UPDATE setup_config
		SET verification_kind = $1, verification_regex = $2, updated_at = NOW()
		WHERE id = 1
	`
	res, err := r.DB.ExecContext(ctx, q, info.Kind, nullString(info.Regex))
	if err != nil {
		return fmt.Errorf("setup update: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("setup update: %w", err)
	}
	if n == 0 {
		return ErrNotInitialized
	}
	return nil
}

func (r *setupRepository) Initialize(ctx context.Context, admin *models.User, info models.VerificationInfo) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("setup begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const q = `
		INSERT INTO setup_config (id, verification_kind, verification_regex)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := tx.ExecContext(ctx, q, info.Kind, nullString(info.Regex))
	if err != nil {
		return fmt.Errorf("setup insert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("setup insert: %w", err)
	}
	if n == 0 {
		return ErrAlreadyInitialized
	}

	if err = insertUser(ctx, tx, admin); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("setup commit: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
