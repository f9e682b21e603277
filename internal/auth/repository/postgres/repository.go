package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/isurusajith68/stockwise-aiims-server/internal/auth/domain"
	autherr "github.com/isurusajith68/stockwise-aiims-server/internal/errors"
)

const uniqueViolation = "23505"

// DB is the subset of pgxpool.Pool the repository uses. pgxmock satisfies it
// in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Repository struct {
	db DB
}

func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, username, email, password_hash, role, is_active,
		last_login, last_ip, last_device, last_location, created_at, updated_at`

func (r *Repository) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE (username = $1 OR email = $1) AND deleted_at IS NULL
		LIMIT 1;
	`
	return r.scanUser(r.db.QueryRow(ctx, query, identifier))
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1 AND deleted_at IS NULL
		LIMIT 1;
	`
	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *Repository) scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Role, &user.IsActive, &user.LastLogin, &user.LastIP,
		&user.LastDevice, &user.LastLocation, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// CreateWithHistory inserts the user, optional store information and the
// initial login attempt in one transaction. A partial registration is never
// observable.
func (r *Repository) CreateWithHistory(ctx context.Context, user *domain.User, info *domain.StoreInformation, attempt *domain.LoginAttempt) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash, role, is_active,
			last_login, last_ip, last_device, last_location, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, user.ID, user.Username, user.Email, user.PasswordHash, user.Role,
		user.IsActive, user.LastLogin, user.LastIP, user.LastDevice,
		user.LastLocation, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return mapUniqueViolation(err)
	}

	if info != nil {
		_, err = tx.Exec(ctx, `
			INSERT INTO store_information (id, user_id, store_name, store_phone, store_address, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, info.ID, info.UserID, info.StoreName, info.StorePhone, info.StoreAddress, info.CreatedAt)
		if err != nil {
			return err
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO login_history (id, user_id, ip_address, device_info, location, status, failure_reason, login_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, attempt.ID, attempt.UserID, attempt.IPAddress, attempt.DeviceInfo,
		attempt.Location, attempt.Status, nullableString(attempt.FailureReason), attempt.LoginTime)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *Repository) UpdateLastLogin(ctx context.Context, userID string, at time.Time, ip, device, location string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET last_login = $2, last_ip = $3, last_device = $4, last_location = $5, updated_at = now()
		WHERE id = $1
	`, userID, at, ip, device, location)
	return err
}

func (r *Repository) RecordLoginAttempt(ctx context.Context, attempt *domain.LoginAttempt) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO login_history (id, user_id, ip_address, device_info, location, status, failure_reason, login_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, attempt.ID, nullableString(attempt.UserID), attempt.IPAddress,
		attempt.DeviceInfo, attempt.Location, attempt.Status,
		nullableString(attempt.FailureReason), attempt.LoginTime)
	return err
}

func (r *Repository) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
			&user.Role, &user.IsActive, &user.LastLogin, &user.LastIP,
			&user.LastDevice, &user.LastLocation, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

func (r *Repository) SetActive(ctx context.Context, userID string, active bool) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET is_active = $2, updated_at = now() WHERE id = $1
	`, userID, active)
	return err
}

func (r *Repository) GetStoreInformation(ctx context.Context, userID string) (*domain.StoreInformation, error) {
	var info domain.StoreInformation
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, store_name, store_phone, store_address, created_at
		FROM store_information
		WHERE user_id = $1
		LIMIT 1;
	`, userID).Scan(&info.ID, &info.UserID, &info.StoreName, &info.StorePhone,
		&info.StoreAddress, &info.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &info, nil
}

// --- two-factor credentials ---

func (r *Repository) Get(ctx context.Context, userID string) (*domain.TwoFactorCredential, error) {
	var cred domain.TwoFactorCredential
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, secret, is_enabled, backup_codes, updated_at
		FROM two_factor_auth
		WHERE user_id = $1
		LIMIT 1;
	`, userID).Scan(&cred.ID, &cred.UserID, &cred.Secret, &cred.IsEnabled,
		&cred.BackupCodes, &cred.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &cred, nil
}

func (r *Repository) UpsertSecret(ctx context.Context, userID, secret string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO two_factor_auth (id, user_id, secret, is_enabled, backup_codes, updated_at)
		VALUES (gen_random_uuid(), $1, $2, false, '{}', now())
		ON CONFLICT (user_id)
		DO UPDATE SET secret = EXCLUDED.secret, is_enabled = false, backup_codes = '{}', updated_at = now()
	`, userID, secret)
	return err
}

func (r *Repository) Enable(ctx context.Context, userID string, backupCodes []string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE two_factor_auth
		SET is_enabled = true, backup_codes = $2, updated_at = now()
		WHERE user_id = $1
	`, userID, backupCodes)
	return err
}

func (r *Repository) Disable(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE two_factor_auth
		SET is_enabled = false, updated_at = now()
		WHERE user_id = $1
	`, userID)
	return err
}

// ConsumeBackupCode removes the code in a single UPDATE guarded by a
// membership predicate, so two concurrent requests cannot both spend the
// same code.
func (r *Repository) ConsumeBackupCode(ctx context.Context, userID, code string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE two_factor_auth
		SET backup_codes = array_remove(backup_codes, $2), updated_at = now()
		WHERE user_id = $1 AND $2 = ANY(backup_codes)
	`, userID, code)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// --- revocation ledger ---

func (r *Repository) Revoke(ctx context.Context, token string, expiresAt time.Time, userID string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO token_blacklist (token, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (token) DO NOTHING
	`, token, nullableString(userID), expiresAt)
	return err
}

func (r *Repository) IsRevoked(ctx context.Context, token string) (bool, error) {
	var revoked bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM token_blacklist WHERE token = $1);
	`, token).Scan(&revoked)
	if err != nil {
		return false, err
	}
	return revoked, nil
}

func (r *Repository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM token_blacklist WHERE expires_at < $1
	`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if strings.Contains(pgErr.ConstraintName, "email") {
			return autherr.ErrEmailAlreadyInUse
		}
		return autherr.ErrUsernameAlreadyInUse
	}
	return err
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
