package domain

//go:generate mockgen -destination=../../mocks/mock_user_repository.go -package=mocks github.com/isurusajith68/stockwise-aiims-server/internal/auth/domain UserRepository
//go:generate mockgen -destination=../../mocks/mock_twofactor_repository.go -package=mocks github.com/isurusajith68/stockwise-aiims-server/internal/auth/domain TwoFactorRepository
//go:generate mockgen -destination=../../mocks/mock_revocation_repository.go -package=mocks github.com/isurusajith68/stockwise-aiims-server/internal/auth/domain RevocationRepository

import (
	"context"
	"time"
)

type UserRepository interface {
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	// CreateWithHistory inserts the user, its store information and the
	// initial login attempt as one transaction.
	CreateWithHistory(ctx context.Context, user *User, info *StoreInformation, attempt *LoginAttempt) error
	UpdateLastLogin(ctx context.Context, userID string, at time.Time, ip, device, location string) error
	RecordLoginAttempt(ctx context.Context, attempt *LoginAttempt) error
	List(ctx context.Context, limit, offset int) ([]User, error)
	SetActive(ctx context.Context, userID string, active bool) error
	GetStoreInformation(ctx context.Context, userID string) (*StoreInformation, error)
}

type TwoFactorRepository interface {
	Get(ctx context.Context, userID string) (*TwoFactorCredential, error)
	// UpsertSecret writes a new secret with the enabled flag cleared,
	// creating the row if it does not exist.
	UpsertSecret(ctx context.Context, userID, secret string) error
	Enable(ctx context.Context, userID string, backupCodes []string) error
	Disable(ctx context.Context, userID string) error
	// ConsumeBackupCode removes the code from the set if present and reports
	// whether it was consumed. The removal is atomic per user.
	ConsumeBackupCode(ctx context.Context, userID, code string) (bool, error)
}

type RevocationRepository interface {
	// Revoke inserts a deny-list entry. Inserting the same token twice is a
	// no-op, not an error.
	Revoke(ctx context.Context, token string, expiresAt time.Time, userID string) error
	IsRevoked(ctx context.Context, token string) (bool, error)
	// DeleteExpired removes entries whose expiry is before now and returns
	// the number removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
