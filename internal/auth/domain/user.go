package domain

import "time"

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	LastLogin    *time.Time
	LastIP       string
	LastDevice   string
	LastLocation string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

type StoreInformation struct {
	ID           string
	UserID       string
	StoreName    string
	StorePhone   string
	StoreAddress string
	CreatedAt    time.Time
}

type TwoFactorCredential struct {
	ID          string
	UserID      string
	Secret      string
	IsEnabled   bool
	BackupCodes []string
	UpdatedAt   time.Time
}

// RevokedToken is a deny-list entry. Its presence makes the token unusable
// regardless of cryptographic validity, until ExpiresAt passes.
type RevokedToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// LoginAttempt is an append-only audit row. UserID is empty when the
// presented identifier did not resolve to an account.
type LoginAttempt struct {
	ID            string
	UserID        string
	IPAddress     string
	DeviceInfo    string
	Location      string
	Status        string
	FailureReason string
	LoginTime     time.Time
}
