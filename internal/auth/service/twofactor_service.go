package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/isurusajith68/stockwise-aiims-server/internal/auth/domain"
	"github.com/isurusajith68/stockwise-aiims-server/internal/auth/dto"
	autherr "github.com/isurusajith68/stockwise-aiims-server/internal/errors"
	"github.com/isurusajith68/stockwise-aiims-server/pkg/constant"
	"github.com/isurusajith68/stockwise-aiims-server/pkg/password"
	"github.com/isurusajith68/stockwise-aiims-server/pkg/totp"
)

type TwoFactorService struct {
	repo   domain.TwoFactorRepository
	users  domain.UserRepository
	hasher *password.Hasher
	issuer string
	log    *zap.Logger

	// Now is the clock used for code verification. Overridable in tests.
	Now func() time.Time
}

func NewTwoFactorService(
	repo domain.TwoFactorRepository,
	users domain.UserRepository,
	hasher *password.Hasher,
	issuer string,
	log *zap.Logger,
) *TwoFactorService {
	return &TwoFactorService{
		repo:   repo,
		users:  users,
		hasher: hasher,
		issuer: issuer,
		log:    log,
		Now:    time.Now,
	}
}

// Setup creates a fresh shared secret in a disabled state, rotating any
// existing one. The secret is only ever returned from this call.
func (s *TwoFactorService) Setup(ctx context.Context, userID string) (*dto.TwoFactorSetupOutput, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, autherr.ErrUserNotFound
	}

	secret, err := totp.GenerateSecret()
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpsertSecret(ctx, userID, secret); err != nil {
		return nil, err
	}

	return &dto.TwoFactorSetupOutput{
		Secret:          secret,
		ProvisioningURI: totp.ProvisioningURI(secret, s.issuer, user.Email),
		IsEnabled:       false,
	}, nil
}

// Confirm validates the first code against the pending secret. On success
// two-factor is enabled and a new set of single-use backup codes replaces
// any prior set.
func (s *TwoFactorService) Confirm(ctx context.Context, userID, code string) ([]string, error) {
	cred, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, autherr.ErrTwoFactorNotSetUp
	}

	ok, err := totp.Verify(cred.Secret, code, s.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, autherr.ErrInvalidTwoFactor
	}

	codes, err := totp.GenerateBackupCodes(constant.BackupCodeCount)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Enable(ctx, userID, codes); err != nil {
		return nil, err
	}

	return codes, nil
}

// VerifyLoginCode tries the time-based check first and falls back to the
// backup-code set. A matched backup code is consumed in the same step.
func (s *TwoFactorService) VerifyLoginCode(ctx context.Context, userID, code string) (ok, usedBackup bool, err error) {
	cred, err := s.repo.Get(ctx, userID)
	if err != nil {
		return false, false, err
	}
	if cred == nil || !cred.IsEnabled {
		return false, false, autherr.ErrTwoFactorNotSetUp
	}

	ok, err = totp.Verify(cred.Secret, code, s.Now())
	if err != nil {
		return false, false, err
	}
	if ok {
		return true, false, nil
	}

	consumed, err := s.repo.ConsumeBackupCode(ctx, userID, code)
	if err != nil {
		return false, false, err
	}
	if consumed {
		s.log.Info("backup code consumed", zap.String("user_id", userID))
		return true, true, nil
	}

	return false, false, nil
}

// Enabled reports whether the user has an enabled two-factor credential.
func (s *TwoFactorService) Enabled(ctx context.Context, userID string) (bool, error) {
	cred, err := s.repo.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	return cred != nil && cred.IsEnabled, nil
}

func (s *TwoFactorService) Status(ctx context.Context, userID string) (bool, error) {
	cred, err := s.repo.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	if cred == nil {
		return false, autherr.ErrTwoFactorNotSetUp
	}
	return cred.IsEnabled, nil
}

// Disable requires re-proof of the account password.
func (s *TwoFactorService) Disable(ctx context.Context, userID, confirmingPassword string) error {
	cred, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if cred == nil {
		return autherr.ErrTwoFactorNotSetUp
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return autherr.ErrUserNotFound
	}

	if !s.hasher.Verify(confirmingPassword, user.PasswordHash) {
		return autherr.ErrInvalidPassword
	}

	return s.repo.Disable(ctx, userID)
}
