package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/isurusajith68/stockwise-aiims-server/internal/auth/domain"
	"github.com/isurusajith68/stockwise-aiims-server/internal/auth/service"
	autherr "github.com/isurusajith68/stockwise-aiims-server/internal/errors"
	"github.com/isurusajith68/stockwise-aiims-server/internal/mocks"
	"github.com/isurusajith68/stockwise-aiims-server/pkg/password"
)

// rfcSecret with a fixed clock of t=59 yields the code "287082".
const (
	rfcSecret  = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"
	rfcCode    = "287082"
	rfcInstant = 59
)

type twoFactorFixture struct {
	repo   *mocks.MockTwoFactorRepository
	users  *mocks.MockUserRepository
	hasher *password.Hasher
	svc    *service.TwoFactorService
}

func newTwoFactorFixture(t *testing.T) *twoFactorFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := &twoFactorFixture{
		repo:   mocks.NewMockTwoFactorRepository(ctrl),
		users:  mocks.NewMockUserRepository(ctrl),
		hasher: password.NewHasher(bcrypt.MinCost),
	}
	f.svc = service.NewTwoFactorService(f.repo, f.users, f.hasher, "STOCKWISE", zap.NewNop())
	f.svc.Now = func() time.Time { return time.Unix(rfcInstant, 0) }

	return f
}

func TestTwoFactorService_Setup(t *testing.T) {
	f := newTwoFactorFixture(t)
	user := &domain.User{ID: "user-123", Email: "a@x.com", IsActive: true}

	var stored string
	f.users.EXPECT().GetByID(gomock.Any(), user.ID).Return(user, nil)
	f.repo.EXPECT().UpsertSecret(gomock.Any(), user.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, secret string) error {
			stored = secret
			return nil
		})

	out, err := f.svc.Setup(context.Background(), user.ID)

	require.NoError(t, err)
	assert.Equal(t, stored, out.Secret)
	assert.False(t, out.IsEnabled)
	assert.Contains(t, out.ProvisioningURI, "otpauth://totp/STOCKWISE:a%40x.com")
	assert.Contains(t, out.ProvisioningURI, "secret="+stored)
}

func TestTwoFactorService_Setup_UnknownUser(t *testing.T) {
	f := newTwoFactorFixture(t)

	f.users.EXPECT().GetByID(gomock.Any(), "ghost").Return(nil, nil)

	_, err := f.svc.Setup(context.Background(), "ghost")
	assert.ErrorIs(t, err, autherr.ErrUserNotFound)
}

func TestTwoFactorService_Confirm(t *testing.T) {
	t.Run("valid code enables and issues backup codes", func(t *testing.T) {
		f := newTwoFactorFixture(t)
		cred := &domain.TwoFactorCredential{UserID: "user-123", Secret: rfcSecret}

		var issued []string
		f.repo.EXPECT().Get(gomock.Any(), "user-123").Return(cred, nil)
		f.repo.EXPECT().Enable(gomock.Any(), "user-123", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, codes []string) error {
				issued = codes
				return nil
			})

		codes, err := f.svc.Confirm(context.Background(), "user-123", rfcCode)

		require.NoError(t, err)
		assert.Len(t, codes, 10)
		assert.Equal(t, issued, codes)
	})

	t.Run("invalid code", func(t *testing.T) {
		f := newTwoFactorFixture(t)
		cred := &domain.TwoFactorCredential{UserID: "user-123", Secret: rfcSecret}

		f.repo.EXPECT().Get(gomock.Any(), "user-123").Return(cred, nil)

		_, err := f.svc.Confirm(context.Background(), "user-123", "000000")
		assert.ErrorIs(t, err, autherr.ErrInvalidTwoFactor)
	})

	t.Run("not set up", func(t *testing.T) {
		f := newTwoFactorFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), "user-123").Return(nil, nil)

		_, err := f.svc.Confirm(context.Background(), "user-123", rfcCode)
		assert.ErrorIs(t, err, autherr.ErrTwoFactorNotSetUp)
	})
}

func TestTwoFactorService_VerifyLoginCode(t *testing.T) {
	cred := &domain.TwoFactorCredential{
		UserID:      "user-123",
		Secret:      rfcSecret,
		IsEnabled:   true,
		BackupCodes: []string{"BACKUP99"},
	}

	t.Run("totp code", func(t *testing.T) {
		f := newTwoFactorFixture(t)
		f.repo.EXPECT().Get(gomock.Any(), "user-123").Return(cred, nil)

		ok, usedBackup, err := f.svc.VerifyLoginCode(context.Background(), "user-123", rfcCode)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.False(t, usedBackup)
	})

	t.Run("backup code fallback", func(t *testing.T) {
		f := newTwoFactorFixture(t)
		f.repo.EXPECT().Get(gomock.Any(), "user-123").Return(cred, nil)
		f.repo.EXPECT().ConsumeBackupCode(gomock.Any(), "user-123", "BACKUP99").Return(true, nil)

		ok, usedBackup, err := f.svc.VerifyLoginCode(context.Background(), "user-123", "BACKUP99")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, usedBackup)
	})

	t.Run("spent backup code fails", func(t *testing.T) {
		f := newTwoFactorFixture(t)
		f.repo.EXPECT().Get(gomock.Any(), "user-123").Return(cred, nil)
		f.repo.EXPECT().ConsumeBackupCode(gomock.Any(), "user-123", "BACKUP99").Return(false, nil)

		ok, _, err := f.svc.VerifyLoginCode(context.Background(), "user-123", "BACKUP99")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestTwoFactorService_Disable(t *testing.T) {
	t.Run("requires the account password", func(t *testing.T) {
		f := newTwoFactorFixture(t)
		hash, err := f.hasher.Hash("Aa1!aaaa")
		require.NoError(t, err)

		cred := &domain.TwoFactorCredential{UserID: "user-123", IsEnabled: true}
		user := &domain.User{ID: "user-123", PasswordHash: hash}

		f.repo.EXPECT().Get(gomock.Any(), "user-123").Return(cred, nil)
		f.users.EXPECT().GetByID(gomock.Any(), "user-123").Return(user, nil)

		err = f.svc.Disable(context.Background(), "user-123", "wrong-password")
		assert.ErrorIs(t, err, autherr.ErrInvalidPassword)
	})

	t.Run("disables with the correct password", func(t *testing.T) {
		f := newTwoFactorFixture(t)
		hash, err := f.hasher.Hash("Aa1!aaaa")
		require.NoError(t, err)

		cred := &domain.TwoFactorCredential{UserID: "user-123", IsEnabled: true}
		user := &domain.User{ID: "user-123", PasswordHash: hash}

		f.repo.EXPECT().Get(gomock.Any(), "user-123").Return(cred, nil)
		f.users.EXPECT().GetByID(gomock.Any(), "user-123").Return(user, nil)
		f.repo.EXPECT().Disable(gomock.Any(), "user-123").Return(nil)

		assert.NoError(t, f.svc.Disable(context.Background(), "user-123", "Aa1!aaaa"))
	})
}

func TestTwoFactorService_Status(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		f := newTwoFactorFixture(t)
		f.repo.EXPECT().Get(gomock.Any(), "user-123").
			Return(&domain.TwoFactorCredential{UserID: "user-123", IsEnabled: true}, nil)

		enabled, err := f.svc.Status(context.Background(), "user-123")
		require.NoError(t, err)
		assert.True(t, enabled)
	})

	t.Run("not set up", func(t *testing.T) {
		f := newTwoFactorFixture(t)
		f.repo.EXPECT().Get(gomock.Any(), "user-123").Return(nil, nil)

		_, err := f.svc.Status(context.Background(), "user-123")
		assert.ErrorIs(t, err, autherr.ErrTwoFactorNotSetUp)
	})
}
