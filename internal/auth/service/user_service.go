package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/isurusajith68/stockwise-aiims-server/config"
	"github.com/isurusajith68/stockwise-aiims-server/internal/auth/domain"
	"github.com/isurusajith68/stockwise-aiims-server/internal/auth/dto"
	autherr "github.com/isurusajith68/stockwise-aiims-server/internal/errors"
	"github.com/isurusajith68/stockwise-aiims-server/internal/metrics"
	"github.com/isurusajith68/stockwise-aiims-server/pkg/constant"
	"github.com/isurusajith68/stockwise-aiims-server/pkg/password"
)

type UserService struct {
	repo        domain.UserRepository
	revocations domain.RevocationRepository
	twoFactor   *TwoFactorService
	tokens      TokenGenerator
	hasher      *password.Hasher
	cfg         *config.Config
	log         *zap.Logger
}

func NewUserService(
	repo domain.UserRepository,
	revocations domain.RevocationRepository,
	twoFactor *TwoFactorService,
	tokens TokenGenerator,
	hasher *password.Hasher,
	cfg *config.Config,
	log *zap.Logger,
) *UserService {
	return &UserService{
		repo:        repo,
		revocations: revocations,
		twoFactor:   twoFactor,
		tokens:      tokens,
		hasher:      hasher,
		cfg:         cfg,
		log:         log,
	}
}

func (s *UserService) Register(ctx context.Context, input dto.RegisterInput) (*dto.LoginOutput, error) {
	if err := validateRegistration(input); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role != constant.RoleAdmin {
		role = constant.RoleUser
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     input.Username,
		Email:        strings.ToLower(input.Email),
		PasswordHash: hashed,
		Role:         role,
		IsActive:     true,
		LastLogin:    &now,
		LastIP:       input.IPAddress,
		LastDevice:   input.DeviceInfo,
		LastLocation: input.Location,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var info *domain.StoreInformation
	if input.StoreName != "" {
		info = &domain.StoreInformation{
			ID:           uuid.NewString(),
			UserID:       user.ID,
			StoreName:    input.StoreName,
			StorePhone:   input.StorePhone,
			StoreAddress: input.StoreAddress,
			CreatedAt:    now,
		}
	}

	attempt := &domain.LoginAttempt{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		IPAddress:  input.IPAddress,
		DeviceInfo: input.DeviceInfo,
		Location:   input.Location,
		Status:     constant.AttemptSuccess,
		LoginTime:  now,
	}

	// User, store information and the initial attempt land atomically; any
	// failure rolls back the whole registration.
	if err := s.repo.CreateWithHistory(ctx, user, info, attempt); err != nil {
		return nil, err
	}

	token, _, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	metrics.TokensIssued.Inc()
	metrics.LoginAttempts.WithLabelValues(domain.OutcomeSuccess.String()).Inc()

	return &dto.LoginOutput{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Role:        user.Role,
		AccessToken: token,
	}, nil
}

// Login runs the verification state machine. Every terminal state, success
// or failure, appends a login attempt before returning.
func (s *UserService) Login(ctx context.Context, input dto.LoginInput) (*dto.LoginOutput, error) {
	user, err := s.repo.GetByIdentifier(ctx, input.Identifier)
	if err != nil {
		return nil, err
	}

	if user == nil {
		s.recordAttempt(ctx, "", input, domain.OutcomeIdentityNotFound)
		return nil, autherr.ErrUserNotFound
	}

	if !user.IsActive {
		s.recordAttempt(ctx, user.ID, input, domain.OutcomeInactiveAccount)
		return nil, autherr.ErrInactiveAccount
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		s.recordAttempt(ctx, user.ID, input, domain.OutcomeInvalidPassword)
		return nil, autherr.ErrInvalidPassword
	}

	enabled, err := s.twoFactor.Enabled(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if enabled {
		if input.TwoFactorCode == "" {
			// Soft signal: the client prompts for a code and resubmits.
			s.recordAttempt(ctx, user.ID, input, domain.OutcomeTwoFactorRequired)
			return &dto.LoginOutput{
				ID:         user.ID,
				Username:   user.Username,
				Email:      user.Email,
				Role:       user.Role,
				Require2FA: true,
			}, nil
		}

		ok, _, err := s.twoFactor.VerifyLoginCode(ctx, user.ID, input.TwoFactorCode)
		if err != nil {
			return nil, err
		}
		if !ok {
			s.recordAttempt(ctx, user.ID, input, domain.OutcomeInvalidTwoFactor)
			return nil, autherr.ErrInvalidTwoFactor
		}
	}

	now := time.Now()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now, input.IPAddress, input.DeviceInfo, input.Location); err != nil {
		return nil, err
	}

	token, _, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	metrics.TokensIssued.Inc()

	s.recordAttempt(ctx, user.ID, input, domain.OutcomeSuccess)

	return &dto.LoginOutput{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Role:        user.Role,
		AccessToken: token,
	}, nil
}

// Refresh re-issues a token for an identity already established by the auth
// middleware. No credentials are re-checked here.
func (s *UserService) Refresh(ctx context.Context, userID string) (*dto.LoginOutput, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, autherr.ErrUserNotFound
	}

	token, _, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	metrics.TokensIssued.Inc()

	return &dto.LoginOutput{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Role:        user.Role,
		AccessToken: token,
	}, nil
}

// Logout adds the token to the revocation ledger using its decoded expiry.
// A token that has already expired is nothing to revoke, not an error.
func (s *UserService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.tokens.Decode(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return nil
	}

	expiresAt := claims.ExpiresAt.Time
	if !expiresAt.After(time.Now()) {
		return nil
	}

	if err := s.revocations.Revoke(ctx, tokenString, expiresAt, claims.UserID); err != nil {
		return err
	}
	metrics.TokensRevoked.Inc()

	return nil
}

func (s *UserService) Profile(ctx context.Context, userID string) (*dto.ProfileOutput, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, autherr.ErrUserNotFound
	}

	out := &dto.ProfileOutput{UserOutput: toUserOutput(user)}

	info, err := s.repo.GetStoreInformation(ctx, userID)
	if err != nil {
		return nil, err
	}
	if info != nil {
		out.StoreInformation = &dto.StoreInformationOutput{
			ID:           info.ID,
			StoreName:    info.StoreName,
			StorePhone:   info.StorePhone,
			StoreAddress: info.StoreAddress,
		}
	}

	return out, nil
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]dto.UserOutput, error) {
	users, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]dto.UserOutput, 0, len(users))
	for i := range users {
		out = append(out, toUserOutput(&users[i]))
	}
	return out, nil
}

func (s *UserService) SetActive(ctx context.Context, userID string, active bool) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return autherr.ErrUserNotFound
	}
	return s.repo.SetActive(ctx, userID, active)
}

// recordAttempt is a best-effort observability sink. A recorder failure must
// never block the login path, so errors are logged and swallowed.
func (s *UserService) recordAttempt(ctx context.Context, userID string, input dto.LoginInput, outcome domain.LoginOutcome) {
	attempt := &domain.LoginAttempt{
		ID:         uuid.NewString(),
		UserID:     userID,
		IPAddress:  input.IPAddress,
		DeviceInfo: input.DeviceInfo,
		Location:   input.Location,
		Status:     constant.AttemptSuccess,
		LoginTime:  time.Now(),
	}
	if outcome != domain.OutcomeSuccess {
		attempt.Status = constant.AttemptFailed
		attempt.FailureReason = outcome.String()
	}

	if err := s.repo.RecordLoginAttempt(ctx, attempt); err != nil {
		s.log.Warn("failed to record login attempt",
			zap.String("outcome", outcome.String()),
			zap.Error(err))
	}
	metrics.LoginAttempts.WithLabelValues(outcome.String()).Inc()
}

func validateRegistration(input dto.RegisterInput) error {
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return autherr.ErrInvalidInput
	}
	if !password.MeetsPolicy(input.Password) {
		return autherr.ErrWeakPassword
	}
	return nil
}

func toUserOutput(user *domain.User) dto.UserOutput {
	return dto.UserOutput{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		IsActive:  user.IsActive,
		LastLogin: user.LastLogin,
		CreatedAt: user.CreatedAt,
	}
}
