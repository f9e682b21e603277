package constant

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Login attempt outcomes persisted to login_history.status.
const (
	AttemptSuccess = "success"
	AttemptFailed  = "failed"
)

// Failure reasons persisted to login_history.failure_reason.
const (
	ReasonIdentityNotFound  = "identity_not_found"
	ReasonInactiveAccount   = "inactive_account"
	ReasonInvalidPassword   = "invalid_password"
	ReasonTwoFactorRequired = "two_factor_required"
	ReasonInvalidTwoFactor  = "invalid_two_factor"
)

// RefreshTokenHeader carries the silently re-issued token back to the client.
const RefreshTokenHeader = "X-Refresh-Token"

const BackupCodeCount = 10

// Fiber locals keys set by the auth middleware.
const (
	LocalUserID = "user_id"
	LocalRole   = "user_role"
	LocalToken  = "token"
)
