package domain

// LoginOutcome is the closed set of results a login verification can reach.
// The orchestrator switches over it exhaustively; no string comparison.
type LoginOutcome int

const (
	OutcomeSuccess LoginOutcome = iota
	OutcomeIdentityNotFound
	OutcomeInactiveAccount
	OutcomeInvalidPassword
	OutcomeTwoFactorRequired
	OutcomeInvalidTwoFactor
)

func (o LoginOutcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeIdentityNotFound:
		return "identity_not_found"
	case OutcomeInactiveAccount:
		return "inactive_account"
	case OutcomeInvalidPassword:
		return "invalid_password"
	case OutcomeTwoFactorRequired:
		return "two_factor_required"
	case OutcomeInvalidTwoFactor:
		return "invalid_two_factor"
	}
	return "unknown"
}
