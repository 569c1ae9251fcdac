package usecase

import "github.com/shandysiswandi/watercan/internal/pkg/goerror"

func errChallengeNotFound() error {
	return goerror.NewBusinessReason("No pending verification code, request a new one", goerror.CodeInvalidInput, goerror.ReasonChallengeNotFound, nil)
}

func errChallengeExpired() error {
	return goerror.NewBusinessReason("Verification code has expired, request a new one", goerror.CodeInvalidInput, goerror.ReasonChallengeExpired, nil)
}

func errTooManyAttempts() error {
	return goerror.NewBusinessReason("Too many wrong codes, request a new one", goerror.CodeInvalidInput, goerror.ReasonTooManyAttempts, nil)
}

func errInvalidChallenge(remaining int) error {
	return goerror.NewBusinessReason("Verification code is incorrect", goerror.CodeInvalidInput, goerror.ReasonInvalidChallenge,
		map[string]any{"attempts_remaining": remaining})
}

func errDisplayNameRequired() error {
	return goerror.NewBusinessReason("Display name is required to create an account", goerror.CodeInvalidInput, goerror.ReasonDisplayNameRequired,
		map[string]any{"requires_display_name": true})
}

func errPrincipalNotFound() error {
	return goerror.NewBusiness("Account not found", goerror.CodeNotFound)
}
