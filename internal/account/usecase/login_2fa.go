package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/cybershield/internal/account/entity"
	"github.com/shandysiswandi/cybershield/internal/pkg/goerror"
)

type VerifyLoginInput struct {
	Identifier string `validate:"required,email,max=254"`
	Code       string `validate:"required,max=10"`
}

type VerifyLoginOutput struct {
	State entity.AuthState
}

var (
	errNotEnrolled = errors.New("second factor not enabled")
	errCodeReplay  = errors.New("one-time code already used")
)

func errNotEnrolledBusiness() error {
	return goerror.NewBusiness("two-factor authentication is not enabled", goerror.CodeNotEnrolled)
}

// VerifyLoginSecondFactor completes a login by checking a TOTP code. Each
// time step is accepted at most once per account.
func (s *Usecase) VerifyLoginSecondFactor(ctx context.Context, in VerifyLoginInput) (*VerifyLoginOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyLoginSecondFactor")
	defer span.End()

	in.Identifier = strings.TrimSpace(strings.ToLower(in.Identifier))
	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	cred, err := s.getCredential(ctx, in.Identifier)
	if err != nil {
		return nil, err
	}

	if !cred.SecondFactorEnabled {
		slog.WarnContext(ctx, "second factor not enabled", "identifier", in.Identifier)
		return nil, errNotEnrolledBusiness()
	}

	if err := s.requireLoginSession(ctx, in.Identifier, entity.AuthStateSecondFactorPending); err != nil {
		return nil, err
	}

	var decryptErr error
	err = s.repoStore.Update(ctx, in.Identifier, func(c *entity.Credential) error {
		if !c.SecondFactorEnabled {
			return errNotEnrolled
		}

		secret, err := s.mfaEncryptor.Decrypt(c.SecondFactorSecret, s.secretScope(in.Identifier))
		if err != nil {
			decryptErr = err
			return err
		}

		now := s.clock.Now()
		step, ok := s.totp.ValidateStep(in.Code, string(secret), now)
		if !ok {
			return errCodeMismatch
		}
		if step <= c.LastUsedStep {
			return errCodeReplay
		}

		c.LastUsedStep = step
		c.UpdatedAt = now
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, errCodeMismatch):
		slog.WarnContext(ctx, "invalid login code", "identifier", in.Identifier)
		return nil, errInvalidCode()
	case errors.Is(err, errCodeReplay):
		slog.WarnContext(ctx, "login code replayed", "identifier", in.Identifier)
		return nil, errInvalidCode()
	case errors.Is(err, errNotEnrolled):
		return nil, errNotEnrolledBusiness()
	case errors.Is(err, goerror.ErrNotFound):
		return nil, goerror.NewBusiness("account not found", goerror.CodeNotFound)
	case decryptErr != nil:
		slog.ErrorContext(ctx, "failed to decrypt totp secret", "identifier", in.Identifier, "error", err)
		return nil, goerror.NewServer(err)
	default:
		slog.ErrorContext(ctx, "failed to repo update credential", "identifier", in.Identifier, "error", err)
		return nil, goerror.NewUnavailable(err)
	}

	s.consumeLoginSession(ctx, in.Identifier)

	authenticatedAt := s.clock.Now()
	s.publish(ctx, "PublishLoginSucceeded", func(ctx context.Context) error {
		return s.repoMessaging.PublishLoginSucceeded(ctx, LoginSucceededEvent{
			Identifier:      in.Identifier,
			AuthenticatedAt: authenticatedAt,
		})
	})

	return &VerifyLoginOutput{State: entity.AuthStateAuthenticated}, nil
}
