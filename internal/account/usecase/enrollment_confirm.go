package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/cybershield/internal/account/entity"
	"github.com/shandysiswandi/cybershield/internal/pkg/goerror"
)

type ConfirmEnrollmentInput struct {
	Identifier string `validate:"required,email,max=254"`
	Code       string `validate:"required,max=10"`
}

var (
	errNoPendingSecret = errors.New("no pending second factor secret")
	errCodeMismatch    = errors.New("one-time code mismatch")
)

func errNoPendingSecretBusiness() error {
	return goerror.NewBusiness("two-factor setup has not been started", goerror.CodeNotFound)
}

func errInvalidCode() error {
	return goerror.NewBusiness("invalid verification code", goerror.CodeInvalidCode)
}

// ConfirmEnrollment enables the second factor once the user proves their
// authenticator produces codes for the pending secret. A wrong code leaves
// the record untouched so the user can retry.
func (s *Usecase) ConfirmEnrollment(ctx context.Context, in ConfirmEnrollmentInput) error {
	ctx, span := s.startSpan(ctx, "ConfirmEnrollment")
	defer span.End()

	in.Identifier = strings.TrimSpace(strings.ToLower(in.Identifier))
	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	cred, err := s.getCredential(ctx, in.Identifier)
	if err != nil {
		return err
	}

	if cred.SecondFactorEnabled {
		slog.WarnContext(ctx, "second factor already enabled", "identifier", in.Identifier)
		return errAlreadyEnabledBusiness()
	}

	if !cred.HasPendingSecret() {
		slog.WarnContext(ctx, "no pending totp secret", "identifier", in.Identifier)
		return errNoPendingSecretBusiness()
	}

	if err := s.requireLoginSession(ctx, in.Identifier, entity.AuthStateEnrollmentPending); err != nil {
		return err
	}

	var decryptErr error
	err = s.repoStore.Update(ctx, in.Identifier, func(c *entity.Credential) error {
		if c.SecondFactorEnabled {
			return errAlreadyEnabled
		}
		if !c.HasPendingSecret() {
			return errNoPendingSecret
		}

		secret, err := s.mfaEncryptor.Decrypt(c.SecondFactorSecret, s.secretScope(in.Identifier))
		if err != nil {
			decryptErr = err
			return err
		}

		now := s.clock.Now()
		if !s.totp.Validate(in.Code, string(secret), now) {
			return errCodeMismatch
		}

		c.SecondFactorEnabled = true
		c.UpdatedAt = now
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, errCodeMismatch):
		slog.WarnContext(ctx, "invalid enrollment code", "identifier", in.Identifier)
		return errInvalidCode()
	case errors.Is(err, errAlreadyEnabled):
		slog.WarnContext(ctx, "second factor enabled concurrently", "identifier", in.Identifier)
		return errAlreadyEnabledBusiness()
	case errors.Is(err, errNoPendingSecret):
		return errNoPendingSecretBusiness()
	case errors.Is(err, goerror.ErrNotFound):
		return goerror.NewBusiness("account not found", goerror.CodeNotFound)
	case decryptErr != nil:
		slog.ErrorContext(ctx, "failed to decrypt totp secret", "identifier", in.Identifier, "error", err)
		return goerror.NewServer(err)
	default:
		slog.ErrorContext(ctx, "failed to repo update credential", "identifier", in.Identifier, "error", err)
		return goerror.NewUnavailable(err)
	}

	s.consumeLoginSession(ctx, in.Identifier)

	enabledAt := s.clock.Now()
	s.publish(ctx, "PublishSecondFactorEnabled", func(ctx context.Context) error {
		return s.repoMessaging.PublishSecondFactorEnabled(ctx, SecondFactorEnabledEvent{
			Identifier: in.Identifier,
			EnabledAt:  enabledAt,
		})
	})

	return nil
}
