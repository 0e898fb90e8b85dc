package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/cybershield/internal/account/entity"
	"github.com/shandysiswandi/cybershield/internal/pkg/goerror"
)

type BeginEnrollmentInput struct {
	Identifier string `validate:"required,email,max=254"`
}

type BeginEnrollmentOutput struct {
	Secret          string
	ProvisioningURI string
}

var errAlreadyEnabled = errors.New("second factor already enabled")

func errAlreadyEnabledBusiness() error {
	return goerror.NewBusiness("two-factor authentication is already enabled", goerror.CodeConflict)
}

// BeginEnrollment provisions a fresh TOTP secret. Any secret from an earlier
// unfinished attempt is replaced.
func (s *Usecase) BeginEnrollment(ctx context.Context, in BeginEnrollmentInput) (*BeginEnrollmentOutput, error) {
	ctx, span := s.startSpan(ctx, "BeginEnrollment")
	defer span.End()

	in.Identifier = strings.TrimSpace(strings.ToLower(in.Identifier))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	cred, err := s.getCredential(ctx, in.Identifier)
	if err != nil {
		return nil, err
	}

	if cred.SecondFactorEnabled {
		slog.WarnContext(ctx, "second factor already enabled", "identifier", in.Identifier)
		return nil, errAlreadyEnabledBusiness()
	}

	if err := s.requireLoginSession(ctx, in.Identifier, entity.AuthStateEnrollmentPending); err != nil {
		return nil, err
	}

	secret, uri, err := s.totp.Generate(in.Identifier)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate totp secret", "identifier", in.Identifier, "error", err)
		return nil, goerror.NewServer(err)
	}

	sealed, err := s.mfaEncryptor.Encrypt([]byte(secret), s.secretScope(in.Identifier))
	if err != nil {
		slog.ErrorContext(ctx, "failed to encrypt totp secret", "identifier", in.Identifier, "error", err)
		return nil, goerror.NewServer(err)
	}

	err = s.repoStore.Update(ctx, in.Identifier, func(c *entity.Credential) error {
		if c.SecondFactorEnabled {
			return errAlreadyEnabled
		}
		c.SecondFactorSecret = sealed
		c.UpdatedAt = s.clock.Now()
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, errAlreadyEnabled):
		slog.WarnContext(ctx, "second factor enabled concurrently", "identifier", in.Identifier)
		return nil, errAlreadyEnabledBusiness()
	case errors.Is(err, goerror.ErrNotFound):
		slog.WarnContext(ctx, "account not found", "identifier", in.Identifier)
		return nil, goerror.NewBusiness("account not found", goerror.CodeNotFound)
	default:
		slog.ErrorContext(ctx, "failed to repo update credential", "identifier", in.Identifier, "error", err)
		return nil, goerror.NewUnavailable(err)
	}

	return &BeginEnrollmentOutput{Secret: secret, ProvisioningURI: uri}, nil
}
