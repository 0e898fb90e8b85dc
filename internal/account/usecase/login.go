package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/cybershield/internal/account/entity"
	"github.com/shandysiswandi/cybershield/internal/pkg/goerror"
)

type LoginInput struct {
	Identifier string `validate:"required,email,max=254"`
	Password   string `validate:"required,password"`
}

type LoginOutput struct {
	SecondFactorEnabled bool
	Next                entity.AuthState
}

// errInvalidCredentials is shared by the unknown-account and wrong-password
// paths so both render the same payload.
func errInvalidCredentials() error {
	return goerror.NewBusiness("invalid email or password", goerror.CodeInvalidCredentials)
}

func (s *Usecase) LoginPassword(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	ctx, span := s.startSpan(ctx, "LoginPassword")
	defer span.End()

	in.Identifier = strings.TrimSpace(strings.ToLower(in.Identifier))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	cred, err := s.repoStore.Get(ctx, in.Identifier)
	if errors.Is(err, goerror.ErrNotFound) {
		s.hash.Verify(s.dummyHash, in.Password)
		slog.WarnContext(ctx, "account not found", "identifier", in.Identifier)
		return nil, errInvalidCredentials()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get credential", "identifier", in.Identifier, "error", err)
		return nil, goerror.NewUnavailable(err)
	}

	if !s.hash.Verify(cred.PasswordHash, in.Password) {
		slog.WarnContext(ctx, "password does not match", "identifier", in.Identifier)
		return nil, errInvalidCredentials()
	}

	next := entity.AuthStateEnrollmentPending
	if cred.SecondFactorEnabled {
		next = entity.AuthStateSecondFactorPending
	}

	if err := s.repoSession.Save(ctx, entity.LoginSession{
		Identifier: in.Identifier,
		Step:       next,
		ExpiresAt:  s.clock.Now().Add(s.loginSessionTTL()),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo save login session", "identifier", in.Identifier, "error", err)
		return nil, goerror.NewUnavailable(err)
	}

	return &LoginOutput{
		SecondFactorEnabled: cred.SecondFactorEnabled,
		Next:                next,
	}, nil
}
