package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/cybershield/internal/account/entity"
	"github.com/shandysiswandi/cybershield/internal/pkg/goerror"
)

type RegisterInput struct {
	Identifier  string `validate:"required,email,max=254"`
	DisplayName string `validate:"required,max=100,printable"`
	Password    string `validate:"required,password"`
}

func (s *Usecase) Register(ctx context.Context, in RegisterInput) error {
	ctx, span := s.startSpan(ctx, "Register")
	defer span.End()

	in.Identifier = strings.TrimSpace(strings.ToLower(in.Identifier))
	in.DisplayName = strings.TrimSpace(in.DisplayName)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	passHash, err := s.hash.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return goerror.NewServer(err)
	}

	now := s.clock.Now()
	err = s.repoStore.Create(ctx, entity.Credential{
		Identifier:   in.Identifier,
		DisplayName:  in.DisplayName,
		PasswordHash: string(passHash),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, goerror.ErrConflict) {
		slog.WarnContext(ctx, "account already registered", "identifier", in.Identifier)
		return goerror.NewBusiness("an account with this identifier already exists", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create credential", "identifier", in.Identifier, "error", err)
		return goerror.NewUnavailable(err)
	}

	s.publish(ctx, "PublishAccountRegistered", func(ctx context.Context) error {
		return s.repoMessaging.PublishAccountRegistered(ctx, AccountRegisteredEvent{
			Identifier:   in.Identifier,
			DisplayName:  in.DisplayName,
			RegisteredAt: now,
		})
	})

	return nil
}
