package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shandysiswandi/cybershield/internal/account/entity"
	"github.com/shandysiswandi/cybershield/internal/pkg/clock"
	"github.com/shandysiswandi/cybershield/internal/pkg/config"
	"github.com/shandysiswandi/cybershield/internal/pkg/goerror"
	"github.com/shandysiswandi/cybershield/internal/pkg/goroutine"
	"github.com/shandysiswandi/cybershield/internal/pkg/hash"
	"github.com/shandysiswandi/cybershield/internal/pkg/instrument"
	"github.com/shandysiswandi/cybershield/internal/pkg/mfa"
	"github.com/shandysiswandi/cybershield/internal/pkg/otp"
	"github.com/shandysiswandi/cybershield/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

// DefaultLoginSessionTTL applies when modules.account.login_session_ttl_seconds is unset.
const DefaultLoginSessionTTL = 5 * time.Minute

// dummyPassword is hashed once at startup; unknown identifiers are verified
// against it so a miss costs as much as a wrong password.
const dummyPassword = "cybershield-dummy-password"

type AccountRegisteredEvent struct {
	Identifier   string
	DisplayName  string
	RegisteredAt time.Time
}

type SecondFactorEnabledEvent struct {
	Identifier string
	EnabledAt  time.Time
}

type LoginSucceededEvent struct {
	Identifier      string
	AuthenticatedAt time.Time
}

type repoMessaging interface {
	PublishAccountRegistered(ctx context.Context, msg AccountRegisteredEvent) error
	PublishSecondFactorEnabled(ctx context.Context, msg SecondFactorEnabledEvent) error
	PublishLoginSucceeded(ctx context.Context, msg LoginSucceededEvent) error
}

type repoStore interface {
	Get(ctx context.Context, id string) (*entity.Credential, error)
	Create(ctx context.Context, c entity.Credential) error
	Update(ctx context.Context, id string, fn func(c *entity.Credential) error) error
}

type repoSession interface {
	Save(ctx context.Context, s entity.LoginSession) error
	Get(ctx context.Context, id string) (*entity.LoginSession, error)
	Delete(ctx context.Context, id string) error
}

type Usecase struct {
	repoStore     repoStore
	repoSession   repoSession
	repoMessaging repoMessaging
	validator     validator.Validator
	cfg           config.Config
	hash          hash.Hash
	mfaEncryptor  mfa.Encryptor
	totp          otp.OTP
	clock         clock.Clocker
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager

	dummyHash string
}

type Dependency struct {
	RepoStore     repoStore
	RepoSession   repoSession
	RepoMessaging repoMessaging
	Validator     validator.Validator
	Config        config.Config
	Hash          hash.Hash
	MFAEncryptor  mfa.Encryptor
	Totp          otp.OTP
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	s := &Usecase{
		repoStore:     dep.RepoStore,
		repoSession:   dep.RepoSession,
		repoMessaging: dep.RepoMessaging,
		validator:     dep.Validator,
		cfg:           dep.Config,
		hash:          dep.Hash,
		mfaEncryptor:  dep.MFAEncryptor,
		totp:          dep.Totp,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
	}

	dummy, err := s.hash.Hash(dummyPassword)
	if err != nil {
		slog.Error("failed to hash dummy password", "error", err)
	}
	s.dummyHash = string(dummy)

	return s
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("account.usecase").Start(ctx, name)
}

func (s *Usecase) loginSessionTTL() time.Duration {
	if ttl := s.cfg.GetSecond("modules.account.login_session_ttl_seconds"); ttl > 0 {
		return ttl
	}
	return DefaultLoginSessionTTL
}

func (s *Usecase) secretScope(identifier string) mfa.Scope {
	return mfa.Scope{Identifier: identifier, Purpose: mfa.PurposeOTPSeed}
}

func (s *Usecase) getCredential(ctx context.Context, identifier string) (*entity.Credential, error) {
	cred, err := s.repoStore.Get(ctx, identifier)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "account not found", "identifier", identifier)
		return nil, goerror.NewBusiness("account not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get credential", "identifier", identifier, "error", err)
		return nil, goerror.NewUnavailable(err)
	}

	return cred, nil
}

// requireLoginSession checks that a password was verified for identifier and
// that step is what must happen next.
func (s *Usecase) requireLoginSession(ctx context.Context, identifier string, step entity.AuthState) error {
	sess, err := s.repoSession.Get(ctx, identifier)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "login session not found", "identifier", identifier, "step", step.String())
		return goerror.NewBusiness("please log in with your password first", goerror.CodeLoginRequired)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get login session", "identifier", identifier, "error", err)
		return goerror.NewUnavailable(err)
	}

	if sess.Step != step || sess.Expired(s.clock.Now()) {
		slog.WarnContext(ctx, "login session step mismatch", "identifier", identifier,
			"want", step.String(), "got", sess.Step.String())
		return goerror.NewBusiness("please log in with your password first", goerror.CodeLoginRequired)
	}

	return nil
}

func (s *Usecase) consumeLoginSession(ctx context.Context, identifier string) {
	if err := s.repoSession.Delete(ctx, identifier); err != nil {
		slog.ErrorContext(ctx, "failed to repo delete login session", "identifier", identifier, "error", err)
	}
}

// publish hands an event to the background pool. Delivery failures are
// logged and never fail the request that produced the event.
func (s *Usecase) publish(ctx context.Context, name string, fn func(ctx context.Context) error) {
	err := s.goroutine.Go(ctx, name, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to publish event", "event", name, "error", err)
		}
		return nil
	})
	if err != nil {
		slog.WarnContext(ctx, "event dropped", "event", name, "error", err)
	}
}
