package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/cybershield/internal/account/entity"
	"github.com/shandysiswandi/cybershield/internal/account/outbound/session"
	"github.com/shandysiswandi/cybershield/internal/account/outbound/store"
	"github.com/shandysiswandi/cybershield/internal/pkg/clock"
	"github.com/shandysiswandi/cybershield/internal/pkg/config"
	"github.com/shandysiswandi/cybershield/internal/pkg/goerror"
	"github.com/shandysiswandi/cybershield/internal/pkg/goroutine"
	"github.com/shandysiswandi/cybershield/internal/pkg/hash"
	"github.com/shandysiswandi/cybershield/internal/pkg/instrument"
	"github.com/shandysiswandi/cybershield/internal/pkg/mfa"
	"github.com/shandysiswandi/cybershield/internal/pkg/otp"
	"github.com/shandysiswandi/cybershield/internal/pkg/validator"
)

const testKey = "0123456789abcdef0123456789abcdef"

type recordedEvents struct {
	mu         sync.Mutex
	registered []AccountRegisteredEvent
	enabled    []SecondFactorEnabledEvent
	logins     []LoginSucceededEvent
	fail       bool
}

func (r *recordedEvents) PublishAccountRegistered(_ context.Context, msg AccountRegisteredEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("broker down")
	}
	r.registered = append(r.registered, msg)
	return nil
}

func (r *recordedEvents) PublishSecondFactorEnabled(_ context.Context, msg SecondFactorEnabledEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = append(r.enabled, msg)
	return nil
}

func (r *recordedEvents) PublishLoginSucceeded(_ context.Context, msg LoginSucceededEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins = append(r.logins, msg)
	return nil
}

type fixture struct {
	uc       *Usecase
	clk      *clock.Fixed
	store    *store.Memory
	sessions *session.Memory
	events   *recordedEvents
	totp     *otp.TOTP
	enc      *mfa.AESGCMEncryptor
	gm       *goroutine.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	cfg, err := config.NewViperFromBytes("yaml", []byte("modules:\n  account:\n    login_session_ttl_seconds: 300\n"))
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	keys, err := mfa.NewStaticKeyProvider(testKey)
	if err != nil {
		t.Fatalf("key provider: %v", err)
	}

	ins := instrument.NewNoop()
	clk := clock.NewFixed(time.Unix(1_700_000_010, 0).UTC())

	f := &fixture{
		clk:      clk,
		store:    store.NewMemory(ins),
		sessions: session.NewMemory(clk, ins),
		events:   &recordedEvents{},
		totp:     otp.NewTOTP(otp.Config{Issuer: "CyberShield"}),
		enc:      mfa.NewAESGCMEncryptor(keys),
		gm:       goroutine.NewManager(10),
	}

	f.uc = New(Dependency{
		RepoStore:     f.store,
		RepoSession:   f.sessions,
		RepoMessaging: f.events,
		Validator:     v,
		Config:        cfg,
		Hash:          hash.NewBcrypt(4, ""),
		MFAEncryptor:  f.enc,
		Totp:          f.totp,
		Clock:         clk,
		Instrument:    ins,
		Goroutine:     f.gm,
	})

	return f
}

func (f *fixture) code(t *testing.T, secret string) string {
	t.Helper()

	c, err := f.totp.GenerateCode(secret, f.clk.Now())
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}
	return c
}

func (f *fixture) register(t *testing.T, id, password string) {
	t.Helper()

	if err := f.uc.Register(context.Background(), RegisterInput{Identifier: id, DisplayName: "Al", Password: password}); err != nil {
		t.Fatalf("Register: %v", err)
	}
}

func (f *fixture) login(t *testing.T, id, password string) *LoginOutput {
	t.Helper()

	out, err := f.uc.LoginPassword(context.Background(), LoginInput{Identifier: id, Password: password})
	if err != nil {
		t.Fatalf("LoginPassword: %v", err)
	}
	return out
}

// enroll registers, logs in and completes enrollment; it returns the secret.
func (f *fixture) enroll(t *testing.T, id, password string) string {
	t.Helper()
	ctx := context.Background()

	f.register(t, id, password)
	f.login(t, id, password)

	begin, err := f.uc.BeginEnrollment(ctx, BeginEnrollmentInput{Identifier: id})
	if err != nil {
		t.Fatalf("BeginEnrollment: %v", err)
	}
	if err := f.uc.ConfirmEnrollment(ctx, ConfirmEnrollmentInput{Identifier: id, Code: f.code(t, begin.Secret)}); err != nil {
		t.Fatalf("ConfirmEnrollment: %v", err)
	}
	return begin.Secret
}

func assertCode(t *testing.T, err error, want goerror.Code) {
	t.Helper()

	var ge *goerror.Error
	if !errors.As(err, &ge) {
		t.Fatalf("expected *goerror.Error with code %s, got %v", want, err)
	}
	if ge.Code() != want {
		t.Fatalf("code: got %s want %s (%v)", ge.Code(), want, err)
	}
}

type brokenStore struct{}

var errStoreDown = errors.New("connection refused")

func (brokenStore) Get(context.Context, string) (*entity.Credential, error) { return nil, errStoreDown }
func (brokenStore) Create(context.Context, entity.Credential) error         { return errStoreDown }
func (brokenStore) Update(context.Context, string, func(c *entity.Credential) error) error {
	return errStoreDown
}
