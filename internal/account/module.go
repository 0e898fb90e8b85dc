package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/cybershield/internal/account/entity"
	"github.com/shandysiswandi/cybershield/internal/account/inbound"
	"github.com/shandysiswandi/cybershield/internal/account/outbound/mq"
	"github.com/shandysiswandi/cybershield/internal/account/outbound/session"
	"github.com/shandysiswandi/cybershield/internal/account/outbound/store"
	"github.com/shandysiswandi/cybershield/internal/account/usecase"
	"github.com/shandysiswandi/cybershield/internal/pkg/clock"
	"github.com/shandysiswandi/cybershield/internal/pkg/config"
	"github.com/shandysiswandi/cybershield/internal/pkg/goroutine"
	"github.com/shandysiswandi/cybershield/internal/pkg/hash"
	"github.com/shandysiswandi/cybershield/internal/pkg/instrument"
	"github.com/shandysiswandi/cybershield/internal/pkg/messaging"
	"github.com/shandysiswandi/cybershield/internal/pkg/mfa"
	"github.com/shandysiswandi/cybershield/internal/pkg/otp"
	"github.com/shandysiswandi/cybershield/internal/pkg/qrcode"
	"github.com/shandysiswandi/cybershield/internal/pkg/router"
	"github.com/shandysiswandi/cybershield/internal/pkg/validator"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// ErrBackendMissing is returned when a driver is selected but its connection
// was not provided.
var ErrBackendMissing = errors.New("account: backend connection missing")

type Dependency struct {
	// Connections are optional; the one matching store.driver or
	// session.driver must be set.
	DBConn    *pgxpool.Pool
	CacheConn *redis.Client
	MongoDB   *mongo.Database

	Goroutine    *goroutine.Manager         `validate:"required"`
	Router       *router.Router             `validate:"required"`
	Messaging    messaging.Publisher        `validate:"required"`
	Config       config.Config              `validate:"required"`
	Instrument   instrument.Instrumentation `validate:"required"`
	Hash         hash.Hash                  `validate:"required"`
	MFAEncryptor mfa.Encryptor              `validate:"required"`
	Clock        clock.Clocker              `validate:"required"`
	Totp         otp.OTP                    `validate:"required"`
	QRCode       qrcode.Renderer            `validate:"required"`
	Validator    validator.Validator        `validate:"required"`
}

func New(ctx context.Context, dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	credStore, err := newCredentialStore(ctx, dep)
	if err != nil {
		return err
	}

	sessStore, err := newSessionStore(dep)
	if err != nil {
		return err
	}

	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoStore:     credStore,
		RepoSession:   sessStore,
		RepoMessaging: repoMsg,
		Validator:     dep.Validator,
		Config:        dep.Config,
		Hash:          dep.Hash,
		MFAEncryptor:  dep.MFAEncryptor,
		Totp:          dep.Totp,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, dep.QRCode)

	return nil
}

type credentialStore interface {
	Get(ctx context.Context, id string) (*entity.Credential, error)
	Create(ctx context.Context, c entity.Credential) error
	Update(ctx context.Context, id string, fn func(c *entity.Credential) error) error
}

type sessionStore interface {
	Save(ctx context.Context, s entity.LoginSession) error
	Get(ctx context.Context, id string) (*entity.LoginSession, error)
	Delete(ctx context.Context, id string) error
}

func newCredentialStore(ctx context.Context, dep Dependency) (credentialStore, error) {
	driver := dep.Config.GetString("store.driver")

	switch driver {
	case "", store.DriverMemory:
		return store.NewMemory(dep.Instrument), nil

	case store.DriverRedis:
		if dep.CacheConn == nil {
			return nil, fmt.Errorf("%w: redis for store.driver", ErrBackendMissing)
		}
		return store.NewRedis(dep.CacheConn, dep.Instrument), nil

	case store.DriverPostgres:
		if dep.DBConn == nil {
			return nil, fmt.Errorf("%w: postgres for store.driver", ErrBackendMissing)
		}
		if dep.Config.GetBool("database.auto_migrate") {
			if err := store.Migrate(ctx, dep.DBConn); err != nil {
				return nil, err
			}
		}
		return store.NewPostgres(dep.DBConn, dep.Instrument), nil

	case store.DriverMongo:
		if dep.MongoDB == nil {
			return nil, fmt.Errorf("%w: mongo for store.driver", ErrBackendMissing)
		}
		return store.NewMongo(dep.MongoDB, dep.Instrument), nil

	default:
		return nil, fmt.Errorf("%w: %q", store.ErrUnknownDriver, driver)
	}
}

func newSessionStore(dep Dependency) (sessionStore, error) {
	driver := dep.Config.GetString("session.driver")

	switch driver {
	case "", session.DriverMemory:
		return session.NewMemory(dep.Clock, dep.Instrument), nil

	case session.DriverRedis:
		if dep.CacheConn == nil {
			return nil, fmt.Errorf("%w: redis for session.driver", ErrBackendMissing)
		}
		return session.NewRedis(dep.CacheConn, dep.Clock, dep.Instrument), nil

	default:
		return nil, fmt.Errorf("%w: %q", session.ErrUnknownDriver, driver)
	}
}
