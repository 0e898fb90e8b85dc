package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
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
	"github.com/shandysiswandi/cybershield/internal/pkg/uid"
	"github.com/shandysiswandi/cybershield/internal/pkg/validator"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine    *goroutine.Manager
	validator    validator.Validator
	clock        clock.Clocker
	hash         hash.Hash
	uuid         uid.StringID
	totp         otp.OTP
	mfaEncryptor mfa.Encryptor
	qrcode       qrcode.Renderer

	// resources, connections are opened only when a driver needs them
	dbConn      *pgxpool.Pool
	cacheConn   *redis.Client
	mongoClient *mongo.Client
	mongoDB     *mongo.Database
	messaging   messaging.Publisher

	// server
	router     *router.Router
	httpServer *http.Server

	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initDatabase()
	app.initCache()
	app.initMongo()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
