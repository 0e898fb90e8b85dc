package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/nsqio/go-nsq"
	libOTP "github.com/pquerna/otp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/shandysiswandi/cybershield/internal/account/outbound/session"
	"github.com/shandysiswandi/cybershield/internal/account/outbound/store"
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
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const pingTimeout = 5 * time.Second

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}

	cfg, err := config.NewViper(path)
	if err != nil {
		slog.Error("failed to init config", "error", err, "path", path)
		os.Exit(1)
	}

	if tz := cfg.GetString("app.tz"); tz != "" {
		//nolint:errcheck,gosec // ignore error
		os.Setenv("TZ", tz)
	}

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
		LogLevel:         a.config.GetString("instrument.log_level"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))
	a.hash = hash.New(
		a.config.GetString("hash.password.driver"),
		a.config.GetInt("hash.bcrypt.cost"),
		a.config.GetString("hash.password.pepper"),
	)
	a.qrcode = qrcode.NewPNGRenderer(a.config.GetInt("mfa.qr.size"))

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator

	a.totp = otp.NewTOTP(otp.Config{
		Issuer:     a.config.GetString("mfa.totp.issuer"),
		Period:     a.config.GetUint("mfa.totp.period"),
		Skew:       a.config.GetUint("mfa.totp.skew"),
		Digits:     libOTP.Digits(a.config.GetInt("mfa.totp.digits")),
		Algorithm:  totpAlgorithm(a.config.GetString("mfa.totp.algorithm")),
		SecretSize: a.config.GetUint("mfa.totp.secret_size"),
	})

	keys, err := mfa.NewStaticKeyProvider(a.config.GetString("mfa.secret"))
	if err != nil {
		slog.Error("failed to init mfa key, secret must be 32 bytes (AES-256)", "error", err)
		os.Exit(1)
	}
	a.mfaEncryptor = mfa.NewAESGCMEncryptor(keys)
}

// totpAlgorithm maps a configured name to an algorithm. Unknown names yield
// SHA1 through otp.NewTOTP's defaulting.
func totpAlgorithm(name string) libOTP.Algorithm {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "SHA256":
		return libOTP.AlgorithmSHA256
	case "SHA512":
		return libOTP.AlgorithmSHA512
	default:
		return libOTP.AlgorithmSHA1
	}
}

func (a *App) initDatabase() {
	if a.config.GetString("store.driver") != store.DriverPostgres {
		return
	}

	config, err := pgxpool.ParseConfig(a.config.GetString("database.url"))
	if err != nil {
		slog.Error("failed to parse DB connection string", "error", err)
		os.Exit(1)
	}

	if v := a.config.GetInt32("database.pool.max_conns"); v > 0 {
		config.MaxConns = v
	}
	if v := a.config.GetInt32("database.pool.min_conns"); v > 0 {
		config.MinConns = v
	}
	if v := a.config.GetSecond("database.pool.max_conn_lifetime_seconds"); v > 0 {
		config.MaxConnLifetime = v
	}
	if v := a.config.GetSecond("database.pool.max_conn_idle_seconds"); v > 0 {
		config.MaxConnIdleTime = v
	}

	pool, err := pgxpool.NewWithConfig(a.ctx, config)
	if err != nil {
		slog.Error("failed to create DB connection pool", "error", err)
		os.Exit(1)
	}

	pingCtx, cancel := context.WithTimeout(a.ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		slog.Error("failed to ping DB", "error", err)
		os.Exit(1)
	}

	a.dbConn = pool
}

func (a *App) initCache() {
	if a.config.GetString("store.driver") != store.DriverRedis &&
		a.config.GetString("session.driver") != session.DriverRedis {
		return
	}

	opt, err := redis.ParseURL(a.config.GetString("redis.url"))
	if err != nil {
		slog.Error("failed to parse redis url", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(a.ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Error("failed to init redis", "error", err)
		os.Exit(1)
	}

	a.cacheConn = rdb
}

func (a *App) initMongo() {
	if a.config.GetString("store.driver") != store.DriverMongo {
		return
	}

	opts := options.Client().ApplyURI(a.config.GetString("mongo.uri"))
	if v := a.config.GetSecond("mongo.timeout_seconds"); v > 0 {
		opts.SetTimeout(v)
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		slog.Error("failed to connect mongo", "error", err)
		os.Exit(1)
	}

	pingCtx, cancel := context.WithTimeout(a.ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		slog.Error("failed to ping mongo", "error", err)
		os.Exit(1)
	}

	a.mongoClient = client
	a.mongoDB = client.Database(a.config.GetString("mongo.database"))
}

func (a *App) initMessaging() {
	driver := a.config.GetString("messaging.driver")

	nsqConfig := nsq.NewConfig()
	if v := a.config.GetSecond("messaging.nsq.dial_timeout_seconds"); v > 0 {
		nsqConfig.DialTimeout = v
	}
	if v := a.config.GetSecond("messaging.nsq.write_timeout_seconds"); v > 0 {
		nsqConfig.WriteTimeout = v
	}

	client, err := messaging.New(driver, messaging.Options{
		NSQ: messaging.NSQConfig{
			ProducerAddr: a.config.GetString("messaging.nsq.producer_addr"),
			Config:       nsqConfig,
		},
		Kafka: messaging.KafkaConfig{
			Brokers:      a.config.GetArray("messaging.kafka.brokers"),
			WriteTimeout: a.config.GetSecond("messaging.kafka.write_timeout_seconds"),
		},
		NATS: messaging.NATSConfig{
			URL:  a.config.GetString("messaging.nats.url"),
			Name: a.config.GetString("messaging.nats.name"),
			Options: []nats.Option{
				nats.MaxReconnects(a.config.GetInt("messaging.nats.max_reconnects")),
				nats.Timeout(a.config.GetSecond("messaging.nats.timeout_seconds")),
				nats.ReconnectWait(a.config.GetSecond("messaging.nats.reconnect_wait_seconds")),
				nats.RetryOnFailedConnect(a.config.GetBool("messaging.nats.retry_on_failed_connect")),
			},
		},
	})
	if err != nil {
		slog.Error("failed to init messaging", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.messaging = client
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		Instrument: a.ins,
		Name:       a.config.GetString("instrument.service_name"),
	})

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Messaging",
			fn: func(context.Context) error {
				return a.messaging.Close()
			},
		},
		{
			name: "Redis",
			fn: func(context.Context) error {
				if a.cacheConn == nil {
					return nil
				}
				return a.cacheConn.Close()
			},
		},
		{
			name: "Mongo",
			fn: func(ctx context.Context) error {
				if a.mongoClient == nil {
					return nil
				}
				return a.mongoClient.Disconnect(ctx)
			},
		},
		{
			name: "Database",
			fn: func(context.Context) error {
				if a.dbConn != nil {
					a.dbConn.Close()
				}

				return nil
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}
