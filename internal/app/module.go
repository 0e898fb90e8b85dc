package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/cybershield/internal/account"
)

func (a *App) initModules() {
	if err := account.New(a.ctx, account.Dependency{
		DBConn:       a.dbConn,
		CacheConn:    a.cacheConn,
		MongoDB:      a.mongoDB,
		Goroutine:    a.goroutine,
		Router:       a.router,
		Messaging:    a.messaging,
		Config:       a.config,
		Instrument:   a.ins,
		Hash:         a.hash,
		MFAEncryptor: a.mfaEncryptor,
		Clock:        a.clock,
		Totp:         a.totp,
		QRCode:       a.qrcode,
		Validator:    a.validator,
	}); err != nil {
		slog.Error("failed to init module account", "error", err)
		os.Exit(1)
	}
}
