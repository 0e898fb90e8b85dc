package inbound

import (
	"context"

	"github.com/shandysiswandi/cybershield/internal/account/usecase"
	"github.com/shandysiswandi/cybershield/internal/pkg/qrcode"
	"github.com/shandysiswandi/cybershield/internal/pkg/router"
)

type uc interface {
	Register(ctx context.Context, in usecase.RegisterInput) error
	LoginPassword(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)

	BeginEnrollment(ctx context.Context, in usecase.BeginEnrollmentInput) (*usecase.BeginEnrollmentOutput, error)
	ConfirmEnrollment(ctx context.Context, in usecase.ConfirmEnrollmentInput) error

	VerifyLoginSecondFactor(ctx context.Context, in usecase.VerifyLoginInput) (*usecase.VerifyLoginOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc, qr qrcode.Renderer) {
	end := &HTTPEndpoint{uc: uc, qr: qr}

	r.POST("/api/v1/account/register", end.Register)
	r.POST("/api/v1/account/login", end.Login)

	// Second factor (requires a password login first)
	r.POST("/api/v1/account/2fa/setup", end.SetupSecondFactor)
	r.POST("/api/v1/account/2fa/confirm", end.ConfirmSecondFactor)
	r.POST("/api/v1/account/2fa/verify", end.VerifySecondFactor)
}
