package inbound

import (
	"log/slog"

	"github.com/shandysiswandi/cybershield/internal/account/usecase"
	"github.com/shandysiswandi/cybershield/internal/pkg/qrcode"
	"github.com/shandysiswandi/cybershield/internal/pkg/router"
)

// HTTPEndpoint exposes the password and second-factor login flow over HTTP.
type HTTPEndpoint struct {
	uc uc
	qr qrcode.Renderer
}

// Register creates an account with the second factor not yet enrolled.
func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	var req RegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.Register(r.Context(), usecase.RegisterInput{
		Identifier:  req.Identifier,
		DisplayName: req.DisplayName,
		Password:    req.Password,
	}); err != nil {
		return nil, err
	}

	return RegisterResponse{}, nil
}

// Login verifies the password and reports which second-factor step follows.
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.LoginPassword(r.Context(), usecase.LoginInput{
		Identifier: req.Identifier,
		Password:   req.Password,
	})
	if err != nil {
		return nil, err
	}

	return LoginResponse{
		SecondFactorEnabled: resp.SecondFactorEnabled,
		NextStep:            resp.Next.String(),
	}, nil
}

// SetupSecondFactor starts enrollment and returns the secret, its
// provisioning URI and the URI rendered as a QR image.
func (h *HTTPEndpoint) SetupSecondFactor(r *router.Request) (any, error) {
	var req SetupSecondFactorRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.BeginEnrollment(r.Context(), usecase.BeginEnrollmentInput{
		Identifier: req.Identifier,
	})
	if err != nil {
		return nil, err
	}

	out := SetupSecondFactorResponse{
		ProvisioningURI: resp.ProvisioningURI,
		Secret:          resp.Secret,
	}

	// The secret and URI are enough to enroll manually, so a render failure
	// only drops the image.
	if h.qr != nil {
		img, err := h.qr.DataURL(resp.ProvisioningURI)
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to render qr code", "error", err)
		} else {
			out.QRCode = img
		}
	}

	return out, nil
}

// ConfirmSecondFactor enables the second factor with a code from the app.
func (h *HTTPEndpoint) ConfirmSecondFactor(r *router.Request) (any, error) {
	var req ConfirmSecondFactorRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.ConfirmEnrollment(r.Context(), usecase.ConfirmEnrollmentInput{
		Identifier: req.Identifier,
		Code:       req.Code,
	}); err != nil {
		return nil, err
	}

	return ConfirmSecondFactorResponse{}, nil
}

// VerifySecondFactor completes a login with a TOTP code.
func (h *HTTPEndpoint) VerifySecondFactor(r *router.Request) (any, error) {
	var req VerifySecondFactorRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.VerifyLoginSecondFactor(r.Context(), usecase.VerifyLoginInput{
		Identifier: req.Identifier,
		Code:       req.Code,
	})
	if err != nil {
		return nil, err
	}

	return VerifySecondFactorResponse{State: resp.State.String()}, nil
}
