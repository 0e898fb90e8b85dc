package inbound

type RegisterRequest struct {
	Identifier  string `json:"identifier"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type RegisterResponse struct{}

func (RegisterResponse) Message() string {
	return "Registration successful. Please log in to set up two-factor authentication."
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type LoginResponse struct {
	SecondFactorEnabled bool   `json:"second_factor_enabled"`
	NextStep            string `json:"next_step"`
}

func (r LoginResponse) Message() string {
	if r.SecondFactorEnabled {
		return "Password verified. Enter the code from your authenticator app."
	}
	return "Password verified. Set up two-factor authentication to continue."
}

type SetupSecondFactorRequest struct {
	Identifier string `json:"identifier"`
}

type SetupSecondFactorResponse struct {
	ProvisioningURI string `json:"provisioning_uri"`
	Secret          string `json:"secret"`
	QRCode          string `json:"qr_code,omitempty"`
}

func (SetupSecondFactorResponse) Message() string {
	return "Scan the QR code with your authenticator app, then confirm with a code."
}

type ConfirmSecondFactorRequest struct {
	Identifier string `json:"identifier"`
	Code       string `json:"code"`
}

type ConfirmSecondFactorResponse struct{}

func (ConfirmSecondFactorResponse) Message() string {
	return "Two-factor authentication enabled. Please log in again."
}

type VerifySecondFactorRequest struct {
	Identifier string `json:"identifier"`
	Code       string `json:"code"`
}

type VerifySecondFactorResponse struct {
	State string `json:"state"`
}

func (VerifySecondFactorResponse) Message() string {
	return "Login successful."
}
