package event

import "time"

const LoginSucceededDestination string = "account.login_succeeded"

// LoginSucceededMessage is published once both factors have been verified.
type LoginSucceededMessage struct {
	Identifier      string    `json:"identifier"`
	AuthenticatedAt time.Time `json:"authenticated_at"`
}
