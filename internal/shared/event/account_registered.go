package event

import "time"

const AccountRegisteredDestination string = "account.registered"

type AccountRegisteredMessage struct {
	Identifier   string    `json:"identifier"`
	DisplayName  string    `json:"display_name"`
	RegisteredAt time.Time `json:"registered_at"`
}
