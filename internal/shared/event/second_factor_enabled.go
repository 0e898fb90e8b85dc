package event

import "time"

const SecondFactorEnabledDestination string = "account.second_factor_enabled"

type SecondFactorEnabledMessage struct {
	Identifier string    `json:"identifier"`
	EnabledAt  time.Time `json:"enabled_at"`
}
