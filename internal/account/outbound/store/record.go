package store

import (
	"time"

	"github.com/shandysiswandi/cybershield/internal/account/entity"
)

// record is the serialized form shared by the document backends.
type record struct {
	Identifier          string    `json:"identifier" bson:"_id"`
	DisplayName         string    `json:"display_name" bson:"display_name"`
	PasswordHash        string    `json:"password_hash" bson:"password_hash"`
	SecondFactorSecret  []byte    `json:"second_factor_secret,omitempty" bson:"second_factor_secret,omitempty"`
	SecondFactorEnabled bool      `json:"second_factor_enabled" bson:"second_factor_enabled"`
	LastUsedStep        int64     `json:"last_used_step" bson:"last_used_step"`
	Version             int64     `json:"-" bson:"version"`
	CreatedAt           time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" bson:"updated_at"`
}

func toRecord(c *entity.Credential) record {
	return record{
		Identifier:          c.Identifier,
		DisplayName:         c.DisplayName,
		PasswordHash:        c.PasswordHash,
		SecondFactorSecret:  c.SecondFactorSecret,
		SecondFactorEnabled: c.SecondFactorEnabled,
		LastUsedStep:        c.LastUsedStep,
		CreatedAt:           c.CreatedAt.UTC(),
		UpdatedAt:           c.UpdatedAt.UTC(),
	}
}

func (r *record) credential() *entity.Credential {
	return &entity.Credential{
		Identifier:          r.Identifier,
		DisplayName:         r.DisplayName,
		PasswordHash:        r.PasswordHash,
		SecondFactorSecret:  r.SecondFactorSecret,
		SecondFactorEnabled: r.SecondFactorEnabled,
		LastUsedStep:        r.LastUsedStep,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

// mutateError marks an error returned by an Update callback so backends can tell
// it apart from their own failures and skip retrying.
type mutateError struct{ err error }

func (e *mutateError) Error() string { return e.err.Error() }
func (e *mutateError) Unwrap() error { return e.err }

func unwrapMutate(err error) error {
	if me, ok := err.(*mutateError); ok {
		return me.err
	}
	return err
}
