package store

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/cybershield/internal/account/entity"
	"github.com/shandysiswandi/cybershield/internal/pkg/goerror"
	"github.com/shandysiswandi/cybershield/internal/pkg/instrument"
)

const (
	pgSelectColumns = `identifier, display_name, password_hash, second_factor_secret,
		second_factor_enabled, last_used_step, created_at, updated_at`

	pgGet       = `SELECT ` + pgSelectColumns + ` FROM account_credentials WHERE identifier = $1`
	pgGetLocked = pgGet + ` FOR UPDATE`

	pgInsert = `INSERT INTO account_credentials (` + pgSelectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	pgUpdate = `UPDATE account_credentials SET
		display_name = $2, password_hash = $3, second_factor_secret = $4,
		second_factor_enabled = $5, last_used_step = $6, updated_at = $7
		WHERE identifier = $1`
)

// Postgres stores credentials in the account_credentials table. Update locks
// the row with SELECT ... FOR UPDATE for the length of the transaction.
type Postgres struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
}

func NewPostgres(conn *pgxpool.Pool, ins instrument.Instrumentation) *Postgres {
	return &Postgres{conn: conn, ins: ins}
}

// - 23505 unique_violation -> goerror.ErrConflict
// - no rows -> goerror.ErrNotFound
func (s *Postgres) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return goerror.ErrConflict
	}

	return err
}

func scanCredential(row pgx.Row) (*entity.Credential, error) {
	var c entity.Credential
	err := row.Scan(
		&c.Identifier,
		&c.DisplayName,
		&c.PasswordHash,
		&c.SecondFactorSecret,
		&c.SecondFactorEnabled,
		&c.LastUsedStep,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

func (s *Postgres) Get(ctx context.Context, id string) (_ *entity.Credential, err error) {
	ctx, span := startSpan(ctx, s.ins, "Postgres.Get")
	defer func() { endSpan(span, err) }()

	c, err := scanCredential(s.conn.QueryRow(ctx, pgGet, id))
	if err != nil {
		return nil, s.mapError(err)
	}

	return c, nil
}

func (s *Postgres) Create(ctx context.Context, c entity.Credential) (err error) {
	ctx, span := startSpan(ctx, s.ins, "Postgres.Create")
	defer func() { endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, pgInsert,
		c.Identifier,
		c.DisplayName,
		c.PasswordHash,
		c.SecondFactorSecret,
		c.SecondFactorEnabled,
		c.LastUsedStep,
		c.CreatedAt,
		c.UpdatedAt,
	)

	err = s.mapError(err)
	return err
}

func (s *Postgres) Update(ctx context.Context, id string, fn func(c *entity.Credential) error) (err error) {
	ctx, span := startSpan(ctx, s.ins, "Postgres.Update")
	defer func() { endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if errR := tx.Rollback(ctx); errR != nil && !errors.Is(errR, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rollback", "identifier", id, "error", errR)
		}
	}()

	c, err := scanCredential(tx.QueryRow(ctx, pgGetLocked, id))
	if err != nil {
		return s.mapError(err)
	}

	if err = fn(c); err != nil {
		return err
	}

	if _, err = tx.Exec(ctx, pgUpdate,
		id,
		c.DisplayName,
		c.PasswordHash,
		c.SecondFactorSecret,
		c.SecondFactorEnabled,
		c.LastUsedStep,
		c.UpdatedAt,
	); err != nil {
		return s.mapError(err)
	}

	err = tx.Commit(ctx)
	return err
}

// Close implements io.Closer. The pool is owned by the caller.
func (s *Postgres) Close() error { return nil }
