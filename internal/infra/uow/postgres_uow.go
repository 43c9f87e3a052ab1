package uow

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"mikvah-scheduler/internal/infra"
	"mikvah-scheduler/internal/infra/db"
	"mikvah-scheduler/internal/infra/repository"
	"mikvah-scheduler/internal/pkg/config"
	"mikvah-scheduler/internal/pkg/errs"
	"mikvah-scheduler/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

// Beginner is satisfied by *pgxpool.Pool.
type Beginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type Options struct {
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
	Location   *time.Location
}

func OptionsFrom(cfg config.DBConfig, loc *time.Location) Options {
	return Options{
		Timeout:    cfg.TxTimeout,
		MaxRetries: cfg.TxMaxRetries,
		Backoff:    100 * time.Millisecond,
		Location:   loc,
	}
}

type PostgresUoW struct {
	pool Beginner
	opts Options
}

func NewPostgresUoW(pool Beginner, opts Options) *PostgresUoW {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &PostgresUoW{pool: pool, opts: opts}
}

// Within runs fn in a serializable transaction bounded by the configured timeout.
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	if u.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.opts.Timeout)
		defer cancel()
	}
	err := u.runInTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable}, fn)
	if err != nil && isAbort(ctx, err) {
		return errs.Mark(err, shared.ErrTransactionAborted)
	}
	return err
}

// WithinReadOnly gives fn a consistent snapshot across tables.
func (u *PostgresUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	pgxTx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return errs.Mark(err, errTransactionBegin)
	}

	defer func() {
		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				slog.Warn("failed to rollback read-only transaction", "error", rollbackErr.Error())
			}
		}
	}()

	if err := fn(ctx, u.newTx(pgxTx)); err != nil {
		return err
	}

	return pgxTx.Commit(ctx)
}

// Avoids defer accumulation in retry loops to prevent connection leaks
func (u *PostgresUoW) runInTx(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	maxRetries := u.opts.MaxRetries

	for attempt := 0; attempt <= maxRetries; attempt++ {
		pgxTx, err := u.pool.BeginTx(ctx, options)
		if err != nil {
			return errs.Mark(err, errTransactionBegin)
		}

		err = fn(ctx, u.newTx(pgxTx))
		if err == nil {
			if err = pgxTx.Commit(ctx); err == nil {
				return nil
			}
			err = errs.Mark(err, errTransactionCommit)
		}

		// rollback must outlive an expired ctx
		rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		if rollbackErr := pgxTx.Rollback(rbCtx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				slog.Warn("rollback failed", "attempt", attempt+1, "error", rollbackErr.Error())
			}
		}
		cancel()

		if !infra.IsTransactionConflict(err) {
			return err
		}
		if attempt == maxRetries {
			if maxRetries > 0 {
				slog.Error("transaction failed after max retries",
					"attempts", attempt+1,
					"error", err.Error())
				return errs.Mark(err, errMaxRetriesExceeded)
			}
			return err
		}

		waitTime := calculateBackoff(attempt, u.opts.Backoff)

		slog.Warn("retrying transaction due to retryable error",
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return errMaxRetriesExceeded
}

func isAbort(ctx context.Context, err error) bool {
	if infra.IsTransactionConflict(err) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	jitter := cryptoRandInt63n(int64(waitTime / 5))
	return waitTime + time.Duration(jitter)
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	// #nosec G115 -- high bit masked above
	return int64(uval) % n
}

func (u *PostgresUoW) newTx(dbtx db.DBTX) *pgTx {
	return &pgTx{dbtx: dbtx, loc: u.opts.Location}
}

type pgTx struct {
	dbtx db.DBTX
	loc  *time.Location

	// Lazy-initialized repositories
	hoursRepo   shared.HoursRepository
	slotRepo    shared.SlotRepository
	historyRepo shared.HistoryRepository
	userRepo    shared.UserRepository
}

func (t *pgTx) Hours() shared.HoursRepository {
	if t.hoursRepo == nil {
		t.hoursRepo = repository.NewHoursRepository(t.dbtx, t.loc)
	}
	return t.hoursRepo
}

func (t *pgTx) Slots() shared.SlotRepository {
	if t.slotRepo == nil {
		t.slotRepo = repository.NewSlotRepository(t.dbtx, t.loc)
	}
	return t.slotRepo
}

func (t *pgTx) History() shared.HistoryRepository {
	if t.historyRepo == nil {
		t.historyRepo = repository.NewHistoryRepository(t.dbtx)
	}
	return t.historyRepo
}

func (t *pgTx) Users() shared.UserRepository {
	if t.userRepo == nil {
		t.userRepo = repository.NewUserRepository(t.dbtx)
	}
	return t.userRepo
}
