//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mikvah-scheduler/internal/domain/slot"
	"mikvah-scheduler/internal/domain/user"
	"mikvah-scheduler/internal/infra/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// CreateTestUser stores u as the identity provider would have.
func CreateTestUser(t *testing.T, conn db.DBTX, u *user.User) {
	t.Helper()

	ctx := context.Background()
	_, err := conn.Exec(ctx, `
		INSERT INTO users (id, email, title, first_name, last_name, phone, role, is_member, payment_customer_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID(), u.Email().Value(), u.Title(), u.FirstName(), u.LastName(),
		u.Phone(), u.Role().String(), u.IsMember(), u.PaymentCustomerRef())
	require.NoError(t, err)
}

func CreateTestSlot(t *testing.T, conn db.DBTX, startAt time.Time, roomType slot.RoomType) int64 {
	t.Helper()

	var id int64
	err := conn.QueryRow(context.Background(),
		"INSERT INTO appointment_slots (start_at, room_type) VALUES ($1, $2) RETURNING id",
		startAt, roomType.String()).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateTestHours stores open hours as "HH:MM" wall-clock times, or a closed day when opening is empty.
func CreateTestHours(t *testing.T, conn db.DBTX, day time.Time, opening, closing string) {
	t.Helper()

	ctx := context.Background()
	date := day.Format(time.DateOnly)
	var err error
	if opening == "" {
		_, err = conn.Exec(ctx, "INSERT INTO daily_hours (day, closed) VALUES ($1, TRUE)", date)
	} else {
		_, err = conn.Exec(ctx, "INSERT INTO daily_hours (day, opening, closing, closed) VALUES ($1, $2, $3, FALSE)",
			date, opening, closing)
	}
	require.NoError(t, err)
}

// CountRows is for asserting side effects such as history entries or queued notifications.
func CountRows(t *testing.T, conn db.DBTX, table, where string, args ...any) int {
	t.Helper()

	query := "SELECT count(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	var n int
	require.NoError(t, conn.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables except goose's version table
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('goose_db_version')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	_, err := pool.Exec(ctx, sqlAny.(string))
	return err
}
