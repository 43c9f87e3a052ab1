package shared

import (
	"context"
	"time"

	"mikvah-scheduler/internal/domain/history"
	"mikvah-scheduler/internal/domain/hours"
	"mikvah-scheduler/internal/domain/slot"
	"mikvah-scheduler/internal/domain/user"
	"mikvah-scheduler/internal/pkg/errs"

	"github.com/google/uuid"
)

// ErrTransactionAborted marks serialization failures, deadlocks and
// transaction timeouts. Callers may retry the whole operation.
var ErrTransactionAborted = errs.New("transaction aborted")

type UnitOfWork interface {
	// Within: serializable transaction bounded by the configured timeout
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: read-only transaction for consistent multi-table reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Tx interface {
	Hours() HoursRepository
	Slots() SlotRepository
	History() HistoryRepository
	Users() UserRepository
}

type HoursRepository interface {
	// FindByDay returns a NOT_FOUND repository error when no row exists.
	FindByDay(ctx context.Context, day time.Time) (*hours.DailyHours, error)
	FindRange(ctx context.Context, from, to time.Time) ([]*hours.DailyHours, error)
	Upsert(ctx context.Context, h *hours.DailyHours) error
}

type SlotRepository interface {
	// CountInRange counts slots of a room type starting in [from, to).
	CountInRange(ctx context.Context, from, to time.Time, roomType slot.RoomType) (int, error)
	InsertBatch(ctx context.Context, slots []*slot.Slot) (int, error)
	FindByID(ctx context.Context, id int64) (*slot.Slot, error)
	// FindFirstAvailable returns the lowest-id unassigned slot at startAt.
	FindFirstAvailable(ctx context.Context, startAt time.Time, roomType slot.RoomType) (*slot.Slot, error)
	// Save persists the reservation fields of an existing slot.
	Save(ctx context.Context, s *slot.Slot) error
}

type HistoryRepository interface {
	Append(ctx context.Context, e *history.Entry) (int64, error)
	ListBySlot(ctx context.Context, slotID int64) ([]*history.Entry, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}
