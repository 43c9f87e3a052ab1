//go:build unit || e2e

// Package memstore is an in-memory shared.UnitOfWork. Each Within call works on
// a copy of the data and publishes it only when fn succeeds.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"mikvah-scheduler/internal/domain/history"
	"mikvah-scheduler/internal/domain/hours"
	"mikvah-scheduler/internal/domain/slot"
	"mikvah-scheduler/internal/domain/user"
	"mikvah-scheduler/internal/infra"
	"mikvah-scheduler/internal/pkg/errs"
	"mikvah-scheduler/internal/usecase/shared"

	"github.com/google/uuid"
)

type data struct {
	hours      map[string]*hours.DailyHours
	slots      map[int64]*slot.Slot
	history    []*history.Entry
	users      map[uuid.UUID]*user.User
	nextSlotID int64
}

func (d *data) clone() *data {
	c := &data{
		hours:      make(map[string]*hours.DailyHours, len(d.hours)),
		slots:      make(map[int64]*slot.Slot, len(d.slots)),
		history:    append([]*history.Entry(nil), d.history...),
		users:      d.users,
		nextSlotID: d.nextSlotID,
	}
	for k, v := range d.hours {
		c.hours[k] = v
	}
	for k, v := range d.slots {
		c.slots[k] = cloneSlot(v)
	}
	return c
}

func cloneSlot(s *slot.Slot) *slot.Slot {
	c, _ := slot.Reconstruct(s.ID(), s.StartAt(), s.RoomType(), s.UserID(), s.ChargeID(), s.Notes())
	return c
}

type Store struct {
	mu   sync.Mutex
	data *data

	// AbortNext makes the next Within discard its work and report a
	// transaction abort after fn has run.
	AbortNext bool

	HoursWrites   int
	WithinCalls   int
	ReadOnlyCalls int
}

func New() *Store {
	return &Store{
		data: &data{
			hours:      map[string]*hours.DailyHours{},
			slots:      map[int64]*slot.Slot{},
			users:      map[uuid.UUID]*user.User{},
			nextSlotID: 1,
		},
	}
}

var _ shared.UnitOfWork = (*Store)(nil)

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.WithinCalls++

	tx := &memTx{data: s.data.clone()}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if s.AbortNext {
		s.AbortNext = false
		return errs.Mark(errs.New("could not serialize access"), shared.ErrTransactionAborted)
	}
	s.HoursWrites += tx.hoursWrites
	s.data = tx.data
	return nil
}

func (s *Store) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ReadOnlyCalls++
	return fn(ctx, &memTx{data: s.data.clone()})
}

func (s *Store) AddUser(u *user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.users[u.ID()] = u
}

// AddSlot inserts an unassigned slot and returns its id.
func (s *Store) AddSlot(start time.Time, roomType slot.RoomType) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.data.nextSlotID
	s.data.nextSlotID++
	sl, _ := slot.Reconstruct(id, start, roomType, nil, nil, nil)
	s.data.slots[id] = sl
	return id
}

func (s *Store) PutHours(h *hours.DailyHours) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.hours[dayKey(h.Day())] = h
}

func (s *Store) Hours(day time.Time) *hours.DailyHours {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.hours[dayKey(day)]
}

func (s *Store) Slot(id int64) *slot.Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sl, ok := s.data.slots[id]; ok {
		return cloneSlot(sl)
	}
	return nil
}

// Slots returns all slots ordered by start time, then id.
func (s *Store) Slots() []*slot.Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*slot.Slot, 0, len(s.data.slots))
	for _, sl := range s.data.slots {
		out = append(out, cloneSlot(sl))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartAt().Equal(out[j].StartAt()) {
			return out[i].StartAt().Before(out[j].StartAt())
		}
		return out[i].ID() < out[j].ID()
	})
	return out
}

func (s *Store) History() []*history.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*history.Entry(nil), s.data.history...)
}

func dayKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

func notFound(msg string) error {
	return infra.WrapRepoErr(msg, nil, infra.KindNotFound)
}

type memTx struct {
	data        *data
	hoursWrites int
}

func (t *memTx) Hours() shared.HoursRepository     { return hoursRepo{t} }
func (t *memTx) Slots() shared.SlotRepository      { return slotRepo{t} }
func (t *memTx) History() shared.HistoryRepository { return historyRepo{t} }
func (t *memTx) Users() shared.UserRepository      { return userRepo{t} }

type hoursRepo struct{ tx *memTx }

func (r hoursRepo) FindByDay(_ context.Context, day time.Time) (*hours.DailyHours, error) {
	h, ok := r.tx.data.hours[dayKey(day)]
	if !ok {
		return nil, notFound("daily hours not found")
	}
	return h, nil
}

func (r hoursRepo) FindRange(_ context.Context, from, to time.Time) ([]*hours.DailyHours, error) {
	out := []*hours.DailyHours{}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if h, ok := r.tx.data.hours[dayKey(d)]; ok {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r hoursRepo) Upsert(_ context.Context, h *hours.DailyHours) error {
	r.tx.data.hours[dayKey(h.Day())] = h
	r.tx.hoursWrites++
	return nil
}

type slotRepo struct{ tx *memTx }

func (r slotRepo) inRange(from, to time.Time, roomType slot.RoomType) []*slot.Slot {
	out := []*slot.Slot{}
	for _, s := range r.tx.data.slots {
		if s.RoomType() == roomType && !s.StartAt().Before(from) && s.StartAt().Before(to) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (r slotRepo) CountInRange(_ context.Context, from, to time.Time, roomType slot.RoomType) (int, error) {
	return len(r.inRange(from, to, roomType)), nil
}

func (r slotRepo) InsertBatch(_ context.Context, slots []*slot.Slot) (int, error) {
	for _, s := range slots {
		id := r.tx.data.nextSlotID
		r.tx.data.nextSlotID++
		stored, err := slot.Reconstruct(id, s.StartAt(), s.RoomType(), nil, nil, nil)
		if err != nil {
			return 0, err
		}
		r.tx.data.slots[id] = stored
	}
	return len(slots), nil
}

func (r slotRepo) FindByID(_ context.Context, id int64) (*slot.Slot, error) {
	s, ok := r.tx.data.slots[id]
	if !ok {
		return nil, notFound("appointment slot not found")
	}
	return cloneSlot(s), nil
}

func (r slotRepo) FindFirstAvailable(_ context.Context, startAt time.Time, roomType slot.RoomType) (*slot.Slot, error) {
	for _, s := range r.inRange(startAt, startAt.Add(time.Nanosecond), roomType) {
		if s.IsAvailable() {
			return cloneSlot(s), nil
		}
	}
	return nil, notFound("no available appointment slot")
}

func (r slotRepo) Save(_ context.Context, s *slot.Slot) error {
	if _, ok := r.tx.data.slots[s.ID()]; !ok {
		return notFound("appointment slot not found")
	}
	r.tx.data.slots[s.ID()] = cloneSlot(s)
	return nil
}

type historyRepo struct{ tx *memTx }

func (r historyRepo) Append(_ context.Context, e *history.Entry) (int64, error) {
	id := int64(len(r.tx.data.history) + 1)
	stored := history.Reconstruct(id, e.SlotID(), e.UserID(), e.Action(), e.PaymentRef(), e.CreatedAt())
	r.tx.data.history = append(r.tx.data.history, stored)
	return id, nil
}

func (r historyRepo) ListBySlot(_ context.Context, slotID int64) ([]*history.Entry, error) {
	out := []*history.Entry{}
	for _, e := range r.tx.data.history {
		if e.SlotID() == slotID {
			out = append(out, e)
		}
	}
	return out, nil
}

type userRepo struct{ tx *memTx }

func (r userRepo) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := r.tx.data.users[id]
	if !ok {
		return nil, notFound("user not found")
	}
	return u, nil
}
