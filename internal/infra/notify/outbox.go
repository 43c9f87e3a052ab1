// Package notify queues customer notifications in the notification_jobs outbox.
// Delivery is performed by a separate mailer.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"mikvah-scheduler/internal/pkg/clock"
	"mikvah-scheduler/internal/pkg/errs"
	"mikvah-scheduler/internal/usecase/commands"

	"github.com/google/uuid"
)

const channelEmail = "email"

type JobWriter interface {
	CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error
}

type payload struct {
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	SlotID   int64     `json:"slot_id"`
	StartAt  time.Time `json:"start_at"`
	RoomType string    `json:"room_type"`
	Refunded bool      `json:"refunded,omitempty"`
}

type OutboxNotifier struct {
	jobs  JobWriter
	clock clock.Clock
	loc   *time.Location
}

func NewOutboxNotifier(jobs JobWriter, clk clock.Clock, loc *time.Location) *OutboxNotifier {
	return &OutboxNotifier{jobs: jobs, clock: clk, loc: loc}
}

var _ commands.Notifier = (*OutboxNotifier)(nil)

func (o *OutboxNotifier) Notify(ctx context.Context, n commands.Notification) error {
	if n.Email == "" {
		return errs.Newf("user %s has no email address", n.UserID)
	}
	data, err := json.Marshal(payload{
		UserID:   n.UserID,
		Email:    n.Email,
		Name:     n.Name,
		SlotID:   n.SlotID,
		StartAt:  n.StartAt.In(o.loc),
		RoomType: n.RoomType.String(),
		Refunded: n.Refunded,
	})
	if err != nil {
		return errs.Wrap(err, "failed to encode notification")
	}
	return o.jobs.CreateJob(ctx, channelEmail, string(n.Kind), data, o.clock.Now())
}
