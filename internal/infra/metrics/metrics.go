package metrics

import (
	"time"

	"mikvah-scheduler/internal/domain/slot"
	"mikvah-scheduler/internal/usecase/commands"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mikvah"

type Collector struct {
	bookings     *prometheus.CounterVec
	hoursWritten prometheus.Counter
	slotsCreated *prometheus.CounterVec
	taskDuration *prometheus.HistogramVec
	taskFailures *prometheus.CounterVec
}

// NewCollector creates the collectors and registers them with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		bookings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bookings_total",
				Help:      "Booking operations by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		hoursWritten: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "daily_hours_written_total",
				Help:      "Daily hours rows inserted or updated.",
			},
		),
		slotsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "slots_generated_total",
				Help:      "Appointment slots created by room type.",
			},
			[]string{"room_type"},
		),
		taskDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "task_duration_seconds",
				Help:      "Duration of background task runs.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"task"},
		),
		taskFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "task_failures_total",
				Help:      "Background task runs that returned an error.",
			},
			[]string{"task"},
		),
	}

	for _, col := range []prometheus.Collector{c.bookings, c.hoursWritten, c.slotsCreated, c.taskDuration, c.taskFailures} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

var _ commands.Metrics = (*Collector)(nil)

func (c *Collector) BookingOutcome(operation, outcome string) {
	c.bookings.WithLabelValues(operation, outcome).Inc()
}

func (c *Collector) DailyHoursWritten(n int) {
	c.hoursWritten.Add(float64(n))
}

func (c *Collector) SlotsGenerated(roomType slot.RoomType, n int) {
	c.slotsCreated.WithLabelValues(roomType.String()).Add(float64(n))
}

func (c *Collector) TaskRun(task string, took time.Duration, err error) {
	c.taskDuration.WithLabelValues(task).Observe(took.Seconds())
	if err != nil {
		c.taskFailures.WithLabelValues(task).Inc()
	}
}
