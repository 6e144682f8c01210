package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/turnero/clinic-api/internal/model"
	"github.com/turnero/clinic-api/internal/repository"
	"github.com/turnero/clinic-api/pkg/logger"
	"github.com/turnero/clinic-api/pkg/messaging"
	"github.com/turnero/clinic-api/pkg/metrics"
)

// DispatchChannel is the broker channel reminder payloads are published on.
const DispatchChannel = "reminders.dispatch"

type DispatcherConfig struct {
	BatchSize    int
	PollInterval time.Duration
}

// Dispatcher drains due pending reminders and hands them to the broker.
// Each cycle claims its batch with row locks inside one transaction, so
// multiple dispatcher instances can run against the same database without
// double-sending.
type Dispatcher struct {
	repo    repository.ReminderRepository
	broker  messaging.Broker
	config  DispatcherConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewDispatcher(
	repo repository.ReminderRepository,
	broker messaging.Broker,
	config DispatcherConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Dispatcher {
	if config.BatchSize <= 0 {
		panic("BatchSize must be greater than 0")
	}
	if config.PollInterval <= 0 {
		panic("PollInterval must be greater than 0")
	}

	return &Dispatcher{
		repo:    repo,
		broker:  broker,
		config:  config,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()

	d.logger.Info("starting reminder dispatcher")

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("shutting down reminder dispatcher")
			return
		case <-ticker.C:
			if err := d.dispatchDue(ctx); err != nil {
				d.logger.Error(err, "failed to dispatch reminders")
			}
		}
	}
}

func (d *Dispatcher) dispatchDue(ctx context.Context) error {
	timer := prometheus.NewTimer(d.metrics.DispatchLatency)
	defer timer.ObserveDuration()

	// The whole cycle runs in one transaction: the row locks taken by
	// DuePending must still be held when the batch is marked, otherwise
	// another instance polling in between re-reads the same PENDING rows.
	return d.repo.WithTx(ctx, func(ctx context.Context) error {
		due, err := d.repo.DuePending(ctx, d.now(), d.config.BatchSize)
		if err != nil {
			d.metrics.DatabaseOperations.WithLabelValues("due_pending", "error").Inc()
			return fmt.Errorf("failed to load due reminders: %w", err)
		}
		d.metrics.DatabaseOperations.WithLabelValues("due_pending", "success").Inc()

		for _, reminder := range due {
			if err := d.dispatch(ctx, reminder); err != nil {
				d.logger.Error(err, "failed to dispatch reminder",
					"reminder_id", reminder.ID.String(),
					"channel", string(reminder.Channel))
			}
		}
		return nil
	})
}

func (d *Dispatcher) dispatch(ctx context.Context, reminder *model.Reminder) error {
	err := d.broker.Publish(ctx, DispatchChannel, messaging.Message{
		Type: string(reminder.Channel),
		Payload: map[string]interface{}{
			"reminder_id":    reminder.ID,
			"appointment_id": reminder.AppointmentID,
			"scheduled_for":  reminder.ScheduledFor,
		},
	})
	if err != nil {
		d.metrics.RemindersFailed.Inc()
		if markErr := d.repo.MarkFailed(ctx, reminder.ID, err.Error()); markErr != nil {
			d.logger.Error(markErr, "failed to mark reminder failed", "reminder_id", reminder.ID.String())
		}
		return err
	}

	d.metrics.RemindersSent.Inc()
	if err := d.repo.MarkSent(ctx, reminder.ID, d.now()); err != nil {
		d.logger.Error(err, "failed to mark reminder sent", "reminder_id", reminder.ID.String())
		return err
	}
	return nil
}
