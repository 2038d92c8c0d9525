package jobs

import (
	"context"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// DefaultReconcileSchedule runs the reconciliation at the top of every minute.
const DefaultReconcileSchedule = "0 * * * * *"

// CourierReconciler repairs courier availability and reports how many couriers changed.
type CourierReconciler interface {
	Handle(ctx context.Context) (int, error)
}

// CourierReconcileJob periodically realigns courier availability with the orders that
// bind each courier.
type CourierReconcileJob struct {
	handler  CourierReconciler
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewCourierReconcileJob creates the job. schedule is a six-field cron expression
// (seconds first); an empty schedule uses DefaultReconcileSchedule.
func NewCourierReconcileJob(handler CourierReconciler, schedule string, logger *slog.Logger) *CourierReconcileJob {
	if schedule == "" {
		schedule = DefaultReconcileSchedule
	}
	return &CourierReconcileJob{
		handler:  handler,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "courier_reconcile_job"),
	}
}

// Start registers the job with its schedule and starts the scheduler.
func (j *CourierReconcileJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() {
		j.RunOnce(context.Background())
	}); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Courier reconcile job started", "schedule", j.schedule)
	return nil
}

// RunOnce performs one reconciliation pass. A pass that is still running when the next
// tick fires is not overlapped.
func (j *CourierReconcileJob) RunOnce(ctx context.Context) {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		j.logger.WarnContext(ctx, "Courier reconcile job skipped, previous run still active")
		return
	}
	j.running = true
	j.mu.Unlock()

	defer func() {
		j.mu.Lock()
		j.running = false
		j.mu.Unlock()
	}()

	fixed, err := j.handler.Handle(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Courier reconcile job failed", "error", err, "fixed", fixed)
		return
	}
	if fixed > 0 {
		j.logger.InfoContext(ctx, "Courier availability repaired", "fixed", fixed)
	}
}

// Stop stops the scheduler and waits for a running pass to finish.
func (j *CourierReconcileJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Courier reconcile job stopped")
}
