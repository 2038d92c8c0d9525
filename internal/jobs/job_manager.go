package jobs

import (
	"fmt"
	"log/slog"
)

// Job is a scheduled background task.
type Job interface {
	Start() error
	Stop()
}

type namedJob struct {
	name string
	job  Job
}

// JobManager starts and stops the scheduled jobs of the process as a unit.
type JobManager struct {
	jobs    []namedJob
	started []namedJob
}

// NewJobManager registers the courier reconciliation job on reconcileSchedule.
func NewJobManager(reconciler CourierReconciler, reconcileSchedule string, logger *slog.Logger) *JobManager {
	jm := &JobManager{}
	jm.Register("courier_reconcile", NewCourierReconcileJob(reconciler, reconcileSchedule, logger))
	return jm
}

// Register adds a job. It must be called before StartAll.
func (jm *JobManager) Register(name string, job Job) {
	jm.jobs = append(jm.jobs, namedJob{name: name, job: job})
}

// StartAll starts the jobs in registration order. If one fails, the jobs already
// started are stopped again.
func (jm *JobManager) StartAll() error {
	for _, j := range jm.jobs {
		if err := j.job.Start(); err != nil {
			jm.StopAll()
			return fmt.Errorf("failed to start %s job: %w", j.name, err)
		}
		jm.started = append(jm.started, j)
	}
	return nil
}

// StopAll stops the started jobs in reverse order and waits for running passes.
func (jm *JobManager) StopAll() {
	for i := len(jm.started) - 1; i >= 0; i-- {
		jm.started[i].job.Stop()
	}
	jm.started = nil
}
