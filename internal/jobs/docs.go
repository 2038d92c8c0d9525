// Package jobs provides scheduled background tasks.
//
// Jobs use github.com/robfig/cron/v3 with six-field expressions (seconds first).
//
// # Available Jobs
//
// CourierReconcileJob realigns the denormalized courier availability flag with the orders
// that actually bind each courier. It repairs the window where an order was bound or
// released but the courier record was not updated.
//
// # Usage
//
//	jobManager := jobs.NewJobManager(reconcileHandler, "0 * * * * *", logger)
//	if err := jobManager.StartAll(); err != nil {
//		return err
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A failed pass is logged and retried on the next tick. Passes never overlap.
package jobs
