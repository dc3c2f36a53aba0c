/*
Package scheduler provides one-time, repeating, and cron-based task
scheduling for goadmit components.

The scheduler owns a single ticker goroutine that checks for ready tasks
and runs each in its own goroutine. Tasks are addressed by an explicit
string handle so owners can start and cancel background work idempotently:

	sched := scheduler.New()
	_ = sched.Start()
	defer func() { <-sched.Stop() }()

	// Repeating task with its own handle.
	_ = sched.ScheduleRepeating("drain", scheduler.TaskFunc(drainStep), 100*time.Millisecond)
	...
	sched.Cancel("drain")

Cron expressions use the six-field form with seconds:

	_ = sched.ScheduleCron("hourly-report", "0 0 * * * *", task)

The leaky bucket limiter uses a repeating task from this package as its
drain loop; the task handle is stored separately from the configured leak
interval.
*/
package scheduler
