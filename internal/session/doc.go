// Package session owns folder loads: one LoadSession at a time, fed by the
// scheduler and drained by a Poller on the presentation goroutine.
//
// The presentation layer calls Poller.Tick on a fixed cadence. Each tick
// harvests at most Config.BatchSize finished jobs, converts them into the
// caller's display handle type, and files them by submission index, so the
// final result list follows the input order however the workers finished.
// A cancelled session yields nothing; partial results are thrown away.
//
//	run := func(job scheduler.Job) thumbnail.Set { return producer.Produce(job.Path) }
//	poller := session.NewPoller(pool, run, toHandle, session.DefaultConfig())
//	poller.Start(paths)
//	// every Config.Interval, on the UI goroutine:
//	ev := poller.Tick()
package session
