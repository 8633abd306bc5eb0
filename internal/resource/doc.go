// Package resource bounds the resources used while subspace tasks run.
//
// The Controller manages three things:
//
//   - Workers: a fixed pool of slots. A task holds a slot while it runs; the slot
//     number doubles as the worker id recorded in provenance.
//   - Memory: an optional budget for the sample memory of running tasks. Tasks block
//     until enough budget is released.
//   - Dispatch: an optional token bucket that paces how fast tasks are started.
//
// Usage:
//
//	rc := resource.NewController(resource.Config{MaxWorkers: 4, MemoryLimitBytes: 1 << 30})
//
//	id, err := rc.AcquireWorker(ctx)
//	if err != nil {
//	    return err
//	}
//	defer rc.ReleaseWorker(id)
//
// All methods are safe for concurrent use. A nil *Controller is valid: every limit is
// disabled and AcquireWorker always hands out slot 1.
package resource
