// Package runner executes script generation in the background. A Runner owns
// the asynchronous half of a task's lifecycle: it moves the task to working,
// drives the engine with bounded retries and per-attempt timeouts, publishes
// the finished artifact atomically with the completed state, and records
// failures on the task instead of returning them. A concurrent cancellation
// always wins over the runner's own commits.
package runner
