// Package controller exposes the synchronous task lifecycle API: creating
// tasks, querying them, cancelling in-flight work and managing push
// notification configs. It validates and persists a task before any
// generation starts, launches the background runner on a detached
// cancellable context, and keeps the cancel functions of in-flight tasks so
// cancellation reaches the running goroutine.
package controller
