// Package push implements the per-task webhook registry. Deliveries are
// strictly best effort: one attempt per observed task update, failures
// recorded but never retried, and no delivery outcome ever feeds back
// into task state.
package push
