// Package core provides the foundational domain types, interfaces and
// contracts used by ScriptMesh. It defines the core abstractions for:
//
//   - Tasks (units of requested generation work tracked through a strict
//     finite-state lifecycle)
//   - Messages, Parts and Artifacts (role-based content attached to tasks)
//   - Sessions (groupings of related tasks with bounded derived context)
//   - Stream events (the server-push vocabulary consumed by subscribers)
//   - Pluggable stores for tasks and session context
//   - The Engine contract consumed by the background executor
//
// The package intentionally keeps implementation concerns (persistence,
// executor orchestration, transports) out of scope, exposing small
// interfaces to enable custom backends and extensions.
package core
