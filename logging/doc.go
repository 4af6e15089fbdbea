// Package logging provides a tiny abstraction over slog so downstream
// code can depend on a minimal interface (Logger) while allowing users
// to plug any structured logger. It also offers a richer ScriptMeshLogger
// with contextual helpers (task, session, component) and domain specific
// logging helpers for lifecycle transitions, engine calls and webhook
// deliveries.
package logging
