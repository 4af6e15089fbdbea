// Package a2a exposes the task lifecycle over HTTP following the A2A task
// conventions: task send/get/list/cancel, SSE subscriptions for streaming
// updates, push notification config management, and the agent card under
// /.well-known/agent.json.
package a2a
