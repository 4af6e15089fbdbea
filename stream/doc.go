// Package stream turns the task store's watch channels into ordered event
// subscriptions and renders them as Server-Sent Events. A subscription always
// begins with the task's current status, mirrors every state change in write
// order, ends with exactly one terminal event (a final status update or an
// error), and is padded with keep-alives while the task is idle.
package stream
