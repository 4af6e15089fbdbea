// Package session houses concrete implementations of the
// core.SessionStore. The interface itself (and the Session struct) live
// in the core package to centralize domain contracts.
//
// Sessions carry only derived, bounded context: losing one to idle
// expiry never loses task records, which stay in the task store.
package session
