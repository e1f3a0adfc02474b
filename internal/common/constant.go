// Package common contains shared constants, sentinel errors and small
// helpers used across the loan portal components.
package common

// SessionCookieName is the name of the cookie carrying the signed session id.
const SessionCookieName = "sid"

// RequestIDHeaderName is the header used to propagate the request id.
const RequestIDHeaderName = "X-Request-ID"
