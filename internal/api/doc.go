// Package api provides the HTTP surface: request decoding, validation,
// creation handlers, and the mapping from internal errors to status codes
// and sanitized messages.
package api
