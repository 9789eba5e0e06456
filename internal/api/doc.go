// Package api exposes the scheduler and the forecast simulator over HTTP.
//
// Handlers decode and validate requests, call the service layer, and map
// service errors to status codes with sanitized messages. Detailed errors are
// only ever logged, after redaction.
package api
