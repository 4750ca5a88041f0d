// Package http implements the HTTP handlers of the bondscope API.
//
// Handlers stay thin: they parse and validate query and path parameters,
// call the service layer and write JSON with go-chi/render. Successful
// responses use the envelope
//
//	{"status": "success", "data": ...}
//
// and every failure is written as RFC 7807 problem details by
// errors.ErrorHandler. Service errors are translated first: an unknown donor
// becomes a 404 carrying "did you mean" suggestions, an aggregate over no
// records becomes a 422 and a missing dataset a 503.
package http
