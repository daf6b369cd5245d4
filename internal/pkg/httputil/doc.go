// Package httputil provides shared HTTP response/request utilities for handlers.
//
// Handlers write every response through these helpers so JSON formatting
// and the {"error": "..."} envelope stay identical across endpoints.
// Server-side failures are logged in full and answered with a generic body.
package httputil
