// Package api hosts the HTTP server, middleware, and handlers. Notable routes:
//   - GET /, /{a}, /{a}/ and /{a}/* resolve against the content tree.
//   - GET /healthz and /readyz for liveness and readiness probes.
//   - GET /metrics for Prometheus scraping, when enabled.
//
// Any other path is answered by the not-found negotiator.
package api
