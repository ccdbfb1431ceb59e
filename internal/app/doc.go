// Package app assembles the HTTP server: configuration, logging, the
// analysis service and its collaborators, the middleware chain, and the
// route tree. The Application type owns the server lifecycle from
// NewApplication through Run to graceful shutdown.
package app
