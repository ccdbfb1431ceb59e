// Package http implements the HTTP transport layer for the gridsight API.
//
// Handlers are thin: they validate the request, call the service layer, and
// render JSON responses with go-chi/render. Each handler exposes a Routes()
// method returning a chi.Router that the application mounts under /api.
//
// # Endpoints
//
//	POST /api/analyses        - upload a spreadsheet and run analysis
//	GET  /api/analyses        - list completed analyses (summaries)
//	GET  /api/analyses/{id}   - fetch one analysis with records and insights
//	GET  /api/health          - service health
//
// # Error Handling
//
// All errors render as a JSON envelope with a machine-readable error code;
// terminal analysis errors map to 422, unsupported uploads to 400, and
// unknown ids to 404.
package http
