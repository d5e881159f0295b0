// Package httpapi exposes the consultation engine over JSON/HTTP.
//
// Routes:
//
//	GET  /health                  liveness and current AI mode
//	GET  /api/mode                provider chain status
//	GET  /api/destinations        the destination catalog
//	GET  /api/destinations/{id}   one destination
//	POST /api/session             issue a new session id
//	POST /api/chat                process one user turn
//	POST /api/recommend           current recommendations and context
//	POST /api/select              confirm a destination
//
// Errors are returned as {"error": "...", "field": "..."} with a 4xx or 5xx
// status. A chat turn itself never fails: provider problems surface as a
// mock-generated reply.
package httpapi
