// Package server exposes a [calc.Calculator] over HTTP.
//
// Routes:
//
//	POST /calc       {"context": ..., "yaml": "..."}          evaluate a document
//	POST /eval       {"context": ..., "formulas": [...]}      evaluate formulas
//	GET  /functions                                            list functions
//	GET  /healthz                                              liveness
//
// The context may be a JSON object, a string holding a JSON object, or null.
// A successful evaluation responds 200 with a JSON object mapping each
// formula name to the value of its first occurrence, in document order.
// Malformed requests, malformed documents, and failing formulas respond 400
// with an [ErrorResponse]; anything else responds 500.
//
// Every request gets its own environment and evaluator. Each response
// carries an X-Request-Id header, and the same ID is attached to every log
// record written while handling the request.
package server
