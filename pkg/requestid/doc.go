// Package requestid attaches correlation identifiers to HTTP requests and
// propagates them through context and structured logs.
//
// Middleware reuses a valid client-supplied X-Request-ID header or generates
// a UUID, stores the ID in the request context, and echoes it in the response
// header. WithContext and FromContext move the ID in and out of a
// context.Context. LoggerExtractor plugs into the logger package so every
// log record emitted during a request carries the same request_id attribute
// as the tenant resolution and schema routing logs.
//
// # Usage
//
//	import (
//		"net/http"
//
//		"github.com/dmitrymomot/tenantkit/pkg/requestid"
//	)
//
//	mux := http.NewServeMux()
//	mux.Handle("/hello", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//		id := requestid.FromContext(r.Context())
//		w.Write([]byte("hello, your request id is " + id))
//	}))
//
//	http.ListenAndServe(":8080", requestid.Middleware(mux))
//
// Invalid or missing client IDs are replaced silently; the package never
// returns an error.
package requestid
