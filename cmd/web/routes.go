package main

import (
	"net/http"
)

func (app *application) routes() *http.ServeMux {
	mux := http.NewServeMux()

	var (
		base = func(next http.Handler) http.Handler {
			return app.recoverPanic(app.logAndTraceRequest(secureHeaders(
				app.crossOriginProtection(commonContext(app.timeout(next))))))
		}
		session = func(next http.Handler) http.Handler {
			return base(noCache(app.sessionManager.LoadAndSave(app.ensureUser(next))))
		}
	)

	mux.Handle("POST /api/classes/generate", session(http.HandlerFunc(app.classGeneratePOST)))
	mux.Handle("POST /api/classes/{classID}/accept", session(http.HandlerFunc(app.classAcceptPOST)))
	mux.Handle("GET /api/classes/{classID}", session(http.HandlerFunc(app.classGET)))
	mux.Handle("GET /api/movements", session(http.HandlerFunc(app.movementsGET)))
	mux.Handle("GET /api/healthy", base(http.HandlerFunc(app.healthy)))

	mux.Handle("GET /movements", session(http.HandlerFunc(app.movementCatalogGET)))
	mux.Handle("GET /{$}", session(http.HandlerFunc(app.home)))
	mux.Handle("/", base(http.HandlerFunc(app.notFound)))

	return mux
}
