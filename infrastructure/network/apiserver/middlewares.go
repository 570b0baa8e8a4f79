package apiserver

import (
	"net/http"
	"runtime/debug"

	"github.com/gorilla/mux"
	"github.com/witnessdag/witnessd/infrastructure/metrics"
)

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debugf("Method: %s URI: %s", r.Method, r.RequestURI)
		next.ServeHTTP(w, r)
	})
}

func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			recoveryErr := recover()
			if recoveryErr != nil {
				log.Criticalf("Fatal error: %s", recoveryErr)
				log.Criticalf("Stack trace: %s", debug.Stack())
				sendErr(w, newHandlerError(http.StatusInternalServerError, "A server error occurred."))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func setJSONMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// metricsMiddleware counts requests by route template, so that unit hashes
// do not become label values
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		route := "unknown"
		if currentRoute := mux.CurrentRoute(r); currentRoute != nil {
			template, err := currentRoute.GetPathTemplate()
			if err == nil {
				route = template
			}
		}
		metrics.RecordHTTPRequest(route, recorder.status)
	})
}
