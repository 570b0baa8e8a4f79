package profiling

import (
	"net"
	"net/http"
	"net/http/pprof"

	"github.com/witnessdag/witnessd/infrastructure/logger"
	"github.com/witnessdag/witnessd/util/panics"
)

// Start serves the pprof handlers on port in the background
func Start(port string, log *logger.Logger) {
	spawn := panics.GoroutineWrapperFunc(log)
	spawn("profiling.Start", func() {
		listenAddr := net.JoinHostPort("", port)
		log.Infof("Profile server listening on %s", listenAddr)
		log.Error(http.ListenAndServe(listenAddr, handler()))
	})
}

func handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", http.RedirectHandler("/debug/pprof/", http.StatusSeeOther))
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}
