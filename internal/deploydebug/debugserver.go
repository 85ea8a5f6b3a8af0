// Package deploydebug serves profiling and metrics endpoints while a deployer command runs.
package deploydebug

import (
	"context"
	"net"
	"net/http"
	"net/http/pprof"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// StartDebugServer starts a debug server in a background goroutine,
// accepting connections on the given listener.
// Deployer metrics are served from registry on /metrics, next to the pprof endpoints.
// The server will be forcefully shut down when ctx finishes.
func StartDebugServer(ctx context.Context, log *zap.Logger, ln net.Listener, registry *prometheus.Registry) {
	mux := NewMux(registry)

	srv := &http.Server{
		Handler:  mux,
		ErrorLog: zap.NewStdLog(log),
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Warn("Debug server stopped", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		srv.Close()
	}()
}

// NewMux returns the handler of the debug server.
func NewMux(registry *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.Handle("/", http.RedirectHandler("/debug/pprof", http.StatusSeeOther))

	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return mux
}
