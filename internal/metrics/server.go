package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"pixsort/internal/logging"
	"pixsort/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter returns the router served on the metrics address.
func NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Logger)
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}).Methods("GET")
	return r
}

// Serve runs the metrics listener until ctx is cancelled. A nil handler
// serves NewRouter.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	if handler == nil {
		handler = NewRouter()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		}
	}()

	logging.Info("Metrics listening on http://%s/metrics", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
