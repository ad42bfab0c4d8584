package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const DefaultPath = "/debug/prometheus"

// NewRouter exposes the default Prometheus registry at path.
func NewRouter(path string) *mux.Router {
	if path == "" {
		path = DefaultPath
	}
	r := mux.NewRouter()
	r.Handle(path, promhttp.Handler()).Methods(http.MethodGet)
	return r
}

// Serve runs the metrics endpoint on addr until ctx is done.
func Serve(ctx context.Context, addr, path string, logger *logrus.Entry) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(path),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.WithField("addr", addr).Info("metrics: listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
