package servers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/flashbots/go-utils/httplogger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ruteri/luw-coordination-registry/api"
	"github.com/ruteri/luw-coordination-registry/metrics"
	"go.uber.org/atomic"
)

// RouteRegistrar is implemented by the api handlers.
type RouteRegistrar interface {
	RegisterRoutes(r chi.Router)
}

type Server struct {
	cfg     *api.HTTPServerConfig
	isReady atomic.Bool
	log     *slog.Logger

	srv        *http.Server
	metricsSrv *metrics.MetricsServer
}

// New creates the API server. metricsSrv is started alongside it when
// cfg.MetricsAddr is set.
func New(cfg *api.HTTPServerConfig, metricsSrv *metrics.MetricsServer, handlers ...RouteRegistrar) (srv *Server, err error) {
	if metricsSrv == nil {
		return nil, errors.New("metrics server is required")
	}

	cfg = cfg.WithDefaults()
	srv = &Server{
		cfg:        cfg,
		log:        cfg.Log,
		metricsSrv: metricsSrv,
	}
	srv.isReady.Store(true)

	srv.srv = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      srv.getRouter(handlers),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return srv, nil
}

func (srv *Server) getRouter(handlers []RouteRegistrar) http.Handler {
	mux := chi.NewRouter()

	mux.Group(func(r chi.Router) {
		r.Use(srv.httpLogger)
		for _, h := range handlers {
			h.RegisterRoutes(r)
		}

		// Health and diagnostic endpoints
		r.Get("/livez", srv.handleLivenessCheck)
		r.Get("/readyz", srv.handleReadinessCheck)
		r.Get("/drain", srv.handleDrain)
		r.Get("/undrain", srv.handleUndrain)
	})

	if srv.cfg.EnablePprof {
		srv.log.Info("pprof API enabled")
		mux.Mount("/debug", middleware.Profiler())
	}
	return mux
}

// Handler returns the API router.
func (srv *Server) Handler() http.Handler {
	return srv.srv.Handler
}

func (srv *Server) httpLogger(next http.Handler) http.Handler {
	return httplogger.LoggingMiddlewareSlog(srv.log, next)
}

type statusResponse struct {
	Status string `json:"status"`
}

func (srv *Server) handleLivenessCheck(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, srv.log, http.StatusOK, statusResponse{"alive"})
}

// handleReadinessCheck reports 503 while drained, so load balancers stop
// routing submissions before shutdown.
func (srv *Server) handleReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if !srv.isReady.Load() {
		api.WriteJSON(w, srv.log, http.StatusServiceUnavailable, statusResponse{"not ready"})
		return
	}
	api.WriteJSON(w, srv.log, http.StatusOK, statusResponse{"ready"})
}

func (srv *Server) handleDrain(w http.ResponseWriter, r *http.Request) {
	srv.setReady(w, false, "draining", "already draining")
}

func (srv *Server) handleUndrain(w http.ResponseWriter, r *http.Request) {
	srv.setReady(w, true, "ready", "already ready")
}

func (srv *Server) setReady(w http.ResponseWriter, ready bool, changed, unchanged string) {
	if srv.isReady.Swap(ready) == ready {
		api.WriteJSON(w, srv.log, http.StatusOK, statusResponse{unchanged})
		return
	}
	srv.log.Info("Readiness changed", "ready", ready)
	api.WriteJSON(w, srv.log, http.StatusOK, statusResponse{changed})
}

// RunInBackground starts the API listener, and the metrics listener when
// MetricsAddr is set. Listener failures are logged, not returned.
func (srv *Server) RunInBackground() {
	if srv.cfg.MetricsAddr != "" {
		go srv.serve("metrics", srv.cfg.MetricsAddr, srv.metricsSrv.ListenAndServe)
	}
	go srv.serve("api", srv.cfg.ListenAddr, srv.srv.ListenAndServe)
}

func (srv *Server) serve(name, addr string, listen func() error) {
	srv.log.Info("Starting HTTP listener", "listener", name, "listenAddress", addr)
	if err := listen(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		srv.log.Error("HTTP listener failed", "listener", name, "err", err)
	}
}

// Shutdown marks the server not ready, waits DrainDuration so load balancers
// notice, then stops both listeners.
func (srv *Server) Shutdown() {
	if srv.isReady.Swap(false) && srv.cfg.DrainDuration > 0 {
		srv.log.Info("Draining before shutdown", "duration", srv.cfg.DrainDuration)
		time.Sleep(srv.cfg.DrainDuration)
	}

	srv.stop("api", srv.srv.Shutdown)
	if srv.cfg.MetricsAddr != "" {
		srv.stop("metrics", srv.metricsSrv.Shutdown)
	}
}

func (srv *Server) stop(name string, shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), srv.cfg.GracefulShutdownDuration)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		srv.log.Error("Graceful shutdown failed", "listener", name, "err", err)
		return
	}
	srv.log.Info("HTTP listener stopped", "listener", name)
}
