/*
Package servers runs the registry HTTP API.

A Server mounts any number of api handlers behind the flashbots slog access
logger, adds health probes and optionally pprof, and runs a separate metrics
listener.

# Health

  - GET /livez - always 200 while the process serves requests
  - GET /readyz - 200 when ready, 503 while draining
  - GET /drain, GET /undrain - toggle readiness for load balancer rotation

Shutdown drains first, waits DrainDuration, then gracefully stops both
listeners within GracefulShutdownDuration.

# Example Usage

	metricsSrv, err := metrics.New(common.PackageName, cfg.MetricsAddr)
	if err != nil {
	    return err
	}
	srv, err := servers.New(cfg, metricsSrv,
	    luwhandler.NewHandler(reg.Coordinator, log),
	    assethandler.NewHandler(reg.Assets, reg.Assets, log),
	)
	if err != nil {
	    return err
	}
	srv.RunInBackground()
	defer srv.Shutdown()
*/
package servers
