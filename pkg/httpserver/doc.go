// Package httpserver runs the service's net/http server with graceful
// shutdown and provides liveness and readiness handlers.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//	    log.Error("server stopped", logger.Error(err))
//	}
//
// Run returns when ctx is cancelled or SIGINT/SIGTERM arrives, after draining
// in-flight requests for at most the shutdown timeout. Listen errors wrap
// ErrStart and drain errors wrap ErrShutdown.
package httpserver
