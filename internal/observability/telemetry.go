// Package observability owns the process-wide telemetry: OpenTelemetry
// export through uptrace, continuous profiling and the pprof listener.
package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/grafana/pyroscope-go"
	"github.com/uptrace/uptrace-go/uptrace"

	"github.com/riskibarqy/fantasy-trade-market/internal/config"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/logging"
)

// Telemetry is the started set of exporters. The zero value is a valid
// no-op and Shutdown is safe to call on it.
type Telemetry struct {
	logger   *logging.Logger
	tracing  bool
	profiler *pyroscope.Profiler
	pprof    *http.Server
}

// Start brings up whatever cfg enables. The returned Telemetry is usable even
// when err is non-nil so the caller can still shut down what did start.
func Start(cfg config.Config, logger *logging.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = logging.Default()
	}
	t := &Telemetry{logger: logger}

	t.startTracing(cfg)
	if err := t.startProfiler(cfg); err != nil {
		return t, err
	}
	t.startPprof(cfg)
	return t, nil
}

// Logger returns the logger to use for the rest of the process. It mirrors
// entries to the OTel log pipeline when uptrace log export is on.
func (t *Telemetry) Logger() *logging.Logger {
	if t == nil || t.logger == nil {
		return logging.Default()
	}
	return t.logger
}

func (t *Telemetry) startTracing(cfg config.Config) {
	if !cfg.UptraceEnabled || cfg.UptraceDSN == "" {
		t.logger.Info("uptrace disabled", "enabled", cfg.UptraceEnabled, "dsn_set", cfg.UptraceDSN != "")
		return
	}
	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithLoggingEnabled(cfg.UptraceLogsEnabled),
	)
	t.tracing = true
	if cfg.UptraceLogsEnabled {
		t.logger = MirrorToOTel(t.logger, cfg.ServiceVersion)
	}
	t.logger.Info("uptrace enabled", "service_name", cfg.ServiceName, "environment", cfg.AppEnv, "logs_enabled", cfg.UptraceLogsEnabled)
}

func (t *Telemetry) startProfiler(cfg config.Config) error {
	if !cfg.PyroscopeEnabled {
		return nil
	}
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Tags:              map[string]string{"env": cfg.AppEnv, "service": cfg.ServiceName, "version": cfg.ServiceVersion},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
			pyroscope.ProfileMutexDuration,
			pyroscope.ProfileBlockDuration,
		},
	})
	if err != nil {
		return err
	}
	t.profiler = profiler
	t.logger.Info("pyroscope enabled", "server_address", cfg.PyroscopeServerAddress, "application", cfg.PyroscopeAppName)
	return nil
}

func (t *Telemetry) startPprof(cfg config.Config) {
	if !cfg.PprofEnabled {
		return
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	t.pprof = &http.Server{Addr: cfg.PprofAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	logger := t.logger
	go func() {
		logger.Info("pprof server starting", "addr", cfg.PprofAddr)
		if err := t.pprof.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("pprof server failed", "error", err)
		}
	}()
}

// Shutdown stops the pprof listener, then the profiler, then flushes spans.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error
	if t.pprof != nil {
		errs = append(errs, t.pprof.Shutdown(ctx))
	}
	if t.profiler != nil {
		errs = append(errs, t.profiler.Stop())
	}
	if t.tracing {
		errs = append(errs, uptrace.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
