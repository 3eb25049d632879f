package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/evdnx/gocompass/config"
	"github.com/evdnx/gocompass/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var (
	runNow      bool
	metricsAddr string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Recompute the compass on the configured cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if metricsAddr != "" {
			srv := serveMetrics(metricsAddr, log)
			defer srv.Shutdown(context.Background())
		}
		return watch(ctx, cfg, log, runNow)
	},
}

func init() {
	watchCmd.Flags().BoolVar(&runNow, "now", true, "compute once immediately before waiting for the schedule")
	watchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9102)")
}

func serveMetrics(addr string, log logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics_server_failed", logger.Err(err))
		}
	}()
	log.Info("metrics_server_started", logger.String("addr", addr))
	return srv
}

// cronLogger routes cron's own messages into the structured logger.
type cronLogger struct {
	log logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug("cron_"+msg, kvFields(keysAndValues)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Error("cron_"+msg, append(kvFields(keysAndValues), logger.Err(err))...)
}

func kvFields(kv []interface{}) []logger.Field {
	fields := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, logger.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return fields
}

// newScheduler registers job under schedule. A run still in progress when the
// next tick fires makes that tick a no-op.
func newScheduler(schedule string, job func(), log logger.Logger) (*cron.Cron, error) {
	cl := cronLogger{log: log}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc(schedule, job); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	return c, nil
}

// watch recomputes on cfg.Schedule.Cron until ctx is done. Failed runs are
// logged and retried at the next tick.
func watch(ctx context.Context, cfg config.Config, log logger.Logger, now bool) error {
	job := func() {
		if _, err := runOnce(ctx, cfg, log); err != nil {
			log.Error("scheduled_run_failed", logger.Err(err))
		}
	}
	c, err := newScheduler(cfg.Schedule.Cron, job, log)
	if err != nil {
		return err
	}
	if now {
		job()
	}

	c.Start()
	log.Info("watch_started", logger.String("schedule", cfg.Schedule.Cron))
	<-ctx.Done()
	<-c.Stop().Done()
	log.Info("watch_stopped")
	return nil
}
