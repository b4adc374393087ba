package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dqmon-cli/internal/metrics"
	"github.com/KaramelBytes/dqmon-cli/internal/notify"
	"github.com/KaramelBytes/dqmon-cli/internal/source"
	"github.com/KaramelBytes/dqmon-cli/internal/store"
)

var (
	watchInterval    time.Duration
	watchMetricsAddr string
	watchSave        bool
	watchOnce        bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [tables...]",
	Short: "Profile tables on a schedule, alert on critical ones and export metrics",
	Long: `watch profiles the given tables (all tables of the source when none are given)
every --interval. Critical tables are alerted through the configured channels at
most once per alert_cooldown_sec. Prometheus metrics are served on --metrics-addr.
Stops on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		interval := watchInterval
		if !cmd.Flags().Changed("interval") && c.WatchIntervalSec > 0 {
			interval = time.Duration(c.WatchIntervalSec) * time.Second
		}
		if interval <= 0 {
			return errors.New("--interval must be positive")
		}
		addr := c.MetricsAddr
		if cmd.Flags().Changed("metrics-addr") {
			addr = watchMetricsAddr
		}

		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
		defer stop()

		src, err := openSource(ctx)
		if err != nil {
			return err
		}
		defer src.Close()

		channels, err := notify.Build(c, logger)
		if err != nil {
			return err
		}
		w := &watcher{
			src:      src,
			tables:   args,
			metrics:  metrics.New(),
			notifier: notify.NewCooldown(channels, time.Duration(c.AlertCooldownSec)*time.Second),
			log:      logger,
		}
		if watchSave {
			w.store = store.New(c.ReportsDir)
		}

		if addr != "" {
			srv := &http.Server{Addr: addr, Handler: w.mux(), ReadHeaderTimeout: 5 * time.Second}
			go func() {
				logger.WithField("addr", addr).Info("serving metrics")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.WithError(err).Error("metrics server stopped")
				}
			}()
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				_ = srv.Shutdown(sctx)
			}()
		}

		if watchOnce {
			return w.cycle(ctx)
		}
		logger.WithField("interval", interval.String()).Info("watching tables")
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			if err := w.cycle(ctx); err != nil && ctx.Err() == nil {
				logger.WithError(err).Warn("watch cycle failed")
			}
			select {
			case <-ctx.Done():
				logger.Info("Shutdown complete ✅")
				return nil
			case <-ticker.C:
			}
		}
	},
}

// watcher runs one profiling pass over its tables per cycle.
type watcher struct {
	src      source.Source
	tables   []string
	metrics  *metrics.Metrics
	notifier notify.Notifier
	store    *store.Store
	log      logrus.FieldLogger
}

func (w *watcher) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", w.metrics.Handler())
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok\n"))
	})
	return mux
}

// cycle profiles every table once. A failing table is logged and counted but
// does not stop the others; the returned error is the source listing failure, if any.
func (w *watcher) cycle(ctx context.Context) error {
	tables := w.tables
	if len(tables) == 0 {
		var err error
		if tables, err = w.src.Tables(ctx); err != nil {
			return err
		}
	}
	for _, t := range tables {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.check(ctx, t)
	}
	return nil
}

func (w *watcher) check(ctx context.Context, table string) {
	log := w.log.WithField("table", table)
	run, err := profileTable(ctx, w.src, table)
	if err != nil {
		w.metrics.Failed(table)
		log.WithError(err).Error("profile failed")
		return
	}
	w.metrics.Observe(run.Profile, run.Eval.Critical, run.Took)
	if w.store != nil {
		if _, err := w.store.Save(run.Profile, run.Eval); err != nil {
			log.WithError(err).Warn("save report failed")
		}
	}
	if !run.Eval.Critical {
		log.Info("table within thresholds")
		return
	}
	a, err := notify.NewAlert(run.Profile, run.Eval)
	if err != nil {
		log.WithError(err).Error("render alert failed")
		return
	}
	switch err := w.notifier.Notify(ctx, a); {
	case err == nil:
		w.metrics.Alert(table, "sent")
		log.Warn("critical table, alert sent")
	case errors.Is(err, notify.ErrSuppressed):
		w.metrics.Alert(table, "suppressed")
		log.Info("critical table, alert suppressed by cooldown")
	default:
		w.metrics.Alert(table, "failed")
		log.WithError(err).Error("alert delivery failed")
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchInterval, "interval", time.Hour, "time between profiling passes (default from watch_interval_sec)")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "listen address for /metrics (default from metrics_addr; empty disables)")
	watchCmd.Flags().BoolVar(&watchSave, "save", false, "store every profile under reports_dir")
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "run a single pass and exit")
}
