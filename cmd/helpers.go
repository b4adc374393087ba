package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/dqmon-cli/internal/quality"
	"github.com/KaramelBytes/dqmon-cli/internal/source"
)

// profileRun is the outcome of profiling one table.
type profileRun struct {
	Profile *quality.TableProfile
	Eval    quality.Evaluation
	Took    time.Duration
}

func openSource(ctx context.Context) (source.Source, error) {
	c, err := requireConfig()
	if err != nil {
		return nil, err
	}
	if c.SourceDSN == "" {
		return nil, fmt.Errorf("no data source configured: pass --dsn or run 'dqmon config set source_dsn <dsn>'")
	}
	logger.WithField("driver", c.SourceDriver).Debug("opening source")
	return source.Open(ctx, source.Config{
		Driver:     c.SourceDriver,
		DSN:        c.SourceDSN,
		NullTokens: c.CSVNullTokens,
	})
}

func profileOptions() quality.Options {
	opt := quality.DefaultOptions()
	if cfg != nil && cfg.Parallelism > 0 {
		opt.Parallelism = cfg.Parallelism
	}
	return opt
}

// profileTable snapshots table from src and profiles it.
func profileTable(ctx context.Context, src source.Source, table string) (*profileRun, error) {
	start := time.Now()
	snap, err := src.Snapshot(ctx, table)
	if err != nil {
		return nil, err
	}
	p, err := quality.ProfileTable(ctx, snap, table, profileOptions())
	if err != nil {
		return nil, err
	}
	run := &profileRun{Profile: p, Eval: quality.Evaluate(p), Took: time.Since(start)}
	logger.WithFields(logrus.Fields{
		"table":    table,
		"rows":     p.TotalRows,
		"columns":  p.TotalColumns,
		"critical": run.Eval.Critical,
		"took":     run.Took.Round(time.Millisecond).String(),
	}).Debug("profiled table")
	return run, nil
}
