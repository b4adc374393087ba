package quality

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// Options controls ProfileTable.
type Options struct {
	// Parallelism bounds concurrent column profiling; values <= 1 profile
	// sequentially. The result does not depend on it.
	Parallelism int
	// Now stamps GeneratedAt. Defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions profiles up to GOMAXPROCS columns at once.
func DefaultOptions() Options {
	return Options{Parallelism: runtime.GOMAXPROCS(0), Now: time.Now}
}

// ProfileTable profiles every column of s, counts duplicate rows and detects
// formatting inconsistencies. It returns a complete profile or an error,
// never a partial result.
func ProfileTable(ctx context.Context, s *Snapshot, tableName string, opt Options) (*TableProfile, error) {
	if s == nil {
		return nil, ErrNilSnapshot
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	limit := opt.Parallelism
	if limit < 1 {
		limit = 1
	}

	profiles := make([]ColumnProfile, len(s.columns))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for j := range s.columns {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			values := s.Column(j)
			profiles[j] = profileColumnAs(values, Classify(values, s.columns[j].Declared))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("profile table %s: %w", tableName, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("profile table %s: %w", tableName, err)
	}

	p := &TableProfile{
		TableName:    tableName,
		GeneratedAt:  opt.Now(),
		TotalRows:    s.NumRows(),
		TotalColumns: s.NumColumns(),
		Issues: Issues{
			MissingByColumn: MissingByColumn{},
		},
	}
	kinds := make([]Kind, len(s.columns))
	for j, c := range s.columns {
		cp := profiles[j]
		kinds[j] = cp.DataType
		p.Columns.set(c.Name, cp)
		if cp.MissingCount > 0 {
			p.Issues.MissingByColumn = append(p.Issues.MissingByColumn, MissingEntry{
				Column:     c.Name,
				Count:      cp.MissingCount,
				Percentage: cp.MissingPercentage,
			})
		}
	}
	p.Issues.DuplicateRowCount = CountDuplicateRows(s)
	p.Issues.Inconsistencies = detectInconsistencies(s, kinds)
	return p, nil
}

// CountDuplicateRows counts rows identical in every column to an earlier
// row. The first occurrence of a repeated row is not counted.
func CountDuplicateRows(s *Snapshot) int {
	if s == nil {
		return 0
	}
	seen := make(map[string]struct{}, len(s.rows))
	dups := 0
	for _, r := range s.rows {
		k := rowKey(r)
		if _, ok := seen[k]; ok {
			dups++
			continue
		}
		seen[k] = struct{}{}
	}
	return dups
}
