package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/dqmon-cli/internal/quality"
)

// csvSource serves one CSV/TSV file, or every such file in a directory, as
// tables named after the file without its extension.
type csvSource struct {
	files      map[string]string // table -> path
	nullTokens []string
}

func openCSV(_ context.Context, cfg Config) (Source, error) {
	info, err := os.Stat(cfg.DSN)
	if err != nil {
		return nil, unavailable("csv", err)
	}
	s := &csvSource{files: map[string]string{}, nullTokens: cfg.NullTokens}
	if !info.IsDir() {
		s.files[tableName(cfg.DSN)] = cfg.DSN
		return s, nil
	}
	entries, err := os.ReadDir(cfg.DSN)
	if err != nil {
		return nil, unavailable("csv", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".csv", ".tsv":
			s.files[tableName(e.Name())] = filepath.Join(cfg.DSN, e.Name())
		}
	}
	return s, nil
}

func tableName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (s *csvSource) Tables(context.Context) ([]string, error) {
	out := make([]string, 0, len(s.files))
	for name := range s.files {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func (s *csvSource) Snapshot(ctx context.Context, table string) (*quality.Snapshot, error) {
	path, ok := s.files[table]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTableNotFound, table)
	}
	cells, err := readCSV(ctx, path)
	if err != nil {
		return nil, unavailable("csv", err)
	}
	snap, err := cells.snapshot(s.nullTokens)
	if err != nil {
		return nil, unavailable("csv", fmt.Errorf("%s: %w", filepath.Base(path), err))
	}
	return snap, nil
}

func (s *csvSource) Close() error { return nil }

func readCSV(ctx context.Context, path string) (cellTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return cellTable{}, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.Comma = sniffDelimiter(path)

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return cellTable{}, nil
		}
		return cellTable{}, fmt.Errorf("read header: %w", err)
	}
	t := cellTable{header: append([]string(nil), header...)}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return cellTable{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}
		if len(t.records)%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return cellTable{}, err
			}
		}
		t.records = append(t.records, rec)
	}
	return t, nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
