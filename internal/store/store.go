// Package store keeps profile runs on disk as JSON, one directory per table.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/dqmon-cli/internal/quality"
	"github.com/KaramelBytes/dqmon-cli/internal/utils"
)

const latestFileName = "latest.json"

// ErrNoReports is returned when a table has no stored runs.
var ErrNoReports = errors.New("no stored reports")

// ErrNoProfile is returned for a stored record whose profile is absent.
var ErrNoProfile = errors.New("record has no profile")

// Record is one persisted profile run.
type Record struct {
	ID       string                `json:"id"`
	Table    string                `json:"table"`
	SavedAt  time.Time             `json:"saved_at"`
	Critical bool                  `json:"critical"`
	Reasons  []quality.Reason      `json:"reasons"`
	Profile  *quality.TableProfile `json:"profile"`
}

// Summary is the listing view of a Record.
type Summary struct {
	ID              string
	Table           string
	SavedAt         time.Time
	Critical        bool
	Rows            int
	DuplicateRows   int
	MissingColumns  int
	Inconsistencies int
	Path            string
}

// Store reads and writes records below a root directory.
type Store struct {
	root string
	now  func() time.Time
}

// New returns a store rooted at dir. The directory is created on first Save.
func New(dir string) *Store {
	return &Store{root: dir, now: time.Now}
}

// Root returns the on-disk location of the store.
func (s *Store) Root() string { return s.root }

// Save writes p as <root>/<table>/<id>.json and refreshes latest.json.
func (s *Store) Save(p *quality.TableProfile, ev quality.Evaluation) (*Record, error) {
	if p == nil {
		return nil, errors.New("save report: nil profile")
	}
	dir := s.tableDir(p.TableName)
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	rec := &Record{
		ID:       uuid.NewString(),
		Table:    p.TableName,
		SavedAt:  s.now().UTC(),
		Critical: ev.Critical,
		Reasons:  ev.Reasons,
		Profile:  p,
	}
	data, err := utils.PrettyJSON(rec)
	if err != nil {
		return nil, err
	}
	if err := utils.SafeWriteFile(filepath.Join(dir, rec.ID+".json"), data); err != nil {
		return nil, err
	}
	if err := utils.SafeWriteFile(filepath.Join(dir, latestFileName), data); err != nil {
		return nil, err
	}
	return rec, nil
}

// Latest returns the most recently saved record of table.
func (s *Store) Latest(table string) (*Record, error) {
	rec, err := readRecord(filepath.Join(s.tableDir(table), latestFileName))
	if errors.Is(err, fs.ErrNotExist) || (err == nil && rec.Table != table) {
		return nil, fmt.Errorf("%w for %s", ErrNoReports, table)
	}
	return rec, err
}

// Get loads one record by id.
func (s *Store) Get(table, id string) (*Record, error) {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil, fmt.Errorf("invalid report id %q", id)
	}
	rec, err := readRecord(filepath.Join(s.tableDir(table), id+".json"))
	if errors.Is(err, fs.ErrNotExist) || (err == nil && rec.Table != table) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNoReports, table, id)
	}
	return rec, err
}

// Tables lists the tables with stored runs.
func (s *Store) Tables() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read reports dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		rec, err := readRecord(filepath.Join(s.root, e.Name(), latestFileName))
		if err != nil {
			continue
		}
		out = append(out, rec.Table)
	}
	sort.Strings(out)
	return out, nil
}

// List summarises the runs of table, newest first.
func (s *Store) List(table string) ([]Summary, error) {
	dir := s.tableDir(table)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w for %s", ErrNoReports, table)
	}
	if err != nil {
		return nil, fmt.Errorf("read reports dir: %w", err)
	}
	var out []Summary
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == latestFileName || filepath.Ext(name) != ".json" {
			continue
		}
		path := filepath.Join(dir, name)
		rec, err := readRecord(path)
		if err != nil {
			return nil, err
		}
		if rec.Table != table {
			continue
		}
		out = append(out, summarize(rec, path))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SavedAt.Equal(out[j].SavedAt) {
			return out[i].SavedAt.After(out[j].SavedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// tableDir is the directory of table. Names SafeName had to rewrite get a
// hash of the raw name appended, so "a b" and "a_b" keep separate runs.
func (s *Store) tableDir(table string) string {
	name := utils.SafeName(table)
	if name != table {
		sum := sha256.Sum256([]byte(table))
		name += "-" + hex.EncodeToString(sum[:4])
	}
	return filepath.Join(s.root, name)
}

func summarize(rec *Record, path string) Summary {
	sum := Summary{ID: rec.ID, Table: rec.Table, SavedAt: rec.SavedAt, Critical: rec.Critical, Path: path}
	if p := rec.Profile; p != nil {
		sum.Rows = p.TotalRows
		sum.DuplicateRows = p.Issues.DuplicateRowCount
		sum.MissingColumns = len(p.Issues.MissingByColumn)
		sum.Inconsistencies = len(p.Issues.Inconsistencies)
	}
	return sum
}

func readRecord(path string) (*Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("read report: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", filepath.Base(path), err)
	}
	if rec.Profile == nil {
		return nil, fmt.Errorf("parse report %s: %w", filepath.Base(path), ErrNoProfile)
	}
	return &rec, nil
}
