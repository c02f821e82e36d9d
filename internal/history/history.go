// SPDX-License-Identifier: MIT
// Package history persists and ranks recently selected repositories per
// workspace.
package history

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.yaml.in/yaml/v3"
)

const (
	// DefaultMaxPerWorkspace caps the records kept for one workspace.
	DefaultMaxPerWorkspace = 5
	// DefaultRetention is how long a selection stays eligible.
	DefaultRetention = 7 * 24 * time.Hour
)

// Record is one repository selected within a workspace.
type Record struct {
	RepoPath  string    `yaml:"repo_path" json:"repo_path"`
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	Count     int       `yaml:"count" json:"count"`
}

// File is the on-disk history document.
type File struct {
	UpdatedAt  time.Time           `yaml:"updated_at,omitempty"`
	Workspaces map[string][]Record `yaml:"workspaces"`
}

// Load reads a history file from the given path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.Workspaces == nil {
		f.Workspaces = map[string][]Record{}
	}
	return &f, nil
}

// LoadOrEmpty is Load that treats a missing file as empty history.
func LoadOrEmpty(path string) (*File, error) {
	f, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return &File{Workspaces: map[string][]Record{}}, nil
	}
	return f, err
}

// Save writes the history to the given path.
func Save(f *File, path string) error {
	if f == nil {
		return errors.New("history is nil")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Options configures a Store. Zero values take the package defaults.
type Options struct {
	MaxPerWorkspace int
	Retention       time.Duration
	Now             func() time.Time
}

// Store ranks and mutates a history File in memory. Callers persist the
// result with Save.
type Store struct {
	file      *File
	max       int
	retention time.Duration
	now       func() time.Time
}

// NewStore wraps f. A nil f starts an empty history.
func NewStore(f *File, opts Options) *Store {
	if f == nil {
		f = &File{}
	}
	if f.Workspaces == nil {
		f.Workspaces = map[string][]Record{}
	}
	if opts.MaxPerWorkspace <= 0 {
		opts.MaxPerWorkspace = DefaultMaxPerWorkspace
	}
	if opts.Retention <= 0 {
		opts.Retention = DefaultRetention
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{file: f, max: opts.MaxPerWorkspace, retention: opts.Retention, now: opts.Now}
}

// File returns the underlying document.
func (s *Store) File() *File { return s.file }

// Score is count * (1 + age/retention). It grows with age for a fixed
// count, so among equal counts the older record ranks higher.
func (s *Store) Score(r Record, now time.Time) float64 {
	age := now.Sub(r.Timestamp)
	return float64(r.Count) * (1 + float64(age)/float64(s.retention))
}

// RecordSelection bumps repoPath in workspace, re-ranks, and truncates to
// the cap. The recorded path is never evicted by its own selection.
func (s *Store) RecordSelection(workspace, repoPath string) {
	now := s.now()
	records := s.file.Workspaces[workspace]
	found := false
	for i := range records {
		if records[i].RepoPath == repoPath {
			records[i].Count++
			records[i].Timestamp = now
			found = true
			break
		}
	}
	if !found {
		records = append(records, Record{RepoPath: repoPath, Timestamp: now, Count: 1})
	}
	s.rank(records, now)
	if len(records) > s.max {
		kept := append([]Record(nil), records[:s.max]...)
		if !containsPath(kept, repoPath) {
			for _, r := range records[s.max:] {
				if r.RepoPath == repoPath {
					kept[len(kept)-1] = r
					break
				}
			}
			s.rank(kept, now)
		}
		records = kept
	}
	s.file.Workspaces[workspace] = records
	s.file.UpdatedAt = now
}

// LastSelected returns the best-ranked path still within retention.
// Expired records are skipped.
func (s *Store) LastSelected(workspace string) (string, bool) {
	now := s.now()
	for _, r := range s.Records(workspace) {
		if !s.expired(r, now) {
			return r.RepoPath, true
		}
	}
	return "", false
}

// Suggestions returns unexpired paths, most preferred first.
func (s *Store) Suggestions(workspace string) []string {
	now := s.now()
	var out []string
	for _, r := range s.Records(workspace) {
		if s.expired(r, now) {
			continue
		}
		out = append(out, r.RepoPath)
	}
	return out
}

// Records returns a ranked copy of the workspace records, expired included.
func (s *Store) Records(workspace string) []Record {
	records := append([]Record(nil), s.file.Workspaces[workspace]...)
	s.rank(records, s.now())
	return records
}

// Workspaces returns the workspace keys in sorted order.
func (s *Store) Workspaces() []string {
	keys := make([]string, 0, len(s.file.Workspaces))
	for key := range s.file.Workspaces {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ClearWorkspace drops all records for workspace and returns how many
// were removed.
func (s *Store) ClearWorkspace(workspace string) int {
	n := len(s.file.Workspaces[workspace])
	delete(s.file.Workspaces, workspace)
	return n
}

// ClearAll drops every workspace and returns how many records were removed.
func (s *Store) ClearAll() int {
	n := 0
	for _, records := range s.file.Workspaces {
		n += len(records)
	}
	s.file.Workspaces = map[string][]Record{}
	return n
}

// Cleanup removes expired records and empty workspaces. It returns the
// number of records removed; a second call returns 0.
func (s *Store) Cleanup() int {
	now := s.now()
	removed := 0
	for workspace, records := range s.file.Workspaces {
		kept := records[:0]
		for _, r := range records {
			if s.expired(r, now) {
				removed++
				continue
			}
			kept = append(kept, r)
		}
		if len(kept) == 0 {
			delete(s.file.Workspaces, workspace)
			continue
		}
		s.file.Workspaces[workspace] = kept
	}
	return removed
}

// PruneMissing drops records whose repository path no longer exists on
// disk. It returns the number removed.
func (s *Store) PruneMissing() (int, error) {
	removed := 0
	for workspace, records := range s.file.Workspaces {
		kept := records[:0]
		for _, r := range records {
			if _, err := os.Stat(r.RepoPath); err != nil {
				if !os.IsNotExist(err) {
					return removed, err
				}
				removed++
				continue
			}
			kept = append(kept, r)
		}
		if len(kept) == 0 {
			delete(s.file.Workspaces, workspace)
			continue
		}
		s.file.Workspaces[workspace] = kept
	}
	return removed, nil
}

func (s *Store) expired(r Record, now time.Time) bool {
	return now.Sub(r.Timestamp) > s.retention
}

// rank sorts by score descending, then path ascending.
func (s *Store) rank(records []Record, now time.Time) {
	sort.SliceStable(records, func(i, j int) bool {
		si, sj := s.Score(records[i], now), s.Score(records[j], now)
		if si != sj {
			return si > sj
		}
		return records[i].RepoPath < records[j].RepoPath
	})
}

func containsPath(records []Record, path string) bool {
	for _, r := range records {
		if r.RepoPath == path {
			return true
		}
	}
	return false
}
