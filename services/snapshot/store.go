package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"sjsage522/contestharvester/internal/crawler"
	"sjsage522/contestharvester/logger"
	apperrors "sjsage522/contestharvester/pkg/errors"
)

// Layouts of the last_scraped stamp
const (
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"
)

// Snapshot is one source's persisted harvest
type Snapshot struct {
	LastHarvested string                  `json:"last_scraped"`
	Records       []crawler.ListingRecord `json:"contests"`
}

// Harvested reports whether the snapshot carries a usable harvest date.
// Legacy files and hand-edited stamps that do not start with a date count
// as never harvested.
func (s Snapshot) Harvested() bool {
	_, ok := harvestedDay(s.LastHarvested)
	return ok
}

// IsStale is true unless the snapshot was harvested on now's calendar day
func IsStale(snap Snapshot, now time.Time) bool {
	day, ok := harvestedDay(snap.LastHarvested)
	if !ok {
		return true
	}
	return day != now.Format(DateLayout)
}

func harvestedDay(stamp string) (string, bool) {
	if len(stamp) < len(DateLayout) {
		return "", false
	}
	day := stamp[:len(DateLayout)]
	if _, err := time.Parse(DateLayout, day); err != nil {
		return "", false
	}
	return day, true
}

// Store owns the snapshot file of one source
type Store struct {
	source string
	path   string
	now    func() time.Time
	log    *logger.Logger
}

// NewStore creates a store for the snapshot file at path
func NewStore(source, path string) *Store {
	return &Store{
		source: source,
		path:   path,
		now:    time.Now,
		log:    logger.ForStore(source),
	}
}

// WithClock replaces the clock used for stamps and staleness
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Source returns the source key
func (s *Store) Source() string {
	return s.source
}

// Path returns the snapshot file path
func (s *Store) Path() string {
	return s.path
}

// Load reads the snapshot. A missing or unreadable file yields an empty,
// never-harvested snapshot.
func (s *Store) Load() Snapshot {
	empty := Snapshot{Records: []crawler.ListingRecord{}}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Warn().Str("path", s.path).Msg("Snapshot not found, run the harvester")
		return empty
	}
	if err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("Failed to read snapshot")
		return empty
	}

	snap, err := decodeSnapshot(data)
	if err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("Failed to parse snapshot")
		return empty
	}
	return snap
}

// Save replaces the snapshot with records stamped with the current time.
// The file is written to a temporary sibling and renamed into place.
func (s *Store) Save(records []crawler.ListingRecord) (Snapshot, error) {
	if records == nil {
		records = []crawler.ListingRecord{}
	}
	snap := Snapshot{
		LastHarvested: s.now().Format(TimestampLayout),
		Records:       records,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return Snapshot{}, apperrors.NewPersistence(s.source, "failed to encode snapshot", err)
	}

	if err := writeFileAtomic(s.path, buf.Bytes()); err != nil {
		return Snapshot{}, apperrors.NewPersistence(s.source, "failed to write "+s.path, err)
	}

	s.log.Info().
		Str("path", s.path).
		Int("records", len(records)).
		Str("last_scraped", snap.LastHarvested).
		Msg("Snapshot saved")
	return snap, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// storedRecord also accepts the older competition keys Ages and Categories.
type storedRecord struct {
	crawler.ListingRecord
	Ages       *string `json:"Ages"`
	Categories *string `json:"Categories"`
}

func (r storedRecord) record() crawler.ListingRecord {
	rec := r.ListingRecord
	if rec.Target == "" && r.Ages != nil {
		rec.Target = *r.Ages
	}
	if rec.Category == "" && r.Categories != nil {
		rec.Category = *r.Categories
	}
	return rec
}

// decodeSnapshot accepts the wrapper object and the legacy bare array.
func decodeSnapshot(data []byte) (Snapshot, error) {
	var raw struct {
		LastHarvested string         `json:"last_scraped"`
		Records       []storedRecord `json:"contests"`
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raw.Records); err != nil {
			return Snapshot{}, err
		}
	} else if err := json.Unmarshal(trimmed, &raw); err != nil {
		return Snapshot{}, err
	}

	records := make([]crawler.ListingRecord, 0, len(raw.Records))
	for _, r := range raw.Records {
		records = append(records, r.record())
	}
	return Snapshot{LastHarvested: raw.LastHarvested, Records: records}, nil
}
