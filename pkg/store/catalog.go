package store

import (
	"fmt"
	"io"
	"os"
	"strings"

	json "github.com/goccy/go-json"
)

// Record is one product catalog entry. Missing fields default to their zero
// values at load time rather than failing the load: a missing stock is 0 and
// a missing price is nil (unknown, neutral for price rules).
type Record struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    *float64 `json:"price"`
	Stock    int      `json:"stock"`
	Category string   `json:"category"`
	Brand    string   `json:"brand"`
	Tags     []string `json:"tags"`
}

// Snapshot is an immutable, ordered product catalog. It is built once and
// shared read-only; stock edits happen by building a new Snapshot.
type Snapshot struct {
	records []Record
	byID    map[string]int
}

// NewSnapshot builds a snapshot over records, preserving their order. When
// an id appears twice the first record wins for id lookups.
func NewSnapshot(records []Record) *Snapshot {
	s := &Snapshot{
		records: records,
		byID:    make(map[string]int, len(records)),
	}
	for i, r := range records {
		if _, ok := s.byID[r.ID]; !ok {
			s.byID[r.ID] = i
		}
	}
	return s
}

// ReadCatalog parses a JSON array of catalog records from r. A UTF-8 BOM at
// the start of the stream is tolerated; an unparsable record fails the whole
// load (malformed input is fatal for the snapshot build).
func ReadCatalog(r io.Reader) (*Snapshot, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(stripBOM(raw), &records); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return NewSnapshot(records), nil
}

// LoadCatalogFile reads a catalog JSON file from disk.
func LoadCatalogFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()
	return ReadCatalog(f)
}

// Len returns the number of records in the snapshot.
func (s *Snapshot) Len() int { return len(s.records) }

// Records returns the catalog records in load order. Callers must not
// modify the returned slice.
func (s *Snapshot) Records() []Record { return s.records }

// Record returns the catalog record for an id.
func (s *Snapshot) Record(id string) (Record, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Record{}, false
	}
	return s.records[i], true
}

// Resolve maps a user query to a product id. Names are tried first with a
// case-insensitive substring match in catalog order (first match wins), then
// the query is tried as an exact product id.
func (s *Snapshot) Resolve(query string) (string, bool) {
	if query == "" {
		return "", false
	}
	q := strings.ToLower(query)
	for _, r := range s.records {
		if r.Name != "" && strings.Contains(strings.ToLower(r.Name), q) {
			return r.ID, true
		}
	}
	if _, ok := s.byID[query]; ok {
		return query, true
	}
	return "", false
}
