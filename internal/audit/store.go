package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	formfillErrors "formfill/internal/errors"
	"formfill/internal/types"

	"github.com/google/uuid"
)

// Record is one logged form field interaction. Each record lives in its own
// flat JSON file named "<unix-nano>-<uuid>.json" under the audit directory.
type Record struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Question  string            `json:"question"`
	Options   []string          `json:"options,omitempty"`
	FieldType string            `json:"fieldType,omitempty"`
	Answer    types.FieldAnswer `json:"answer"`
	Model     string            `json:"model,omitempty"`
	Duration  time.Duration     `json:"durationNs,omitempty"`
	Tokens    int64             `json:"totalTokens,omitempty"`
}

// Stats aggregates the stored records. Counts are computed on demand by
// walking the directory; there is no index to keep consistent.
type Stats struct {
	Total    int            `json:"total"`
	BySource map[string]int `json:"bySource"`
	ByAction map[string]int `json:"byAction"`
}

// Store persists interaction records as one JSON file per record.
type Store struct {
	dir     string
	enabled bool
	logger  *formfillErrors.Logger
}

// idPattern matches the filename stem this store generates. Anything else is
// rejected before touching the filesystem, which also blocks path traversal.
var idPattern = regexp.MustCompile(`^\d+-[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// NewStore creates the audit store and its directory. A disabled store is
// valid and turns Write into a no-op.
func NewStore(dir string, enabled bool, logger *formfillErrors.Logger) (*Store, error) {
	if enabled {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, formfillErrors.NewIOError(formfillErrors.ErrCodeLogWriteFailed,
				"Failed to create audit log directory", err).WithContext("dir", dir)
		}
	}
	return &Store{dir: dir, enabled: enabled, logger: logger}, nil
}

// Enabled reports whether records are being written.
func (s *Store) Enabled() bool {
	return s.enabled
}

// Write persists one record and returns its ID. Callers treat failures as
// best-effort: an answer is never withheld because its audit write failed.
func (s *Store) Write(record Record) (string, error) {
	if !s.enabled {
		return "", nil
	}

	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	record.ID = fmt.Sprintf("%d-%s", record.Timestamp.UnixNano(), uuid.NewString())

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", formfillErrors.NewIOError(formfillErrors.ErrCodeLogWriteFailed,
			"Failed to encode audit record", err)
	}

	path := filepath.Join(s.dir, record.ID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", formfillErrors.NewIOError(formfillErrors.ErrCodeLogWriteFailed,
			"Failed to write audit record", err).WithContext("path", path)
	}

	return record.ID, nil
}

// List reads every record in the directory, newest first, along with
// aggregate counts. Unreadable files are skipped with a warning rather than
// failing the whole listing.
func (s *Store) List() ([]Record, Stats, error) {
	stats := Stats{
		BySource: make(map[string]int),
		ByAction: make(map[string]int),
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Record{}, stats, nil
		}
		return nil, stats, formfillErrors.NewIOError(formfillErrors.ErrCodeFileNotReadable,
			"Failed to read audit log directory", err).WithContext("dir", s.dir)
	}

	records := make([]Record, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		if !idPattern.MatchString(id) {
			continue
		}

		record, err := s.readFile(id)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("Skipping unreadable audit record", "id", id, "error", err.Error())
			}
			continue
		}

		records = append(records, record)
		stats.Total++
		stats.BySource[string(record.Answer.Source)]++
		stats.ByAction[string(record.Answer.Action)]++
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].ID > records[j].ID
	})

	return records, stats, nil
}

// Count returns the aggregate counts without loading record bodies into the
// response.
func (s *Store) Count() (Stats, error) {
	_, stats, err := s.List()
	return stats, err
}

// Read returns a single record by ID.
func (s *Store) Read(id string) (Record, error) {
	if !idPattern.MatchString(id) {
		return Record{}, formfillErrors.NewValidationError(formfillErrors.ErrCodeInvalidRequest,
			"Invalid audit record ID", nil).WithContext("id", id)
	}
	record, err := s.readFile(id)
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, formfillErrors.NewIOError(formfillErrors.ErrCodeLogNotFound,
				"Audit record not found", err).WithContext("id", id)
		}
		return Record{}, formfillErrors.NewIOError(formfillErrors.ErrCodeFileNotReadable,
			"Failed to read audit record", err).WithContext("id", id)
	}
	return record, nil
}

// Delete removes a single record by ID.
func (s *Store) Delete(id string) error {
	if !idPattern.MatchString(id) {
		return formfillErrors.NewValidationError(formfillErrors.ErrCodeInvalidRequest,
			"Invalid audit record ID", nil).WithContext("id", id)
	}
	path := filepath.Join(s.dir, id+".json")
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return formfillErrors.NewIOError(formfillErrors.ErrCodeLogNotFound,
				"Audit record not found", err).WithContext("id", id)
		}
		return formfillErrors.NewIOError(formfillErrors.ErrCodeLogWriteFailed,
			"Failed to delete audit record", err).WithContext("id", id)
	}
	return nil
}

// DeleteAll removes every record in the directory and returns how many were
// deleted.
func (s *Store) DeleteAll() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, formfillErrors.NewIOError(formfillErrors.ErrCodeFileNotReadable,
			"Failed to read audit log directory", err).WithContext("dir", s.dir)
	}

	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		if !idPattern.MatchString(id) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return deleted, formfillErrors.NewIOError(formfillErrors.ErrCodeLogWriteFailed,
				"Failed to delete audit record", err).WithContext("id", id)
		}
		deleted++
	}
	return deleted, nil
}

func (s *Store) readFile(id string) (Record, error) {
	path := filepath.Join(s.dir, id+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, err
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return Record{}, err
	}
	if record.ID == "" {
		record.ID = id
	}
	return record, nil
}
