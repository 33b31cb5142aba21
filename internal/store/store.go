package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/hostelgate/hostelgate/internal/domain"
)

// Store owns the identity registry and the entry/exit log. Every operation
// runs its whole read-modify-persist sequence under one mutex, which gives
// linearizable semantics at the expected scale (one UI caller, one
// recognition worker, one capture loop). Mutations persist the full data set
// to the file before returning.
type Store struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger

	identities []domain.Identity
	logs       []domain.LogEntry
}

type diskIdentity struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	Hostel    string    `json:"hostel"`
	Room      string    `json:"room"`
	Contact   string    `json:"contact"`
	Embedding string    `json:"embedding"`
	CreatedAt time.Time `json:"created_at"`
}

type diskFile struct {
	Identities []diskIdentity    `json:"identities"`
	Logs       []domain.LogEntry `json:"logs"`
}

// Open loads the store from path. A missing file starts empty; a malformed
// one also starts empty, with a warning, rather than failing the process.
func Open(path string, logger *slog.Logger) (*Store, error) {
	s := &Store{path: path, logger: logger}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		s.logger.Warn("could not read data file, starting empty", "path", path, "error", err)
		return s, nil
	}

	var file diskFile
	if err := json.Unmarshal(raw, &file); err != nil {
		s.logger.Warn("data file is malformed, starting empty", "path", path, "error", err)
		return s, nil
	}

	for _, d := range file.Identities {
		vec, err := decodeEmbedding(d.Embedding)
		if err != nil {
			s.logger.Warn("data file is malformed, starting empty",
				"path", path, "identity_id", d.ID, "error", err)
			return &Store{path: path, logger: logger}, nil
		}
		s.identities = append(s.identities, domain.Identity{
			ID:        d.ID,
			Key:       d.Key,
			Name:      d.Name,
			Hostel:    d.Hostel,
			Room:      d.Room,
			Contact:   d.Contact,
			Embedding: vec,
			CreatedAt: d.CreatedAt,
		})
	}
	s.logs = file.Logs

	return s, nil
}

// Add registers a new identity. The ID is assigned as max(existing)+1 and the
// whole store is persisted before returning. A duplicate key mutates nothing.
func (s *Store) Add(identity *domain.Identity) error {
	if err := identity.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.identities {
		if existing.Key == identity.Key {
			return domain.ErrDuplicateKey
		}
	}

	identity.ID = s.nextIdentityID()
	if identity.CreatedAt.IsZero() {
		identity.CreatedAt = time.Now()
	}

	s.identities = append(s.identities, cloneIdentity(*identity))

	return s.persist()
}

// Get looks an identity up by its numeric ID. Absence is not an error.
func (s *Store) Get(id int64) (*domain.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, identity := range s.identities {
		if identity.ID == id {
			out := cloneIdentity(identity)
			return &out, true
		}
	}
	return nil, false
}

// GetByKey looks an identity up by its roll number.
func (s *Store) GetByKey(key string) (*domain.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, identity := range s.identities {
		if identity.Key == key {
			out := cloneIdentity(identity)
			return &out, true
		}
	}
	return nil, false
}

// List returns all identities ordered by ID.
func (s *Store) List() []domain.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Identity, 0, len(s.identities))
	for _, identity := range s.identities {
		out = append(out, cloneIdentity(identity))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Catalog returns a point-in-time copy of every identity's embedding, keyed
// by ID. The copy is safe to read without holding any lock; it goes stale
// until the caller reloads after the next registration.
func (s *Store) Catalog() map[int64][]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	catalog := make(map[int64][]float64, len(s.identities))
	for _, identity := range s.identities {
		vec := make([]float64, len(identity.Embedding))
		copy(vec, identity.Embedding)
		catalog[identity.ID] = vec
	}
	return catalog
}

// Log appends an entry/exit record for the identity, denormalizing its
// profile fields into the entry so the audit trail survives later edits and
// deletes. Logging against an unknown ID is a coordination bug and fails
// loudly.
func (s *Store) Log(identityID int64, action domain.Action) (*domain.LogEntry, error) {
	if _, err := domain.ParseAction(string(action)); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var identity *domain.Identity
	for i := range s.identities {
		if s.identities[i].ID == identityID {
			identity = &s.identities[i]
			break
		}
	}
	if identity == nil {
		return nil, domain.ErrIdentityNotFound.WithError(fmt.Errorf("identity %d", identityID))
	}

	entry := domain.LogEntry{
		ID:         s.nextLogID(),
		IdentityID: identityID,
		Name:       identity.Name,
		Key:        identity.Key,
		Hostel:     identity.Hostel,
		Room:       identity.Room,
		Action:     action,
		Timestamp:  time.Now(),
	}
	s.logs = append(s.logs, entry)

	if err := s.persist(); err != nil {
		return nil, err
	}
	out := entry
	return &out, nil
}

// LogsFor returns the identity's entries, newest first, truncated to limit.
func (s *Store) LogsFor(identityID int64, limit int) []domain.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.LogEntry
	for _, entry := range s.logs {
		if entry.IdentityID == identityID {
			out = append(out, entry)
		}
	}
	return sortAndTruncate(out, limit)
}

// LogsAll returns entries across all identities, newest first.
func (s *Store) LogsAll(limit int) []domain.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.LogEntry, len(s.logs))
	copy(out, s.logs)
	return sortAndTruncate(out, limit)
}

// Delete removes the identity and cascades to its log entries. Deleting an
// unknown ID is a no-op.
func (s *Store) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.identities[:0]
	removed := false
	for _, identity := range s.identities {
		if identity.ID == id {
			removed = true
			continue
		}
		kept = append(kept, identity)
	}
	if !removed {
		return nil
	}
	s.identities = kept

	keptLogs := s.logs[:0]
	for _, entry := range s.logs {
		if entry.IdentityID != id {
			keptLogs = append(keptLogs, entry)
		}
	}
	s.logs = keptLogs

	return s.persist()
}

// Close persists once more so an in-flight mutation is never the last word.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist()
}

// persist writes the full data set to the file. Callers must hold s.mu.
// The write goes to a temp file first and is renamed into place so a crash
// mid-write cannot leave a truncated document behind.
func (s *Store) persist() error {
	file := diskFile{
		Identities: make([]diskIdentity, 0, len(s.identities)),
		Logs:       s.logs,
	}
	for _, identity := range s.identities {
		file.Identities = append(file.Identities, diskIdentity{
			ID:        identity.ID,
			Key:       identity.Key,
			Name:      identity.Name,
			Hostel:    identity.Hostel,
			Room:      identity.Room,
			Contact:   identity.Contact,
			Embedding: encodeEmbedding(identity.Embedding),
			CreatedAt: identity.CreatedAt,
		})
	}

	raw, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal data file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".hostelgate-*.json")
	if err != nil {
		return fmt.Errorf("persist data file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("persist data file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("persist data file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("persist data file: %w", err)
	}
	return nil
}

func (s *Store) nextIdentityID() int64 {
	var max int64
	for _, identity := range s.identities {
		if identity.ID > max {
			max = identity.ID
		}
	}
	return max + 1
}

func (s *Store) nextLogID() int64 {
	var max int64
	for _, entry := range s.logs {
		if entry.ID > max {
			max = entry.ID
		}
	}
	return max + 1
}

func cloneIdentity(identity domain.Identity) domain.Identity {
	vec := make([]float64, len(identity.Embedding))
	copy(vec, identity.Embedding)
	identity.Embedding = vec
	return identity
}

func sortAndTruncate(entries []domain.LogEntry, limit int) []domain.LogEntry {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].ID > entries[j].ID
		}
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
