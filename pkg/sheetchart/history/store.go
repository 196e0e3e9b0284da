// Package history keeps the append-only log of past uploads.
package history

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ukaji3/sheetchart-go/pkg/sheetchart"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/codec"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/models"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/parser"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/storage"
)

// StorageKey is the single key the whole history is stored under.
const StorageKey = "fileHistory"

// Options configures a Store.
type Options struct {
	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
	// Location defines calendar days for filtering. Defaults to time.Local.
	Location *time.Location
	// Logger receives load and persist warnings.
	Logger sheetchart.Logger
	// OnChange is called with a snapshot after every committed mutation.
	// It runs while the store is locked and must not call back into the store.
	OnChange func([]models.HistoryEntry)
}

// Listed pairs an entry with its position in the unfiltered store.
type Listed struct {
	Entry models.HistoryEntry `json:"entry"`
	Index int                 `json:"index"`
}

// Store is the upload history. Every mutation rewrites the full sequence.
type Store struct {
	mu      sync.Mutex
	storage storage.Storage
	entries []models.HistoryEntry
	opts    Options
}

// Open loads the history from s. A missing key gives an empty store; an
// unreadable or malformed value is logged and also gives an empty store.
func Open(s storage.Storage, opts Options) *Store {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = sheetchart.NopLogger{}
	}

	st := &Store{storage: s, opts: opts}
	entries, err := st.load()
	if err != nil {
		opts.Logger.Printf("[WARN] history: starting empty: %v", err)
		entries = nil
	}
	st.entries = entries
	return st
}

func (s *Store) load() ([]models.HistoryEntry, error) {
	data, ok, err := s.storage.Get(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", sheetchart.ErrStorage, err)
	}
	if !ok {
		return nil, nil
	}
	var entries []models.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", sheetchart.ErrStorage, err)
	}
	return entries, nil
}

// commit persists next and, on success, makes it the in-memory state.
// Callers must hold s.mu.
func (s *Store) commit(next []models.HistoryEntry) error {
	var err error
	if len(next) == 0 {
		err = s.storage.Delete(StorageKey)
	} else {
		var data []byte
		data, err = json.Marshal(next)
		if err == nil {
			err = s.storage.Put(StorageKey, data)
		}
	}
	if err != nil {
		return fmt.Errorf("%w: write: %v", sheetchart.ErrStorage, err)
	}

	s.entries = next
	if s.opts.OnChange != nil {
		s.opts.OnChange(s.snapshot())
	}
	return nil
}

func (s *Store) snapshot() []models.HistoryEntry {
	out := make([]models.HistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Append records a new upload at the tail. Repeated names are not merged.
func (s *Store) Append(name, payload string) (models.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := models.HistoryEntry{
		Name:    name,
		Date:    s.opts.Clock().Truncate(time.Millisecond),
		Payload: payload,
	}
	next := make([]models.HistoryEntry, len(s.entries), len(s.entries)+1)
	copy(next, s.entries)
	next = append(next, entry)

	if err := s.commit(next); err != nil {
		return models.HistoryEntry{}, err
	}
	return entry, nil
}

// List returns the entries matching filter and term, relative to the
// current time, in stored order.
func (s *Store) List(filter Filter, term string) []Listed {
	return s.ListAt(s.opts.Clock(), filter, term)
}

// ListAt is List with an explicit comparison time.
func (s *Store) ListAt(now time.Time, filter Filter, term string) []Listed {
	s.mu.Lock()
	defer s.mu.Unlock()

	match := nameMatcher(term)
	out := []Listed{}
	for i, e := range s.entries {
		if !filter.matches(e.Date, now, s.opts.Location) || !match(e.Name) {
			continue
		}
		out = append(out, Listed{Entry: e, Index: i})
	}
	return out
}

// DeleteAt removes the entry at index in the unfiltered store.
// An out of range index is a no-op.
func (s *Store) DeleteAt(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.entries) {
		return nil
	}
	next := make([]models.HistoryEntry, 0, len(s.entries)-1)
	next = append(next, s.entries[:index]...)
	next = append(next, s.entries[index+1:]...)
	return s.commit(next)
}

// ClearAll removes every entry.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(nil)
}

// Latest returns the most recently appended entry.
func (s *Store) Latest() (models.HistoryEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return models.HistoryEntry{}, false
	}
	return s.entries[len(s.entries)-1], true
}

// Get returns the entry at index.
func (s *Store) Get(index int) (models.HistoryEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.entries) {
		return models.HistoryEntry{}, false
	}
	return s.entries[index], true
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Entries returns a copy of all entries in stored order.
func (s *Store) Entries() []models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Reconstitute decodes and re-parses the entry at index.
func (s *Store) Reconstitute(index int, opts sheetchart.Options) (models.Table, error) {
	entry, ok := s.Get(index)
	if !ok {
		return models.Table{}, fmt.Errorf("history entry %d does not exist", index)
	}
	return Reconstitute(entry, opts)
}

// Reconstitute decodes and re-parses a single entry.
func Reconstitute(entry models.HistoryEntry, opts sheetchart.Options) (models.Table, error) {
	if !entry.Reloadable() {
		return models.Table{}, sheetchart.NewPipelineError("decode", entry.Name,
			sheetchart.DecodeErrorf("entry has no reloadable data"))
	}
	data, err := codec.Decode(entry.Payload)
	if err != nil {
		return models.Table{}, sheetchart.NewPipelineError("decode", entry.Name, err)
	}
	table, err := parser.ParseFile(entry.Name, data, opts)
	if err != nil {
		return models.Table{}, sheetchart.NewPipelineError("parse", entry.Name, err)
	}
	return table, nil
}
