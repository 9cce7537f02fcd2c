package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"restui/internal/config"
	"restui/internal/logger"
	"restui/internal/transaction"
)

// Store is a view over the snapshot collection held by a Backend.
// Several stores may share one Backend and one ChangeBus.
type Store struct {
	mu      sync.Mutex
	backend Backend
	key     string
	bus     *ChangeBus
	log     logger.Logger
}

// Option configures a Store
type Option func(*Store)

// WithCollectionKey sets the logical key the collection is stored under
func WithCollectionKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithNotifier attaches the store to a shared ChangeBus
func WithNotifier(bus *ChangeBus) Option {
	return func(s *Store) {
		if bus != nil {
			s.bus = bus
		}
	}
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a Store over backend
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		key:     config.DefaultCollectionKey,
		bus:     NewChangeBus(),
		log:     logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "store", "key", s.key)
	return s
}

// Key returns the collection key
func (s *Store) Key() string { return s.key }

// Bus returns the change bus this store publishes to
func (s *Store) Bus() *ChangeBus { return s.bus }

// Subscribe registers fn for change notifications on this store's bus
func (s *Store) Subscribe(fn func(ChangeEvent)) (unsubscribe func()) {
	return s.bus.Subscribe(fn)
}

// Append adds snap to the end of the collection
func (s *Store) Append(snap transaction.Snapshot) error {
	return s.AppendAll([]transaction.Snapshot{snap})
}

// AppendAll adds snaps to the end of the collection in one write. Nothing is
// stored when any snapshot is invalid or its id is already taken.
func (s *Store) AppendAll(snaps []transaction.Snapshot) error {
	for i := range snaps {
		if err := snaps[i].Validate(); err != nil {
			if len(snaps) == 1 {
				return err
			}
			return fmt.Errorf("snapshot %d: %w", i, err)
		}
	}

	s.mu.Lock()
	all, err := s.load()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	taken := make(map[string]struct{}, len(all)+len(snaps))
	for _, existing := range all {
		taken[existing.ID] = struct{}{}
	}
	for _, snap := range snaps {
		if _, dup := taken[snap.ID]; dup {
			s.mu.Unlock()
			s.log.Warn("Rejected duplicate transaction", "id", snap.ID)
			return &DuplicateIDError{ID: snap.ID}
		}
		taken[snap.ID] = struct{}{}
	}
	all = append(all, snaps...)
	if err := s.save(all); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.log.Debug("Appended transactions", "added", len(snaps), "count", len(all))
	s.publish()
	return nil
}

// List returns every snapshot in insertion order.
// An absent or malformed document yields an empty collection.
func (s *Store) List() []transaction.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		s.log.Error("Failed to load collection", "error", err)
		return []transaction.Snapshot{}
	}
	return all
}

// Get returns the snapshot with id
func (s *Store) Get(id string) (transaction.Snapshot, bool) {
	for _, snap := range s.List() {
		if snap.ID == id {
			return snap, true
		}
	}
	return transaction.Snapshot{}, false
}

// Delete removes the snapshot with id. Deleting an absent id is a no-op.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	all, err := s.load()
	if err != nil {
		s.mu.Unlock()
		return err
	}

	kept := make([]transaction.Snapshot, 0, len(all))
	for _, snap := range all {
		if snap.ID != id {
			kept = append(kept, snap)
		}
	}
	if len(kept) == len(all) {
		s.mu.Unlock()
		return nil
	}
	if err := s.save(kept); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.log.Debug("Deleted transaction", "id", id)
	s.publish()
	return nil
}

// Replace rewrites the whole collection with snapshots
func (s *Store) Replace(snapshots []transaction.Snapshot) error {
	seen := make(map[string]struct{}, len(snapshots))
	for i := range snapshots {
		if err := snapshots[i].Validate(); err != nil {
			return fmt.Errorf("snapshot %d: %w", i, err)
		}
		if _, dup := seen[snapshots[i].ID]; dup {
			return &DuplicateIDError{ID: snapshots[i].ID}
		}
		seen[snapshots[i].ID] = struct{}{}
	}

	s.mu.Lock()
	if err := s.save(snapshots); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.log.Info("Replaced collection", "count", len(snapshots))
	s.publish()
	return nil
}

// Close closes the underlying backend
func (s *Store) Close() error {
	return s.backend.Close()
}

// load reads the collection. Only backend failures are returned; a document
// that does not parse is logged and treated as empty.
func (s *Store) load() ([]transaction.Snapshot, error) {
	raw, err := s.backend.Load(s.key)
	if err != nil {
		return nil, fmt.Errorf("load collection: %w", err)
	}
	if len(raw) == 0 {
		return []transaction.Snapshot{}, nil
	}

	all, err := decodeCollection(raw)
	if err != nil {
		merr := &MalformedSnapshotError{Key: s.key, Err: err}
		s.log.Warn("Treating collection as empty", "error", merr)
		return []transaction.Snapshot{}, nil
	}
	return all, nil
}

func (s *Store) save(all []transaction.Snapshot) error {
	if all == nil {
		all = []transaction.Snapshot{}
	}
	doc, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}
	if err := s.backend.Save(s.key, doc); err != nil {
		return fmt.Errorf("save collection: %w", err)
	}
	return nil
}

func (s *Store) publish() {
	s.bus.Publish(ChangeEvent{Key: s.key})
}

func decodeCollection(raw []byte) ([]transaction.Snapshot, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}

	all := make([]transaction.Snapshot, 0, len(items))
	for i, item := range items {
		snap, err := transaction.ParseSnapshot(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		all = append(all, *snap)
	}
	return all, nil
}

// DecodeCollection parses an exported collection document
func DecodeCollection(raw []byte) ([]transaction.Snapshot, error) {
	all, err := decodeCollection(raw)
	if err != nil {
		return nil, errors.Join(ErrMalformedSnapshot, err)
	}
	return all, nil
}
