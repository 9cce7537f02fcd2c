package binding

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"restui/internal/logger"
	"restui/internal/store"
	"restui/internal/transaction"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// HistoryBinding provides frontend bindings for saved transactions
type HistoryBinding struct {
	ctx   context.Context
	store *store.Store
	log   logger.Logger
	now   func() time.Time
}

// NewHistoryBinding creates a new HistoryBinding instance
func NewHistoryBinding(s *store.Store, log logger.Logger) *HistoryBinding {
	if log == nil {
		log = logger.NewNop()
	}
	return &HistoryBinding{
		store: s,
		log:   log.With("binding", "history"),
		now:   time.Now,
	}
}

// SetContext sets the Wails runtime context
func (h *HistoryBinding) SetContext(ctx context.Context) {
	h.ctx = ctx
}

// SaveTransaction appends snap to the history. A missing id or timestamp is
// filled in.
func (h *HistoryBinding) SaveTransaction(snap transaction.Snapshot) (*transaction.Snapshot, error) {
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if snap.Timestamp == "" {
		snap.Timestamp = h.now().UTC().Format(time.RFC3339)
	}
	h.log.Info("Saving transaction", "id", snap.ID)

	if err := h.store.Append(snap); err != nil {
		h.log.Error("Failed to save transaction", "id", snap.ID, "error", err)
		return nil, err
	}
	return &snap, nil
}

// ListTransactions returns all saved transactions in insertion order
func (h *HistoryBinding) ListTransactions() []transaction.Snapshot {
	return h.store.List()
}

// GetTransaction loads a transaction by id
func (h *HistoryBinding) GetTransaction(id string) (*transaction.Snapshot, error) {
	snap, ok := h.store.Get(id)
	if !ok {
		return nil, ErrTransactionNotFound
	}
	return &snap, nil
}

// DeleteTransaction removes a transaction. Unknown ids are ignored.
func (h *HistoryBinding) DeleteTransaction(id string) error {
	h.log.Info("Deleting transaction", "id", id)
	if err := h.store.Delete(id); err != nil {
		h.log.Error("Failed to delete transaction", "id", id, "error", err)
		return err
	}
	return nil
}

// TransactionPaths returns the path rows of one transaction
func (h *HistoryBinding) TransactionPaths(id string) ([]transaction.PathRow, error) {
	snap, ok := h.store.Get(id)
	if !ok {
		return nil, ErrTransactionNotFound
	}
	return transaction.ReconstructPathsWith(&snap, h.logUnresolved(id)), nil
}

// HistoryRows returns the path rows of every saved transaction
func (h *HistoryBinding) HistoryRows() []transaction.PathRow {
	snaps := h.store.List()
	rows := make([]transaction.PathRow, 0, len(snaps))
	for i := range snaps {
		rows = append(rows, transaction.ReconstructPathsWith(&snaps[i], h.logUnresolved(snaps[i].ID))...)
	}
	return rows
}

func (h *HistoryBinding) logUnresolved(txID string) transaction.UnresolvedFunc {
	return func(edgeID, endpointID string) {
		h.log.Debug("Edge endpoint not in selection", "transactionId", txID, "edgeId", edgeID, "nodeId", endpointID)
	}
}
