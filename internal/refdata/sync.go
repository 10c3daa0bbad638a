package refdata

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kabudata/tachibana-adapter/internal/store"
)

// Syncer keeps the instrument master aligned with the exchange: full
// refreshes from the issue list and incremental additions from the IPO
// calendar.
type Syncer struct {
	logger *zap.Logger
	store  store.Store
}

func NewSyncer(logger *zap.Logger, st store.Store) *Syncer {
	return &Syncer{logger: logger, store: st}
}

// RefreshMaster upserts the full universe from src. Descriptive fields are
// overwritten; API id assignments are preserved.
func (s *Syncer) RefreshMaster(ctx context.Context, src MasterSource) (int, error) {
	ins, err := src.Instruments(ctx)
	if err != nil {
		return 0, fmt.Errorf("load master source: %w", err)
	}
	if len(ins) == 0 {
		return 0, fmt.Errorf("master source returned no instruments")
	}
	if err := s.store.UpsertInstruments(ctx, ins); err != nil {
		return 0, err
	}
	s.logger.Info("refdata.master_refreshed", zap.Int("instruments", len(ins)))
	return len(ins), nil
}

// SyncNewListings adds IPO rows not yet present in the master. Existing rows
// are never modified by this path.
func (s *Syncer) SyncNewListings(ctx context.Context, src ListingSource) (int, error) {
	ins, err := src.Listings(ctx)
	if err != nil {
		return 0, fmt.Errorf("load listing source: %w", err)
	}
	if len(ins) == 0 {
		s.logger.Info("refdata.no_new_listings")
		return 0, nil
	}
	added, err := s.store.InsertMissingInstruments(ctx, ins)
	if err != nil {
		return 0, err
	}
	s.logger.Info("refdata.listings_synced",
		zap.Int("candidates", len(ins)),
		zap.Int("added", added))
	return added, nil
}
