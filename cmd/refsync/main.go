// Command refsync maintains the instrument master: full refreshes from an
// issue list export, incremental IPO additions from the public listing
// calendar, and API id assignment for polling accounts.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/kabudata/tachibana-adapter/internal/refdata"
	"github.com/kabudata/tachibana-adapter/internal/store"
	"github.com/kabudata/tachibana-adapter/pkg/config"
	"github.com/kabudata/tachibana-adapter/pkg/logger"
	"github.com/kabudata/tachibana-adapter/pkg/utils"
)

func main() {
	masterPath := flag.String("master", "", "issue list CSV; refreshes the full instrument master")
	listings := flag.Bool("listings", false, "sync new IPO listings from the calendar page")
	assign := flag.Bool("assign", false, "assign API_ID to the configured TARGET_CODES")
	flag.Parse()

	if *masterPath == "" && !*listings && !*assign {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger.Init(cfg.ServiceName+"-refsync", cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	log := logger.L()

	log.Info("refsync.connecting_store", zap.String("dsn", utils.MaskDSN(cfg.DatabaseURL)))
	st, err := store.NewHybrid(ctx, log, cfg.DatabaseURL, "", 0)
	if err != nil {
		log.Fatal("refsync.store_unavailable", zap.Error(err))
	}
	defer st.Close()
	if err := st.EnsureSchema(ctx); err != nil {
		log.Fatal("refsync.schema_failed", zap.Error(err))
	}

	syncer := refdata.NewSyncer(log, st)

	if *masterPath != "" {
		n, err := syncer.RefreshMaster(ctx, refdata.FileMasterSource{Path: *masterPath})
		if err != nil {
			log.Fatal("refsync.master_refresh_failed", zap.Error(err))
		}
		log.Info("refsync.master_refreshed", zap.Int("instruments", n))
	}

	if *listings {
		n, err := syncer.SyncNewListings(ctx, refdata.HTTPListingSource{URL: cfg.ListingURL})
		if err != nil {
			log.Fatal("refsync.listing_sync_failed", zap.Error(err))
		}
		log.Info("refsync.listings_synced", zap.Int("added", n))
	}

	if *assign {
		if len(cfg.TargetCodes) == 0 {
			log.Fatal("refsync.assign_requires_target_codes")
		}
		if err := st.AssignAPIID(ctx, cfg.TargetCodes, cfg.APIID); err != nil {
			log.Fatal("refsync.assign_failed", zap.Error(err))
		}
		log.Info("refsync.api_id_assigned",
			zap.String("api_id", cfg.APIID),
			zap.Int("codes", len(cfg.TargetCodes)))
	}
}
