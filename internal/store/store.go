package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kabudata/tachibana-adapter/pkg/model"
)

const latestQuoteTTL = 24 * time.Hour

var (
	// ErrNoAPIID means an instrument lookup was attempted without an API id.
	ErrNoAPIID = errors.New("store: api id is empty")
	// ErrNoMatchingCodes means no instrument rows carry the given API id.
	ErrNoMatchingCodes = errors.New("store: no codes match api id")
	// ErrCacheDisabled is returned by cache reads when redis is not configured.
	ErrCacheDisabled = errors.New("store: quote cache disabled")
)

// StorageError wraps a database failure with the operation that hit it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("store: %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// Store is the persistence surface: the append-only snapshot table, the
// instrument master and a best-effort latest-quote cache.
type Store interface {
	EnsureSchema(ctx context.Context) error
	InsertSnapshots(ctx context.Context, snaps []model.QuoteSnapshot) error
	UpsertInstruments(ctx context.Context, ins []model.Instrument) error
	InsertMissingInstruments(ctx context.Context, ins []model.Instrument) (int, error)
	CodesByAPIID(ctx context.Context, apiID string) ([]string, error)
	AssignAPIID(ctx context.Context, codes []string, apiID string) error
	LatestSnapshot(ctx context.Context, code string) (*model.QuoteSnapshot, error)
	HealthCheck(ctx context.Context) error
	Close()
}

// hybrid keeps postgres as the system of record and redis as a best-effort
// latest-quote cache. Cache failures are logged and never fail a write.
type hybrid struct {
	logger *zap.Logger
	pg     *pgxpool.Pool
	rdb    *redis.Client
}

// NewHybrid connects to postgres and, when redisAddr is non-empty, to redis.
func NewHybrid(ctx context.Context, logger *zap.Logger, pgURL, redisAddr string, redisDB int) (Store, error) {
	pool, err := pgxpool.New(ctx, pgURL)
	if err != nil {
		return nil, &StorageError{Op: "connect", Err: err}
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &StorageError{Op: "ping", Err: err}
	}

	var rdb *redis.Client
	if redisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: redisAddr, DB: redisDB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("store.redis_unavailable", zap.String("addr", redisAddr), zap.Error(err))
			rdb = nil
		}
	}

	return &hybrid{logger: logger, pg: pool, rdb: rdb}, nil
}

func (s *hybrid) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{createItaTableSQL, createMasterTableSQL} {
		if _, err := s.pg.Exec(ctx, stmt); err != nil {
			return &StorageError{Op: "ensure_schema", Err: err}
		}
	}
	return nil
}

var insertSnapshotSQL = buildInsertSnapshotSQL()

func buildInsertSnapshotSQL() string {
	ph := make([]string, len(snapshotColumns))
	for i := range snapshotColumns {
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO ita_table (%s) VALUES (%s)",
		strings.Join(snapshotColumns, ", "), strings.Join(ph, ", "))
}

func num(n model.Numeric) any {
	if !n.Valid {
		return nil
	}
	return n.Decimal
}

func txt(s model.NullString) any {
	if !s.Valid {
		return nil
	}
	return s.String
}

func snapshotArgs(s *model.QuoteSnapshot) []any {
	return []any{
		s.IssueCode,
		num(s.LastPrice), num(s.Volume), num(s.PrevClose), num(s.Open), num(s.High), num(s.Low), num(s.VWAP),
		num(s.AskPrice), txt(s.AskType), num(s.BidPrice), txt(s.BidType),
		num(s.MarketSellVol), num(s.MarketBuyVol), num(s.OverVol), num(s.UnderVol),
		num(s.AskPrice10), num(s.AskPrice9), num(s.AskPrice8), num(s.AskPrice7), num(s.AskPrice6),
		num(s.AskPrice5), num(s.AskPrice4), num(s.AskPrice3), num(s.AskPrice2), num(s.AskPrice1),
		num(s.BidPrice10), num(s.BidPrice9), num(s.BidPrice8), num(s.BidPrice7), num(s.BidPrice6),
		num(s.BidPrice5), num(s.BidPrice4), num(s.BidPrice3), num(s.BidPrice2), num(s.BidPrice1),
		num(s.AskSize10), num(s.AskSize9), num(s.AskSize8), num(s.AskSize7), num(s.AskSize6),
		num(s.AskSize5), num(s.AskSize4), num(s.AskSize3), num(s.AskSize2), num(s.AskSize1),
		num(s.BidSize10), num(s.BidSize9), num(s.BidSize8), num(s.BidSize7), num(s.BidSize6),
		num(s.BidSize5), num(s.BidSize4), num(s.BidSize3), num(s.BidSize2), num(s.BidSize1),
		s.CreatedAt,
	}
}

// InsertSnapshots writes one poll cycle as a single transaction. Either the
// whole batch lands or none of it does. On success the latest quote per code
// is mirrored into redis.
func (s *hybrid) InsertSnapshots(ctx context.Context, snaps []model.QuoteSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	tx, err := s.pg.Begin(ctx)
	if err != nil {
		return &StorageError{Op: "insert_snapshots.begin", Err: err}
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for i := range snaps {
		batch.Queue(insertSnapshotSQL, snapshotArgs(&snaps[i])...)
	}
	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for range snaps {
		if _, err := br.Exec(); err != nil && batchErr == nil {
			batchErr = err
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = err
	}
	if batchErr != nil {
		return &StorageError{Op: "insert_snapshots", Err: batchErr}
	}
	if err := tx.Commit(ctx); err != nil {
		return &StorageError{Op: "insert_snapshots.commit", Err: err}
	}

	s.cacheLatest(ctx, snaps)
	return nil
}

func quoteKey(code string) string { return "quote:last:" + code }

func (s *hybrid) cacheLatest(ctx context.Context, snaps []model.QuoteSnapshot) {
	if s.rdb == nil {
		return
	}
	pipe := s.rdb.Pipeline()
	for i := range snaps {
		data, err := json.Marshal(&snaps[i])
		if err != nil {
			continue
		}
		pipe.Set(ctx, quoteKey(snaps[i].IssueCode), data, latestQuoteTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Debug("store.cache_latest_failed", zap.Error(err))
	}
}

// LatestSnapshot reads the most recent quote for code from the cache.
func (s *hybrid) LatestSnapshot(ctx context.Context, code string) (*model.QuoteSnapshot, error) {
	if s.rdb == nil {
		return nil, ErrCacheDisabled
	}
	data, err := s.rdb.Get(ctx, quoteKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, &StorageError{Op: "latest_snapshot", Err: err}
	}
	var snap model.QuoteSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, &StorageError{Op: "latest_snapshot.decode", Err: err}
	}
	return &snap, nil
}

const upsertInstrumentSQL = `
INSERT INTO master_stock_table (
	code, name, market_product_category,
	sector33_code, sector33_category, sector17_code, sector17_category,
	scale_code, scale_category
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (code) DO UPDATE SET
	name = EXCLUDED.name,
	market_product_category = EXCLUDED.market_product_category,
	sector33_code = EXCLUDED.sector33_code,
	sector33_category = EXCLUDED.sector33_category,
	sector17_code = EXCLUDED.sector17_code,
	sector17_category = EXCLUDED.sector17_category,
	scale_code = EXCLUDED.scale_code,
	scale_category = EXCLUDED.scale_category`

// UpsertInstruments refreshes descriptive master data. api_id is never
// touched here; assignments survive a refresh.
func (s *hybrid) UpsertInstruments(ctx context.Context, ins []model.Instrument) error {
	if len(ins) == 0 {
		return nil
	}
	tx, err := s.pg.Begin(ctx)
	if err != nil {
		return &StorageError{Op: "upsert_instruments.begin", Err: err}
	}
	defer tx.Rollback(ctx)

	for i := range ins {
		in := &ins[i]
		if _, err := tx.Exec(ctx, upsertInstrumentSQL,
			in.Code, in.Name, in.Segment,
			in.Sector33Code, in.Sector33Category, in.Sector17Code, in.Sector17Category,
			in.ScaleCode, in.ScaleCategory,
		); err != nil {
			return &StorageError{Op: "upsert_instruments", Err: err}
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return &StorageError{Op: "upsert_instruments.commit", Err: err}
	}
	s.logger.Info("store.pg.instruments_upserted", zap.Int("count", len(ins)))
	return nil
}

// missingInstruments filters candidates down to codes absent from existing.
func missingInstruments(existing map[string]struct{}, candidates []model.Instrument) []model.Instrument {
	out := make([]model.Instrument, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := existing[c.Code]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// InsertMissingInstruments adds candidates whose codes are not yet in the
// master. Only code, name and segment are written; existing rows are left
// untouched. Returns the number of rows added.
func (s *hybrid) InsertMissingInstruments(ctx context.Context, ins []model.Instrument) (int, error) {
	rows, err := s.pg.Query(ctx, "SELECT code FROM master_stock_table")
	if err != nil {
		return 0, &StorageError{Op: "insert_missing.select", Err: err}
	}
	existing := make(map[string]struct{})
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			rows.Close()
			return 0, &StorageError{Op: "insert_missing.scan", Err: err}
		}
		existing[code] = struct{}{}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, &StorageError{Op: "insert_missing.select", Err: err}
	}

	missing := missingInstruments(existing, ins)
	if len(missing) == 0 {
		return 0, nil
	}

	added := 0
	for i := range missing {
		in := &missing[i]
		tag, err := s.pg.Exec(ctx,
			`INSERT INTO master_stock_table (code, name, market_product_category)
			 VALUES ($1, $2, $3) ON CONFLICT (code) DO NOTHING`,
			in.Code, in.Name, in.Segment)
		if err != nil {
			return added, &StorageError{Op: "insert_missing", Err: err}
		}
		added += int(tag.RowsAffected())
	}
	s.logger.Info("store.pg.instruments_added", zap.Int("count", added))
	return added, nil
}

// CodesByAPIID lists the instrument codes assigned to one API account.
func (s *hybrid) CodesByAPIID(ctx context.Context, apiID string) ([]string, error) {
	if apiID == "" {
		return nil, ErrNoAPIID
	}
	rows, err := s.pg.Query(ctx,
		"SELECT code FROM master_stock_table WHERE api_id = $1 ORDER BY code", apiID)
	if err != nil {
		return nil, &StorageError{Op: "codes_by_api_id", Err: err}
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, &StorageError{Op: "codes_by_api_id.scan", Err: err}
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "codes_by_api_id", Err: err}
	}
	if len(codes) == 0 {
		return nil, ErrNoMatchingCodes
	}
	return codes, nil
}

func (s *hybrid) AssignAPIID(ctx context.Context, codes []string, apiID string) error {
	if apiID == "" {
		return ErrNoAPIID
	}
	if len(codes) == 0 {
		return nil
	}
	tag, err := s.pg.Exec(ctx,
		"UPDATE master_stock_table SET api_id = $1 WHERE code = ANY($2)", apiID, codes)
	if err != nil {
		return &StorageError{Op: "assign_api_id", Err: err}
	}
	s.logger.Info("store.pg.api_id_assigned",
		zap.String("api_id", apiID),
		zap.Int64("rows", tag.RowsAffected()))
	return nil
}

func (s *hybrid) HealthCheck(ctx context.Context) error {
	if err := s.pg.Ping(ctx); err != nil {
		return &StorageError{Op: "health.pg", Err: err}
	}
	if s.rdb != nil {
		if err := s.rdb.Ping(ctx).Err(); err != nil {
			return &StorageError{Op: "health.redis", Err: err}
		}
	}
	return nil
}

func (s *hybrid) Close() {
	s.pg.Close()
	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			s.logger.Warn("store.redis_close_failed", zap.Error(err))
		}
	}
}
