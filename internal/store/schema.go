package store

// ita_table is append-only; one row per issue per poll cycle.
const createItaTableSQL = `
CREATE TABLE IF NOT EXISTS ita_table (
	id BIGSERIAL PRIMARY KEY,
	code TEXT NOT NULL,
	dpp NUMERIC,
	dv NUMERIC,
	prp NUMERIC,
	dop NUMERIC,
	dhp NUMERIC,
	dlp NUMERIC,
	vwap NUMERIC,
	qap NUMERIC,
	qas TEXT,
	qbp NUMERIC,
	qbs TEXT,
	aav NUMERIC,
	abv NUMERIC,
	qov NUMERIC,
	quv NUMERIC,
	gap10 NUMERIC, gap9 NUMERIC, gap8 NUMERIC, gap7 NUMERIC, gap6 NUMERIC,
	gap5 NUMERIC, gap4 NUMERIC, gap3 NUMERIC, gap2 NUMERIC, gap1 NUMERIC,
	gbp10 NUMERIC, gbp9 NUMERIC, gbp8 NUMERIC, gbp7 NUMERIC, gbp6 NUMERIC,
	gbp5 NUMERIC, gbp4 NUMERIC, gbp3 NUMERIC, gbp2 NUMERIC, gbp1 NUMERIC,
	gav10 NUMERIC, gav9 NUMERIC, gav8 NUMERIC, gav7 NUMERIC, gav6 NUMERIC,
	gav5 NUMERIC, gav4 NUMERIC, gav3 NUMERIC, gav2 NUMERIC, gav1 NUMERIC,
	gbv10 NUMERIC, gbv9 NUMERIC, gbv8 NUMERIC, gbv7 NUMERIC, gbv6 NUMERIC,
	gbv5 NUMERIC, gbv4 NUMERIC, gbv3 NUMERIC, gbv2 NUMERIC, gbv1 NUMERIC,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ita_code_created ON ita_table (code, created_at);
`

const createMasterTableSQL = `
CREATE TABLE IF NOT EXISTS master_stock_table (
	code TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	market_product_category TEXT,
	sector33_code TEXT,
	sector33_category TEXT,
	sector17_code TEXT,
	sector17_category TEXT,
	scale_code TEXT,
	scale_category TEXT,
	api_id TEXT
);
CREATE INDEX IF NOT EXISTS idx_master_api_id ON master_stock_table (api_id);
`

var snapshotColumns = []string{
	"code",
	"dpp", "dv", "prp", "dop", "dhp", "dlp", "vwap",
	"qap", "qas", "qbp", "qbs",
	"aav", "abv", "qov", "quv",
	"gap10", "gap9", "gap8", "gap7", "gap6", "gap5", "gap4", "gap3", "gap2", "gap1",
	"gbp10", "gbp9", "gbp8", "gbp7", "gbp6", "gbp5", "gbp4", "gbp3", "gbp2", "gbp1",
	"gav10", "gav9", "gav8", "gav7", "gav6", "gav5", "gav4", "gav3", "gav2", "gav1",
	"gbv10", "gbv9", "gbv8", "gbv7", "gbv6", "gbv5", "gbv4", "gbv3", "gbv2", "gbv1",
	"created_at",
}
