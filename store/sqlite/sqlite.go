/*
Package sqlite provides the SQLite-backed implementation of comp.Store.

PURPOSE:
  Persists source records, configuration, and computed results. In
  production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

KEY TABLES:
  reps, customers, orders, order_lines:  Source data from the ERP import
  bonus_configs, rate_config, spiffs:    Configuration (JSON columns for
                                         the nested plan structures)
  rep_actuals:                           Measured quarterly performance
  bonus_entries, commission_entries,
  spiff_entries, monthly_summaries:      Computed output
  runs:                                  Run log with skip counts and
                                         anomalies

REPLACEMENT CONTRACT:
  Computed result tables are written only through Replace* methods that
  delete-by-period and insert inside one SQL transaction. There is no
  row-level update path for computed entries.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block, single writer at a time.

USAGE:
  store, err := sqlite.New("./data/comp.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - comp/store.go: Interface definitions
  - comp/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/keystone/comp-engine/comp"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// Store implements comp.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ comp.Store = (*Store)(nil)

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Source records (imported, read-only for the engine)
	CREATE TABLE IF NOT EXISTS reps (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		title TEXT NOT NULL,
		sales_code TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		commissioned BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE INDEX IF NOT EXISTS idx_reps_sales_code ON reps(sales_code);

	CREATE TABLE IF NOT EXISTS customers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		segment TEXT NOT NULL,
		assigned_rep TEXT NOT NULL,
		assigned_at TEXT NOT NULL,
		transfer_override TEXT NOT NULL DEFAULT 'auto'
	);

	CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		number TEXT NOT NULL,
		customer_id TEXT NOT NULL,
		sales_code TEXT NOT NULL,
		source TEXT NOT NULL,
		order_date TEXT NOT NULL,
		order_value TEXT NOT NULL,
		revenue TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_orders_date ON orders(order_date);
	CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer_id);

	CREATE TABLE IF NOT EXISTS order_lines (
		order_id TEXT NOT NULL,
		line_no INTEGER NOT NULL,
		product_key TEXT NOT NULL,
		description TEXT,
		quantity TEXT NOT NULL,
		value TEXT NOT NULL,
		is_shipping BOOLEAN NOT NULL DEFAULT FALSE,
		is_card_fee BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (order_id, line_no)
	);

	CREATE TABLE IF NOT EXISTS rep_actuals (
		quarter TEXT NOT NULL,
		rep_id TEXT NOT NULL,
		title TEXT NOT NULL,
		payload_json TEXT NOT NULL,
		PRIMARY KEY (quarter, rep_id)
	);

	-- Configuration
	CREATE TABLE IF NOT EXISTS bonus_configs (
		quarter TEXT PRIMARY KEY,
		config_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS rate_config (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		config_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS spiffs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		product_key TEXT NOT NULL,
		type TEXT NOT NULL,
		value TEXT NOT NULL,
		start_date TEXT,
		end_date TEXT,
		active BOOLEAN NOT NULL DEFAULT TRUE
	);

	-- Computed results (replaced per period, never updated in place)
	CREATE TABLE IF NOT EXISTS bonus_entries (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		quarter TEXT NOT NULL,
		rep_id TEXT NOT NULL,
		bucket_code TEXT NOT NULL,
		subgoal_key TEXT NOT NULL DEFAULT '',
		goal TEXT NOT NULL,
		goal_unit TEXT NOT NULL,
		actual TEXT NOT NULL,
		attainment TEXT NOT NULL,
		weight TEXT NOT NULL,
		payout TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_bonus_entries_quarter_rep
		ON bonus_entries(quarter, rep_id);

	CREATE TABLE IF NOT EXISTS commission_entries (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		month TEXT NOT NULL,
		rep_id TEXT NOT NULL,
		order_id TEXT NOT NULL,
		order_number TEXT NOT NULL,
		customer_id TEXT NOT NULL,
		segment TEXT NOT NULL,
		status TEXT NOT NULL,
		base TEXT NOT NULL,
		rate TEXT NOT NULL,
		rate_source TEXT NOT NULL,
		commission TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_commission_entries_month_rep
		ON commission_entries(month, rep_id);

	CREATE TABLE IF NOT EXISTS spiff_entries (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		month TEXT NOT NULL,
		rep_id TEXT NOT NULL,
		order_id TEXT NOT NULL,
		order_number TEXT NOT NULL,
		spiff_id TEXT NOT NULL,
		product_key TEXT NOT NULL,
		quantity TEXT NOT NULL,
		line_value TEXT NOT NULL,
		incentive_type TEXT NOT NULL,
		incentive TEXT NOT NULL,
		earned TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_spiff_entries_month_rep
		ON spiff_entries(month, rep_id);

	CREATE TABLE IF NOT EXISTS monthly_summaries (
		month TEXT NOT NULL,
		rep_id TEXT NOT NULL,
		rep_name TEXT NOT NULL,
		orders INTEGER NOT NULL,
		revenue TEXT NOT NULL,
		commission TEXT NOT NULL,
		spiffs TEXT NOT NULL,
		total TEXT NOT NULL,
		PRIMARY KEY (month, rep_id)
	);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		period TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT,
		orders_processed INTEGER NOT NULL DEFAULT 0,
		entries_written INTEGER NOT NULL DEFAULT 0,
		total_commission TEXT NOT NULL DEFAULT '0',
		total_spiffs TEXT NOT NULL DEFAULT '0',
		total_bonus TEXT NOT NULL DEFAULT '0',
		skips_json TEXT NOT NULL DEFAULT '{}',
		anomalies_json TEXT NOT NULL DEFAULT '[]',
		started_at TEXT NOT NULL,
		completed_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_period ON runs(period);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CONFIG STORE
// =============================================================================

func (s *Store) BonusConfig(ctx context.Context, quarter string) (*comp.BonusConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var configJSON string
	err := s.db.QueryRowContext(ctx,
		"SELECT config_json FROM bonus_configs WHERE quarter = ?", quarter,
	).Scan(&configJSON)
	if err == sql.ErrNoRows {
		return nil, comp.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var cfg comp.BonusConfig
	if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode bonus config %s: %w", quarter, err)
	}
	return &cfg, nil
}

func (s *Store) SaveBonusConfig(ctx context.Context, cfg *comp.BonusConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode bonus config: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO bonus_configs (quarter, config_json, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(quarter) DO UPDATE SET
			config_json = excluded.config_json,
			updated_at = excluded.updated_at
	`, cfg.Quarter, string(configJSON), nowRFC3339())
	return err
}

// rateConfigDoc is the serialized form of comp.RateConfig. The rate table
// round-trips as its entry list.
type rateConfigDoc struct {
	Entries      []comp.RateEntry     `json:"entries"`
	SpecialRules comp.SpecialRules    `json:"specialRules"`
	Rules        comp.CommissionRules `json:"rules"`
}

func (s *Store) RateConfig(ctx context.Context) (*comp.RateConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var configJSON string
	err := s.db.QueryRowContext(ctx,
		"SELECT config_json FROM rate_config WHERE id = 1",
	).Scan(&configJSON)
	if err == sql.ErrNoRows {
		return comp.NormalizeRateConfig(nil), nil
	}
	if err != nil {
		return nil, err
	}

	var doc rateConfigDoc
	if err := json.Unmarshal([]byte(configJSON), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode rate config: %w", err)
	}
	return &comp.RateConfig{
		Table:        comp.NewRateTable(doc.Entries),
		SpecialRules: doc.SpecialRules,
		Rules:        doc.Rules,
	}, nil
}

func (s *Store) SaveRateConfig(ctx context.Context, cfg *comp.RateConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := rateConfigDoc{SpecialRules: cfg.SpecialRules, Rules: cfg.Rules}
	if cfg.Table != nil {
		doc.Entries = cfg.Table.Entries()
	}
	configJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode rate config: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO rate_config (id, config_json, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			config_json = excluded.config_json,
			updated_at = excluded.updated_at
	`, string(configJSON), nowRFC3339())
	return err
}

func (s *Store) Spiffs(ctx context.Context) ([]comp.Spiff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, product_key, type, value, start_date, end_date, active FROM spiffs ORDER BY id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var spiffs []comp.Spiff
	for rows.Next() {
		var sp comp.Spiff
		var value string
		var startDate, endDate sql.NullString
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.ProductKey, &sp.Type, &value, &startDate, &endDate, &sp.Active); err != nil {
			return nil, err
		}
		sp.Value = comp.MustParseDecimal(value)
		sp.StartDate = parseDateOrZero(startDate)
		sp.EndDate = parseDateOrZero(endDate)
		spiffs = append(spiffs, sp)
	}
	return spiffs, rows.Err()
}

func (s *Store) SaveSpiff(ctx context.Context, sp comp.Spiff) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO spiffs (id, name, product_key, type, value, start_date, end_date, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			product_key = excluded.product_key,
			type = excluded.type,
			value = excluded.value,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			active = excluded.active
	`, sp.ID, sp.Name, sp.ProductKey, sp.Type, sp.Value.String(),
		dateOrNull(sp.StartDate), dateOrNull(sp.EndDate), sp.Active)
	return err
}

func (s *Store) DeleteSpiff(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM spiffs WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return comp.ErrNotFound
	}
	return nil
}

// =============================================================================
// RECORD STORE
// =============================================================================

func (s *Store) Reps(ctx context.Context) ([]comp.Rep, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, title, sales_code, active, commissioned FROM reps ORDER BY name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reps []comp.Rep
	for rows.Next() {
		var r comp.Rep
		if err := rows.Scan(&r.ID, &r.Name, &r.Title, &r.SalesCode, &r.Active, &r.Commissioned); err != nil {
			return nil, err
		}
		reps = append(reps, r)
	}
	return reps, rows.Err()
}

func (s *Store) Customers(ctx context.Context) ([]comp.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, segment, assigned_rep, assigned_at, transfer_override FROM customers ORDER BY name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []comp.Customer
	for rows.Next() {
		var c comp.Customer
		var assignedAt string
		if err := rows.Scan(&c.ID, &c.Name, &c.Segment, &c.AssignedRep, &assignedAt, &c.TransferOverride); err != nil {
			return nil, err
		}
		c.AssignedAt, _ = comp.ParseDate(assignedAt)
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (s *Store) OrdersInPeriod(ctx context.Context, period comp.Period) ([]comp.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, number, customer_id, sales_code, source, order_date, order_value, revenue
		FROM orders
		WHERE order_date >= ? AND order_date <= ?
		ORDER BY order_date ASC, id ASC
	`, period.Start.String(), period.End.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []comp.Order
	for rows.Next() {
		var o comp.Order
		var orderDate, orderValue, revenue string
		if err := rows.Scan(&o.ID, &o.Number, &o.CustomerID, &o.SalesCode, &o.Source, &orderDate, &orderValue, &revenue); err != nil {
			return nil, err
		}
		o.Date, _ = comp.ParseDate(orderDate)
		o.OrderValue = comp.Amount{Value: comp.MustParseDecimal(orderValue), Unit: comp.UnitDollars}
		o.Revenue = comp.Amount{Value: comp.MustParseDecimal(revenue), Unit: comp.UnitDollars}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		lines, err := s.orderLines(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Lines = lines
	}
	return orders, nil
}

func (s *Store) orderLines(ctx context.Context, orderID comp.OrderID) ([]comp.OrderLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_key, description, quantity, value, is_shipping, is_card_fee
		FROM order_lines
		WHERE order_id = ?
		ORDER BY line_no ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []comp.OrderLine
	for rows.Next() {
		var l comp.OrderLine
		var description sql.NullString
		var quantity, value string
		if err := rows.Scan(&l.ProductKey, &description, &quantity, &value, &l.IsShipping, &l.IsCardFee); err != nil {
			return nil, err
		}
		l.Description = description.String
		l.Quantity = comp.MustParseDecimal(quantity)
		l.Value = comp.Amount{Value: comp.MustParseDecimal(value), Unit: comp.UnitDollars}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (s *Store) OrderDatesByCustomer(ctx context.Context) (map[comp.CustomerID][]comp.Date, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT customer_id, order_date FROM orders ORDER BY order_date ASC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[comp.CustomerID][]comp.Date)
	for rows.Next() {
		var customerID comp.CustomerID
		var orderDate string
		if err := rows.Scan(&customerID, &orderDate); err != nil {
			return nil, err
		}
		d, err := comp.ParseDate(orderDate)
		if err != nil {
			continue
		}
		out[customerID] = append(out[customerID], d)
	}
	return out, rows.Err()
}

// repActualsPayload is the JSON column form of the per-rep measurement maps.
type repActualsPayload struct {
	BucketActuals   map[string]decimal.Decimal `json:"bucketActuals"`
	ProductActuals  map[string]decimal.Decimal `json:"productActuals"`
	ActivityActuals map[string]decimal.Decimal `json:"activityActuals"`
	GoalOverrides   map[string]decimal.Decimal `json:"goalOverrides,omitempty"`
}

func (s *Store) RepActualsForQuarter(ctx context.Context, quarter string) ([]comp.RepActuals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT rep_id, title, payload_json FROM rep_actuals WHERE quarter = ? ORDER BY rep_id",
		quarter,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actuals []comp.RepActuals
	for rows.Next() {
		var ra comp.RepActuals
		var payloadJSON string
		if err := rows.Scan(&ra.RepID, &ra.Title, &payloadJSON); err != nil {
			return nil, err
		}
		var payload repActualsPayload
		if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
			return nil, fmt.Errorf("failed to decode actuals for rep %s: %w", ra.RepID, err)
		}
		ra.BucketActuals = payload.BucketActuals
		ra.ProductActuals = payload.ProductActuals
		ra.ActivityActuals = payload.ActivityActuals
		ra.GoalOverrides = payload.GoalOverrides
		actuals = append(actuals, ra)
	}
	return actuals, rows.Err()
}

// SaveRepActuals upserts one rep's quarterly measurements. Used by the
// import path, not by runs.
func (s *Store) SaveRepActuals(ctx context.Context, quarter string, ra comp.RepActuals) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payloadJSON, err := json.Marshal(repActualsPayload{
		BucketActuals:   ra.BucketActuals,
		ProductActuals:  ra.ProductActuals,
		ActivityActuals: ra.ActivityActuals,
		GoalOverrides:   ra.GoalOverrides,
	})
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO rep_actuals (quarter, rep_id, title, payload_json)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(quarter, rep_id) DO UPDATE SET
			title = excluded.title,
			payload_json = excluded.payload_json
	`, quarter, ra.RepID, ra.Title, string(payloadJSON))
	return err
}

// =============================================================================
// RESULT STORE
// =============================================================================

func (s *Store) ReplaceBonusEntries(ctx context.Context, quarter string, entries []comp.ComputedBonusEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM bonus_entries WHERE quarter = ?", quarter); err != nil {
		return err
	}

	for _, e := range entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO bonus_entries
			(id, run_id, quarter, rep_id, bucket_code, subgoal_key, goal, goal_unit, actual, attainment, weight, payout)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, e.ID, e.RunID, e.Quarter, e.RepID, e.BucketCode, e.SubGoalKey,
			e.Goal.Value.String(), e.Goal.Unit, e.Actual.Value.String(),
			e.Attainment.String(), e.Weight.String(), e.Payout.Value.String())
		if err != nil {
			return fmt.Errorf("failed to insert bonus entry %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

func (s *Store) ReplaceMonthlyResults(ctx context.Context, month string,
	commissions []comp.ComputedCommissionEntry,
	spiffs []comp.ComputedSpiffEntry,
	summaries []comp.RepMonthlySummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"commission_entries", "spiff_entries"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE month = ?", month); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM monthly_summaries WHERE month = ?", month); err != nil {
		return err
	}

	for _, e := range commissions {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO commission_entries
			(id, run_id, month, rep_id, order_id, order_number, customer_id, segment, status, base, rate, rate_source, commission)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, e.ID, e.RunID, e.Month, e.RepID, e.OrderID, e.OrderNumber, e.CustomerID,
			e.Segment, e.Status, e.Base.Value.String(), e.Rate.String(),
			e.RateSource, e.Commission.Value.String())
		if err != nil {
			return fmt.Errorf("failed to insert commission entry %s: %w", e.ID, err)
		}
	}

	for _, e := range spiffs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO spiff_entries
			(id, run_id, month, rep_id, order_id, order_number, spiff_id, product_key, quantity, line_value, incentive_type, incentive, earned)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, e.ID, e.RunID, e.Month, e.RepID, e.OrderID, e.OrderNumber, e.SpiffID,
			e.ProductKey, e.Quantity.String(), e.LineValue.Value.String(),
			e.IncentiveType, e.Incentive.String(), e.Earned.Value.String())
		if err != nil {
			return fmt.Errorf("failed to insert spiff entry %s: %w", e.ID, err)
		}
	}

	for _, sm := range summaries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO monthly_summaries
			(month, rep_id, rep_name, orders, revenue, commission, spiffs, total)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, sm.Month, sm.RepID, sm.RepName, sm.Orders,
			sm.Revenue.Value.String(), sm.Commission.Value.String(),
			sm.Spiffs.Value.String(), sm.Total.Value.String())
		if err != nil {
			return fmt.Errorf("failed to insert summary for rep %s: %w", sm.RepID, err)
		}
	}

	return tx.Commit()
}

func (s *Store) BonusEntries(ctx context.Context, rep comp.RepID, quarter string) ([]comp.ComputedBonusEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, quarter, rep_id, bucket_code, subgoal_key, goal, goal_unit, actual, attainment, weight, payout
		FROM bonus_entries
		WHERE quarter = ? AND rep_id = ?
		ORDER BY bucket_code ASC, subgoal_key ASC
	`, quarter, rep)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []comp.ComputedBonusEntry
	for rows.Next() {
		var e comp.ComputedBonusEntry
		var goal, goalUnit, actual, attainment, weight, payout string
		if err := rows.Scan(&e.ID, &e.RunID, &e.Quarter, &e.RepID, &e.BucketCode, &e.SubGoalKey,
			&goal, &goalUnit, &actual, &attainment, &weight, &payout); err != nil {
			return nil, err
		}
		unit := comp.Unit(goalUnit)
		e.Goal = comp.Amount{Value: comp.MustParseDecimal(goal), Unit: unit}
		e.Actual = comp.Amount{Value: comp.MustParseDecimal(actual), Unit: unit}
		e.Attainment = comp.MustParseDecimal(attainment)
		e.Weight = comp.MustParseDecimal(weight)
		e.Payout = comp.Amount{Value: comp.MustParseDecimal(payout), Unit: comp.UnitDollars}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) CommissionEntries(ctx context.Context, rep comp.RepID, month string) ([]comp.ComputedCommissionEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, month, rep_id, order_id, order_number, customer_id, segment, status, base, rate, rate_source, commission
		FROM commission_entries
		WHERE month = ? AND rep_id = ?
		ORDER BY order_id ASC
	`, month, rep)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []comp.ComputedCommissionEntry
	for rows.Next() {
		var e comp.ComputedCommissionEntry
		var base, rate, commission string
		if err := rows.Scan(&e.ID, &e.RunID, &e.Month, &e.RepID, &e.OrderID, &e.OrderNumber,
			&e.CustomerID, &e.Segment, &e.Status, &base, &rate, &e.RateSource, &commission); err != nil {
			return nil, err
		}
		e.Base = comp.Amount{Value: comp.MustParseDecimal(base), Unit: comp.UnitDollars}
		e.Rate = comp.MustParseDecimal(rate)
		e.Commission = comp.Amount{Value: comp.MustParseDecimal(commission), Unit: comp.UnitDollars}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) SpiffEntries(ctx context.Context, rep comp.RepID, month string) ([]comp.ComputedSpiffEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, month, rep_id, order_id, order_number, spiff_id, product_key, quantity, line_value, incentive_type, incentive, earned
		FROM spiff_entries
		WHERE month = ? AND rep_id = ?
		ORDER BY order_id ASC, spiff_id ASC
	`, month, rep)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []comp.ComputedSpiffEntry
	for rows.Next() {
		var e comp.ComputedSpiffEntry
		var quantity, lineValue, incentive, earned string
		if err := rows.Scan(&e.ID, &e.RunID, &e.Month, &e.RepID, &e.OrderID, &e.OrderNumber,
			&e.SpiffID, &e.ProductKey, &quantity, &lineValue, &e.IncentiveType, &incentive, &earned); err != nil {
			return nil, err
		}
		e.Quantity = comp.MustParseDecimal(quantity)
		e.LineValue = comp.Amount{Value: comp.MustParseDecimal(lineValue), Unit: comp.UnitDollars}
		e.Incentive = comp.MustParseDecimal(incentive)
		e.Earned = comp.Amount{Value: comp.MustParseDecimal(earned), Unit: comp.UnitDollars}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) MonthlySummaries(ctx context.Context, month string) ([]comp.RepMonthlySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT month, rep_id, rep_name, orders, revenue, commission, spiffs, total
		FROM monthly_summaries
		WHERE month = ?
		ORDER BY rep_id ASC
	`, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []comp.RepMonthlySummary
	for rows.Next() {
		var sm comp.RepMonthlySummary
		var revenue, commission, spiffs, total string
		if err := rows.Scan(&sm.Month, &sm.RepID, &sm.RepName, &sm.Orders,
			&revenue, &commission, &spiffs, &total); err != nil {
			return nil, err
		}
		sm.Revenue = comp.Amount{Value: comp.MustParseDecimal(revenue), Unit: comp.UnitDollars}
		sm.Commission = comp.Amount{Value: comp.MustParseDecimal(commission), Unit: comp.UnitDollars}
		sm.Spiffs = comp.Amount{Value: comp.MustParseDecimal(spiffs), Unit: comp.UnitDollars}
		sm.Total = comp.Amount{Value: comp.MustParseDecimal(total), Unit: comp.UnitDollars}
		summaries = append(summaries, sm)
	}
	return summaries, rows.Err()
}

func (s *Store) SaveRun(ctx context.Context, run comp.RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	skipsJSON, _ := json.Marshal(run.Skips)
	anomalies := run.Anomalies
	if anomalies == nil {
		anomalies = []comp.Anomaly{}
	}
	anomaliesJSON, _ := json.Marshal(anomalies)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, kind, period, status, error, orders_processed, entries_written,
		 total_commission, total_spiffs, total_bonus, skips_json, anomalies_json, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			error = excluded.error,
			orders_processed = excluded.orders_processed,
			entries_written = excluded.entries_written,
			total_commission = excluded.total_commission,
			total_spiffs = excluded.total_spiffs,
			total_bonus = excluded.total_bonus,
			skips_json = excluded.skips_json,
			anomalies_json = excluded.anomalies_json,
			completed_at = excluded.completed_at
	`, run.ID, run.Kind, run.Period, run.Status, run.Error,
		run.OrdersProcessed, run.EntriesWritten,
		run.TotalCommission.Value.String(), run.TotalSpiffs.Value.String(), run.TotalBonus.Value.String(),
		string(skipsJSON), string(anomaliesJSON),
		run.StartedAt.String(), dateOrNull(run.CompletedAt))
	return err
}

func (s *Store) Run(ctx context.Context, id comp.RunID) (comp.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var run comp.RunSummary
	var errText sql.NullString
	var totalCommission, totalSpiffs, totalBonus, skipsJSON, anomaliesJSON, startedAt string
	var completedAt sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, kind, period, status, error, orders_processed, entries_written,
		       total_commission, total_spiffs, total_bonus, skips_json, anomalies_json, started_at, completed_at
		FROM runs WHERE id = ?
	`, id).Scan(&run.ID, &run.Kind, &run.Period, &run.Status, &errText,
		&run.OrdersProcessed, &run.EntriesWritten,
		&totalCommission, &totalSpiffs, &totalBonus, &skipsJSON, &anomaliesJSON,
		&startedAt, &completedAt)
	if err == sql.ErrNoRows {
		return comp.RunSummary{}, comp.ErrRunNotFound
	}
	if err != nil {
		return comp.RunSummary{}, err
	}

	run.Error = errText.String
	run.TotalCommission = comp.Amount{Value: comp.MustParseDecimal(totalCommission), Unit: comp.UnitDollars}
	run.TotalSpiffs = comp.Amount{Value: comp.MustParseDecimal(totalSpiffs), Unit: comp.UnitDollars}
	run.TotalBonus = comp.Amount{Value: comp.MustParseDecimal(totalBonus), Unit: comp.UnitDollars}
	json.Unmarshal([]byte(skipsJSON), &run.Skips)
	json.Unmarshal([]byte(anomaliesJSON), &run.Anomalies)
	run.StartedAt, _ = comp.ParseDate(startedAt)
	run.CompletedAt = parseDateOrZero(completedAt)
	return run, nil
}

// =============================================================================
// IMPORT HELPERS - Used by data loading, not by runs
// =============================================================================

// SaveRep upserts a rep record.
func (s *Store) SaveRep(ctx context.Context, r comp.Rep) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reps (id, name, title, sales_code, active, commissioned)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			title = excluded.title,
			sales_code = excluded.sales_code,
			active = excluded.active,
			commissioned = excluded.commissioned
	`, r.ID, r.Name, r.Title, r.SalesCode, r.Active, r.Commissioned)
	return err
}

// SaveCustomer upserts a customer record.
func (s *Store) SaveCustomer(ctx context.Context, c comp.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	override := c.TransferOverride
	if override == "" {
		override = comp.OverrideAuto
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (id, name, segment, assigned_rep, assigned_at, transfer_override)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			segment = excluded.segment,
			assigned_rep = excluded.assigned_rep,
			assigned_at = excluded.assigned_at,
			transfer_override = excluded.transfer_override
	`, c.ID, c.Name, c.Segment, c.AssignedRep, c.AssignedAt.String(), override)
	return err
}

// SaveOrder upserts an order and its lines atomically.
func (s *Store) SaveOrder(ctx context.Context, o comp.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, number, customer_id, sales_code, source, order_date, order_value, revenue)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			number = excluded.number,
			customer_id = excluded.customer_id,
			sales_code = excluded.sales_code,
			source = excluded.source,
			order_date = excluded.order_date,
			order_value = excluded.order_value,
			revenue = excluded.revenue
	`, o.ID, o.Number, o.CustomerID, o.SalesCode, o.Source, o.Date.String(),
		o.OrderValue.Value.String(), o.Revenue.Value.String())
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM order_lines WHERE order_id = ?", o.ID); err != nil {
		return err
	}
	for i, l := range o.Lines {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_lines (order_id, line_no, product_key, description, quantity, value, is_shipping, is_card_fee)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, o.ID, i, l.ProductKey, l.Description, l.Quantity.String(),
			l.Value.Value.String(), l.IsShipping, l.IsCardFee)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Helper functions

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func dateOrNull(d comp.Date) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseDateOrZero(ns sql.NullString) comp.Date {
	if !ns.Valid || ns.String == "" {
		return comp.Date{}
	}
	d, _ := comp.ParseDate(ns.String)
	return d
}
