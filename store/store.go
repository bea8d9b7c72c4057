// Package store archives dashboard runs to Postgres or MySQL/MariaDB.
// Archiving is optional; the analytics packages never depend on it.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"nexatel-customer-analytics/customer"
	"nexatel-customer-analytics/metrics"
)

var schemaName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Run is one archived dashboard snapshot.
type Run struct {
	AsOf      time.Time
	Source    string
	Tag       string
	Stats     metrics.DashboardStats
	Segments  []metrics.SegmentShare
	Customers []customer.Customer
}

// Store writes runs to a SQL database.
type Store struct {
	db       *sql.DB
	dialect  dialect
	schema   string
	logger   *zap.Logger
	progress bool
}

// Option configures a Store.
type Option func(*Store)

// WithProgress draws a progress bar on stderr while customer rows are
// written.
func WithProgress() Option {
	return func(s *Store) {
		s.progress = true
	}
}

// Open connects to dsn and verifies the connection. The driver is chosen
// from the DSN: postgres:// URLs and key=value strings use pgx, mysql:// and
// mariadb:// URLs or native user@tcp(host)/db DSNs use the MySQL driver.
func Open(ctx context.Context, dsn, schema string, logger *zap.Logger, opts ...Option) (*Store, error) {
	schema, err := sanitizeSchema(schema)
	if err != nil {
		return nil, err
	}
	d, driverDSN, err := resolveDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.driver, driverDSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.driver, err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.driver, err)
	}

	s := &Store{db: db, dialect: d, schema: schema, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	logger.Debug("archive connected", zap.String("driver", d.driver), zap.String("schema", schema))
	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save creates the archive tables if needed and writes run in a single
// transaction. It returns the new run id.
func (s *Store) Save(ctx context.Context, run Run) (string, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return "", fmt.Errorf("ensure schema: %w", err)
	}

	runID := uuid.New()
	churnRate, _ := strconv.ParseFloat(run.Stats.ChurnRate, 64)
	avgCLV, _ := strconv.ParseFloat(run.Stats.AvgCLV, 64)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, s.insertSQL("runs",
		"id", "as_of", "source", "total_customers", "churn_rate", "avg_clv", "active_customers", "run_tag"),
		runID,
		dateOnly(run.AsOf),
		run.Source,
		run.Stats.Total,
		churnRate,
		avgCLV,
		run.Stats.Active,
		nullString(run.Tag),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	var bar *progressbar.ProgressBar
	if s.progress {
		bar = progressbar.Default(int64(len(run.Customers)), "archiving customers")
	}
	insertCustomer := s.insertSQL("run_customers",
		"id", "run_id", "customer_id", "tenure", "monthly_charges", "total_charges", "churn",
		"contract", "usage_gb", "last_activity", "clv", "rfm_score", "segment")
	for _, c := range run.Customers {
		_, err = tx.ExecContext(ctx, insertCustomer,
			uuid.New(),
			runID,
			c.ID,
			c.Tenure,
			c.MonthlyCharges,
			c.TotalCharges,
			c.Churn,
			string(c.Contract),
			c.UsageGB,
			nullString(c.LastActivityDate),
			c.CLV,
			c.RFMScore,
			nullString(c.Segment),
		)
		if err != nil {
			return "", fmt.Errorf("insert customer %s: %w", c.ID, err)
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	insertSegment := s.insertSQL("run_segments", "id", "run_id", "segment", "customers", "share_percent")
	for _, share := range run.Segments {
		_, err = tx.ExecContext(ctx, insertSegment, uuid.New(), runID, share.Segment, share.Count, share.Percent)
		if err != nil {
			return "", fmt.Errorf("insert segment %s: %w", share.Segment, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	s.logger.Info("archived dashboard run",
		zap.String("run_id", runID.String()),
		zap.Int("customers", len(run.Customers)),
		zap.String("driver", s.dialect.driver))
	return runID.String(), nil
}

func (s *Store) insertSQL(table string, columns ...string) string {
	return fmt.Sprintf("INSERT INTO %s.%s (%s) VALUES (%s)",
		s.schema, table, strings.Join(columns, ", "), s.dialect.placeholders(len(columns)))
}

func (s *Store) ensureSchema(ctx context.Context) error {
	for _, stmt := range s.schemaStatements() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) schemaStatements() []string {
	schema, d := s.schema, s.dialect
	stmts := []string{
		fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, schema),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.runs (
			id %s PRIMARY KEY,
			as_of date NOT NULL,
			source text NOT NULL,
			total_customers integer NOT NULL,
			churn_rate numeric(5,1) NOT NULL,
			avg_clv numeric(12,2) NOT NULL,
			active_customers integer NOT NULL,
			run_tag text,
			created_at %s
		)`, schema, d.uuidType, d.timestampType),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.run_customers (
			id %s PRIMARY KEY,
			run_id %s NOT NULL REFERENCES %s.runs(id) ON DELETE CASCADE,
			customer_id text NOT NULL,
			tenure integer NOT NULL,
			monthly_charges numeric(10,2) NOT NULL,
			total_charges numeric(12,2) NOT NULL,
			churn boolean NOT NULL,
			contract text NOT NULL,
			usage_gb integer NOT NULL,
			last_activity text,
			clv numeric(12,2) NOT NULL,
			rfm_score integer NOT NULL,
			segment text
		)`, schema, d.uuidType, d.uuidType, schema),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.run_segments (
			id %s PRIMARY KEY,
			run_id %s NOT NULL REFERENCES %s.runs(id) ON DELETE CASCADE,
			segment text NOT NULL,
			customers integer NOT NULL,
			share_percent integer NOT NULL
		)`, schema, d.uuidType, d.uuidType, schema),
	}
	if d.indexes {
		stmts = append(stmts,
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_run_customers_run_idx ON %s.run_customers (run_id)`, schema, schema),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_run_segments_run_idx ON %s.run_segments (run_id)`, schema, schema),
		)
	}
	return stmts
}

func sanitizeSchema(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errors.New("db schema is required")
	}
	if !schemaName.MatchString(value) {
		return "", fmt.Errorf("invalid schema name: %s", value)
	}
	return value, nil
}

func nullString(value string) sql.NullString {
	if strings.TrimSpace(value) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func dateOnly(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
}
