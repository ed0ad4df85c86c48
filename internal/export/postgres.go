package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/dataset"
)

const batchSize = 50

var (
	pingAttempts = 10
	pingWait     = 2 * time.Second
)

// insertColumns must stay in dataset.Columns order.
var insertColumns = []string{
	"ano", "faixa_etaria", "bairro", "tipo_via", "dia_semana", "hora", "sexo", "mes",
	"dia_mes", "turno", "meio_locomocao", "tipo_sinistro", "tipo_vitima", "idade_vitima",
}

// PostgresWriter persists records to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection, waits for the server to answer and runs
// the schema migration.
func NewPostgresWriter(ctx context.Context, dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	for i := 0; i < pingAttempts; i++ {
		if err = db.PingContext(ctx); err == nil || i == pingAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, fmt.Errorf("postgres: ping: %w", ctx.Err())
		case <-time.After(pingWait):
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}
	pw := &PostgresWriter{db: db}
	if err := pw.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return pw, nil
}

func (pw *PostgresWriter) migrate(ctx context.Context) error {
	_, err := pw.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS obitos (
			id             SERIAL PRIMARY KEY,
			ano            INTEGER,
			faixa_etaria   TEXT,
			bairro         TEXT,
			tipo_via       TEXT,
			dia_semana     TEXT,
			hora           INTEGER,
			sexo           TEXT,
			mes            TEXT,
			dia_mes        INTEGER,
			turno          TEXT,
			meio_locomocao TEXT,
			tipo_sinistro  TEXT,
			tipo_vitima    TEXT,
			idade_vitima   NUMERIC(5,1),
			loaded_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_obitos_ano    ON obitos(ano);
		CREATE INDEX IF NOT EXISTS idx_obitos_bairro ON obitos(bairro);
	`)
	return err
}

// Write replaces the table contents with v inside one transaction bound to ctx.
func (pw *PostgresWriter) Write(ctx context.Context, v dataset.View) error {
	tx, err := pw.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM obitos"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	records := make([]dataset.Record, 0, v.Len())
	v.Each(func(r dataset.Record) { records = append(records, r) })
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		query, args := insertBatch(records[i:end])
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("postgres: insert batch %d: %w", i/batchSize, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

// Count returns the number of stored records.
func (pw *PostgresWriter) Count(ctx context.Context) (int, error) {
	var n int
	if err := pw.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM obitos").Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count: %w", err)
	}
	return n, nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// insertBatch builds one multi-row INSERT. sql.Null values bind as NULL when invalid.
func insertBatch(batch []dataset.Record) (string, []any) {
	n := len(insertColumns)
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*n)
	for idx, r := range batch {
		ph := make([]string, n)
		for j := range ph {
			ph[j] = fmt.Sprintf("$%d", idx*n+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ", ")+")")
		valueArgs = append(valueArgs,
			r.Year, r.AgeBracket, r.Neighborhood, r.RoadType, r.Weekday, r.Hour, r.Sex, r.Month,
			r.DayOfMonth, r.Shift, r.Locomotion, r.AccidentType, r.VictimType, r.VictimAge,
		)
	}
	query := fmt.Sprintf("INSERT INTO obitos (%s) VALUES %s",
		strings.Join(insertColumns, ", "), strings.Join(valueStrings, ", "))
	return query, valueArgs
}
