package marketdata

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/meenmo/bondrv/curve"
)

// Store persists quote snapshots in Postgres so curves can be rebuilt for
// past sessions.
type Store struct {
	db *sql.DB
}

// OpenStore connects to Postgres and ensures the quotes table exists.
func OpenStore(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("OpenStore: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("OpenStore: ping: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS quotes (
	issuer     TEXT             NOT NULL,
	tenor      TEXT             NOT NULL,
	years      DOUBLE PRECISION NOT NULL,
	rate       DOUBLE PRECISION NOT NULL,
	unit       TEXT             NOT NULL,
	observed   TIMESTAMPTZ      NOT NULL,
	PRIMARY KEY (issuer, tenor, observed)
)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// SaveQuotes writes a batch inside one transaction. Conflicting rows (same
// issuer, tenor and timestamp) are overwritten.
func (s *Store) SaveQuotes(ctx context.Context, quotes []Quote) error {
	if len(quotes) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("SaveQuotes: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO quotes (issuer, tenor, years, rate, unit, observed)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (issuer, tenor, observed) DO UPDATE SET years = $3, rate = $4, unit = $5`)
	if err != nil {
		return fmt.Errorf("SaveQuotes: prepare: %w", err)
	}
	defer stmt.Close()

	for _, q := range quotes {
		if _, err := stmt.ExecContext(ctx, q.Issuer, q.Tenor, q.Years, q.Rate, string(q.Unit), q.Timestamp); err != nil {
			return fmt.Errorf("SaveQuotes: %s %s: %w", q.Issuer, q.Tenor, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("SaveQuotes: commit: %w", err)
	}
	return nil
}

// LatestQuotes returns the most recent quote per tenor for one issuer.
func (s *Store) LatestQuotes(ctx context.Context, issuer string) ([]Quote, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT DISTINCT ON (tenor) issuer, tenor, years, rate, unit, observed
FROM quotes
WHERE issuer = $1
ORDER BY tenor, observed DESC`, issuer)
	if err != nil {
		return nil, fmt.Errorf("LatestQuotes: issuer %q: %w", issuer, err)
	}
	defer rows.Close()

	var out []Quote
	for rows.Next() {
		var q Quote
		var unit string
		var observed time.Time
		if err := rows.Scan(&q.Issuer, &q.Tenor, &q.Years, &q.Rate, &unit, &observed); err != nil {
			return nil, fmt.Errorf("LatestQuotes: scan: %w", err)
		}
		q.Unit = curve.RateUnit(unit)
		q.Timestamp = observed
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("LatestQuotes: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("LatestQuotes: issuer %q: %w", issuer, ErrNoQuotes)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Years < out[j].Years })
	return out, nil
}

// BondQuotes serves the latest archived quotes per country, making the
// store usable as a Provider for replaying past sessions.
func (s *Store) BondQuotes(ctx context.Context, countries []string) ([]Quote, error) {
	var out []Quote
	for _, country := range countries {
		quotes, err := s.LatestQuotes(ctx, country)
		if err != nil {
			return nil, fmt.Errorf("BondQuotes: %w", err)
		}
		out = append(out, quotes...)
	}
	return out, nil
}

// SwapQuotes serves the latest archived swap rates for a currency.
func (s *Store) SwapQuotes(ctx context.Context, currency string) ([]Quote, error) {
	quotes, err := s.LatestQuotes(ctx, strings.ToUpper(currency)+" IRS")
	if err != nil {
		return nil, fmt.Errorf("SwapQuotes: %w", err)
	}
	return quotes, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
