// Package postgres implements the listing store and catalog on PostgreSQL
// via sqlx and lib/pq.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver

	"github.com/bazaarhq/listing-search/internal/db"
	"github.com/bazaarhq/listing-search/internal/domain/listing"
	"github.com/bazaarhq/listing-search/internal/domain/search/filter"
)

// Compile-time checks.
var (
	_ db.ListingStore = (*Store)(nil)
	_ db.Catalog      = (*Store)(nil)
)

// Config holds connection parameters.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Store implements db.ListingStore and db.Catalog on PostgreSQL.
type Store struct {
	db *sqlx.DB
}

// NewStore opens a connection pool. It does not wait for the server;
// use WaitForReady.
func NewStore(cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("dsn is required")
	}
	conn, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return &Store{db: conn}, nil
}

// NewStoreFromDB wraps an existing pool.
func NewStoreFromDB(conn *sqlx.DB) *Store {
	return &Store{db: conn}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() {
	_ = s.db.Close()
}

// WaitForReady polls Ping until the database responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		if err := s.Ping(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

const listingColumns = `l.id, l.title, coalesce(l.description, '') AS description, l.price, l.currency,
	l.condition::text AS condition, l.type::text AS type,
	coalesce(l.brand_id, '') AS brand_id, coalesce(l.model_id, '') AS model_id, coalesce(l.city_id, '') AS city_id,
	l.seller_id, l.images, l.is_verified, l.views, l.status::text AS status, l.published_at, l.created_at,
	b.name AS brand_name, m.name AS model_name, c.name AS city_name`

// FindMany returns one ordered page of matching listings.
func (s *Store) FindMany(ctx context.Context, q *db.FindQuery) ([]listing.Listing, error) {
	if q.Skip < 0 || q.Take <= 0 {
		return nil, &db.Error{Op: db.OpFindMany, Err: fmt.Errorf("%w: skip=%d take=%d", db.ErrInvalidFindParams, q.Skip, q.Take)}
	}

	b := &queryBuilder{}
	if err := b.predicate(q.Predicate); err != nil {
		return nil, &db.Error{Op: db.OpFindMany, Err: err}
	}

	cols := listingColumns
	for _, o := range q.OrderBy {
		if o.Field == db.SortDistance && o.Origin != nil {
			cols += ", " + b.distance(*o.Origin) + " AS distance_km"
			break
		}
	}
	order, err := b.orderBy(q.OrderBy)
	if err != nil {
		return nil, &db.Error{Op: db.OpFindMany, Err: err}
	}

	query := fmt.Sprintf("SELECT %s %s%s%s LIMIT %s OFFSET %s",
		cols, fromListings, b.whereSQL(), order, b.arg(q.Take), b.arg(q.Skip))

	var rows []listingRow
	if err := s.db.SelectContext(ctx, &rows, query, b.args...); err != nil {
		return nil, &db.Error{Op: db.OpFindMany, Err: err}
	}

	out := make([]listing.Listing, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain(q.Include)
	}
	return out, nil
}

// Count returns the number of matching listings.
func (s *Store) Count(ctx context.Context, p filter.Predicate) (int, error) {
	b := &queryBuilder{}
	if err := b.predicate(p); err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	var n int
	query := "SELECT count(*) " + fromListings + b.whereSQL()
	if err := s.db.GetContext(ctx, &n, query, b.args...); err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	return n, nil
}

// GroupBy counts matching listings per value of dim.
func (s *Store) GroupBy(ctx context.Context, dim filter.Dimension, p filter.Predicate, limit int) ([]db.GroupCount, error) {
	query, args, err := groupByQuery(dim, p, limit)
	if err != nil {
		return nil, &db.Error{Op: db.OpGroupBy, Err: err}
	}
	var out []db.GroupCount
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, &db.Error{Op: db.OpGroupBy, Err: err}
	}
	return out, nil
}

func groupByQuery(dim filter.Dimension, p filter.Predicate, limit int) (string, []any, error) {
	col, ok := dimensionColumns[dim]
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", db.ErrUnknownDimension, dim)
	}
	b := &queryBuilder{}
	if err := b.predicate(p); err != nil {
		return "", nil, err
	}
	b.where(col + " IS NOT NULL")

	query := fmt.Sprintf("SELECT %s AS value, count(*) AS count %s%s GROUP BY 1 ORDER BY count DESC, value ASC",
		col, fromListings, b.whereSQL())
	if limit > 0 {
		query += " LIMIT " + b.arg(limit)
	}
	return query, b.args, nil
}

// Aggregate returns price statistics of matching listings.
func (s *Store) Aggregate(ctx context.Context, p filter.Predicate) (db.Stats, error) {
	b := &queryBuilder{}
	if err := b.predicate(p); err != nil {
		return db.Stats{}, &db.Error{Op: db.OpAggregate, Err: err}
	}
	query := `SELECT coalesce(min(l.price), 0) AS min, coalesce(max(l.price), 0) AS max,
		coalesce(avg(l.price), 0)::float8 AS avg, count(*) AS count ` + fromListings + b.whereSQL()

	var st db.Stats
	if err := s.db.GetContext(ctx, &st, query, b.args...); err != nil {
		return db.Stats{}, &db.Error{Op: db.OpAggregate, Err: err}
	}
	return st, nil
}
