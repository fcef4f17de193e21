package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rea_scraper/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

// TableName is the relational table (and document collection) for a pair,
// e.g. otodom_houses.
func TableName(portal models.Portal, category models.Category) string {
	return strings.ToLower(string(portal)) + "_" + strings.ToLower(string(category))
}

// QueryColumn returns the non-null values of one column rendered as text.
func (s *PostgresStore) QueryColumn(ctx context.Context, table, column string) ([]string, error) {
	rows, err := s.pool.Query(ctx, selectColumnQuery(table, column))
	if err != nil {
		return nil, fmt.Errorf("query %s.%s: %w", table, column, err)
	}
	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect %s.%s: %w", table, column, err)
	}
	return values, nil
}

func selectColumnQuery(table, column string) string {
	col := pgx.Identifier{column}.Sanitize()
	return fmt.Sprintf("SELECT %s::text FROM %s WHERE %s IS NOT NULL", col, pgx.Identifier{table}.Sanitize(), col)
}

// InsertOffers writes offers in one transaction. Offers whose url is already
// stored are skipped; the result counts rows actually inserted.
func (s *PostgresStore) InsertOffers(ctx context.Context, table string, offers []models.Offer) (int, error) {
	if len(offers) == 0 {
		return 0, nil
	}

	inserted := 0
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, offer := range offers {
			query, args := insertOfferQuery(table, models.Columns(offer))
			batch.Queue(query, args...)
		}

		results := tx.SendBatch(ctx, batch)
		for i := range offers {
			tag, err := results.Exec()
			if err != nil {
				results.Close()
				return fmt.Errorf("insert %s: %w", offers[i].OfferURL(), err)
			}
			inserted += int(tag.RowsAffected())
		}
		return results.Close()
	})
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", table, err)
	}
	return inserted, nil
}

func insertOfferQuery(table string, cols []models.Column) (string, []any) {
	names := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		names[i] = pgx.Identifier{c.Name}.Sanitize()
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = c.Value
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (url) DO NOTHING",
		pgx.Identifier{table}.Sanitize(),
		strings.Join(names, ", "),
		strings.Join(placeholders, ", "))
	return query, args
}
