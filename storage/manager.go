package storage

import (
	"context"
	"errors"
	"fmt"

	"rea_scraper/models"
)

var (
	ErrSinkNotConfigured = errors.New("sink not configured")
	ErrSinkUnavailable   = errors.New("sink unavailable")
)

// Manager binds the configured sinks to one portal and category table.
type Manager struct {
	table    string
	postgres *PostgresStore
	mongo    *MongoStore
	exporter *S3Exporter

	// Connect errors of sinks that are configured but could not be opened.
	postgresErr error
	mongoErr    error
	exporterErr error
}

func NewManager(table string, postgres *PostgresStore, mongo *MongoStore, exporter *S3Exporter) *Manager {
	return &Manager{table: table, postgres: postgres, mongo: mongo, exporter: exporter}
}

func (m *Manager) Table() string {
	return m.table
}

// StoredURLs lists offer urls already in the relational table. Without a
// relational sink there is nothing to deduplicate against; a relational sink
// that failed to connect is an error so callers keep their batches.
func (m *Manager) StoredURLs(ctx context.Context) ([]string, error) {
	if m.postgresErr != nil {
		return nil, unavailable("postgres", m.postgresErr)
	}
	if m.postgres == nil {
		return nil, nil
	}
	return m.postgres.QueryColumn(ctx, m.table, "url")
}

func (m *Manager) StoreRelational(ctx context.Context, offers []models.Offer) (int, error) {
	if m.postgresErr != nil {
		return 0, unavailable("postgres", m.postgresErr)
	}
	if m.postgres == nil {
		return 0, ErrSinkNotConfigured
	}
	return m.postgres.InsertOffers(ctx, m.table, offers)
}

func (m *Manager) StoreDocument(ctx context.Context, offers []models.Offer) (int, error) {
	if m.mongoErr != nil {
		return 0, unavailable("mongodb", m.mongoErr)
	}
	if m.mongo == nil {
		return 0, ErrSinkNotConfigured
	}
	return m.mongo.InsertOffers(ctx, m.table, offers)
}

func (m *Manager) StoreAnalytical(ctx context.Context, runName string, offers []models.Offer) error {
	if m.exporterErr != nil {
		return unavailable("s3", m.exporterErr)
	}
	if m.exporter == nil {
		return ErrSinkNotConfigured
	}
	return m.exporter.Export(ctx, m.table, runName, offers)
}

func unavailable(sink string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrSinkUnavailable, sink, err)
}
