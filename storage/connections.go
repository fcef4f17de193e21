package storage

import (
	"context"
	"log"
	"sync"
	"time"

	"rea_scraper/config"
	"rea_scraper/models"
)

const connectTimeout = 15 * time.Second

// Connections opens sink clients lazily, once per database, and shares them
// between runs. Prod runs use the production databases; test and dev runs
// use the dev ones when configured.
type Connections struct {
	cfg *config.Config

	mu       sync.Mutex
	postgres map[string]*PostgresStore
	mongo    map[string]*MongoStore
	exporter *S3Exporter
}

func NewConnections(cfg *config.Config) *Connections {
	return &Connections{
		cfg:      cfg,
		postgres: map[string]*PostgresStore{},
		mongo:    map[string]*MongoStore{},
	}
}

// Manager returns the sinks for one pair. Sinks without configuration are
// reported as ErrSinkNotConfigured; configured sinks that cannot be reached
// are reported as ErrSinkUnavailable and retried on the next call.
func (c *Connections) Manager(portal models.Portal, category models.Category, mode models.Mode) *Manager {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	prod := mode == models.ModeProd
	m := NewManager(TableName(portal, category), nil, nil, nil)
	m.postgres, m.postgresErr = c.openPostgres(ctx, prod)
	m.mongo, m.mongoErr = c.openMongo(ctx, prod)
	m.exporter, m.exporterErr = c.openExporter(ctx)
	return m
}

func (c *Connections) openPostgres(ctx context.Context, prod bool) (*PostgresStore, error) {
	dsn := c.cfg.Postgres.URLFor(prod)
	if dsn == "" {
		return nil, nil
	}
	if pg, ok := c.postgres[dsn]; ok {
		return pg, nil
	}

	pg, err := NewPostgresStore(ctx, dsn)
	if err != nil {
		log.Printf("[error] storage: postgres unavailable: %v", err)
		return nil, err
	}
	if err := pg.RunMigrations(); err != nil {
		log.Printf("[error] storage: %v", err)
	}
	c.postgres[dsn] = pg
	return pg, nil
}

func (c *Connections) openMongo(ctx context.Context, prod bool) (*MongoStore, error) {
	uri := c.cfg.Mongo.URI
	database := c.cfg.Mongo.DatabaseFor(prod)
	if uri == "" || database == "" {
		return nil, nil
	}
	key := uri + "/" + database
	if m, ok := c.mongo[key]; ok {
		return m, nil
	}

	m, err := NewMongoStore(ctx, uri, database)
	if err != nil {
		log.Printf("[error] storage: mongodb unavailable: %v", err)
		return nil, err
	}
	c.mongo[key] = m
	return m, nil
}

func (c *Connections) openExporter(ctx context.Context) (*S3Exporter, error) {
	if c.exporter != nil || c.cfg.S3.Bucket == "" {
		return c.exporter, nil
	}

	e, err := NewS3Exporter(ctx, c.cfg.S3)
	if err != nil {
		log.Printf("[error] storage: s3 export unavailable: %v", err)
		return nil, err
	}
	c.exporter = e
	return e, nil
}

func (c *Connections) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, pg := range c.postgres {
		pg.Close()
	}
	for _, m := range c.mongo {
		if err := m.Close(context.Background()); err != nil {
			log.Printf("[warn] storage: closing mongodb: %v", err)
		}
	}
}
