package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rea_scraper/models"
)

type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &MongoStore{client: client, db: client.Database(database)}, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// InsertOffers inserts one document per offer. Inserts are unordered so a
// rejected document does not stop the rest; the result counts accepted ones.
func (s *MongoStore) InsertOffers(ctx context.Context, collection string, offers []models.Offer) (int, error) {
	if len(offers) == 0 {
		return 0, nil
	}

	docs := make([]any, 0, len(offers))
	for _, offer := range offers {
		docs = append(docs, offerDocument(offer))
	}

	res, err := s.db.Collection(collection).InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err == nil {
		return len(res.InsertedIDs), nil
	}

	var bulkErr mongo.BulkWriteException
	if errors.As(err, &bulkErr) && bulkErr.WriteConcernError == nil {
		return len(docs) - len(bulkErr.WriteErrors), nil
	}
	return 0, fmt.Errorf("insert into %s: %w", collection, err)
}

// offerDocument flattens an offer; attributes holding JSON objects or arrays
// (feature groups) are stored as nested documents instead of strings.
func offerDocument(offer models.Offer) bson.D {
	cols := models.Columns(offer)
	doc := make(bson.D, 0, len(cols))
	for _, c := range cols {
		doc = append(doc, bson.E{Key: c.Name, Value: documentValue(c.Value)})
	}
	return doc
}

func documentValue(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return v
	}
	var parsed any
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return v
	}
	return parsed
}
