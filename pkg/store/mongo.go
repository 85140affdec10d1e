package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/cardgrid/pkg/errors"
	"github.com/matzehuels/cardgrid/pkg/grid"
	"github.com/matzehuels/cardgrid/pkg/observability"
)

// MongoStore is a MongoDB-backed layout store for the dashboard platform.
// Each layout is one document keyed by name.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// MongoConfig configures the MongoDB connection.
type MongoConfig struct {
	URI        string // e.g. "mongodb://localhost:27017"
	Database   string // default "cardgrid"
	Collection string // default "layouts"
}

// layoutDoc is the stored document shape.
type layoutDoc struct {
	Name      string      `bson:"_id"`
	Items     []grid.Item `bson:"items"`
	UpdatedAt time.Time   `bson:"updated_at"`
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "cardgrid"
	}
	if cfg.Collection == "" {
		cfg.Collection = "layouts"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo %s: %w", cfg.URI, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo %s: %w", cfg.URI, err)
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Get retrieves a layout by name.
func (s *MongoStore) Get(ctx context.Context, name string) ([]grid.Item, error) {
	if err := errors.ValidateLayoutName(name); err != nil {
		return nil, err
	}
	var doc layoutDoc
	err := s.collection.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		observability.Store().OnMiss(ctx, "mongo", name)
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo get %s: %w", name, err)
	}
	observability.Store().OnHit(ctx, "mongo", name)
	return doc.Items, nil
}

// Set stores a layout under a name, replacing any previous document.
func (s *MongoStore) Set(ctx context.Context, name string, layout []grid.Item) error {
	if err := errors.ValidateLayoutName(name); err != nil {
		return err
	}
	doc := layoutDoc{Name: name, Items: grid.CloneLayout(layout), UpdatedAt: time.Now().UTC()}
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo set %s: %w", name, err)
	}
	observability.Store().OnSet(ctx, "mongo", name, len(layout))
	return nil
}

// Delete removes a layout document. Deleting a missing layout is not an
// error.
func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateLayoutName(name); err != nil {
		return err
	}
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": name}); err != nil {
		return fmt.Errorf("mongo delete %s: %w", name, err)
	}
	return nil
}

// List returns the stored layout names in sorted order.
func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	cursor, err := s.collection.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("mongo list: %w", err)
	}
	defer cursor.Close(ctx)

	var names []string
	for cursor.Next(ctx) {
		var doc struct {
			Name string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("mongo list decode: %w", err)
		}
		names = append(names, doc.Name)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("mongo list cursor: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
