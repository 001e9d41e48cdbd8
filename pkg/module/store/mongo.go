package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	errs "github.com/matzehuels/graphbridge/pkg/errors"
	"github.com/matzehuels/graphbridge/pkg/module"
)

// Mongo defaults.
const (
	DefaultMongoDatabase = "graphbridge"
	MongoCollection      = "modules"
)

// moduleDocument is the stored shape of one module.
type moduleDocument struct {
	Path      string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoStore keeps one document per module, keyed by path.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri and verifies the connection.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "mongo uri is required")
	}
	if database == "" {
		database = DefaultMongoDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "ping mongo")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(MongoCollection),
	}, nil
}

// Load reads the module document.
func (s *MongoStore) Load(ctx context.Context, path string) (data []byte, err error) {
	start := time.Now()
	defer func() { observe(ctx, "load", BackendMongo, path, len(data), start, err) }()

	var doc moduleDocument
	err = s.coll.FindOne(ctx, bson.M{"_id": path}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(path)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "load module %s", path)
	}
	return doc.Data, nil
}

// Save upserts the module document.
func (s *MongoStore) Save(ctx context.Context, path string, data []byte) (err error) {
	start := time.Now()
	defer func() { observe(ctx, "save", BackendMongo, path, len(data), start, err) }()

	doc := moduleDocument{Path: path, Data: data, UpdatedAt: time.Now().UTC()}
	err = RetryWithBackoff(ctx, func() error {
		_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": path}, doc, options.Replace().SetUpsert(true))
		if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
			return Retryable(err)
		}
		return err
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeStorage, unwrapRetryable(err), "save module %s", path)
	}
	return nil
}

// List returns all stored paths.
func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	ids, err := s.coll.Distinct(ctx, "_id", bson.D{})
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "list modules")
	}
	paths := make([]string, 0, len(ids))
	for _, id := range ids {
		if p, ok := id.(string); ok {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ module.Store = (*MongoStore)(nil)
