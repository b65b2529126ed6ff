package report

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tezrry/spinbench/bench"
)

type insertFunc func(ctx context.Context, docs []interface{}) error

// MongoExporter archives one document per sample plus the run context.
type MongoExporter struct {
	client *mongo.Client
	insert insertFunc
	meta   Context
	docs   []interface{}
}

// mongoRun is the stored document: the run with the machine context inlined.
type mongoRun struct {
	Run     `bson:",inline"`
	Context Context `bson:"context"`
}

func NewMongoExporter(ctx context.Context, uri, database, collection string) (*MongoExporter, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", uri, err)
	}

	coll := client.Database(database).Collection(collection)
	return &MongoExporter{
		client: client,
		insert: func(ctx context.Context, docs []interface{}) error {
			_, err := coll.InsertMany(ctx, docs)
			return err
		},
		meta: NewContext(),
	}, nil
}

func (e *MongoExporter) Record(s bench.Sample) error {
	e.docs = append(e.docs, mongoRun{Run: NewRun(s), Context: e.meta})
	return nil
}

func (e *MongoExporter) Flush(ctx context.Context) error {
	if len(e.docs) == 0 {
		return nil
	}
	if err := e.insert(ctx, e.docs); err != nil {
		return fmt.Errorf("insert %d samples: %w", len(e.docs), err)
	}
	e.docs = e.docs[:0]
	return nil
}

func (e *MongoExporter) Close() error {
	if e.client == nil {
		return nil
	}
	return e.client.Disconnect(context.Background())
}
