package persistence

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is a Storage backed by a MongoDB collection, one document per
// key.
type MongoStore struct {
	coll *mongo.Collection
}

var _ Storage = (*MongoStore)(nil)

// NewMongoStore creates a Mongo-backed store.
// dbName defaults to "intake" if empty, collName defaults to "state".
func NewMongoStore(client *mongo.Client, dbName, collName string) *MongoStore {
	if dbName == "" {
		dbName = "intake"
	}
	if collName == "" {
		collName = "state"
	}

	return &MongoStore{
		coll: client.Database(dbName).Collection(collName),
	}
}

type mongoStateDoc struct {
	Key   string `bson:"_id"`
	Value []byte `bson:"value,omitempty"`
}

func (s *MongoStore) Get(ctx context.Context, key string) ([]byte, error) {
	var doc mongoStateDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return doc.Value, nil
}

func (s *MongoStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.coll.UpdateByID(ctx, key,
		bson.M{"$set": bson.M{"value": value}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *MongoStore) Clear(ctx context.Context, key string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": key})
	return err
}
