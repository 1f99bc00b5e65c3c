package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	apperrors "github.com/mrlynn/securehealth-sub006/internal/errors"
	recordsDomain "github.com/mrlynn/securehealth-sub006/internal/records/domain"
)

// MongoDocumentStore implements document persistence on MongoDB. The record
// id doubles as the Mongo _id; EncryptedValue blobs are stored as BSON binary
// and restored to []byte on read, so equality filters on deterministic
// ciphertext match byte-for-byte server side.
type MongoDocumentStore struct {
	database *mongo.Database
}

// Insert stores a new document keyed by its id field.
func (m *MongoDocumentStore) Insert(
	ctx context.Context,
	collection string,
	doc recordsDomain.StorageDocument,
) error {
	id, err := documentID(doc)
	if err != nil {
		return err
	}

	payload := bson.M{"_id": id}
	for name, value := range doc {
		payload[name] = value
	}

	if _, err := m.database.Collection(collection).InsertOne(ctx, payload); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "document already exists")
		}
		return apperrors.Wrap(err, "failed to insert document")
	}
	return nil
}

// Replace overwrites an existing document.
func (m *MongoDocumentStore) Replace(
	ctx context.Context,
	collection, id string,
	doc recordsDomain.StorageDocument,
) error {
	payload := bson.M{"_id": id}
	for name, value := range doc {
		payload[name] = value
	}

	result, err := m.database.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, payload)
	if err != nil {
		return apperrors.Wrap(err, "failed to replace document")
	}
	if result.MatchedCount == 0 {
		return apperrors.Wrap(apperrors.ErrNotFound, "document not found")
	}
	return nil
}

// FindByID retrieves a document by id.
func (m *MongoDocumentStore) FindByID(
	ctx context.Context,
	collection, id string,
) (recordsDomain.StorageDocument, error) {
	var raw bson.M
	err := m.database.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if err != nil {
		if apperrors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "document not found")
		}
		return nil, apperrors.Wrap(err, "failed to find document")
	}
	return fromBSONDocument(raw), nil
}

// FindByFilter returns all documents whose fields exactly match the filter.
func (m *MongoDocumentStore) FindByFilter(
	ctx context.Context,
	collection string,
	filter map[string]any,
) ([]recordsDomain.StorageDocument, error) {
	query := bson.M{}
	for name, value := range filter {
		query[name] = value
	}

	cursor, err := m.database.Collection(collection).Find(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to query documents")
	}
	defer func() { _ = cursor.Close(ctx) }()

	var results []recordsDomain.StorageDocument
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, apperrors.Wrap(err, "failed to decode document")
		}
		results = append(results, fromBSONDocument(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate documents")
	}

	return results, nil
}

// Delete removes a document by id.
func (m *MongoDocumentStore) Delete(ctx context.Context, collection, id string) error {
	result, err := m.database.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperrors.Wrap(err, "failed to delete document")
	}
	if result.DeletedCount == 0 {
		return apperrors.Wrap(apperrors.ErrNotFound, "document not found")
	}
	return nil
}

// fromBSONDocument converts a decoded BSON map back to the storage document
// shape the codec expects: BSON binary to []byte, BSON datetime to UTC
// time.Time, BSON arrays to []any. The _id duplicate of the id field is
// dropped.
func fromBSONDocument(raw bson.M) recordsDomain.StorageDocument {
	doc := make(recordsDomain.StorageDocument, len(raw))
	for name, value := range raw {
		if name == "_id" {
			continue
		}
		doc[name] = fromBSONValue(value)
	}
	return doc
}

func fromBSONValue(value any) any {
	switch v := value.(type) {
	case bson.Binary:
		return append([]byte(nil), v.Data...)
	case bson.DateTime:
		return v.Time().UTC()
	case bson.A:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = fromBSONValue(item)
		}
		return items
	case bson.M:
		nested := make(map[string]any, len(v))
		for name, item := range v {
			nested[name] = fromBSONValue(item)
		}
		return nested
	default:
		return value
	}
}

// NewMongoDocumentStore creates a new MongoDB document store.
func NewMongoDocumentStore(database *mongo.Database) *MongoDocumentStore {
	return &MongoDocumentStore{database: database}
}
