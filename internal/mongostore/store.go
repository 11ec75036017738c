// Package mongostore - docstore.Store поверх MongoDB: одна коллекция Mongo на коллекцию документов.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fungarium/internal/docstore"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// stored - форма документа в Mongo. seq (ULID первой вставки) задаёт порядок GetAll.
type stored struct {
	ID   string `bson:"_id"`
	Seq  string `bson:"seq"`
	Body bson.M `bson:"body"`
}

type Store struct {
	client *mongo.Client
	db     *mongo.Database
	log    *logrus.Entry
}

// Open подключается к uri и проверяет соединение.
func Open(ctx context.Context, uri, database string, log *logrus.Entry) (*Store, error) {
	if uri == "" {
		return nil, fmt.Errorf("database connection URL is empty")
	}
	if database == "" {
		return nil, fmt.Errorf("database name is empty")
	}
	opts := options.Client().ApplyURI(uri).
		SetMaxPoolSize(50).
		SetConnectTimeout(5 * time.Second).
		SetSocketTimeout(10 * time.Second)

	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(cctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pctx, cancelPing := context.WithTimeout(ctx, 2*time.Second)
	defer cancelPing()
	if err := client.Ping(pctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	log.WithField("database", database).Info("connected to MongoDB")
	return &Store{client: client, db: client.Database(database), log: log}, nil
}

func (s *Store) Close() error {
	if err := s.client.Disconnect(context.Background()); err != nil {
		s.log.WithError(err).Error("failed to disconnect MongoDB client")
		return err
	}
	return nil
}

func (s *Store) GetAll(ctx context.Context, collection string) ([]docstore.Document, error) {
	return s.find(ctx, collection, bson.M{})
}

func (s *Store) GetOne(ctx context.Context, collection, id string) (docstore.Document, error) {
	var doc stored
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return docstore.Document{}, docstore.ErrNotFound
	}
	if err != nil {
		return docstore.Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return toDocument(doc), nil
}

func (s *Store) Upsert(ctx context.Context, collection, id string, body map[string]any) error {
	plain, err := docstore.Normalize(body)
	if err != nil {
		return err
	}
	update := bson.M{
		"$set":         bson.M{"body": plain},
		"$setOnInsert": bson.M{"seq": docstore.NewID()},
	}
	_, err = s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// QueryWhere отбирает на сервере документы, где ключ есть, и сравнивает через docstore.Match:
// так "7" и 7 совпадают одинаково во всех хранилищах.
func (s *Store) QueryWhere(ctx context.Context, collection, key string, op docstore.Op, value any) ([]docstore.Document, error) {
	filter := bson.M{}
	if op != docstore.OpNe && value != nil {
		filter["body."+key] = bson.M{"$exists": true, "$ne": nil}
	}
	docs, err := s.find(ctx, collection, filter)
	if err != nil {
		return nil, err
	}
	return docstore.Filter(docs, key, op, value), nil
}

func (s *Store) find(ctx context.Context, collection string, filter bson.M) ([]docstore.Document, error) {
	cur, err := s.db.Collection(collection).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	out := []docstore.Document{}
	for cur.Next(ctx) {
		var doc stored
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", collection, err)
		}
		out = append(out, toDocument(doc))
	}
	return out, cur.Err()
}

func toDocument(doc stored) docstore.Document {
	body, _ := plain(doc.Body).(map[string]any)
	if body == nil {
		body = map[string]any{}
	}
	return docstore.Document{ID: doc.ID, Body: body}
}

// plain переводит BSON-типы драйвера в JSON-дерево, как у остальных хранилищ.
func plain(v any) any {
	switch t := v.(type) {
	case bson.M:
		out := make(map[string]any, len(t))
		for k, x := range t {
			out[k] = plain(x)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			out[k] = plain(x)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = plain(e.Value)
		}
		return out
	case primitive.A:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = plain(x)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = plain(x)
		}
		return out
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case int:
		return float64(t)
	case primitive.DateTime:
		return t.Time().UTC().Format(time.RFC3339Nano)
	case primitive.ObjectID:
		return t.Hex()
	case primitive.Decimal128:
		return t.String()
	}
	return v
}
