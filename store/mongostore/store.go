// Package mongostore implements store.ReadWriter over MongoDB collections
// holding legacy documents keyed by "_id" with camelCase fields.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/goliatone/go-scholarship-catalog/query"
	"github.com/goliatone/go-scholarship-catalog/store"
)

var (
	_ store.ReadWriter  = (*Store)(nil)
	_ store.Incrementer = (*Store)(nil)
)

// Store reads and writes documents in one database. Table names map to
// collection names one to one.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri and verifies the connection.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongostore: ping: %w", err)
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

func (s *Store) coll(table string) (*mongo.Collection, error) {
	if !store.KnownTable(table) {
		return nil, fmt.Errorf("%w: %s", store.ErrUnknownTable, table)
	}
	return s.db.Collection(table), nil
}

// Count implements store.Store.
func (s *Store) Count(ctx context.Context, table string, preds []query.Predicate) (int, error) {
	c, err := s.coll(table)
	if err != nil {
		return 0, err
	}
	n, err := c.CountDocuments(ctx, Filter(preds))
	if err != nil {
		return 0, fmt.Errorf("mongostore: count %s: %w", table, err)
	}
	return int(n), nil
}

// Select implements store.Store.
func (s *Store) Select(ctx context.Context, table string, preds []query.Predicate, opts store.SelectOptions) ([]store.Row, error) {
	c, err := s.coll(table)
	if err != nil {
		return nil, err
	}
	find := options.Find().SetSort(sortSpec(opts.Sort))
	if opts.Limit > 0 {
		find.SetLimit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		find.SetSkip(int64(opts.Offset))
	}

	cur, err := c.Find(ctx, Filter(preds), find)
	if err != nil {
		return nil, fmt.Errorf("mongostore: find %s: %w", table, err)
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongostore: decode %s: %w", table, err)
	}
	rows := make([]store.Row, len(docs))
	for i, d := range docs {
		rows[i] = store.Row(d)
	}
	return rows, nil
}

// FindOne implements store.Store.
func (s *Store) FindOne(ctx context.Context, table, field string, value any) (store.Row, error) {
	c, err := s.coll(table)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	err = c.FindOne(ctx, Filter([]query.Predicate{query.Equals(field, value)})).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongostore: find one %s: %w", table, err)
	}
	return store.Row(doc), nil
}

// Insert implements store.Writer.
func (s *Store) Insert(ctx context.Context, table string, row store.Row) (store.Row, error) {
	c, err := s.coll(table)
	if err != nil {
		return nil, err
	}
	doc := bson.M{}
	for k, v := range row {
		if k == "id" {
			continue
		}
		doc[camel(k)] = v
	}
	res, err := c.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("mongostore: insert %s: %w", table, err)
	}
	return s.FindOne(ctx, table, "id", res.InsertedID)
}

// Update implements store.Writer.
func (s *Store) Update(ctx context.Context, table, id string, row store.Row) (store.Row, error) {
	c, err := s.coll(table)
	if err != nil {
		return nil, err
	}
	set := bson.M{}
	for k, v := range row {
		if k == "id" {
			continue
		}
		set[camel(k)] = v
	}
	res, err := c.UpdateOne(ctx, Filter([]query.Predicate{query.Equals("id", id)}), bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("mongostore: update %s %s: %w", table, id, err)
	}
	if res.MatchedCount == 0 {
		return nil, store.ErrNotFound
	}
	return s.FindOne(ctx, table, "id", id)
}

// Increment implements store.Incrementer with $inc on the camelCase field.
func (s *Store) Increment(ctx context.Context, table, field string, value any, column string) error {
	c, err := s.coll(table)
	if err != nil {
		return err
	}
	res, err := c.UpdateMany(ctx, Filter([]query.Predicate{query.Equals(field, value)}), bson.M{"$inc": bson.M{camel(column): 1}})
	if err != nil {
		return fmt.Errorf("mongostore: increment %s.%s: %w", table, column, err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Delete implements store.Writer.
func (s *Store) Delete(ctx context.Context, table, id string) error {
	c, err := s.coll(table)
	if err != nil {
		return err
	}
	res, err := c.DeleteOne(ctx, Filter([]query.Predicate{query.Equals("id", id)}))
	if err != nil {
		return fmt.Errorf("mongostore: delete %s %s: %w", table, id, err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
