package repository

import (
	"context"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// fakeCollection is an in-memory stand-in for *mongo.Collection. It supports
// exact-match bson.M filters, $set updates with upsert, and unique fields.
type fakeCollection struct {
	mu     sync.Mutex
	docs   []bson.M
	unique []string

	findErr   error
	insertErr error
	updateErr error
	deleteErr error
	unacked   bool

	inserts int
}

func newFakeCollection(unique ...string) *fakeCollection {
	return &fakeCollection{unique: unique}
}

func normalize(v any) bson.M {
	raw, err := bson.Marshal(v)
	if err != nil {
		panic(err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		panic(err)
	}
	return m
}

func matches(doc bson.M, filter any) bool {
	for k, v := range filter.(bson.M) {
		if doc[k] != v {
			return false
		}
	}
	return true
}

func duplicateKey() error {
	return mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}},
	}
}

func (c *fakeCollection) violatesUnique(doc bson.M, skip int) bool {
	for _, field := range c.unique {
		v, ok := doc[field]
		if !ok {
			continue
		}
		for i, other := range c.docs {
			if i != skip && other[field] == v {
				return true
			}
		}
	}
	return false
}

func (c *fakeCollection) indexOf(filter any) int {
	for i, doc := range c.docs {
		if matches(doc, filter) {
			return i
		}
	}
	return -1
}

func (c *fakeCollection) FindOne(_ context.Context, filter any, _ ...options.Lister[options.FindOneOptions]) *mongo.SingleResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.findErr != nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, c.findErr, nil)
	}
	i := c.indexOf(filter)
	if i < 0 {
		return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
	}
	return mongo.NewSingleResultFromDocument(c.docs[i], nil, nil)
}

func (c *fakeCollection) InsertOne(_ context.Context, document any, _ ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.inserts++
	if c.insertErr != nil {
		return nil, c.insertErr
	}
	doc := normalize(document)
	if _, ok := doc["_id"]; !ok {
		doc["_id"] = bson.NewObjectID()
	}
	if c.violatesUnique(doc, -1) {
		return nil, duplicateKey()
	}
	c.docs = append(c.docs, doc)
	return &mongo.InsertOneResult{InsertedID: doc["_id"], Acknowledged: !c.unacked}, nil
}

func (c *fakeCollection) UpdateOne(_ context.Context, filter any, update any, opts ...options.Lister[options.UpdateOneOptions]) (*mongo.UpdateResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.updateErr != nil {
		return nil, c.updateErr
	}

	args := &options.UpdateOneOptions{}
	for _, o := range opts {
		for _, set := range o.List() {
			_ = set(args)
		}
	}
	fields := normalize(update.(bson.M)["$set"])

	i := c.indexOf(filter)
	if i < 0 {
		if args.Upsert == nil || !*args.Upsert {
			return &mongo.UpdateResult{Acknowledged: !c.unacked}, nil
		}
		doc := normalize(filter)
		for k, v := range fields {
			doc[k] = v
		}
		doc["_id"] = bson.NewObjectID()
		if c.violatesUnique(doc, -1) {
			return nil, duplicateKey()
		}
		c.docs = append(c.docs, doc)
		return &mongo.UpdateResult{UpsertedCount: 1, UpsertedID: doc["_id"], Acknowledged: !c.unacked}, nil
	}

	updated := bson.M{}
	for k, v := range c.docs[i] {
		updated[k] = v
	}
	for k, v := range fields {
		updated[k] = v
	}
	if c.violatesUnique(updated, i) {
		return nil, duplicateKey()
	}

	res := &mongo.UpdateResult{MatchedCount: 1, Acknowledged: !c.unacked}
	if !reflect.DeepEqual(c.docs[i], updated) {
		c.docs[i] = updated
		res.ModifiedCount = 1
	}
	return res, nil
}

func (c *fakeCollection) DeleteOne(_ context.Context, filter any, _ ...options.Lister[options.DeleteOneOptions]) (*mongo.DeleteResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.deleteErr != nil {
		return nil, c.deleteErr
	}
	i := c.indexOf(filter)
	if i < 0 {
		return &mongo.DeleteResult{Acknowledged: !c.unacked}, nil
	}
	c.docs = append(c.docs[:i], c.docs[i+1:]...)
	return &mongo.DeleteResult{DeletedCount: 1, Acknowledged: !c.unacked}, nil
}

func (c *fakeCollection) Indexes() mongo.IndexView {
	return mongo.IndexView{}
}

func (c *fakeCollection) count(filter bson.M) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, doc := range c.docs {
		if matches(doc, filter) {
			n++
		}
	}
	return n
}

// durableView shares storage with a fakeCollection but counts its own
// inserts, standing in for the majority-write-concern handle.
type durableView struct {
	*fakeCollection
	inserts int
}

func (d *durableView) InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error) {
	d.inserts++
	return d.fakeCollection.InsertOne(ctx, document, opts...)
}
