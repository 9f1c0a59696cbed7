package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/gocomet/rider-roster/internal/domain/rider"
)

const storeName = "mongo"

// Store implements rider.Store on a MongoDB collection
type Store struct {
	coll *mongo.Collection
	now  func() time.Time
}

// New creates a store backed by the named collection of db
func New(db *mongo.Database, collection string) *Store {
	return NewWithCollection(db.Collection(collection))
}

// NewWithCollection creates a store backed by coll
func NewWithCollection(coll *mongo.Collection) *Store {
	return &Store{
		coll: coll,
		// BSON dates carry millisecond precision
		now: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// EnsureIndexes creates the unique email and nric indexes and the listing index
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("email_unique")},
		{Keys: bson.D{{Key: "nric", Value: 1}}, Options: options.Index().SetUnique(true).SetName("nric_unique")},
		{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}, Options: options.Index().SetName("created_desc")},
	})
	if err != nil {
		return fmt.Errorf("failed to create rider indexes: %w", err)
	}
	return nil
}

func (s *Store) Name() string { return storeName }

func (s *Store) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.coll.Database().Client().Disconnect(ctx)
}

// listFilter translates the search and status parameters into a query document
func listFilter(q rider.ListQuery) bson.D {
	filter := bson.D{}
	if q.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "name", Value: pattern}},
			bson.D{{Key: "email", Value: pattern}},
			bson.D{{Key: "nric", Value: pattern}},
		}})
	}
	if q.FiltersStatus() {
		filter = append(filter, bson.E{Key: "status", Value: q.Status})
	}
	return filter
}

func (s *Store) List(ctx context.Context, q rider.ListQuery) (*rider.ListResult, error) {
	q = q.Normalize()
	filter := listFilter(q)

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count riders: %w", err)
	}
	if q.PastEnd(total) {
		return &rider.ListResult{Riders: []*rider.Rider{}, Total: total}, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.Limit))

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list riders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []riderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode riders: %w", err)
	}

	riders := make([]*rider.Rider, 0, len(docs))
	for _, d := range docs {
		riders = append(riders, d.toRider())
	}
	return &rider.ListResult{Riders: riders, Total: total}, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*rider.Rider, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, rider.ErrRiderNotFound
	}

	var doc riderDocument
	err = s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, rider.ErrRiderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rider: %w", err)
	}
	return doc.toRider(), nil
}

func (s *Store) HasConflict(ctx context.Context, email, nric, excludeID string) (bool, error) {
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "email", Value: email}},
		bson.D{{Key: "nric", Value: nric}},
	}}}
	if oid, err := primitive.ObjectIDFromHex(excludeID); err == nil {
		filter = append(filter, bson.E{Key: "_id", Value: bson.D{{Key: "$ne", Value: oid}}})
	}

	n, err := s.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check rider uniqueness: %w", err)
	}
	return n > 0, nil
}

func (s *Store) Create(ctx context.Context, r *rider.Rider) error {
	now := s.now()
	doc := toDocument(r)
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return rider.ErrDuplicateRider
		}
		return fmt.Errorf("failed to create rider: %w", err)
	}

	r.ID = doc.ID.Hex()
	r.CreatedAt = now
	r.UpdatedAt = now
	return nil
}

func (s *Store) Update(ctx context.Context, r *rider.Rider) error {
	oid, err := primitive.ObjectIDFromHex(r.ID)
	if err != nil {
		return rider.ErrRiderNotFound
	}

	doc := toDocument(r)
	set := bson.D{
		{Key: "name", Value: doc.Name},
		{Key: "email", Value: doc.Email},
		{Key: "position", Value: doc.Position},
		{Key: "nric", Value: doc.NRIC},
		{Key: "image", Value: doc.Image},
		{Key: "status", Value: doc.Status},
		{Key: "phone", Value: doc.Phone},
		{Key: "vehicle", Value: doc.Vehicle},
		{Key: "license", Value: doc.License},
		{Key: "rating", Value: doc.Rating},
		{Key: "ridesCompleted", Value: doc.RidesCompleted},
		{Key: "updatedAt", Value: s.now()},
	}

	var updated riderDocument
	err = s.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return rider.ErrRiderNotFound
	case mongo.IsDuplicateKeyError(err):
		return rider.ErrDuplicateRider
	case err != nil:
		return fmt.Errorf("failed to update rider: %w", err)
	}

	*r = *updated.toRider()
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return rider.ErrRiderNotFound
	}

	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("failed to delete rider: %w", err)
	}
	if res.DeletedCount == 0 {
		return rider.ErrRiderNotFound
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to count riders: %w", err)
	}
	return n, nil
}

func (s *Store) DeleteAll(ctx context.Context) error {
	if _, err := s.coll.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("failed to delete riders: %w", err)
	}
	return nil
}
