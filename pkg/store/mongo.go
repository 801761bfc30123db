package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"disaster-scout/pkg/domain"
	"disaster-scout/pkg/geo"
)

// MongoStore persists incidents in a MongoDB collection. The URL uniqueness
// invariant rides on a single atomic FindOneAndUpdate per upsert; radius
// queries prefilter on a bounding box server-side and order by exact
// haversine distance in-process.
type MongoStore struct {
	mongoClient *mongo.Client
	collection  *mongo.Collection
}

// NewMongoStore connects to MongoDB and ensures the unique index on url.
func NewMongoStore(ctx context.Context, connectionString, databaseName, collectionName string) (*MongoStore, error) {
	clientOptions := options.Client().ApplyURI(connectionString)
	mongoClient, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := mongoClient.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	collection := mongoClient.Database(databaseName).Collection(collectionName)

	// The unique index backs the at-most-one-record-per-url invariant even
	// under concurrent upserts racing on first insert.
	_, err = collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "url", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("create url index: %w", err)
	}

	return &MongoStore{mongoClient: mongoClient, collection: collection}, nil
}

// UpsertByURL inserts or replaces the record keyed by URL in one atomic
// operation. $setOnInsert pins _id and createdAt on first insert; $set
// overwrites everything else on every write.
func (s *MongoStore) UpsertByURL(ctx context.Context, in *domain.Incident) error {
	filter := bson.M{"url": in.URL}
	update := bson.M{
		"$set": bson.M{
			"title":        in.Title,
			"content":      in.Content,
			"category":     in.Category,
			"description":  in.Description,
			"locationName": in.LocationName,
			"region":       in.Region,
			"topic":        in.Topic,
			"location":     in.Location,
			"status":       in.Status,
		},
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID().Hex(),
			"createdAt": time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stored domain.Incident
	if err := s.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return fmt.Errorf("upsert incident %s: %w", in.URL, err)
	}
	in.ID = stored.ID
	in.CreatedAt = stored.CreatedAt
	return nil
}

// Query returns matching incidents ordered by createdAt descending.
func (s *MongoStore) Query(ctx context.Context, f Filter) ([]domain.Incident, error) {
	query := bson.M{}
	if f.Region != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Region), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"region": pattern},
			bson.M{"locationName": pattern},
		}
	}
	if f.Category != "" {
		query["category"] = f.Category
	}
	if f.Status != "" {
		query["status"] = f.Status
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}

	cursor, err := s.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("query incidents: %w", err)
	}
	defer cursor.Close(ctx)

	var results []domain.Incident
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode incidents: %w", err)
	}
	return results, nil
}

// Near fetches bounding-box candidates from the collection, then applies
// the exact haversine distance and nearest-first ordering in-process.
func (s *MongoStore) Near(ctx context.Context, f NearFilter) ([]NearResult, error) {
	box := geo.RadiusBox(f.Lat, f.Lon, f.RadiusKm)
	query := bson.M{
		"location.coordinates.0": bson.M{"$gte": box.MinLon, "$lte": box.MaxLon},
		"location.coordinates.1": bson.M{"$gte": box.MinLat, "$lte": box.MaxLat},
	}
	if f.Category != "" {
		query["category"] = f.Category
	}

	cursor, err := s.collection.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("near query: %w", err)
	}
	defer cursor.Close(ctx)

	var candidates []domain.Incident
	if err := cursor.All(ctx, &candidates); err != nil {
		return nil, fmt.Errorf("decode near candidates: %w", err)
	}

	var results []NearResult
	for _, in := range candidates {
		d := geo.DistanceKm(f.Lat, f.Lon, in.Location.Lat(), in.Location.Lon())
		if d > f.RadiusKm {
			continue
		}
		results = append(results, NearResult{Incident: in, DistanceKm: d})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].DistanceKm < results[j].DistanceKm
	})
	if f.Limit > 0 && len(results) > f.Limit {
		results = results[:f.Limit]
	}
	return results, nil
}

// CountByCategory groups matching incidents by category server-side.
func (s *MongoStore) CountByCategory(ctx context.Context, region string) (map[domain.Category]int, error) {
	match := bson.M{}
	if region != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(region), Options: "i"}
		match["$or"] = bson.A{
			bson.M{"region": pattern},
			bson.M{"locationName": pattern},
		}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate categories: %w", err)
	}
	defer cursor.Close(ctx)

	counts := make(map[domain.Category]int)
	for cursor.Next(ctx) {
		var row struct {
			Category domain.Category `bson:"_id"`
			Count    int             `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode category count: %w", err)
		}
		counts[row.Category] = row.Count
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("category cursor: %w", err)
	}
	return counts, nil
}

// Close disconnects the Mongo client.
func (s *MongoStore) Close(ctx context.Context) error {
	if s.mongoClient == nil {
		return nil
	}
	if err := s.mongoClient.Disconnect(ctx); err != nil && !errors.Is(err, mongo.ErrClientDisconnected) {
		return err
	}
	return nil
}
