package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/gogotex/guestbook/internal/guestbook"
	"github.com/gogotex/guestbook/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// greetingRecord is the stored shape of a greeting. Keys are ObjectIDs, which
// sort in creation order and give KeysPage a stable scan order.
type greetingRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Guestbook string             `bson:"guestbook"`
	Author    *guestbook.Author  `bson:"author,omitempty"`
	Content   string             `bson:"content"`
	Date      time.Time          `bson:"date"`
}

func (r *greetingRecord) greeting() *guestbook.Greeting {
	return &guestbook.Greeting{
		ID:        r.ID.Hex(),
		Guestbook: r.Guestbook,
		Author:    r.Author,
		Content:   r.Content,
		Date:      r.Date.UTC(),
	}
}

// MongoRepo implements Repository on a MongoDB collection. The guestbook field
// plays the role of the partition key and is the leading field of the index
// backing both scoped queries.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "guestbook", Value: 1}, {Key: "date", Value: -1}}}
	if _, err := col.Indexes().CreateOne(context.Background(), idx); err != nil {
		logger.Warnf("greetings: create index: %v", err)
	}
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Put(ctx context.Context, g *guestbook.Greeting) error {
	rec := greetingRecord{
		ID:        primitive.NewObjectID(),
		Guestbook: g.Guestbook,
		Author:    g.Author,
		Content:   g.Content,
		Date:      g.Date,
	}
	if _, err := m.col.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert greeting: %w", err)
	}
	g.ID = rec.ID.Hex()
	return nil
}

func (m *MongoRepo) Latest(ctx context.Context, book string, limit int) ([]*guestbook.Greeting, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}}).SetLimit(int64(limit))
	return m.find(ctx, bson.M{"guestbook": book}, opts)
}

func (m *MongoRepo) Since(ctx context.Context, book string, since time.Time, limit int) ([]*guestbook.Greeting, error) {
	filter := bson.M{"guestbook": book, "date": bson.M{"$gt": since}}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}}).SetLimit(int64(limit))
	return m.find(ctx, filter, opts)
}

func (m *MongoRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*guestbook.Greeting, error) {
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find greetings: %w", err)
	}
	defer cur.Close(ctx)
	out := []*guestbook.Greeting{}
	for cur.Next(ctx) {
		var rec greetingRecord
		if err := cur.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode greeting: %w", err)
		}
		out = append(out, rec.greeting())
	}
	return out, cur.Err()
}

func (m *MongoRepo) KeysPage(ctx context.Context, after Cursor, limit int) (Page, error) {
	filter := bson.M{}
	if !after.IsZero() {
		oid, err := primitive.ObjectIDFromHex(after.after)
		if err != nil {
			return Page{}, ErrBadCursor
		}
		filter["_id"] = bson.M{"$gt": oid}
	}
	// one extra row tells us whether another page exists
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(int64(limit + 1)).
		SetProjection(bson.M{"_id": 1})
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return Page{}, fmt.Errorf("scan greeting keys: %w", err)
	}
	defer cur.Close(ctx)

	p := Page{Next: after, Keys: []string{}}
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return Page{}, fmt.Errorf("decode greeting key: %w", err)
		}
		if len(p.Keys) == limit {
			p.More = true
			break
		}
		p.Keys = append(p.Keys, row.ID.Hex())
	}
	if err := cur.Err(); err != nil {
		return Page{}, fmt.Errorf("scan greeting keys: %w", err)
	}
	if len(p.Keys) > 0 {
		p.Next = CursorAfter(p.Keys[len(p.Keys)-1])
	}
	return p, nil
}

func (m *MongoRepo) DeleteMulti(ctx context.Context, keys []string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	ids := make([]primitive.ObjectID, 0, len(keys))
	for _, k := range keys {
		oid, err := primitive.ObjectIDFromHex(k)
		if err != nil {
			return 0, fmt.Errorf("greeting key %q: %w", k, err)
		}
		ids = append(ids, oid)
	}
	res, err := m.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, fmt.Errorf("delete greetings: %w", err)
	}
	return int(res.DeletedCount), nil
}

func (m *MongoRepo) Ping(ctx context.Context) error {
	return m.col.Database().Client().Ping(ctx, nil)
}
