package repository

import (
	"context"
	"testing"
	"time"

	"github.com/gogotex/guestbook/internal/guestbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newMockMongoRepo(mt *mtest.T) *MongoRepo {
	mt.AddMockResponses(mtest.CreateSuccessResponse()) // createIndexes
	repo := NewMongoRepo(mt.Coll)
	mt.ClearEvents()
	return repo
}

func ns(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func keyDocs(ids ...primitive.ObjectID) []bson.D {
	out := make([]bson.D, 0, len(ids))
	for _, id := range ids {
		out = append(out, bson.D{{Key: "_id", Value: id}})
	}
	return out
}

func TestMongoRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("keys page with exactly limit rows has no more", func(mt *mtest.T) {
		repo := newMockMongoRepo(mt)
		a, b := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, keyDocs(a, b)...))

		page, err := repo.KeysPage(ctx, Cursor{}, 2)
		require.NoError(mt, err)
		assert.Equal(mt, []string{a.Hex(), b.Hex()}, page.Keys)
		assert.False(mt, page.More)
		assert.Equal(mt, CursorAfter(b.Hex()), page.Next)

		cmd := mt.GetStartedEvent().Command
		assert.EqualValues(mt, 3, cmd.Lookup("limit").AsInt64())
		_, hasFilter := cmd.Lookup("filter", "_id").DocumentOK()
		assert.False(mt, hasFilter)
	})

	mt.Run("keys page with an extra row has more", func(mt *mtest.T) {
		repo := newMockMongoRepo(mt)
		after := primitive.NewObjectID()
		a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, keyDocs(a, b, c)...))

		page, err := repo.KeysPage(ctx, CursorAfter(after.Hex()), 2)
		require.NoError(mt, err)
		assert.Equal(mt, []string{a.Hex(), b.Hex()}, page.Keys)
		assert.True(mt, page.More)
		// the extra row is not consumed; the next page resumes after b
		assert.Equal(mt, CursorAfter(b.Hex()), page.Next)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, after, cmd.Lookup("filter", "_id", "$gt").ObjectID())
	})

	mt.Run("empty keys page keeps the cursor", func(mt *mtest.T) {
		repo := newMockMongoRepo(mt)
		after := CursorAfter(primitive.NewObjectID().Hex())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch))

		page, err := repo.KeysPage(ctx, after, 2)
		require.NoError(mt, err)
		assert.Empty(mt, page.Keys)
		assert.False(mt, page.More)
		assert.Equal(mt, after, page.Next)
	})

	mt.Run("non-hex cursor is rejected", func(mt *mtest.T) {
		repo := newMockMongoRepo(mt)
		_, err := repo.KeysPage(ctx, CursorAfter("not-an-object-id"), 2)
		require.ErrorIs(mt, err, ErrBadCursor)
	})

	mt.Run("delete multi", func(mt *mtest.T) {
		repo := newMockMongoRepo(mt)
		n, err := repo.DeleteMulti(ctx, nil)
		require.NoError(mt, err)
		assert.Zero(mt, n)

		ids := []string{primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex()}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}))
		n, err = repo.DeleteMulti(ctx, ids)
		require.NoError(mt, err)
		assert.Equal(mt, 2, n)

		_, err = repo.DeleteMulti(ctx, []string{"bogus"})
		require.Error(mt, err)
	})

	mt.Run("latest decodes greetings", func(mt *mtest.T) {
		repo := newMockMongoRepo(mt)
		id := primitive.NewObjectID()
		date := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "guestbook", Value: "book"},
			{Key: "content", Value: "1,2"},
			{Key: "date", Value: date},
		}))

		list, err := repo.Latest(ctx, "book", 10)
		require.NoError(mt, err)
		require.Len(mt, list, 1)
		assert.Equal(mt, id.Hex(), list[0].ID)
		assert.Equal(mt, "1,2", list[0].Content)
		assert.True(mt, date.Equal(list[0].Date))
		assert.Nil(mt, list[0].Author)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, "book", cmd.Lookup("filter", "guestbook").StringValue())
		assert.EqualValues(mt, -1, cmd.Lookup("sort", "date").AsInt64())
		assert.EqualValues(mt, 10, cmd.Lookup("limit").AsInt64())
	})

	mt.Run("since filters strictly after", func(mt *mtest.T) {
		repo := newMockMongoRepo(mt)
		since := time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch))

		list, err := repo.Since(ctx, "book", since, 100)
		require.NoError(mt, err)
		assert.Empty(mt, list)

		cmd := mt.GetStartedEvent().Command
		gt := cmd.Lookup("filter", "date", "$gt").Time()
		// BSON dates keep milliseconds
		assert.True(mt, since.Truncate(time.Millisecond).Equal(gt))
		assert.EqualValues(mt, 1, cmd.Lookup("sort", "date").AsInt64())
	})

	mt.Run("put assigns an object id", func(mt *mtest.T) {
		repo := newMockMongoRepo(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		g := &guestbook.Greeting{Guestbook: "book", Content: "hi", Date: time.Now().UTC()}
		require.NoError(mt, repo.Put(ctx, g))
		_, err := primitive.ObjectIDFromHex(g.ID)
		assert.NoError(mt, err)
		assert.Equal(mt, "insert", mt.GetStartedEvent().CommandName)
	})
}
