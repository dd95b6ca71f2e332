package messages

import (
	"context"

	"cropshare/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoStore persists messages in the shared messages collection. Each
// write is a single-document operation; the store's own atomicity is all
// the consistency the messaging operations need.
type mongoStore struct {
	coll  *mongo.Collection
	users *mongo.Collection
}

func NewMongoStore(coll, users *mongo.Collection) Store {
	return &mongoStore{coll: coll, users: users}
}

func (s *mongoStore) Insert(ctx context.Context, m models.Message) error {
	_, err := s.coll.InsertOne(ctx, m)
	return err
}

func (s *mongoStore) Between(ctx context.Context, userA, userB string) ([]models.Message, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"senderId": userA, "receiverId": userB},
		bson.M{"senderId": userB, "receiverId": userA},
	}}

	cursor, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.M{"createdAt": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var msgs []models.Message
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return msgs, nil
}

func (s *mongoStore) MarkRead(ctx context.Context, receiverID, senderID string) (int64, error) {
	// Filtering on read:false makes the update one-way: a read message can
	// never transition back.
	res, err := s.coll.UpdateMany(ctx,
		bson.M{"receiverId": receiverID, "senderId": senderID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (s *mongoStore) CountUnread(ctx context.Context, receiverID string) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{"receiverId": receiverID, "read": false})
}

func (s *mongoStore) Summaries(ctx context.Context, userID string) ([]models.ConversationSummary, error) {
	pipeline := mongo.Pipeline{
		// every message I sent or received
		bson.D{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"senderId": userID},
			bson.M{"receiverId": userID},
		}}}},
		// newest first so $first picks the latest per counterpart
		bson.D{{Key: "$sort", Value: bson.M{"createdAt": -1}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$senderId", userID}},
				"$receiverId",
				"$senderId",
			}},
			"lastMessage": bson.M{"$first": "$message"},
			"timestamp":   bson.M{"$first": "$createdAt"},
		}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         s.users.Name(),
			"localField":   "_id",
			"foreignField": "userid",
			"as":           "userDetails",
		}}},
		bson.D{{Key: "$unwind", Value: "$userDetails"}},
		bson.D{{Key: "$project", Value: bson.M{
			"_id":         1,
			"lastMessage": 1,
			"timestamp":   1,
			"otherUser": bson.M{
				"userid":           "$userDetails.userid",
				"name":             "$userDetails.name",
				"email":            "$userDetails.email",
				"location":         "$userDetails.location",
				"organizationName": "$userDetails.organizationName",
			},
		}}},
		bson.D{{Key: "$sort", Value: bson.M{"timestamp": -1}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var summaries []models.ConversationSummary
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = []models.ConversationSummary{}
	}
	return summaries, nil
}
