package db

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection      *mongo.Collection
	CropsCollection     *mongo.Collection
	RequestsCollection  *mongo.Collection
	MessagesCollection  *mongo.Collection
	PickupsCollection   *mongo.Collection
	CatalogueCollection *mongo.Collection
	Client              *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "cropshare"
	}

	var err error
	Client, err = mongo.Connect(context.TODO(), options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	database := Client.Database(dbName)
	UserCollection = database.Collection("users")
	CropsCollection = database.Collection("crops")
	RequestsCollection = database.Collection("requests")
	MessagesCollection = database.Collection("messages")
	PickupsCollection = database.Collection("pickups")
	CatalogueCollection = database.Collection("catalogue")
}

// EnsureIndexes creates the indexes the queries depend on. The unique
// (buyerId, cropId) index is the authoritative duplicate-request guard:
// the handler's friendly existence check is advisory, this index holds
// under concurrent double-submit.
func EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	_, err := UserCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "userid", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	})
	if err != nil {
		return err
	}

	_, err = CropsCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		// 2dsphere over GeoJSON [lng, lat] points backs the nearby query.
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "cropid", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "farmerId", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "category", Value: 1}}},
	})
	if err != nil {
		return err
	}

	_, err = RequestsCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "buyerId", Value: 1}, {Key: "cropId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "farmerId", Value: 1}, {Key: "status", Value: 1}}},
	})
	if err != nil {
		return err
	}

	_, err = MessagesCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		// Unread-count and mark-read both filter on receiver + read.
		{Keys: bson.D{{Key: "receiverId", Value: 1}, {Key: "read", Value: 1}}},
		{Keys: bson.D{{Key: "senderId", Value: 1}, {Key: "receiverId", Value: 1}, {Key: "createdAt", Value: 1}}},
	})
	if err != nil {
		return err
	}

	_, err = PickupsCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "pickupid", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "farmerId", Value: 1}}},
		{Keys: bson.D{{Key: "ngoId", Value: 1}}},
	})
	return err
}
