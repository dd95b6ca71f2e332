package requests

import (
	"context"

	"cropshare/db"
	"cropshare/models"

	"go.mongodb.org/mongo-driver/bson"
)

// Store is the persistence boundary for request creation. The handler goes
// through it so the duplicate guard has both layers visible: the friendly
// existence check and the unique-index rejection underneath it.
type Store interface {
	FindCrop(ctx context.Context, cropID string) (*models.Crop, error)
	HasRequest(ctx context.Context, cropID, buyerID string) (bool, error)
	Insert(ctx context.Context, req models.Request) error
}

type mongoStore struct{}

var store Store = mongoStore{}

func (mongoStore) FindCrop(ctx context.Context, cropID string) (*models.Crop, error) {
	var crop models.Crop
	if err := db.CropsCollection.FindOne(ctx, bson.M{"cropid": cropID}).Decode(&crop); err != nil {
		return nil, err
	}
	return &crop, nil
}

func (mongoStore) HasRequest(ctx context.Context, cropID, buyerID string) (bool, error) {
	count, err := db.RequestsCollection.CountDocuments(ctx, bson.M{"cropId": cropID, "buyerId": buyerID})
	return count > 0, err
}

func (mongoStore) Insert(ctx context.Context, req models.Request) error {
	_, err := db.RequestsCollection.InsertOne(ctx, req)
	return err
}
