package models

import "time"

const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusRejected = "rejected"
)

// Request is an NGO's expression of interest in one crop listing. The
// farmer reference is denormalized from the crop at creation time so
// farmer-side queries avoid a join. At most one request may exist per
// (buyerId, cropId) pair, enforced by a unique index.
type Request struct {
	RequestID string    `json:"requestid" bson:"requestid"`
	BuyerID   string    `json:"buyerId" bson:"buyerId"`
	CropID    string    `json:"cropId" bson:"cropId"`
	FarmerID  string    `json:"farmerId" bson:"farmerId"`
	Status    string    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`

	// Populated on reads.
	Crop   *Crop        `json:"crop,omitempty" bson:"crop,omitempty"`
	Buyer  *UserSnippet `json:"buyer,omitempty" bson:"buyer,omitempty"`
	Farmer *UserSnippet `json:"farmer,omitempty" bson:"farmer,omitempty"`
}
