package models

import "time"

const (
	PickupStatusScheduled = "scheduled"
	PickupStatusArriving  = "arriving"
	PickupStatusCompleted = "completed"
	PickupStatusCancelled = "cancelled"
)

// Pickup is the collection appointment for an accepted request. Status is a
// real persisted field advanced by the farmer, not a display-time guess.
type Pickup struct {
	PickupID   string    `json:"pickupid" bson:"pickupid"`
	RequestID  string    `json:"requestId" bson:"requestId"`
	CropID     string    `json:"cropId" bson:"cropId"`
	FarmerID   string    `json:"farmerId" bson:"farmerId"`
	NgoID      string    `json:"ngoId" bson:"ngoId"`
	Date       string    `json:"date" bson:"date"`             // YYYY-MM-DD
	TimeWindow string    `json:"timeWindow" bson:"timeWindow"` // e.g. "10:00 AM - 2:00 PM"
	Status     string    `json:"status" bson:"status"`
	Confirm    string    `json:"confirmCode" bson:"confirmCode"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`

	Crop *Crop        `json:"crop,omitempty" bson:"crop,omitempty"`
	Ngo  *UserSnippet `json:"ngo,omitempty" bson:"ngo,omitempty"`
}

// PickupTransitions lists the allowed forward moves for a pickup status.
var PickupTransitions = map[string][]string{
	PickupStatusScheduled: {PickupStatusArriving, PickupStatusCompleted, PickupStatusCancelled},
	PickupStatusArriving:  {PickupStatusCompleted, PickupStatusCancelled},
}

// CanTransition reports whether a pickup may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range PickupTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
