package models

import "time"

const (
	CropStatusPending  = "pending"
	CropStatusApproved = "approved"
	CropStatusRejected = "rejected"
)

// CropCategories are the accepted listing categories.
var CropCategories = []string{"Grains", "Vegetables", "Fruits", "Seeds", "Equipment"}

// GeoPoint is a GeoJSON point. Coordinates are [longitude, latitude], in
// that order, at every boundary: input, storage, query, rendering. Mongo's
// 2dsphere index requires lng-first; keep all conversions in this type.
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
	Address     string    `json:"address,omitempty" bson:"address,omitempty"`
}

// NewGeoPoint builds a point from latitude/longitude as humans quote them.
func NewGeoPoint(lat, lng float64, address string) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}, Address: address}
}

func (g GeoPoint) Lng() float64 {
	if len(g.Coordinates) == 2 {
		return g.Coordinates[0]
	}
	return 0
}

func (g GeoPoint) Lat() float64 {
	if len(g.Coordinates) == 2 {
		return g.Coordinates[1]
	}
	return 0
}

type Crop struct {
	CropID      string    `json:"cropid" bson:"cropid"`
	FarmerID    string    `json:"farmerId" bson:"farmerId"`
	Title       string    `json:"title" bson:"title"`
	Price       float64   `json:"price" bson:"price"`
	Quantity    string    `json:"quantity" bson:"quantity"` // free text, e.g. "100kg"
	Description string    `json:"description" bson:"description"`
	Category    string    `json:"category" bson:"category"`
	ImageURL    string    `json:"image,omitempty" bson:"image,omitempty"`
	Status      string    `json:"status" bson:"status"`
	Location    GeoPoint  `json:"location" bson:"location"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`

	// Populated on reads that join the owning farmer.
	Farmer *UserSnippet `json:"farmer,omitempty" bson:"farmer,omitempty"`
}

// CatalogueItem is a pre-seeded crop type used for autocomplete and the
// browse catalogue.
type CatalogueItem struct {
	Name     string `json:"name" bson:"name"`
	Category string `json:"category" bson:"category"`
	ImageURL string `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	Unit     string `json:"unit,omitempty" bson:"unit,omitempty"`
}
