package crops

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"cropshare/db"
	"cropshare/models"
	"cropshare/rdx"
	"cropshare/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetCrops lists approved listings, filtered by category / maxPrice /
// searchTerm query params.
func GetCrops(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	params := r.URL.Query()
	filter := bson.M{"status": models.CropStatusApproved}

	if c := params.Get("category"); c != "" && c != "all" {
		filter["category"] = c
	}
	if max := utils.ParseFloat(params.Get("maxPrice")); max > 0 {
		filter["price"] = bson.M{"$lte": max}
	}
	if term := params.Get("searchTerm"); term != "" {
		re := bson.M{"$regex": term, "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
			bson.M{"location.address": re},
		}
	}

	crops, err := findCrops(ctx, filter, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch crops")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, crops)
}

// GetCrop returns one listing. Unapproved crops stay hidden from the public.
func GetCrop(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var crop models.Crop
	err := db.CropsCollection.FindOne(ctx, bson.M{"cropid": ps.ByName("id")}).Decode(&crop)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Crop not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	if crop.Status != models.CropStatusApproved {
		utils.RespondWithError(w, http.StatusForbidden, "This crop is not yet approved")
		return
	}

	attachFarmer(ctx, &crop)
	utils.RespondWithJSON(w, http.StatusOK, crop)
}

// GetMyCrops lists every listing of the calling farmer, any status.
func GetMyCrops(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	crops, err := findCrops(ctx,
		bson.M{"farmerId": utils.GetUserIDFromRequest(r)},
		options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch crops")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, crops)
}

// GetNearbyCrops runs the geospatial query: approved listings within dist
// kilometres of (lat, lng). The $near point is GeoJSON, so [lng, lat].
func GetNearbyCrops(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	params := r.URL.Query()
	lat := utils.ParseFloat(params.Get("lat"))
	lng := utils.ParseFloat(params.Get("lng"))
	distKm := utils.ParseFloat(params.Get("dist"))
	if distKm <= 0 {
		distKm = 50
	}

	point := models.NewGeoPoint(lat, lng, "")
	filter := bson.M{
		"status": models.CropStatusApproved,
		"location": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        point.Type,
					"coordinates": point.Coordinates,
				},
				"$maxDistance": distKm * 1000,
			},
		},
	}

	crops, err := findCrops(ctx, filter, nil)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch nearby crops")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, crops)
}

// GetCatalogue serves the pre-seeded crop catalogue, cached in redis for
// two hours.
func GetCatalogue(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	const redisKey = "crop_catalogue"
	var items []models.CatalogueItem

	if val, err := rdx.RdxGet(redisKey); err == nil && val != "" {
		if err := json.Unmarshal([]byte(val), &items); err == nil {
			utils.RespondWithJSON(w, http.StatusOK, items)
			return
		}
	}

	cursor, err := db.CatalogueCollection.Find(ctx, bson.M{})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve catalogue")
		return
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &items); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve catalogue")
		return
	}
	if items == nil {
		items = []models.CatalogueItem{}
	}

	if jsonBytes, err := json.Marshal(items); err == nil {
		_ = rdx.RdxSetTTL(redisKey, string(jsonBytes), 2*time.Hour)
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

// Suggest returns crop title autocompletions for the q prefix.
func Suggest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	suggestions, err := rdx.SuggestCrops(ctx, r.URL.Query().Get("q"), 10)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Suggestion lookup failed")
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	utils.RespondWithJSON(w, http.StatusOK, suggestions)
}

func findCrops(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Crop, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = db.CropsCollection.Find(ctx, filter, opts)
	} else {
		cursor, err = db.CropsCollection.Find(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var crops []models.Crop
	if err := cursor.All(ctx, &crops); err != nil {
		return nil, err
	}
	if crops == nil {
		crops = []models.Crop{}
	}

	for i := range crops {
		attachFarmer(ctx, &crops[i])
	}
	return crops, nil
}

// attachFarmer populates the owning farmer's public snippet. Lookup
// failures leave the field empty rather than failing the listing.
func attachFarmer(ctx context.Context, crop *models.Crop) {
	var snip models.UserSnippet
	err := db.UserCollection.FindOne(ctx,
		bson.M{"userid": crop.FarmerID},
		options.FindOne().SetProjection(bson.M{
			"userid": 1, "name": 1, "email": 1, "location": 1,
		}),
	).Decode(&snip)
	if err == nil {
		crop.Farmer = &snip
	}
}
