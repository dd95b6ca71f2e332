package crops

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"cropshare/db"
	"cropshare/models"
	"cropshare/mq"
	"cropshare/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type cropInput struct {
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Quantity    string  `json:"quantity"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Location    struct {
		Lat     float64 `json:"lat"`
		Lng     float64 `json:"lng"`
		Address string  `json:"address"`
	} `json:"location"`
}

// AddCrop creates a listing owned by the calling farmer. Listings are
// auto-approved.
func AddCrop(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	farmerID := utils.GetUserIDFromRequest(r)

	var input cropInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid crop data")
		return
	}

	if input.Title == "" || input.Quantity == "" || input.Description == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Title, quantity and description are required")
		return
	}
	if !utils.Contains(models.CropCategories, input.Category) {
		utils.RespondWithError(w, http.StatusBadRequest, "Please select a valid category")
		return
	}

	now := time.Now()
	crop := models.Crop{
		CropID:      utils.GenerateID("c", 12),
		FarmerID:    farmerID,
		Title:       input.Title,
		Price:       input.Price,
		Quantity:    input.Quantity,
		Description: input.Description,
		Category:    input.Category,
		ImageURL:    input.Image,
		Status:      models.CropStatusApproved,
		Location:    models.NewGeoPoint(input.Location.Lat, input.Location.Lng, input.Location.Address),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ctx := r.Context()
	if _, err := db.CropsCollection.InsertOne(ctx, crop); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Insert failed")
		return
	}

	go mq.Emit(context.Background(), "crop-created", mq.Event{
		EntityType: "crop", EntityID: crop.CropID, Method: "POST", Title: crop.Title,
	})
	utils.RespondWithJSON(w, http.StatusCreated, crop)
}

// EditCrop updates fields on a listing the caller owns.
func EditCrop(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	cropID := ps.ByName("id")
	farmerID := utils.GetUserIDFromRequest(r)

	var input cropInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid crop data")
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if input.Title != "" {
		update["title"] = input.Title
	}
	if input.Price > 0 {
		update["price"] = input.Price
	}
	if input.Quantity != "" {
		update["quantity"] = input.Quantity
	}
	if input.Description != "" {
		update["description"] = input.Description
	}
	if input.Category != "" {
		if !utils.Contains(models.CropCategories, input.Category) {
			utils.RespondWithError(w, http.StatusBadRequest, "Please select a valid category")
			return
		}
		update["category"] = input.Category
	}
	if input.Image != "" {
		update["image"] = input.Image
	}
	if input.Location.Lat != 0 || input.Location.Lng != 0 {
		update["location"] = models.NewGeoPoint(input.Location.Lat, input.Location.Lng, input.Location.Address)
	}

	ctx := r.Context()
	res, err := db.CropsCollection.UpdateOne(ctx,
		bson.M{"cropid": cropID, "farmerId": farmerID},
		bson.M{"$set": update},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Update failed")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Crop not found")
		return
	}

	go mq.Emit(context.Background(), "crop-updated", mq.Event{
		EntityType: "crop", EntityID: cropID, Method: "PUT", Title: input.Title,
	})
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

// DeleteCrop removes a listing. Only the owning farmer may delete it.
func DeleteCrop(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	cropID := ps.ByName("id")
	farmerID := utils.GetUserIDFromRequest(r)

	ctx := r.Context()

	var crop models.Crop
	err := db.CropsCollection.FindOne(ctx, bson.M{"cropid": cropID}).Decode(&crop)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Crop not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if crop.FarmerID != farmerID {
		utils.RespondWithError(w, http.StatusForbidden, "Not authorized to delete this crop")
		return
	}

	if _, err := db.CropsCollection.DeleteOne(ctx, bson.M{"cropid": cropID}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Delete failed")
		return
	}

	go mq.Emit(context.Background(), "crop-deleted", mq.Event{
		EntityType: "crop", EntityID: cropID, Method: "DELETE",
	})
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Crop removed"})
}
