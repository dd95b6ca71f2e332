package pickups

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"cropshare/db"
	"cropshare/models"
	"cropshare/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Create schedules a pickup for an accepted request. Only the NGO that
// made the request may schedule it.
func Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ngoID := utils.GetUserIDFromRequest(r)

	var input struct {
		RequestID  string `json:"requestId"`
		Date       string `json:"date"`
		TimeWindow string `json:"timeWindow"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.RequestID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "requestId is required")
		return
	}
	if utils.ParseDate(input.Date) == nil {
		utils.RespondWithError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	if input.TimeWindow == "" {
		input.TimeWindow = "10:00 AM - 2:00 PM"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var request models.Request
	err := db.RequestsCollection.FindOne(ctx, bson.M{"requestid": input.RequestID}).Decode(&request)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Request not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	if request.BuyerID != ngoID {
		utils.RespondWithError(w, http.StatusForbidden, "Not authorized for this request")
		return
	}
	if request.Status != models.RequestStatusAccepted {
		utils.RespondWithError(w, http.StatusBadRequest, "Pickup requires an accepted request")
		return
	}

	now := time.Now()
	pickup := models.Pickup{
		PickupID:   utils.GenerateID("p", 12),
		RequestID:  request.RequestID,
		CropID:     request.CropID,
		FarmerID:   request.FarmerID,
		NgoID:      ngoID,
		Date:       input.Date,
		TimeWindow: input.TimeWindow,
		Status:     models.PickupStatusScheduled,
		Confirm:    strings.ToUpper(utils.GenerateRandomString(8)),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := db.PickupsCollection.InsertOne(ctx, pickup); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Insert failed")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, pickup)
}

// ForFarmer lists the calling farmer's pickups.
func ForFarmer(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	listByField(w, r, "farmerId")
}

// ForNGO lists the calling NGO's pickups.
func ForNGO(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	listByField(w, r, "ngoId")
}

func listByField(w http.ResponseWriter, r *http.Request, field string) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cursor, err := db.PickupsCollection.Find(ctx,
		bson.M{field: utils.GetUserIDFromRequest(r)},
		options.Find().SetSort(bson.M{"createdAt": -1}),
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cursor.Close(ctx)

	var pickups []models.Pickup
	if err := cursor.All(ctx, &pickups); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Decode error")
		return
	}
	if pickups == nil {
		pickups = []models.Pickup{}
	}

	for i := range pickups {
		populate(ctx, &pickups[i])
	}
	utils.RespondWithJSON(w, http.StatusOK, pickups)
}

// UpdateStatus advances a pickup along the allowed transitions. Only the
// farmer being visited may advance it.
func UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	farmerID := utils.GetUserIDFromRequest(r)
	pickupID := ps.ByName("id")

	var input struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Status == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "status is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var pickup models.Pickup
	err := db.PickupsCollection.FindOne(ctx, bson.M{"pickupid": pickupID}).Decode(&pickup)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Pickup not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	if pickup.FarmerID != farmerID {
		utils.RespondWithError(w, http.StatusForbidden, "Not authorized")
		return
	}
	if !models.CanTransition(pickup.Status, input.Status) {
		utils.RespondWithError(w, http.StatusBadRequest,
			"Cannot move pickup from "+pickup.Status+" to "+input.Status)
		return
	}

	_, err = db.PickupsCollection.UpdateOne(ctx,
		bson.M{"pickupid": pickupID},
		bson.M{"$set": bson.M{"status": input.Status, "updatedAt": time.Now()}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Update failed")
		return
	}

	pickup.Status = input.Status
	utils.RespondWithJSON(w, http.StatusOK, pickup)
}

// Cancel marks a pickup cancelled. Either party may cancel before
// completion.
func Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	pickupID := ps.ByName("id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var pickup models.Pickup
	err := db.PickupsCollection.FindOne(ctx, bson.M{"pickupid": pickupID}).Decode(&pickup)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Pickup not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	if pickup.FarmerID != userID && pickup.NgoID != userID {
		utils.RespondWithError(w, http.StatusForbidden, "Not authorized")
		return
	}
	if pickup.Status == models.PickupStatusCompleted {
		utils.RespondWithError(w, http.StatusBadRequest, "Completed pickups cannot be cancelled")
		return
	}

	_, err = db.PickupsCollection.UpdateOne(ctx,
		bson.M{"pickupid": pickupID},
		bson.M{"$set": bson.M{"status": models.PickupStatusCancelled, "updatedAt": time.Now()}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Update failed")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

func populate(ctx context.Context, pickup *models.Pickup) {
	var crop models.Crop
	if err := db.CropsCollection.FindOne(ctx, bson.M{"cropid": pickup.CropID}).Decode(&crop); err == nil {
		pickup.Crop = &crop
	}

	var ngo models.UserSnippet
	err := db.UserCollection.FindOne(ctx,
		bson.M{"userid": pickup.NgoID},
		options.FindOne().SetProjection(bson.M{
			"userid": 1, "name": 1, "email": 1, "location": 1, "organizationName": 1,
		}),
	).Decode(&ngo)
	if err == nil {
		pickup.Ngo = &ngo
	}
}
