package requests

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"cropshare/db"
	"cropshare/models"
	"cropshare/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MakeRequest creates a pending request from the calling NGO for one crop.
// The friendly existence check keeps the common double-click case cheap;
// the unique (buyerId, cropId) index is what actually prevents duplicates
// under concurrent submission.
func MakeRequest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	buyerID := utils.GetUserIDFromRequest(r)

	var input struct {
		CropID string `json:"cropId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.CropID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "cropId is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	crop, err := store.FindCrop(ctx, input.CropID)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Crop not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	exists, err := store.HasRequest(ctx, input.CropID, buyerID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if exists {
		utils.RespondWithError(w, http.StatusBadRequest, "Request already sent")
		return
	}

	now := time.Now()
	request := models.Request{
		RequestID: utils.GenerateID("r", 12),
		BuyerID:   buyerID,
		CropID:    input.CropID,
		FarmerID:  crop.FarmerID,
		Status:    models.RequestStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := store.Insert(ctx, request); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondWithError(w, http.StatusBadRequest, "Request already sent")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Insert failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, request)
}

// GetReceived lists requests addressed to the calling farmer, with crop
// and buyer details attached.
func GetReceived(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	reqs, err := findRequests(ctx, bson.M{"farmerId": utils.GetUserIDFromRequest(r)})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch requests")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, reqs)
}

// GetSent lists requests the calling NGO has made, newest first.
func GetSent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	reqs, err := findRequests(ctx, bson.M{"buyerId": utils.GetUserIDFromRequest(r)})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch requests")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, reqs)
}

// UpdateStatus lets the owning farmer accept or reject a request.
func UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	farmerID := utils.GetUserIDFromRequest(r)
	requestID := ps.ByName("id")

	var input struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if input.Status != models.RequestStatusAccepted && input.Status != models.RequestStatusRejected {
		utils.RespondWithError(w, http.StatusBadRequest, "Status must be accepted or rejected")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var request models.Request
	err := db.RequestsCollection.FindOne(ctx, bson.M{"requestid": requestID}).Decode(&request)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Request not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	if request.FarmerID != farmerID {
		utils.RespondWithError(w, http.StatusForbidden, "Not authorized")
		return
	}

	_, err = db.RequestsCollection.UpdateOne(ctx,
		bson.M{"requestid": requestID},
		bson.M{"$set": bson.M{"status": input.Status, "updatedAt": time.Now()}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Update failed")
		return
	}

	request.Status = input.Status
	utils.RespondWithJSON(w, http.StatusOK, request)
}

// GetAcceptedPartners lists accepted requests the caller is part of, either
// side. The frontend's messages tab seeds conversations from this.
func GetAcceptedPartners(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	reqs, err := findRequests(ctx, bson.M{
		"status": models.RequestStatusAccepted,
		"$or":    bson.A{bson.M{"farmerId": userID}, bson.M{"buyerId": userID}},
	})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch conversations")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, reqs)
}

// UnreadCount reports pending requests addressed to the calling farmer,
// the badge source polled by the notification aggregator.
func UnreadCount(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	count, err := db.RequestsCollection.CountDocuments(ctx, bson.M{
		"farmerId": utils.GetUserIDFromRequest(r),
		"status":   models.RequestStatusPending,
	})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"count": count})
}

func findRequests(ctx context.Context, filter bson.M) ([]models.Request, error) {
	cursor, err := db.RequestsCollection.Find(ctx, filter,
		options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reqs []models.Request
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []models.Request{}
	}

	for i := range reqs {
		populate(ctx, &reqs[i])
	}
	return reqs, nil
}

// populate attaches crop and user details the way the UI expects them.
// Missing referents are left nil rather than failing the list.
func populate(ctx context.Context, req *models.Request) {
	var crop models.Crop
	if err := db.CropsCollection.FindOne(ctx, bson.M{"cropid": req.CropID}).Decode(&crop); err == nil {
		req.Crop = &crop
	}

	proj := options.FindOne().SetProjection(bson.M{
		"userid": 1, "name": 1, "email": 1, "location": 1, "organizationName": 1,
	})

	var buyer models.UserSnippet
	if err := db.UserCollection.FindOne(ctx, bson.M{"userid": req.BuyerID}, proj).Decode(&buyer); err == nil {
		req.Buyer = &buyer
	}
	var farmer models.UserSnippet
	if err := db.UserCollection.FindOne(ctx, bson.M{"userid": req.FarmerID}, proj).Decode(&farmer); err == nil {
		req.Farmer = &farmer
	}
}
