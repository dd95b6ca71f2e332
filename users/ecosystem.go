package users

import (
	"context"
	"net/http"
	"time"

	"cropshare/db"
	"cropshare/models"
	"cropshare/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetEcosystem summarises the NGO's network: every farmer reached through
// an accepted request, with their listing counts and the most recent
// interaction.
func GetEcosystem(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ngoID := utils.GetUserIDFromRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := db.RequestsCollection.Find(ctx,
		bson.M{"buyerId": ngoID, "status": models.RequestStatusAccepted},
		options.Find().SetSort(bson.M{"updatedAt": -1}),
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cursor.Close(ctx)

	var accepted []models.Request
	if err := cursor.All(ctx, &accepted); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Decode error")
		return
	}

	// unique farmers, preserving most-recent-first order
	seen := make(map[string]bool)
	var farmerIDs []string
	for _, req := range accepted {
		if !seen[req.FarmerID] {
			seen[req.FarmerID] = true
			farmerIDs = append(farmerIDs, req.FarmerID)
		}
	}

	farmers := make([]models.ConnectedFarmer, 0, len(farmerIDs))
	for _, fid := range farmerIDs {
		cf, err := connectedFarmer(ctx, fid, ngoID)
		if err != nil {
			continue
		}
		farmers = append(farmers, cf)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"connectedFarmers":      farmers,
		"totalAcceptedRequests": len(accepted),
		"totalConnectedFarmers": len(farmers),
	})
}

func connectedFarmer(ctx context.Context, farmerID, ngoID string) (models.ConnectedFarmer, error) {
	var user models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"userid": farmerID}).Decode(&user); err != nil {
		return models.ConnectedFarmer{}, err
	}

	total, _ := db.CropsCollection.CountDocuments(ctx, bson.M{"farmerId": farmerID})
	active, _ := db.CropsCollection.CountDocuments(ctx, bson.M{
		"farmerId": farmerID, "status": models.CropStatusApproved,
	})

	cf := models.ConnectedFarmer{
		UserID:         user.UserID,
		Name:           user.Name,
		Village:        user.Location,
		Email:          user.Email,
		TotalCrops:     int(total),
		ActiveListings: int(active),
	}
	if cf.Village == "" {
		cf.Village = "Not specified"
	}

	var last models.Request
	err := db.RequestsCollection.FindOne(ctx,
		bson.M{"farmerId": farmerID, "buyerId": ngoID},
		options.FindOne().SetSort(bson.M{"updatedAt": -1}),
	).Decode(&last)
	if err == nil {
		cf.LastInteraction = last.UpdatedAt
	}
	return cf, nil
}
