package users

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

// GetProfile returns the caller's own profile.
func GetProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	err := db.UserCollection.FindOne(ctx, bson.M{"userid": utils.GetUserIDFromRequest(r)}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, user)
}

type profileInput struct {
	Name             string   `json:"name"`
	Location         string   `json:"location"`
	OrganizationName string   `json:"organizationName"`
	NgoRegNumber     string   `json:"ngoRegNumber"`
	MissionStatement string   `json:"missionStatement"`
	Capacity         string   `json:"capacity"`
	RequiredCrops    []string `json:"requiredCrops"`
}

// UpdateProfile mutates the caller's profile. NGO-specific fields are only
// applied when the caller holds the ngo role.
func UpdateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	role := utils.GetRoleFromRequest(r)

	var input profileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if input.Name != "" {
		update["name"] = input.Name
	}
	if input.Location != "" {
		update["location"] = input.Location
	}

	if role == models.RoleNGO {
		if input.OrganizationName != "" {
			update["organizationName"] = input.OrganizationName
		}
		if input.NgoRegNumber != "" {
			update["ngoRegNumber"] = input.NgoRegNumber
		}
		if input.MissionStatement != "" {
			update["missionStatement"] = input.MissionStatement
		}
		if input.Capacity != "" {
			update["capacity"] = input.Capacity
		}
		if input.RequiredCrops != nil {
			update["requiredCrops"] = input.RequiredCrops
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var updated models.User
	err := db.UserCollection.FindOneAndUpdate(ctx,
		bson.M{"userid": userID},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Update failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, updated)
}

// GetNGOs lists every registered NGO's public profile data.
func GetNGOs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cursor, err := db.UserCollection.Find(ctx,
		bson.M{"role": models.RoleNGO},
		options.Find().SetProjection(publicProjection()),
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cursor.Close(ctx)

	var ngos []models.User
	if err := cursor.All(ctx, &ngos); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Decode error")
		return
	}
	if ngos == nil {
		ngos = []models.User{}
	}
	utils.RespondWithJSON(w, http.StatusOK, ngos)
}

// GetNearbyNGOs lists NGO profiles other than the caller's for the
// collaboration view.
func GetNearbyNGOs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cursor, err := db.UserCollection.Find(ctx,
		bson.M{"role": models.RoleNGO, "userid": bson.M{"$ne": utils.GetUserIDFromRequest(r)}},
		options.Find().SetProjection(publicProjection()),
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cursor.Close(ctx)

	var ngos []models.User
	if err := cursor.All(ctx, &ngos); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Decode error")
		return
	}
	if ngos == nil {
		ngos = []models.User{}
	}
	utils.RespondWithJSON(w, http.StatusOK, ngos)
}

// GetUser returns one user's public profile.
func GetUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	err := db.UserCollection.FindOne(ctx,
		bson.M{"userid": ps.ByName("id")},
		options.FindOne().SetProjection(bson.M{
			"userid": 1, "name": 1, "email": 1, "role": 1, "location": 1, "organizationName": 1,
		}),
	).Decode(&user)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, user)
}

func publicProjection() bson.M {
	return bson.M{
		"userid": 1, "name": 1, "email": 1, "location": 1,
		"organizationName": 1, "ngoRegNumber": 1, "missionStatement": 1,
		"capacity": 1, "requiredCrops": 1,
	}
}
