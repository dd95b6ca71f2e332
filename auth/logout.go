package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"cropshare/db"
	"cropshare/globals"
	"cropshare/models"
	"cropshare/utils"

	"go.mongodb.org/mongo-driver/bson"
)

func logoutHandler(w http.ResponseWriter, r *http.Request) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	// Drop the stored refresh token so the session cannot be renewed.
	_, _ = db.UserCollection.UpdateOne(ctx, bson.M{"userid": userID},
		bson.M{"$unset": bson.M{"refresh_token": "", "refresh_expiry": ""}})

	http.SetCookie(w, &http.Cookie{
		Name:     globals.TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // expires immediately
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Logged out successfully"})
}

// refreshTokenHandler exchanges a refresh token for a fresh session. The
// route is public: refresh happens exactly when the access token has
// already expired, so the stored hash is the credential.
func refreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.RefreshToken == "" {
		http.Error(w, "Refresh token required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var user models.User
	err := db.UserCollection.FindOne(ctx, bson.M{
		"refresh_token": hashToken(input.RefreshToken),
	}).Decode(&user)
	if err != nil || time.Now().After(user.RefreshExpiry) {
		http.Error(w, "Invalid or expired refresh token", http.StatusUnauthorized)
		return
	}

	refreshToken, err := issueSession(w, user)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "refreshToken": refreshToken})
}
