package filemgr

import (
	"context"
	"net/http"
	"time"

	"cropshare/apperror"
	"cropshare/db"
	"cropshare/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// uploadTarget couples an entity kind with the document it decorates.
type uploadTarget struct {
	entity     EntityType
	picType    PictureType
	collection *mongo.Collection
	keyField   string
	ownerField string
	imageField string
}

func resolveTarget(entityType string) *uploadTarget {
	switch entityType {
	case "crop":
		return &uploadTarget{EntityCrop, PicPhoto, db.CropsCollection, "cropid", "farmerId", "image"}
	case "user":
		return &uploadTarget{EntityUser, PicAvatar, db.UserCollection, "userid", "userid", "avatar"}
	default:
		return nil
	}
}

// UploadImage handles POST /api/upload/:entityType/:id. The caller must own
// the target document; the stored filename is written onto it.
func UploadImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)

	target := resolveTarget(ps.ByName("entityType"))
	if target == nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Unsupported entity type")
		return
	}
	entityID := ps.ByName("id")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := authorize(ctx, target, entityID, userID); err != nil {
		utils.RespondError(w, err)
		return
	}

	if err := r.ParseMultipartForm(12 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "image file is required")
		return
	}
	file, err := files[0].Open()
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Unable to read upload")
		return
	}

	name, thumb, err := SaveImageWithThumb(file, files[0], target.entity, target.picType, 200, userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, err = target.collection.UpdateOne(ctx,
		bson.M{target.keyField: entityID},
		bson.M{"$set": bson.M{target.imageField: name, "updatedAt": time.Now()}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to record upload")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"filename": name,
		"thumb":    thumb,
		"url":      "/static/uploads/" + string(target.entity) + "/" + string(target.picType) + "/" + name,
	})
}

func authorize(ctx context.Context, target *uploadTarget, entityID, userID string) error {
	var doc bson.M
	err := target.collection.FindOne(ctx, bson.M{target.keyField: entityID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return apperror.NotFound(string(target.entity), entityID)
	} else if err != nil {
		return err
	}
	owner, _ := doc[target.ownerField].(string)
	if owner != userID {
		return apperror.Forbidden("Not authorized for this " + string(target.entity))
	}
	return nil
}
