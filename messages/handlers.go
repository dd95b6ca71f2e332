package messages

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"cropshare/db"
	"cropshare/utils"

	"github.com/julienschmidt/httprouter"
)

// Handler exposes the messaging service over HTTP. The notifier arrives
// through the service at construction time.
type Handler struct {
	svc *Service
}

func NewHandler(notifier Notifier) *Handler {
	store := NewMongoStore(db.MessagesCollection, db.UserCollection)
	return &Handler{svc: NewService(store, notifier)}
}

// NewHandlerWithService exists for tests wiring a fake store.
func NewHandlerWithService(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 5*time.Second)
}

// POST /api/messages
func (h *Handler) Send(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		ReceiverID string `json:"receiverId"`
		Message    string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	msg, err := h.svc.Send(ctx, utils.GetUserIDFromRequest(r), input.ReceiverID, input.Message)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, msg)
}

// GET /api/messages/with/:otherUserId. Side effect: marks the conversation read.
func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := requestContext(r)
	defer cancel()

	msgs, err := h.svc.Conversation(ctx, utils.GetUserIDFromRequest(r), ps.ByName("otherUserId"))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, msgs)
}

// GET /api/messages/unread-count
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := requestContext(r)
	defer cancel()

	count, err := h.svc.UnreadCount(ctx, utils.GetUserIDFromRequest(r))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"count": count})
}

// GET /api/messages/conversations
func (h *Handler) Conversations(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := requestContext(r)
	defer cancel()

	list, err := h.svc.ConversationList(ctx, utils.GetUserIDFromRequest(r))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// PUT /api/messages/mark-read/:senderId
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := requestContext(r)
	defer cancel()

	modified, err := h.svc.MarkRead(ctx, utils.GetUserIDFromRequest(r), ps.ByName("senderId"))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message":       "Messages marked as read",
		"modifiedCount": modified,
	})
}
