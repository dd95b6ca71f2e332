package messages

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cropshare/globals"
	"cropshare/models"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authedRequest(method, target, body, userID string) *http.Request {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(r.Context(), globals.UserIDKey, userID)
	return r.WithContext(ctx)
}

func TestSendHandler(t *testing.T) {
	store := &memStore{}
	h := NewHandlerWithService(NewService(store, &fakeNotifier{}))

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodPost, "/api/messages",
		`{"receiverId":"ngo1","message":"pickup at noon"}`, "farmer1")
	h.Send(w, r, nil)

	require.Equal(t, http.StatusCreated, w.Code)

	var msg models.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msg))
	assert.Equal(t, "farmer1", msg.SenderID)
	assert.Equal(t, "ngo1", msg.ReceiverID)
	assert.Equal(t, "pickup at noon", msg.Body)
	assert.False(t, msg.Read)
}

func TestSendHandlerRejectsBadInput(t *testing.T) {
	h := NewHandlerWithService(NewService(&memStore{}, nil))

	w := httptest.NewRecorder()
	h.Send(w, authedRequest(http.MethodPost, "/api/messages", `{"receiverId":""}`, "farmer1"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.Send(w, authedRequest(http.MethodPost, "/api/messages", `not json`, "farmer1"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendHandlerRequiresIdentity(t *testing.T) {
	h := NewHandlerWithService(NewService(&memStore{}, nil))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/messages",
		strings.NewReader(`{"receiverId":"ngo1","message":"hi"}`))
	h.Send(w, r, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetConversationMarksRead(t *testing.T) {
	store := &memStore{}
	svc := NewService(store, nil)
	h := NewHandlerWithService(svc)

	_, err := svc.Send(context.Background(), "ngo1", "farmer1", "hello")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	ps := httprouter.Params{{Key: "otherUserId", Value: "ngo1"}}
	h.GetConversation(w, authedRequest(http.MethodGet, "/api/messages/with/ngo1", "", "farmer1"), ps)

	require.Equal(t, http.StatusOK, w.Code)

	var msgs []models.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msgs))
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Read)

	n, err := svc.UnreadCount(context.Background(), "farmer1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUnreadCountHandler(t *testing.T) {
	store := &memStore{}
	svc := NewService(store, nil)
	h := NewHandlerWithService(svc)

	_, err := svc.Send(context.Background(), "ngo1", "farmer1", "one")
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), "ngo2", "farmer1", "two")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.UnreadCount(w, authedRequest(http.MethodGet, "/api/messages/unread-count", "", "farmer1"), nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Count int64 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(2), body.Count)
}

func TestMarkReadHandler(t *testing.T) {
	store := &memStore{}
	svc := NewService(store, nil)
	h := NewHandlerWithService(svc)

	_, err := svc.Send(context.Background(), "ngo1", "farmer1", "unread")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	ps := httprouter.Params{{Key: "senderId", Value: "ngo1"}}
	h.MarkRead(w, authedRequest(http.MethodPut, "/api/messages/mark-read/ngo1", "", "farmer1"), ps)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		ModifiedCount int64 `json:"modifiedCount"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.ModifiedCount)
}
