package requests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cropshare/globals"
	"cropshare/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// memStore keeps requests in a slice and enforces the same (cropId, buyerId)
// uniqueness the database index does. With staleReads set, HasRequest reports
// nothing even when a matching request exists, which is what a racing second
// submission sees before the first insert becomes visible.
type memStore struct {
	crops      map[string]models.Crop
	requests   []models.Request
	staleReads bool
}

func (s *memStore) FindCrop(_ context.Context, cropID string) (*models.Crop, error) {
	crop, ok := s.crops[cropID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &crop, nil
}

func (s *memStore) HasRequest(_ context.Context, cropID, buyerID string) (bool, error) {
	if s.staleReads {
		return false, nil
	}
	for _, r := range s.requests {
		if r.CropID == cropID && r.BuyerID == buyerID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) Insert(_ context.Context, req models.Request) error {
	for _, r := range s.requests {
		if r.CropID == req.CropID && r.BuyerID == req.BuyerID {
			return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
		}
	}
	s.requests = append(s.requests, req)
	return nil
}

func useStore(t *testing.T, s Store) {
	t.Helper()
	prev := store
	store = s
	t.Cleanup(func() { store = prev })
}

func makeRequest(buyerID, cropID string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/api/requests",
		strings.NewReader(`{"cropId":"`+cropID+`"}`))
	r = r.WithContext(context.WithValue(r.Context(), globals.UserIDKey, buyerID))
	w := httptest.NewRecorder()
	MakeRequest(w, r, nil)
	return w
}

func TestMakeRequestCreatesPending(t *testing.T) {
	s := &memStore{crops: map[string]models.Crop{
		"c1": {CropID: "c1", FarmerID: "farmer1", Title: "Tomatoes"},
	}}
	useStore(t, s)

	w := makeRequest("ngo1", "c1")
	if w.Code != http.StatusCreated {
		t.Fatalf("first request: got %d, want 201", w.Code)
	}

	var created models.Request
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Status != models.RequestStatusPending {
		t.Fatalf("status = %q, want pending", created.Status)
	}
	if created.FarmerID != "farmer1" {
		t.Fatalf("farmerId = %q, want the crop owner", created.FarmerID)
	}
	if len(s.requests) != 1 {
		t.Fatalf("stored %d requests, want 1", len(s.requests))
	}
}

func TestMakeRequestDuplicateIsRejected(t *testing.T) {
	s := &memStore{crops: map[string]models.Crop{
		"c1": {CropID: "c1", FarmerID: "farmer1"},
	}}
	useStore(t, s)

	if w := makeRequest("ngo1", "c1"); w.Code != http.StatusCreated {
		t.Fatalf("first request: got %d, want 201", w.Code)
	}

	w := makeRequest("ngo1", "c1")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate request: got %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "already sent") {
		t.Fatalf("expected a descriptive conflict message, got %q", w.Body.String())
	}
	if len(s.requests) != 1 {
		t.Fatalf("duplicate created a second record: %d stored", len(s.requests))
	}
}

func TestMakeRequestConcurrentDuplicateHitsIndex(t *testing.T) {
	// The existence check never sees the first insert; the unique index
	// still rejects the second one.
	s := &memStore{
		crops:      map[string]models.Crop{"c1": {CropID: "c1", FarmerID: "farmer1"}},
		staleReads: true,
	}
	useStore(t, s)

	if w := makeRequest("ngo1", "c1"); w.Code != http.StatusCreated {
		t.Fatalf("first request: got %d, want 201", w.Code)
	}

	w := makeRequest("ngo1", "c1")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("racing duplicate: got %d, want 400", w.Code)
	}
	if len(s.requests) != 1 {
		t.Fatalf("racing duplicate created a second record: %d stored", len(s.requests))
	}
}

func TestMakeRequestUnknownCrop(t *testing.T) {
	useStore(t, &memStore{crops: map[string]models.Crop{}})

	if w := makeRequest("ngo1", "missing"); w.Code != http.StatusNotFound {
		t.Fatalf("unknown crop: got %d, want 404", w.Code)
	}
}
