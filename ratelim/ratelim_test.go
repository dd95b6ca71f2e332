package ratelim

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
)

func TestLimitAllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter()
	h := rl.Limit(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:55000"
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		h(w, r, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d blocked within burst", i+1)
		}
	}
}

func TestLimitBlocksAfterBurst(t *testing.T) {
	rl := NewRateLimiter()
	h := rl.Limit(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.2:55000"

	blocked := false
	for i := 0; i < rl.burst+5; i++ {
		w := httptest.NewRecorder()
		h(w, r, nil)
		if w.Code == http.StatusTooManyRequests {
			blocked = true
			break
		}
	}
	if !blocked {
		t.Fatal("burst was never exhausted")
	}

	// a different IP is unaffected
	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.3:55000"
	w := httptest.NewRecorder()
	h(w, other, nil)
	if w.Code != http.StatusOK {
		t.Fatal("second IP should have its own bucket")
	}
}

func TestClientIPStripsPort(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.168.1.7:40100"
	if got := clientIP(r); got != "192.168.1.7" {
		t.Fatalf("clientIP = %q", got)
	}
}
