package notifier

import (
	"encoding/json"
	"testing"
	"time"

	"cropshare/models"
)

func TestHubDeliversToReceiverOnly(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	receiver := &Client{Send: make(chan []byte, 10), UserID: "ngo1"}
	bystander := &Client{Send: make(chan []byte, 10), UserID: "farmer1"}
	hub.register <- receiver
	hub.register <- bystander

	msg := models.Message{MessageID: "m1", SenderID: "farmer1", ReceiverID: "ngo1", Body: "hello"}
	hub.Publish("ngo1", msg)

	select {
	case got := <-receiver.Send:
		var env Envelope
		if err := json.Unmarshal(got, &env); err != nil {
			t.Fatalf("unmarshal push: %v", err)
		}
		if env.Event != "receive_message" {
			t.Fatalf("expected receive_message event, got %q", env.Event)
		}
		if env.Message.MessageID != "m1" {
			t.Fatalf("expected message m1, got %q", env.Message.MessageID)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for push")
	}

	select {
	case data := <-bystander.Send:
		t.Fatalf("bystander should receive nothing, got %s", data)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubFansOutToAllConnectionsOfUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	tab1 := &Client{Send: make(chan []byte, 10), UserID: "ngo1"}
	tab2 := &Client{Send: make(chan []byte, 10), UserID: "ngo1"}
	hub.register <- tab1
	hub.register <- tab2

	hub.Publish("ngo1", models.Message{MessageID: "m2", ReceiverID: "ngo1"})

	for i, c := range []*Client{tab1, tab2} {
		select {
		case <-c.Send:
		case <-time.After(1 * time.Second):
			t.Fatalf("tab %d never received the push", i+1)
		}
	}
}

func TestHubPublishWithNoConnectionsIsSilent(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	// no clients registered; must not block or panic
	done := make(chan struct{})
	go func() {
		hub.Publish("nobody", models.Message{MessageID: "m3"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("publish to absent receiver blocked")
	}
}

func TestHubUnregisterClosesSendChannel(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	c := &Client{Send: make(chan []byte, 1), UserID: "u1"}
	hub.register <- c
	hub.unregister <- c

	select {
	case _, open := <-c.Send:
		if open {
			t.Fatal("expected closed send channel after unregister")
		}
	case <-time.After(1 * time.Second):
		t.Fatal("send channel never closed")
	}
}

func TestHubStopClosesAllClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := &Client{Send: make(chan []byte, 1), UserID: "u1"}
	hub.register <- c
	hub.Stop()
	hub.Stop() // second stop is a no-op

	select {
	case _, open := <-c.Send:
		if open {
			t.Fatal("expected closed send channel after hub stop")
		}
	case <-time.After(1 * time.Second):
		t.Fatal("send channel never closed on stop")
	}

	// publish after stop must not block
	done := make(chan struct{})
	go func() {
		hub.Publish("u1", models.Message{})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("publish after stop blocked")
	}
}

func TestHubEnrollAfterStopDoesNotBlock(t *testing.T) {
	hub := NewHub()
	hub.Stop()
	hub.Run() // sees the closed done channel and returns

	registered := make(chan bool, 1)
	go func() {
		registered <- hub.enroll(&Client{Send: make(chan []byte, 1), UserID: "late"})
	}()
	select {
	case ok := <-registered:
		if ok {
			t.Fatal("enroll after stop should report failure")
		}
	case <-time.After(1 * time.Second):
		t.Fatal("enroll blocked after stop")
	}

	withdrawn := make(chan struct{})
	go func() {
		hub.withdraw(&Client{Send: make(chan []byte, 1), UserID: "late"})
		close(withdrawn)
	}()
	select {
	case <-withdrawn:
	case <-time.After(1 * time.Second):
		t.Fatal("withdraw blocked after stop")
	}
}
