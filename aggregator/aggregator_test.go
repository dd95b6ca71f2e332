package aggregator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cropshare/models"
	"cropshare/notifier"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	mu       sync.Mutex
	messages int64
	requests int64
	err      error
	calls    int
}

func (f *stubFetcher) UnreadMessages(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.messages, f.err
}

func (f *stubFetcher) UnreadRequests(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests, f.err
}

func (f *stubFetcher) set(messages, requests int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages, f.requests = messages, requests
}

func TestPollReplacesCountsWholesale(t *testing.T) {
	f := &stubFetcher{messages: 3, requests: 2}
	a := New(f, "farmer1", models.RoleFarmer, time.Minute)

	a.Poll(context.Background())
	assert.Equal(t, Counts{UnreadRequests: 2, UnreadMessages: 3}, a.Counts())

	// backend counts dropped (messages were read elsewhere)
	f.set(1, 0)
	a.Poll(context.Background())
	assert.Equal(t, Counts{UnreadRequests: 0, UnreadMessages: 1}, a.Counts())
}

func TestPollSkipsRequestsForNonFarmer(t *testing.T) {
	f := &stubFetcher{messages: 5, requests: 9}
	a := New(f, "ngo1", models.RoleNGO, time.Minute)

	a.Poll(context.Background())
	c := a.Counts()
	assert.Equal(t, int64(5), c.UnreadMessages)
	assert.Zero(t, c.UnreadRequests, "request badge is farmer-only")
}

func TestPushIncrementThenPollReconciles(t *testing.T) {
	f := &stubFetcher{messages: 1}
	a := New(f, "ngo1", models.RoleNGO, time.Minute)
	a.Poll(context.Background())

	a.HandlePush(notifier.Envelope{
		Event:   "receive_message",
		Message: models.Message{ReceiverID: "ngo1", Read: false},
	})
	assert.Equal(t, int64(2), a.Counts().UnreadMessages, "optimistic increment")

	// next poll is authoritative even if the optimistic value was ahead
	f.set(1, 0)
	a.Poll(context.Background())
	assert.Equal(t, int64(1), a.Counts().UnreadMessages)
}

func TestPushIgnoresForeignAndReadMessages(t *testing.T) {
	a := New(&stubFetcher{}, "ngo1", models.RoleNGO, time.Minute)

	a.HandlePush(notifier.Envelope{
		Event:   "receive_message",
		Message: models.Message{ReceiverID: "someone-else"},
	})
	a.HandlePush(notifier.Envelope{
		Event:   "receive_message",
		Message: models.Message{ReceiverID: "ngo1", Read: true},
	})
	a.HandlePush(notifier.Envelope{
		Event:   "presence",
		Message: models.Message{ReceiverID: "ngo1"},
	})

	assert.Zero(t, a.Counts().UnreadMessages)
}

func TestPollErrorKeepsLastGoodCounts(t *testing.T) {
	f := &stubFetcher{messages: 4}
	a := New(f, "ngo1", models.RoleNGO, time.Minute)
	a.Poll(context.Background())
	require.Equal(t, int64(4), a.Counts().UnreadMessages)

	f.mu.Lock()
	f.err = errors.New("backend down")
	f.mu.Unlock()

	a.Poll(context.Background())
	assert.Equal(t, int64(4), a.Counts().UnreadMessages, "failed poll must not zero the badge")
}

func TestSubscribeNotifiesOnChangeOnly(t *testing.T) {
	f := &stubFetcher{messages: 2}
	a := New(f, "ngo1", models.RoleNGO, time.Minute)

	var mu sync.Mutex
	var seen []Counts
	a.Subscribe(func(c Counts) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, c)
	})

	a.Poll(context.Background())
	a.Poll(context.Background()) // unchanged, no callback

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 1)
	assert.Equal(t, int64(2), seen[0].UnreadMessages)
}

func TestStartStopDoesNotLeak(t *testing.T) {
	f := &stubFetcher{messages: 1}
	a := New(f, "ngo1", models.RoleNGO, 10*time.Millisecond)

	a.Start(context.Background())
	time.Sleep(35 * time.Millisecond)
	a.Stop()
	a.Stop() // idempotent

	f.mu.Lock()
	callsAtStop := f.calls
	f.mu.Unlock()
	require.GreaterOrEqual(t, callsAtStop, 2, "ticker should have polled")

	time.Sleep(30 * time.Millisecond)
	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, callsAtStop, f.calls, "no polls after stop")
}
