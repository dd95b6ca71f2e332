package aggregator

import (
	"context"
	"log"
	"sync"
	"time"

	"cropshare/models"
	"cropshare/notifier"
)

// Counts is the badge state: pending requests (farmer role only) and
// unread messages (both roles).
type Counts struct {
	UnreadRequests int64 `json:"unreadRequests"`
	UnreadMessages int64 `json:"unreadMessages"`
}

// Fetcher retrieves authoritative counts from the backend.
type Fetcher interface {
	UnreadMessages(ctx context.Context) (int64, error)
	UnreadRequests(ctx context.Context) (int64, error)
}

// Aggregator merges two signals into the badge counters: a periodic poll
// and live pushes. The poll is authoritative: its result fully replaces
// the counters, so an optimistic push increment can never drift for longer
// than one poll interval. The push path only ever adds between polls.
type Aggregator struct {
	fetcher  Fetcher
	userID   string
	role     string
	interval time.Duration

	mu     sync.Mutex
	counts Counts
	subs   []func(Counts)

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func New(fetcher Fetcher, userID, role string, interval time.Duration) *Aggregator {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Aggregator{
		fetcher:  fetcher,
		userID:   userID,
		role:     role,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start polls once immediately, then on every tick until Stop.
func (a *Aggregator) Start(ctx context.Context) {
	a.Poll(ctx)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ticker := time.NewTicker(a.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				a.Poll(ctx)
			case <-a.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the poll ticker. Required on logout/teardown so the session
// does not leak a recurring timer.
func (a *Aggregator) Stop() {
	a.stopOnce.Do(func() { close(a.stop) })
	a.wg.Wait()
}

// Poll fetches both counts and replaces the state wholesale. Replacement,
// not addition, is what reconciles any optimistic increments since the
// last cycle.
func (a *Aggregator) Poll(ctx context.Context) {
	var next Counts

	if a.role == models.RoleFarmer {
		n, err := a.fetcher.UnreadRequests(ctx)
		if err != nil {
			log.Printf("aggregator: poll requests: %v", err)
			return
		}
		next.UnreadRequests = n
	}

	n, err := a.fetcher.UnreadMessages(ctx)
	if err != nil {
		log.Printf("aggregator: poll messages: %v", err)
		return
	}
	next.UnreadMessages = n

	a.mu.Lock()
	changed := next != a.counts
	a.counts = next
	subs := a.subs
	a.mu.Unlock()

	if changed {
		for _, fn := range subs {
			fn(next)
		}
	}
}

// HandlePush applies a live receive_message event: increment only when the
// message targets this user and is still unread.
func (a *Aggregator) HandlePush(env notifier.Envelope) {
	if env.Event != "receive_message" {
		return
	}
	if env.Message.ReceiverID != a.userID || env.Message.Read {
		return
	}

	a.mu.Lock()
	a.counts.UnreadMessages++
	next := a.counts
	subs := a.subs
	a.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

func (a *Aggregator) Counts() Counts {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counts
}

// Subscribe registers an observer invoked on every counter change.
func (a *Aggregator) Subscribe(fn func(Counts)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.subs = append(a.subs, fn)
}
