package main

import (
	"context"
	"sync"
	"time"
)

const cooldown = time.Minute

// Throttle keeps requests under rateLimit per cooldown with at most
// maxConcurrent in flight.
type Throttle struct {
	rateLimit int
	ticker    *time.Ticker

	attemptsLock sync.Mutex
	attempts     []time.Time

	concurrentReqs chan struct{}
}

func NewThrottle(rateLimit, maxConcurrent int) *Throttle {
	t := &Throttle{
		rateLimit:      rateLimit,
		ticker:         time.NewTicker(cooldown / time.Duration(rateLimit)),
		concurrentReqs: make(chan struct{}, maxConcurrent),
	}
	for range maxConcurrent {
		t.concurrentReqs <- struct{}{}
	}
	return t
}

// GetToken blocks until a request slot is free; call the returned func to
// release it.
func (t *Throttle) GetToken() func() {
	<-t.concurrentReqs
	return func() {
		t.concurrentReqs <- struct{}{}
	}
}

// Wait blocks until another request fits in the rate window.
func (t *Throttle) Wait(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.ticker.C:
		}
		t.attemptsLock.Lock()
		att := t.attempts
		if len(att) < t.rateLimit || time.Since(att[0]) > cooldown {
			att = append(att, time.Now())
			if len(att) > t.rateLimit {
				att = att[1:]
			}
			t.attempts = att
			t.attemptsLock.Unlock()
			return nil
		}
		t.attemptsLock.Unlock()
	}
}

func (t *Throttle) Stop() { t.ticker.Stop() }
