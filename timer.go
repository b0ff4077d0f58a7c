/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"sync"
	"time"
)

type countdown struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// countdowns runs at most one ticking goroutine per room code. The goroutine
// knows only the code; onTick re-fetches the room on every tick and returns
// false once the countdown has nothing left to do.
type countdowns struct {
	mu       sync.Mutex
	active   map[string]*countdown
	interval time.Duration
	onTick   func(code string, cd *countdown) bool
}

func newCountdowns(interval time.Duration, onTick func(string, *countdown) bool) *countdowns {
	return &countdowns{
		active:   make(map[string]*countdown),
		interval: interval,
		onTick:   onTick,
	}
}

// start replaces any countdown already running for code.
func (t *countdowns) start(code string) {
	ctx, cancel := context.WithCancel(context.Background())
	cd := &countdown{ctx: ctx, cancel: cancel}

	t.mu.Lock()
	if old, ok := t.active[code]; ok {
		old.cancel()
	}
	t.active[code] = cd
	t.mu.Unlock()

	go t.run(code, cd)
}

// stop cancels the countdown for code. Callers hold the room lock, so a tick
// already waiting on that lock observes the cancellation before it mutates.
func (t *countdowns) stop(code string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cd, ok := t.active[code]; ok {
		cd.cancel()
		delete(t.active, code)
	}
}

func (t *countdowns) running(code string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.active[code]
	return ok
}

func (t *countdowns) current(code string) *countdown {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.active[code]
}

// release forgets cd if it is still the countdown registered for code.
func (t *countdowns) release(code string, cd *countdown) {
	cd.cancel()

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active[code] == cd {
		delete(t.active, code)
	}
}

func (t *countdowns) run(code string, cd *countdown) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-cd.ctx.Done():
			return
		case <-ticker.C:
			if !t.onTick(code, cd) {
				t.release(code, cd)
				return
			}
		}
	}
}
