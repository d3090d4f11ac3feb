package advisor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"dirhamflow/internal/core"
)

// Runner owns the advisory state slot, decoupled from ledger mutation
// ordering. Each Refresh launches an asynchronous request; the newest
// completed generation wins, so a slow stale request never overwrites a
// fresher result. Concurrent refreshes collapse into one upstream call.
type Runner struct {
	advisor  Advisor
	snapshot func() []core.Transaction
	timeout  time.Duration
	group    singleflight.Group

	mu       sync.Mutex
	gen      uint64 // last issued request generation
	applied  uint64 // generation of the currently displayed result
	inflight int
	advice   string
	fetched  bool
}

// NewRunner wires the runner to the advisor and a snapshot source, the
// ledger's read-only List.
func NewRunner(a Advisor, snapshot func() []core.Transaction, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Runner{
		advisor:  a,
		snapshot: snapshot,
		timeout:  timeout,
	}
}

// Refresh starts a new advisory request in the background and returns
// immediately. Failures become the fixed fallback string, never an
// error; ledger operations never wait on this path.
func (r *Runner) Refresh() {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.inflight++
	r.mu.Unlock()

	go r.run(gen)
}

func (r *Runner) run(gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	// Overlapping refreshes share one upstream call; each still resolves
	// independently against its own generation.
	v, err, _ := r.group.Do("advice", func() (any, error) {
		return r.advisor.Advise(ctx, r.snapshot())
	})

	text := FallbackAdvice
	if err != nil {
		slog.WarnContext(ctx, "Advisory request failed, using fallback", "error", err)
	} else {
		text = v.(string)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.inflight--
	if gen <= r.applied {
		slog.DebugContext(ctx, "Stale advisory result discarded",
			"generation", gen, "applied", r.applied)
		return
	}
	r.applied = gen
	r.advice = text
	r.fetched = true
}

// Current returns the last completed advice text, whether a request is
// outstanding, and whether any advice has ever been produced.
func (r *Runner) Current() (advice string, pending bool, fetched bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.advice, r.inflight > 0, r.fetched
}
