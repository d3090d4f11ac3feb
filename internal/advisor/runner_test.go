package advisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"dirhamflow/internal/core"
)

type stubAdvisor struct {
	text string
	err  error
}

func (s *stubAdvisor) Advise(ctx context.Context, txns []core.Transaction) (string, error) {
	return s.text, s.err
}

func emptySnapshot() []core.Transaction { return nil }

func waitSettled(t *testing.T, r *Runner) (string, bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if advice, pending, fetched := r.Current(); !pending {
			return advice, fetched
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("runner did not settle in time")
	return "", false
}

func TestRunnerRefreshAppliesResult(t *testing.T) {
	r := NewRunner(&stubAdvisor{text: "save more"}, emptySnapshot, time.Second)

	if _, _, fetched := r.Current(); fetched {
		t.Fatal("runner must start with no fetched advice")
	}

	r.Refresh()
	advice, fetched := waitSettled(t, r)
	if !fetched || advice != "save more" {
		t.Fatalf("Current = (%q, fetched=%v), want applied advice", advice, fetched)
	}
}

func TestRunnerFallbackOnAdvisorError(t *testing.T) {
	r := NewRunner(&stubAdvisor{err: errors.New("network down")}, emptySnapshot, time.Second)

	r.Refresh()
	advice, fetched := waitSettled(t, r)
	if !fetched {
		t.Fatal("a failed request still produces displayable advice")
	}
	if advice != FallbackAdvice {
		t.Fatalf("advice = %q, want fallback", advice)
	}
}

func TestRunnerStaleResultDoesNotOverwrite(t *testing.T) {
	stub := &stubAdvisor{text: "fresh"}
	r := NewRunner(stub, emptySnapshot, time.Second)

	// Generation 2 completes first and is applied.
	r.mu.Lock()
	r.gen = 2
	r.inflight = 2
	r.mu.Unlock()
	r.run(2)

	// The older generation 1 completes afterwards with different text.
	stub.text = "stale"
	r.run(1)

	advice, _, _ := r.Current()
	if advice != "fresh" {
		t.Fatalf("stale result overwrote newer one: %q", advice)
	}
}

func TestRunnerPendingFlag(t *testing.T) {
	block := make(chan struct{})
	r := NewRunner(blockingAdvisor{block}, emptySnapshot, time.Second)

	r.Refresh()
	deadline := time.Now().Add(time.Second)
	for {
		if _, pending, _ := r.Current(); pending {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("pending flag never set")
		}
		time.Sleep(time.Millisecond)
	}
	close(block)
	waitSettled(t, r)
}

type blockingAdvisor struct{ block chan struct{} }

func (b blockingAdvisor) Advise(ctx context.Context, txns []core.Transaction) (string, error) {
	<-b.block
	return "done", nil
}
