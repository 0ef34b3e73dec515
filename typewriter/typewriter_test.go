package typewriter

import (
	"strings"
	"sync"
	"testing"
	"time"
)

// recorder captures every rendered frame so tests can check the
// prefix-of-final property and frame counts.
type recorder struct {
	mu     sync.Mutex
	frames []string
}

func (r *recorder) Render(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, text)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.frames...)
}

// fastConfig types quickly enough for tests to run to natural
// completion without a meaningful wait.
func fastConfig(lines ...string) Config {
	return Config{
		Lines:     lines,
		BaseDelay: time.Microsecond,
		Jitter:    -1,
		LinePause: time.Microsecond,
		Deadline:  10 * time.Second,
	}
}

// slowConfig types slowly enough that the animation cannot finish on
// its own within a test, so interruption paths can be exercised.
func slowConfig(lines ...string) Config {
	return Config{
		Lines:     lines,
		BaseDelay: time.Minute,
		Jitter:    -1,
		LinePause: time.Minute,
		Deadline:  time.Hour,
	}
}

func waitDone(t *testing.T, a *Animator) {
	t.Helper()
	select {
	case <-a.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("animator did not finish: state=%v text=%q", a.State(), a.Text())
	}
}

func TestNaturalCompletion(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	a := New(fastConfig("$ echo hi", "$ ls"), rec)

	a.Start()
	waitDone(t, a)

	want := "$ echo hi\n$ ls"
	if got := a.Text(); got != want {
		t.Errorf("final text: got %q, want %q", got, want)
	}
	if a.State() != StateFinished {
		t.Errorf("state: got %v, want %v", a.State(), StateFinished)
	}

	frames := rec.all()
	if len(frames) == 0 {
		t.Fatal("no frames rendered")
	}
	for i, frame := range frames {
		if !strings.HasPrefix(want, frame) {
			t.Errorf("frame %d is not a prefix of final text: %q", i, frame)
		}
	}
	if last := frames[len(frames)-1]; last != want {
		t.Errorf("last frame: got %q, want %q", last, want)
	}
}

func TestStartIdempotent(t *testing.T) {
	t.Parallel()
	a := New(fastConfig("one", "two"), nil)

	a.Start()
	a.Start() // no-op while Typing
	waitDone(t, a)
	a.Start() // no-op once Finished

	if got, want := a.Text(), "one\ntwo"; got != want {
		t.Errorf("text after repeated Start: got %q, want %q", got, want)
	}
}

func TestForceCompleteBeforeStart(t *testing.T) {
	t.Parallel()
	a := New(slowConfig("$ echo hi", "$ ls"), nil)

	a.ForceComplete()

	if a.State() != StateFinished {
		t.Fatalf("state: got %v, want %v", a.State(), StateFinished)
	}
	if got, want := a.Text(), "$ echo hi\n$ ls"; got != want {
		t.Errorf("text: got %q, want %q", got, want)
	}

	// Start after completion must not restart the animation.
	a.Start()
	if got, want := a.Text(), "$ echo hi\n$ ls"; got != want {
		t.Errorf("text after Start on finished animator: got %q, want %q", got, want)
	}
}

func TestForceCompleteMidTyping(t *testing.T) {
	t.Parallel()
	a := New(slowConfig("$ echo hi", "$ ls"), nil)

	a.Start()
	a.ForceComplete()
	waitDone(t, a)

	if got, want := a.Text(), "$ echo hi\n$ ls"; got != want {
		t.Errorf("text: got %q, want %q", got, want)
	}
}

func TestForceCompleteIdempotent(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	a := New(slowConfig("a", "b"), rec)

	a.ForceComplete()
	framesAfterFirst := len(rec.all())
	a.ForceComplete()
	a.ForceComplete()

	if got := len(rec.all()); got != framesAfterFirst {
		t.Errorf("extra frames after repeated ForceComplete: got %d, want %d", got, framesAfterFirst)
	}
	if got, want := a.Text(), "a\nb"; got != want {
		t.Errorf("text: got %q, want %q", got, want)
	}
}

func TestVisibilityExitAfterEnterForcesCompletion(t *testing.T) {
	t.Parallel()
	a := New(slowConfig("$ uptime"), nil)

	a.Start()
	a.VisibilityEnter()
	a.VisibilityExit()

	if a.State() != StateFinished {
		t.Fatalf("state after seen exit: got %v, want %v", a.State(), StateFinished)
	}
	if got, want := a.Text(), "$ uptime"; got != want {
		t.Errorf("text: got %q, want %q", got, want)
	}

	// Further exits are no-ops.
	a.VisibilityExit()
	a.VisibilityExit()
	if got, want := a.Text(), "$ uptime"; got != want {
		t.Errorf("text after repeated exits: got %q, want %q", got, want)
	}
}

func TestVisibilityExitBeforeEnterIsIgnored(t *testing.T) {
	t.Parallel()
	a := New(slowConfig("$ uptime"), nil)

	a.Start()
	a.VisibilityExit()

	if a.State() != StateTyping {
		t.Errorf("state after unseen exit: got %v, want %v", a.State(), StateTyping)
	}
}

func TestDeadlineForcesCompletion(t *testing.T) {
	t.Parallel()
	cfg := slowConfig("$ echo hi", "$ ls")
	cfg.Deadline = 20 * time.Millisecond
	a := New(cfg, nil)

	a.Start()
	waitDone(t, a)

	if got, want := a.Text(), "$ echo hi\n$ ls"; got != want {
		t.Errorf("text after deadline: got %q, want %q", got, want)
	}
}

func TestDeadlineAfterCompletionIsNoOp(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	cfg := slowConfig("a", "b")
	cfg.Deadline = 20 * time.Millisecond
	a := New(cfg, rec)

	a.Start()
	a.ForceComplete()
	frames := len(rec.all())

	// Give the deadline timer time to fire if cancellation failed.
	time.Sleep(60 * time.Millisecond)

	if got := len(rec.all()); got != frames {
		t.Errorf("frames after deadline horizon: got %d, want %d", got, frames)
	}
	if got, want := a.Text(), "a\nb"; got != want {
		t.Errorf("text: got %q, want %q", got, want)
	}
}

func TestEmptyLineSequence(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	a := New(fastConfig(), rec)

	a.Start()
	if a.State() != StateIdle {
		t.Errorf("state after Start with no lines: got %v, want %v", a.State(), StateIdle)
	}
	if got := len(rec.all()); got != 0 {
		t.Errorf("frames rendered for empty sequence: got %d, want 0", got)
	}
	if got := a.CopyRequested(); got != "" {
		t.Errorf("CopyRequested: got %q, want empty", got)
	}
}

func TestCopyMidTypingReturnsFullText(t *testing.T) {
	t.Parallel()
	a := New(slowConfig("$ echo hi", "$ ls"), nil)

	a.Start()
	got := a.CopyRequested()

	if want := "$ echo hi\n$ ls"; got != want {
		t.Errorf("CopyRequested: got %q, want %q", got, want)
	}
	if a.State() != StateFinished {
		t.Errorf("state after copy: got %v, want %v", a.State(), StateFinished)
	}

	// Repeated copies return the same text.
	if again := a.CopyRequested(); again != got {
		t.Errorf("second CopyRequested: got %q, want %q", again, got)
	}
}

func TestAllPathsYieldSameText(t *testing.T) {
	t.Parallel()
	lines := []string{"$ make deploy", "$ tail -f /var/log/app.log", "ok"}
	want := strings.Join(lines, "\n")

	paths := map[string]func(a *Animator){
		"natural":     func(a *Animator) { a.Start(); waitDone(t, a) },
		"force":       func(a *Animator) { a.Start(); a.ForceComplete() },
		"visibility":  func(a *Animator) { a.Start(); a.VisibilityEnter(); a.VisibilityExit() },
		"copy":        func(a *Animator) { a.Start(); a.CopyRequested() },
		"force-first": func(a *Animator) { a.ForceComplete(); a.Start() },
	}

	for name, run := range paths {
		cfg := slowConfig(lines...)
		if name == "natural" {
			cfg = fastConfig(lines...)
		}
		a := New(cfg, nil)
		run(a)
		if got := a.Text(); got != want {
			t.Errorf("%s path: got %q, want %q", name, got, want)
		}
	}
}

func TestBlankLineInSequence(t *testing.T) {
	t.Parallel()
	a := New(fastConfig("a", "", "b"), nil)

	a.Start()
	waitDone(t, a)

	if got, want := a.Text(), "a\n\nb"; got != want {
		t.Errorf("text: got %q, want %q", got, want)
	}
}

func TestMultibyteRunes(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	a := New(fastConfig("héllo → wörld"), rec)

	a.Start()
	waitDone(t, a)

	want := "héllo → wörld"
	if got := a.Text(); got != want {
		t.Errorf("text: got %q, want %q", got, want)
	}
	for i, frame := range rec.all() {
		if !strings.HasPrefix(want, frame) {
			t.Errorf("frame %d is not a rune-clean prefix: %q", i, frame)
		}
	}
}

func TestCustomSeparator(t *testing.T) {
	t.Parallel()
	cfg := slowConfig("a", "b", "c")
	cfg.Separator = " | "
	a := New(cfg, nil)

	a.ForceComplete()

	if got, want := a.Text(), "a | b | c"; got != want {
		t.Errorf("text with custom separator: got %q, want %q", got, want)
	}
	if got, want := cfg.FullText(), "a | b | c"; got != want {
		t.Errorf("FullText: got %q, want %q", got, want)
	}
}

func TestConcurrentTriggers(t *testing.T) {
	t.Parallel()
	a := New(slowConfig("x", "y"), nil)
	a.Start()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.VisibilityEnter()
			a.VisibilityExit()
			a.ForceComplete()
			a.CopyRequested()
		}()
	}
	wg.Wait()

	if got, want := a.Text(), "x\ny"; got != want {
		t.Errorf("text after concurrent triggers: got %q, want %q", got, want)
	}
}
