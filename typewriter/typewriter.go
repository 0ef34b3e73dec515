// Package typewriter implements a terminal-style typing animation as a
// small state machine. An Animator types a fixed sequence of lines
// character by character into a Renderer, pausing between lines, and can
// be cut short at any point: a hard deadline, a visibility transition
// (the display region scrolled out of view after having been seen), or an
// explicit copy request. Every termination path converges on the same
// final text, so the consumer never loses characters.
package typewriter

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

// State is the animator lifecycle. Finished is terminal: no transition
// leaves it.
type State int

const (
	StateIdle State = iota
	StateTyping
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTyping:
		return "typing"
	case StateFinished:
		return "finished"
	}
	return "unknown"
}

// Renderer receives the full accumulated text after every change. Calls
// are serialized and ordered; each call's text is a prefix of the next.
// A Renderer must not call back into the Animator that invoked it.
type Renderer interface {
	Render(text string)
}

// RenderFunc adapts a function to the Renderer interface.
type RenderFunc func(text string)

func (f RenderFunc) Render(text string) { f(text) }

// Defaults applied by New for zero-valued Config fields.
const (
	DefaultBaseDelay = 8 * time.Millisecond
	DefaultJitter    = 8 * time.Millisecond
	DefaultLinePause = 110 * time.Millisecond
	DefaultDeadline  = 2200 * time.Millisecond
	DefaultSeparator = "\n"
)

// Config describes one animation. Lines is immutable after New: the
// animator never modifies it and takes its own rune view of each line.
type Config struct {
	// Lines to type, in order. Empty means the animator never leaves
	// Idle on Start; that is a legitimate terminal state, not an error.
	Lines []string

	// BaseDelay is the minimum delay before each character. Zero means
	// DefaultBaseDelay.
	BaseDelay time.Duration

	// Jitter is the upper bound of a uniform random addition to
	// BaseDelay per character. Zero means DefaultJitter; negative
	// disables jitter.
	Jitter time.Duration

	// LinePause is the fixed pause after finishing a line before the
	// next one starts. Zero means DefaultLinePause.
	LinePause time.Duration

	// Deadline is the wall-clock bound armed at Start: when it expires
	// the animation force-completes regardless of progress. Zero means
	// DefaultDeadline; negative disables the deadline entirely.
	Deadline time.Duration

	// Separator joins lines in the output. Empty means "\n".
	Separator string
}

// FullText returns the text every completion path converges on.
func (c Config) FullText() string {
	sep := c.Separator
	if sep == "" {
		sep = DefaultSeparator
	}
	return strings.Join(c.Lines, sep)
}

// Animator owns all animation state for one display surface. All
// transitions are serialized behind one mutex; pending timer callbacks
// carry a generation token so a callback that fires after ForceComplete
// already won is dropped instead of appending stale characters.
type Animator struct {
	mu       sync.Mutex
	cfg      Config
	renderer Renderer

	state State
	text  strings.Builder
	lines [][]rune
	line  int
	pos   int

	// seen records that the display region entered the viewport at
	// least once; only then does a later exit force completion.
	seen bool

	gen      int
	pending  *time.Timer
	deadline *time.Timer

	done chan struct{}
}

// New builds an Animator for one animation run. renderer may be nil, in
// which case the state machine runs without producing output (useful for
// tests that only care about state and text).
func New(cfg Config, renderer Renderer) *Animator {
	if cfg.BaseDelay == 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if cfg.Jitter == 0 {
		cfg.Jitter = DefaultJitter
	}
	if cfg.LinePause == 0 {
		cfg.LinePause = DefaultLinePause
	}
	if cfg.Deadline == 0 {
		cfg.Deadline = DefaultDeadline
	}
	if cfg.Separator == "" {
		cfg.Separator = DefaultSeparator
	}

	lines := make([][]rune, len(cfg.Lines))
	for i, l := range cfg.Lines {
		lines[i] = []rune(l)
	}

	return &Animator{
		cfg:      cfg,
		renderer: renderer,
		lines:    lines,
		done:     make(chan struct{}),
	}
}

// Start begins typing. It is a no-op unless the animator is Idle, and a
// no-op (remaining Idle) when there are no lines to type. The deadline
// timer is armed here.
func (a *Animator) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateIdle || len(a.lines) == 0 {
		return
	}
	a.state = StateTyping
	if a.cfg.Deadline > 0 {
		a.deadline = time.AfterFunc(a.cfg.Deadline, a.deadlineExpired)
	}
	a.scheduleLocked(a.charDelayLocked())
}

// ForceComplete immediately renders the complete text and ends the
// animation. Callable from any state, including before Start; once
// Finished it is a no-op.
func (a *Animator) ForceComplete() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.forceCompleteLocked()
}

// VisibilityEnter records that the display region became visible.
func (a *Animator) VisibilityEnter() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seen = true
}

// VisibilityExit force-completes the animation, but only if the region
// was seen at least once first. An exit reported before any enter (e.g.
// the region starts below the fold) does nothing; the deadline remains
// the only completion path in that case.
func (a *Animator) VisibilityExit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.seen && a.state != StateFinished {
		a.forceCompleteLocked()
	}
}

// CopyRequested force-completes the animation if needed and returns the
// complete text. The caller always receives the full join of all lines,
// never a partial prefix.
func (a *Animator) CopyRequested() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateFinished {
		a.forceCompleteLocked()
	}
	return a.text.String()
}

// State returns the current lifecycle state.
func (a *Animator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Text returns the accumulated text so far. While Typing it is always a
// prefix of Config.FullText; once Finished it equals it exactly.
func (a *Animator) Text() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.text.String()
}

// Done returns a channel closed when the animator reaches Finished.
// For an empty line sequence that never receives a completion trigger,
// the channel never closes: Idle is the terminal state then.
func (a *Animator) Done() <-chan struct{} {
	return a.done
}

// scheduleLocked arms the next tick. The generation token invalidates
// any previously scheduled callback: a stale timer that fires after
// completion (or after being superseded) sees a mismatched token and
// drops out without touching the text.
func (a *Animator) scheduleLocked(d time.Duration) {
	a.gen++
	gen := a.gen
	a.pending = time.AfterFunc(d, func() { a.tick(gen) })
}

func (a *Animator) charDelayLocked() time.Duration {
	d := a.cfg.BaseDelay
	if a.cfg.Jitter > 0 {
		d += time.Duration(rand.Int63n(int64(a.cfg.Jitter)))
	}
	return d
}

// tick appends the next character and schedules the following one. At a
// line boundary it appends the separator and waits out the line pause;
// after the last character of the last line it finishes.
func (a *Animator) tick(gen int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if gen != a.gen || a.state != StateTyping {
		return
	}

	line := a.lines[a.line]
	if a.pos < len(line) {
		a.text.WriteRune(line[a.pos])
		a.pos++
		a.renderLocked()
	}
	if a.pos < len(line) {
		a.scheduleLocked(a.charDelayLocked())
		return
	}

	if a.line == len(a.lines)-1 {
		a.finishLocked()
		return
	}

	a.text.WriteString(a.cfg.Separator)
	a.line++
	a.pos = 0
	a.renderLocked()
	a.scheduleLocked(a.cfg.LinePause)
}

func (a *Animator) deadlineExpired() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateFinished {
		a.forceCompleteLocked()
	}
}

func (a *Animator) forceCompleteLocked() {
	if a.state == StateFinished {
		return
	}
	a.text.Reset()
	a.text.WriteString(a.cfg.FullText())
	a.renderLocked()
	a.finishLocked()
}

// finishLocked is the single place the Finished transition happens:
// cancel whatever timer is pending, invalidate in-flight callbacks, and
// close the done channel.
func (a *Animator) finishLocked() {
	a.state = StateFinished
	a.gen++
	if a.pending != nil {
		a.pending.Stop()
		a.pending = nil
	}
	if a.deadline != nil {
		a.deadline.Stop()
		a.deadline = nil
	}
	close(a.done)
}

func (a *Animator) renderLocked() {
	if a.renderer != nil {
		a.renderer.Render(a.text.String())
	}
}
