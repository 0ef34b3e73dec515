// terminal.go - Server-driven terminal typing animation
//
// Each page load opens an SSE stream that plays the typing animation.
// The first event carries a stream id; the page reports viewport
// enter/exit transitions and copy clicks back against that id, which is
// how scrolling past the terminal or clicking "copy" cuts the animation
// short. The state machine itself lives in the typewriter package.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"

	"github.com/calebmn/opsfolio/typewriter"
)

// terminalHub tracks the animator behind each open stream so the
// visibility and copy endpoints can find it. Entries are removed when
// the stream handler returns; the sweeper catches anything leaked.
type terminalHub struct {
	mu      sync.Mutex
	streams map[string]*terminalStream
}

type terminalStream struct {
	anim    *typewriter.Animator
	created time.Time
}

func newTerminalHub() *terminalHub {
	return &terminalHub{streams: make(map[string]*terminalStream)}
}

func (h *terminalHub) register(anim *typewriter.Animator) string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		log.Fatal("Failed to generate stream id:", err)
	}
	id := hex.EncodeToString(bytes)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.streams[id] = &terminalStream{anim: anim, created: time.Now()}
	return id
}

func (h *terminalHub) get(id string) (*typewriter.Animator, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.streams[id]
	if !ok {
		return nil, false
	}
	return s.anim, true
}

func (h *terminalHub) unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.streams, id)
}

// sweep removes entries older than maxAge. A stream handler normally
// unregisters its own entry; this only catches leaks.
func (h *terminalHub) sweep(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	h.mu.Lock()
	defer h.mu.Unlock()
	removed := 0
	for id, s := range h.streams {
		if s.created.Before(cutoff) {
			s.anim.ForceComplete()
			delete(h.streams, id)
			removed++
		}
	}
	return removed
}

func (h *terminalHub) startSweeper(maxAge time.Duration) {
	go func() {
		for range time.Tick(maxAge) {
			if removed := h.sweep(maxAge); removed > 0 {
				log.Printf("Terminal hub: swept %d stale streams", removed)
			}
		}
	}()
}

// terminalFile is the on-disk shape of data/terminal.yaml. Durations
// are plain milliseconds so the file stays hand-editable.
type terminalFile struct {
	Lines       []string `yaml:"lines"`
	BaseDelayMS int      `yaml:"base_delay_ms"`
	JitterMS    int      `yaml:"jitter_ms"`
	LinePauseMS int      `yaml:"line_pause_ms"`
	DeadlineMS  int      `yaml:"deadline_ms"`
}

// loadTerminalConfig reads the animation script. A missing or broken
// file degrades to an empty line list (the terminal simply stays
// blank); it never fails the server.
func loadTerminalConfig(path string) typewriter.Config {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Terminal config unavailable (%v), terminal disabled", err)
		return typewriter.Config{}
	}

	var file terminalFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		log.Printf("Terminal config unparsable (%v), terminal disabled", err)
		return typewriter.Config{}
	}

	return typewriter.Config{
		Lines:     file.Lines,
		BaseDelay: time.Duration(file.BaseDelayMS) * time.Millisecond,
		Jitter:    time.Duration(file.JitterMS) * time.Millisecond,
		LinePause: time.Duration(file.LinePauseMS) * time.Millisecond,
		Deadline:  time.Duration(file.DeadlineMS) * time.Millisecond,
	}
}

// Setup terminal animation routes
func setupTerminalRoutes(r *gin.Engine, hub *terminalHub, cfg typewriter.Config) {
	r.GET("/terminal/stream", handleTerminalStream(hub, cfg))
	r.POST("/terminal/visibility", handleTerminalVisibility(hub))
	r.POST("/terminal/copy", handleTerminalCopy(hub, cfg))
}

// handleTerminalStream plays one animation over SSE. Events:
// "stream" (the id), "frame" (full text so far, one per change),
// "done" (the complete text, always last).
func handleTerminalStream(hub *terminalHub, cfg typewriter.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		frames := make(chan string, 256)
		anim := typewriter.New(cfg, typewriter.RenderFunc(func(text string) {
			select {
			case frames <- text:
			default:
				// Slow client: drop the intermediate frame. The done
				// event always carries the complete text.
			}
		}))

		id := hub.register(anim)
		defer hub.unregister(id)

		c.Header("Cache-Control", "no-cache")
		c.SSEvent("stream", id)
		c.Writer.Flush()

		if len(cfg.Lines) == 0 {
			// Nothing to type: report completion immediately
			c.SSEvent("done", "")
			return
		}

		anim.Start()
		ctx := c.Request.Context()
		for {
			select {
			case text := <-frames:
				c.SSEvent("frame", text)
				c.Writer.Flush()
			case <-anim.Done():
				c.SSEvent("done", anim.Text())
				return
			case <-ctx.Done():
				// Client went away mid-animation; stop the timers.
				anim.ForceComplete()
				return
			}
		}
	}
}

type visibilityRequest struct {
	ID    string `json:"id"`
	Event string `json:"event"`
}

// handleTerminalVisibility receives viewport enter/exit transitions
// for the terminal region. Exit after a recorded enter completes the
// animation; an unknown or expired id is a silent no-op (the deadline
// already covered that stream).
func handleTerminalVisibility(hub *terminalHub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req visibilityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		anim, ok := hub.get(req.ID)
		if !ok {
			c.Status(http.StatusNoContent)
			return
		}

		switch req.Event {
		case "enter":
			anim.VisibilityEnter()
		case "exit":
			anim.VisibilityExit()
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown event"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type copyRequest struct {
	ID string `json:"id"`
}

// handleTerminalCopy returns the complete terminal text for the
// clipboard, force-completing the animation first. A stale id still
// gets the full configured text, so the copy never loses characters.
func handleTerminalCopy(hub *terminalHub, cfg typewriter.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req copyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		text := cfg.FullText()
		if anim, ok := hub.get(req.ID); ok {
			text = anim.CopyRequested()
		}

		go recordCopyEvent()
		c.String(http.StatusOK, "%s", text)
	}
}
