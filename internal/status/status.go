// Package status provides the short-lived user-facing message channel.
// A message replaces any currently displayed one and expires on its own
// after a fixed display duration.
package status

import (
	"sync"
	"time"
)

// Kind classifies a status message. Callers always pass an explicit kind;
// there is no text-based classification.
type Kind string

const (
	// Info reports a successful or neutral outcome.
	Info Kind = "info"
	// Error reports a failed outcome.
	Error Kind = "error"
)

// Message is a displayed status line.
type Message struct {
	Text      string    `json:"text"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
}

// DefaultDisplayDuration is how long a message stays visible unless
// superseded earlier.
const DefaultDisplayDuration = 4 * time.Second

// Channel holds at most one current message. Reporting a new message
// supersedes the previous one and restarts the expiry timer.
type Channel struct {
	mu       sync.Mutex
	current  *Message
	duration time.Duration
	timer    *time.Timer
	onChange func(*Message)
}

// NewChannel creates a channel with the given display duration.
// A duration of zero uses DefaultDisplayDuration.
func NewChannel(duration time.Duration) *Channel {
	if duration <= 0 {
		duration = DefaultDisplayDuration
	}
	return &Channel{duration: duration}
}

// OnChange registers a callback invoked whenever the current message
// changes. The callback receives nil when a message expires. Only one
// callback is supported; later registrations replace earlier ones.
func (c *Channel) OnChange(fn func(*Message)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// Report replaces the current message and schedules its expiry.
func (c *Channel) Report(text string, kind Kind) {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	msg := &Message{Text: text, Kind: kind, CreatedAt: time.Now()}
	c.current = msg
	c.timer = time.AfterFunc(c.duration, func() {
		c.expire(msg)
	})
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn(msg)
	}
}

// ClearErrors removes the current message if it is an error. Called by the
// persistence gateway when a write succeeds after earlier failures.
func (c *Channel) ClearErrors() {
	c.mu.Lock()
	if c.current == nil || c.current.Kind != Error {
		c.mu.Unlock()
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.current = nil
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn(nil)
	}
}

// Current returns the displayed message, or nil if none.
func (c *Channel) Current() *Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// expire clears the message if it is still the displayed one.
func (c *Channel) expire(msg *Message) {
	c.mu.Lock()
	if c.current != msg {
		c.mu.Unlock()
		return
	}
	c.current = nil
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn(nil)
	}
}
