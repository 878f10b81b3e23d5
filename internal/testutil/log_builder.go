package testutil

import (
	"time"

	"github.com/mrinaald/ai-newsroom/core"
)

// LogBuilder provides a fluent helper for constructing conversation logs.
// Example:
//
//	state := NewLogBuilder().User("topic").Researcher("notes").State()
//
// Messages get strictly increasing timestamps starting at a fixed epoch so
// that merges and ordering are deterministic.
type LogBuilder struct {
	base      time.Time
	msgs      []core.Message
	directive core.Directive
}

// NewLogBuilder creates an empty builder.
func NewLogBuilder() *LogBuilder {
	return &LogBuilder{base: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// At overrides the timestamp of the next message and all that follow (chainable).
func (b *LogBuilder) At(t time.Time) *LogBuilder {
	b.base = t.Add(-time.Duration(len(b.msgs)) * time.Millisecond)
	return b
}

// Message appends a message from sender (chainable).
func (b *LogBuilder) Message(sender core.Sender, content string) *LogBuilder {
	m := core.NewMessage(sender, content)
	m.Timestamp = b.base.Add(time.Duration(len(b.msgs)) * time.Millisecond)
	b.msgs = append(b.msgs, m)
	return b
}

// User appends a user message (chainable).
func (b *LogBuilder) User(content string) *LogBuilder { return b.Message(core.SenderUser, content) }

// Researcher appends a Researcher message (chainable).
func (b *LogBuilder) Researcher(content string) *LogBuilder {
	return b.Message(core.SenderResearcher, content)
}

// Writer appends a Writer message (chainable).
func (b *LogBuilder) Writer(content string) *LogBuilder { return b.Message(core.SenderWriter, content) }

// Directive sets the routing slot of the state returned by State (chainable).
func (b *LogBuilder) Directive(d core.Directive) *LogBuilder { b.directive = d; return b }

// Messages returns a copy of the accumulated messages.
func (b *LogBuilder) Messages() []core.Message {
	out := make([]core.Message, len(b.msgs))
	copy(out, b.msgs)
	return out
}

// Build returns the log.
func (b *LogBuilder) Build() core.Log { return core.NewLog(b.Messages()...) }

// State returns a run state holding the log and the configured directive.
func (b *LogBuilder) State() core.State {
	return core.State{Log: b.Build(), Directive: b.directive}
}
